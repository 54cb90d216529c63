package mempool

import (
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/cellnetwork/celld/util/panics"
)

var log = logger.RegisterSubSystem("TXMP")
var spawn = panics.GoroutineWrapperFunc(log)
