package app

import (
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/cellnetwork/celld/util/panics"
)

var log = logger.RegisterSubSystem("CELD")
var spawn = panics.GoroutineWrapperFunc(log)
