package chain

import (
	"github.com/cellnetwork/celld/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CHAN")
