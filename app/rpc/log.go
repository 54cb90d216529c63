package rpc

import (
	"github.com/cellnetwork/celld/infrastructure/logger"
)

var log = logger.RegisterSubSystem("RPCS")
