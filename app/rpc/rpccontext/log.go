package rpccontext

import (
	"github.com/cellnetwork/celld/infrastructure/logger"
)

var log = logger.RegisterSubSystem("RPCS")
