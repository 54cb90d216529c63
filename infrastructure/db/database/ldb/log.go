package ldb

import "github.com/cellnetwork/celld/infrastructure/logger"

var log = logger.RegisterSubSystem("KVDB")
