// Package systemcells holds the programs the genesis block deploys. Scripts
// reference a program by the data hash of the cell holding it.
package systemcells

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// Program identifies a natively executed script program.
type Program uint8

// Known programs.
const (
	ProgramUnknown Program = iota
	ProgramAlwaysSuccess
	ProgramAlwaysFailure
	ProgramSecp256k1Blake160SighashAll
	ProgramDAO
)

var programNames = map[Program]string{
	ProgramUnknown:                     "unknown",
	ProgramAlwaysSuccess:               "always_success",
	ProgramAlwaysFailure:               "always_failure",
	ProgramSecp256k1Blake160SighashAll: "secp256k1_blake160_sighash_all",
	ProgramDAO:                         "dao",
}

func (p Program) String() string {
	if name, ok := programNames[p]; ok {
		return name
	}
	return programNames[ProgramUnknown]
}

// Cell data of the deployed programs.
var (
	AlwaysSuccessData               = []byte("celld/system/always_success/v1")
	AlwaysFailureData               = []byte("celld/system/always_failure/v1")
	Secp256k1Blake160SighashAllData = []byte("celld/system/secp256k1_blake160_sighash_all/v1")
	DAOData                         = []byte("celld/system/dao/v1")
)

// Code hashes of the deployed programs.
var (
	AlwaysSuccessCodeHash               = *consensushashing.DataHash(AlwaysSuccessData)
	AlwaysFailureCodeHash               = *consensushashing.DataHash(AlwaysFailureData)
	Secp256k1Blake160SighashAllCodeHash = *consensushashing.DataHash(Secp256k1Blake160SighashAllData)
	DAOCodeHash                         = *consensushashing.DataHash(DAOData)
)

// Cell is a system cell as it is laid out in the genesis cellbase.
type Cell struct {
	Program  Program
	Data     []byte
	CodeHash externalapi.DomainHash
}

// All returns the system cells in genesis cellbase output order.
func All() []Cell {
	return []Cell{
		{ProgramAlwaysSuccess, AlwaysSuccessData, AlwaysSuccessCodeHash},
		{ProgramAlwaysFailure, AlwaysFailureData, AlwaysFailureCodeHash},
		{ProgramSecp256k1Blake160SighashAll, Secp256k1Blake160SighashAllData, Secp256k1Blake160SighashAllCodeHash},
		{ProgramDAO, DAOData, DAOCodeHash},
	}
}

// ProgramByData returns the program a code cell's data deploys.
func ProgramByData(data []byte) Program {
	return ProgramByCodeHash(consensushashing.DataHash(data))
}

// ProgramByCodeHash returns the program whose data hashes to codeHash.
func ProgramByCodeHash(codeHash *externalapi.DomainHash) Program {
	for _, cell := range All() {
		if cell.CodeHash.Equal(codeHash) {
			return cell.Program
		}
	}
	return ProgramUnknown
}
