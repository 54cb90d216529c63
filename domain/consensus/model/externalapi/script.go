package externalapi

import (
	"bytes"
	"fmt"
)

// ScriptHashType selects how a script's CodeHash locates the code to run.
type ScriptHashType uint8

// Script hash types. Data and Data1 match the code cell by data hash, Type
// matches it by the hash of the code cell's type script.
const (
	ScriptHashTypeData  ScriptHashType = 0
	ScriptHashTypeType  ScriptHashType = 1
	ScriptHashTypeData1 ScriptHashType = 2
)

func (t ScriptHashType) String() string {
	switch t {
	case ScriptHashTypeData:
		return "data"
	case ScriptHashTypeType:
		return "type"
	case ScriptHashTypeData1:
		return "data1"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Script is a lock or type script attached to a cell output.
type Script struct {
	CodeHash DomainHash
	HashType ScriptHashType
	Args     []byte
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = Script{DomainHash{}, ScriptHashTypeData, []byte{}}

// Equal returns whether script equals to other
func (script *Script) Equal(other *Script) bool {
	if script == nil || other == nil {
		return script == other
	}
	return script.CodeHash == other.CodeHash &&
		script.HashType == other.HashType &&
		bytes.Equal(script.Args, other.Args)
}

// Clone returns a deep copy of the script
func (script *Script) Clone() *Script {
	if script == nil {
		return nil
	}
	argsClone := make([]byte, len(script.Args))
	copy(argsClone, script.Args)
	return &Script{CodeHash: script.CodeHash, HashType: script.HashType, Args: argsClone}
}

// OccupiedBytes returns the bytes the script takes inside a cell.
func (script *Script) OccupiedBytes() uint64 {
	return DomainHashSize + 1 + uint64(len(script.Args))
}
