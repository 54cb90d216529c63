package externalapi

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
)

// ProposalShortIDSize is the length of a proposal short id.
const ProposalShortIDSize = 10

// ProposalShortID is the truncated transaction hash used for proposals and
// pool collision detection.
type ProposalShortID [ProposalShortIDSize]byte

// NewProposalShortID returns the short id of the given transaction hash.
func NewProposalShortID(txHash *DomainHash) ProposalShortID {
	var id ProposalShortID
	copy(id[:], txHash.hashArray[:ProposalShortIDSize])
	return id
}

func (id ProposalShortID) String() string {
	return hex.EncodeToString(id[:])
}

// OutPoint references an output of a transaction.
type OutPoint struct {
	TxHash DomainHash
	Index  uint32
}

// NullOutPoint returns the outpoint used by cellbase inputs.
func NullOutPoint() OutPoint {
	return OutPoint{Index: math.MaxUint32}
}

// IsNull returns whether the outpoint is the cellbase null outpoint.
func (op *OutPoint) IsNull() bool {
	return op.TxHash.IsZero() && op.Index == math.MaxUint32
}

func (op OutPoint) String() string {
	return fmt.Sprintf("(%s: %d)", op.TxHash, op.Index)
}

// DepType says how a cell dep is interpreted.
type DepType uint8

// Cell dep types. A DepGroup cell's data is a list of outpoints that are
// expanded into code deps.
const (
	DepTypeCode     DepType = 0
	DepTypeDepGroup DepType = 1
)

// CellDep is a cell that a transaction reads without consuming it.
type CellDep struct {
	OutPoint OutPoint
	DepType  DepType
}

// CellInput is a transaction input.
type CellInput struct {
	Since          uint64
	PreviousOutput OutPoint
}

// CellOutput is a transaction output.
type CellOutput struct {
	Capacity Capacity
	Lock     *Script
	Type     *Script
}

// Clone returns a deep copy of the output
func (output *CellOutput) Clone() *CellOutput {
	return &CellOutput{Capacity: output.Capacity, Lock: output.Lock.Clone(), Type: output.Type.Clone()}
}

// Equal returns whether output equals to other
func (output *CellOutput) Equal(other *CellOutput) bool {
	if output == nil || other == nil {
		return output == other
	}
	return output.Capacity == other.Capacity && output.Lock.Equal(other.Lock) && output.Type.Equal(other.Type)
}

// OccupiedCapacity returns the minimal capacity the output must carry to
// hold itself and dataLength bytes of data.
func (output *CellOutput) OccupiedCapacity(dataLength uint64) (Capacity, error) {
	occupiedBytes := uint64(8) + output.Lock.OccupiedBytes() + dataLength
	if output.Type != nil {
		occupiedBytes += output.Type.OccupiedBytes()
	}
	return BytesToCapacity(occupiedBytes)
}

// DomainTransaction represents a transaction. It is immutable once built
// and is identified by the hash of its serialization without witnesses.
type DomainTransaction struct {
	Version     uint32
	CellDeps    []*CellDep
	HeaderDeps  []DomainHash
	Inputs      []*CellInput
	Outputs     []*CellOutput
	OutputsData [][]byte
	Witnesses   [][]byte
}

// IsCellbase returns whether the transaction has the shape of a cellbase:
// a single input spending the null outpoint.
func (tx *DomainTransaction) IsCellbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].PreviousOutput.IsNull()
}

// OutputsCapacity sums the output capacities with overflow checking.
func (tx *DomainTransaction) OutputsCapacity() (Capacity, error) {
	capacities := make([]Capacity, len(tx.Outputs))
	for i, output := range tx.Outputs {
		capacities[i] = output.Capacity
	}
	return SumCapacities(capacities...)
}

// OutputWithData returns the output at index and its data.
func (tx *DomainTransaction) OutputWithData(index uint32) (*CellOutput, []byte, bool) {
	if int(index) >= len(tx.Outputs) || int(index) >= len(tx.OutputsData) {
		return nil, nil, false
	}
	return tx.Outputs[index], tx.OutputsData[index], true
}

// Clone returns a deep copy of the transaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	clone := &DomainTransaction{
		Version:     tx.Version,
		CellDeps:    make([]*CellDep, len(tx.CellDeps)),
		HeaderDeps:  make([]DomainHash, len(tx.HeaderDeps)),
		Inputs:      make([]*CellInput, len(tx.Inputs)),
		Outputs:     make([]*CellOutput, len(tx.Outputs)),
		OutputsData: cloneByteSlices(tx.OutputsData),
		Witnesses:   cloneByteSlices(tx.Witnesses),
	}
	for i, cellDep := range tx.CellDeps {
		cellDepClone := *cellDep
		clone.CellDeps[i] = &cellDepClone
	}
	copy(clone.HeaderDeps, tx.HeaderDeps)
	for i, input := range tx.Inputs {
		inputClone := *input
		clone.Inputs[i] = &inputClone
	}
	for i, output := range tx.Outputs {
		clone.Outputs[i] = output.Clone()
	}
	return clone
}

// Equal returns whether tx equals to other
func (tx *DomainTransaction) Equal(other *DomainTransaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	if tx.Version != other.Version || len(tx.CellDeps) != len(other.CellDeps) ||
		len(tx.HeaderDeps) != len(other.HeaderDeps) || len(tx.Inputs) != len(other.Inputs) ||
		len(tx.Outputs) != len(other.Outputs) || !byteSlicesEqual(tx.OutputsData, other.OutputsData) ||
		!byteSlicesEqual(tx.Witnesses, other.Witnesses) {
		return false
	}
	for i := range tx.CellDeps {
		if *tx.CellDeps[i] != *other.CellDeps[i] {
			return false
		}
	}
	for i := range tx.HeaderDeps {
		if tx.HeaderDeps[i] != other.HeaderDeps[i] {
			return false
		}
	}
	for i := range tx.Inputs {
		if *tx.Inputs[i] != *other.Inputs[i] {
			return false
		}
	}
	for i := range tx.Outputs {
		if !tx.Outputs[i].Equal(other.Outputs[i]) {
			return false
		}
	}
	return true
}

func cloneByteSlices(slices [][]byte) [][]byte {
	if slices == nil {
		return nil
	}
	clone := make([][]byte, len(slices))
	for i, slice := range slices {
		clone[i] = append([]byte(nil), slice...)
	}
	return clone
}

func byteSlicesEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
