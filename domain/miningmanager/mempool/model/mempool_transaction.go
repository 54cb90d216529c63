package model

import (
	"math/bits"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// MempoolTransaction represents a transaction inside the main TransactionPool
type MempoolTransaction struct {
	resolved                 *cell.ResolvedTransaction
	shortID                  externalapi.ProposalShortID
	size                     uint64
	cycles                   uint64
	fee                      externalapi.Capacity
	parentTransactionsInPool OutPointToTransaction
	addedAtBlockNumber       uint64
	sequence                 uint64
}

// NewMempoolTransaction constructs a new MempoolTransaction
func NewMempoolTransaction(
	resolved *cell.ResolvedTransaction,
	size uint64,
	cycles uint64,
	fee externalapi.Capacity,
	parentTransactionsInPool OutPointToTransaction,
	addedAtBlockNumber uint64,
) *MempoolTransaction {
	return &MempoolTransaction{
		resolved:                 resolved,
		shortID:                  externalapi.NewProposalShortID(resolved.Hash),
		size:                     size,
		cycles:                   cycles,
		fee:                      fee,
		parentTransactionsInPool: parentTransactionsInPool,
		addedAtBlockNumber:       addedAtBlockNumber,
	}
}

// Hash returns the hash of this MempoolTransaction
func (mt *MempoolTransaction) Hash() *externalapi.DomainHash {
	return mt.resolved.Hash
}

// WitnessHash returns the hash of the transaction including its witnesses
func (mt *MempoolTransaction) WitnessHash() *externalapi.DomainHash {
	return consensushashing.WitnessHash(mt.resolved.Transaction)
}

// ShortID returns the proposal short id of this MempoolTransaction
func (mt *MempoolTransaction) ShortID() externalapi.ProposalShortID {
	return mt.shortID
}

// Transaction returns the transaction inside this MempoolTransaction
func (mt *MempoolTransaction) Transaction() *externalapi.DomainTransaction {
	return mt.resolved.Transaction
}

// Resolved returns the transaction as it was last resolved against the pool
// and the chain
func (mt *MempoolTransaction) Resolved() *cell.ResolvedTransaction {
	return mt.resolved
}

// SetResolved replaces the resolved form of this MempoolTransaction
func (mt *MempoolTransaction) SetResolved(resolved *cell.ResolvedTransaction) {
	mt.resolved = resolved
}

// Size returns the serialized size of the transaction
func (mt *MempoolTransaction) Size() uint64 {
	return mt.size
}

// Cycles returns the cycles the transaction scripts consume
func (mt *MempoolTransaction) Cycles() uint64 {
	return mt.cycles
}

// Fee returns the transaction fee
func (mt *MempoolTransaction) Fee() externalapi.Capacity {
	return mt.fee
}

// SetFee replaces the transaction fee
func (mt *MempoolTransaction) SetFee(fee externalapi.Capacity) {
	mt.fee = fee
}

// ParentTransactionsInPool returns the pool transactions this transaction
// spends from, keyed by the spent outpoint
func (mt *MempoolTransaction) ParentTransactionsInPool() OutPointToTransaction {
	return mt.parentTransactionsInPool
}

// SetParentTransactionsInPool replaces the in-pool parents
func (mt *MempoolTransaction) SetParentTransactionsInPool(parents OutPointToTransaction) {
	mt.parentTransactionsInPool = parents
}

// AddedAtBlockNumber returns the tip number at the time the transaction
// entered the pool
func (mt *MempoolTransaction) AddedAtBlockNumber() uint64 {
	return mt.addedAtBlockNumber
}

// Sequence returns the insertion order of the transaction. Parents are
// always inserted before their children.
func (mt *MempoolTransaction) Sequence() uint64 {
	return mt.sequence
}

// SetSequence sets the insertion order of the transaction
func (mt *MempoolTransaction) SetSequence(sequence uint64) {
	mt.sequence = sequence
}

// HasLowerFeeRateThan returns whether mt pays less per byte than other
func (mt *MempoolTransaction) HasLowerFeeRateThan(other *MempoolTransaction) bool {
	return CompareFeeRates(mt.fee, mt.size, other.fee, other.size) < 0
}

// CompareFeeRates compares feeA/sizeA with feeB/sizeB without loss of
// precision. It returns -1, 0 or 1.
func CompareFeeRates(feeA externalapi.Capacity, sizeA uint64, feeB externalapi.Capacity, sizeB uint64) int {
	highA, lowA := bits.Mul64(uint64(feeA), sizeB)
	highB, lowB := bits.Mul64(uint64(feeB), sizeA)
	switch {
	case highA < highB:
		return -1
	case highA > highB:
		return 1
	case lowA < lowB:
		return -1
	case lowA > lowB:
		return 1
	}
	return 0
}
