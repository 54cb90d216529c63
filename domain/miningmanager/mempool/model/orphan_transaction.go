package model

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
)

// OrphanTransaction represents a transaction in the OrphanPool: one that
// spends or depends on cells nobody knows about yet
type OrphanTransaction struct {
	transaction        *externalapi.DomainTransaction
	hash               *externalapi.DomainHash
	size               uint64
	missingOutPoints   []externalapi.OutPoint
	addedAtBlockNumber uint64
}

// NewOrphanTransaction constructs a new OrphanTransaction
func NewOrphanTransaction(
	transaction *externalapi.DomainTransaction,
	hash *externalapi.DomainHash,
	size uint64,
	missingOutPoints []externalapi.OutPoint,
	addedAtBlockNumber uint64,
) *OrphanTransaction {
	return &OrphanTransaction{
		transaction:        transaction,
		hash:               hash,
		size:               size,
		missingOutPoints:   missingOutPoints,
		addedAtBlockNumber: addedAtBlockNumber,
	}
}

// Hash returns the hash of this OrphanTransaction
func (ot *OrphanTransaction) Hash() *externalapi.DomainHash {
	return ot.hash
}

// ShortID returns the proposal short id of this OrphanTransaction
func (ot *OrphanTransaction) ShortID() externalapi.ProposalShortID {
	return externalapi.NewProposalShortID(ot.hash)
}

// Transaction returns the transaction inside this OrphanTransaction
func (ot *OrphanTransaction) Transaction() *externalapi.DomainTransaction {
	return ot.transaction
}

// Size returns the serialized size of the transaction
func (ot *OrphanTransaction) Size() uint64 {
	return ot.size
}

// MissingOutPoints returns the outpoints the orphan is waiting for
func (ot *OrphanTransaction) MissingOutPoints() []externalapi.OutPoint {
	return ot.missingOutPoints
}

// AddedAtBlockNumber returns the tip number at the time the orphan was added
func (ot *OrphanTransaction) AddedAtBlockNumber() uint64 {
	return ot.addedAtBlockNumber
}
