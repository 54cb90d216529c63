package transactionvalidator

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/txscript"
)

// CacheEntry is what is remembered about a transaction whose verification
// ran: either it completed or it was suspended part way through its
// scripts. Entries are only valid under the consensus features they were
// computed with.
type CacheEntry interface {
	TransactionFee() externalapi.Capacity
	isCacheEntry()
}

// Completed is the entry of a transaction whose scripts all passed.
type Completed struct {
	Cycles uint64
	Fee    externalapi.Capacity
}

// TransactionFee returns the transaction fee.
func (c *Completed) TransactionFee() externalapi.Capacity { return c.Fee }

func (*Completed) isCacheEntry() {}

// Suspended is the entry of a transaction whose script execution paused
// before State.NextGroup.
type Suspended struct {
	Fee   externalapi.Capacity
	State txscript.State
}

// TransactionFee returns the transaction fee.
func (s *Suspended) TransactionFee() externalapi.Capacity { return s.Fee }

func (*Suspended) isCacheEntry() {}
