package model

import (
	"context"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	mempoolmodel "github.com/cellnetwork/celld/domain/miningmanager/mempool/model"
)

// Mempool maintains a set of known transactions that
// are intended to be mined into new blocks
type Mempool interface {
	SubmitTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) (
		*transactionvalidator.Completed, error)
	NotifyTransaction(transaction *externalapi.DomainTransaction)
	HandleNewBlock(block *externalapi.DomainBlock, current *snapshot.Snapshot)
	ClearPool(current *snapshot.Snapshot)
	Transactions() []*externalapi.DomainTransaction
	GetTransaction(hash *externalapi.DomainHash) (*externalapi.DomainTransaction, bool)
	TransactionCount() int
	OrphanCount() int
	BlockTemplateCandidates(maxBytes, maxCycles uint64) []*mempoolmodel.MempoolTransaction
	ProposalCandidates(limit uint64, exclude map[externalapi.ProposalShortID]struct{}) []externalapi.ProposalShortID
	Close()
}
