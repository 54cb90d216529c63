package miningmanager

import (
	"context"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
)

// MiningManager creates block templates for mining as well as maintaining
// known transactions that have no yet been added to any block
type MiningManager interface {
	GetBlockTemplate(request *model.BlockTemplateRequest) (*externalapi.DomainBlockTemplate, error)
	SubmitTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) (
		*transactionvalidator.Completed, error)
	NotifyTransaction(transaction *externalapi.DomainTransaction)
	HandleNewBlock(block *externalapi.DomainBlock, current *snapshot.Snapshot)
	ClearPool(current *snapshot.Snapshot)
	Transactions() []*externalapi.DomainTransaction
	GetTransaction(hash *externalapi.DomainHash) (*externalapi.DomainTransaction, bool)
	TransactionCount() int
	OrphanCount() int
	Close()
}
