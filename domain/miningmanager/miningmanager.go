package miningmanager

import (
	"context"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	miningmanagermodel "github.com/cellnetwork/celld/domain/miningmanager/model"
)

type miningManager struct {
	mempool              miningmanagermodel.Mempool
	blockTemplateBuilder miningmanagermodel.BlockTemplateBuilder
}

// GetBlockTemplate creates a block template for a miner to consume
func (mm *miningManager) GetBlockTemplate(request *miningmanagermodel.BlockTemplateRequest) (
	*externalapi.DomainBlockTemplate, error) {

	return mm.blockTemplateBuilder.GetBlockTemplate(request)
}

// SubmitTransaction validates the given transaction, and adds it to the
// set of known transactions that have not yet been added to any block
func (mm *miningManager) SubmitTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) (
	*transactionvalidator.Completed, error) {

	return mm.mempool.SubmitTransaction(ctx, transaction)
}

// NotifyTransaction submits transaction in the background
func (mm *miningManager) NotifyTransaction(transaction *externalapi.DomainTransaction) {
	mm.mempool.NotifyTransaction(transaction)
}

// HandleNewBlock handles a new block that was just added to the chain
func (mm *miningManager) HandleNewBlock(block *externalapi.DomainBlock, current *snapshot.Snapshot) {
	mm.mempool.HandleNewBlock(block, current)
}

// ClearPool drops every known transaction. It's called after the chain
// was rolled back to current.
func (mm *miningManager) ClearPool(current *snapshot.Snapshot) {
	mm.mempool.ClearPool(current)
}

func (mm *miningManager) Transactions() []*externalapi.DomainTransaction {
	return mm.mempool.Transactions()
}

func (mm *miningManager) GetTransaction(hash *externalapi.DomainHash) (*externalapi.DomainTransaction, bool) {
	return mm.mempool.GetTransaction(hash)
}

func (mm *miningManager) TransactionCount() int {
	return mm.mempool.TransactionCount()
}

func (mm *miningManager) OrphanCount() int {
	return mm.mempool.OrphanCount()
}

// Close stops the verification workers of the pool
func (mm *miningManager) Close() {
	mm.mempool.Close()
}
