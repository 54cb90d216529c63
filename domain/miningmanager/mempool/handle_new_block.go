package mempool

import (
	"context"
	"fmt"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool/model"
	"github.com/cellnetwork/celld/infrastructure/logger"
)

// HandleNewBlock updates the pool after block became the tip: committed
// transactions leave the pool, transactions conflicting with the block are
// removed with their redeemers, the rest is revalidated at the new tip and
// orphans the block unblocked are submitted again.
func (mp *mempool) HandleNewBlock(block *externalapi.DomainBlock, current *snapshot.Snapshot) {
	blockHash := consensushashing.BlockHash(block)
	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("HandleNewBlock %s", blockHash))
	defer onEnd()

	orphans, err := mp.handleNewBlock(block, current)
	if err != nil {
		log.Errorf("Failed updating the pool after block %s, clearing it: %+v", blockHash, err)
		mp.ClearPool(current)
		return
	}

	for _, orphan := range orphans {
		_, err := mp.SubmitTransaction(context.Background(), orphan.Transaction())
		if err != nil {
			log.Debugf("Orphan %s was not accepted after block %s: %s", orphan.Hash(), blockHash, err)
		}
	}
}

func (mp *mempool) handleNewBlock(block *externalapi.DomainBlock, current *snapshot.Snapshot) (
	[]*model.OrphanTransaction, error) {

	mp.mtx.HighPriorityLock()
	defer mp.mtx.HighPriorityUnlock()

	hashes := make([]*externalapi.DomainHash, len(block.Transactions))
	for i, transaction := range block.Transactions {
		hashes[i] = consensushashing.TransactionHash(transaction)
	}

	committed := 0
	for i, transaction := range block.Transactions {
		if transaction.IsCellbase() {
			continue
		}
		if mempoolTransaction, ok := mp.transactionsPool.getTransaction(hashes[i]); ok {
			err := mp.transactionsPool.removeTransaction(mempoolTransaction)
			if err != nil {
				return nil, err
			}
			committed++
			continue
		}
		mp.orphansPool.removeOrphan(hashes[i])
	}

	for _, transaction := range block.Transactions {
		if transaction.IsCellbase() {
			continue
		}
		for _, input := range transaction.Inputs {
			spender, ok := mp.transactionsPool.spentOutPoints[input.PreviousOutput]
			if !ok {
				continue
			}
			log.Debugf("Removing transaction %s which double spends %s with block %s",
				spender.Hash(), input.PreviousOutput, consensushashing.BlockHash(block))
			err := mp.removeTransactionWithRedeemers(spender)
			if err != nil {
				return nil, err
			}
		}
	}

	err := mp.revalidateTransactions(current)
	if err != nil {
		return nil, err
	}

	orphans := mp.orphansPool.takeOrphansWaitingFor(block.Transactions, hashes)
	mp.orphansPool.expireOrphans(block.Header.Number)
	mp.updateMetrics()
	log.Debugf("Block %s committed %d pool transactions, %d remain", consensushashing.BlockHash(block),
		committed, mp.transactionsPool.transactionCount())
	return orphans, nil
}
