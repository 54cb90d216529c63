package mempool

import (
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool/model"
)

// removeTransactionWithRedeemers removes transaction and every pool
// transaction built on top of it.
//
// this function MUST be called with the mempool mutex locked for writes
func (mp *mempool) removeTransactionWithRedeemers(transaction *model.MempoolTransaction) error {
	transactionsToRemove := append([]*model.MempoolTransaction{transaction},
		mp.transactionsPool.getRedeemers(transaction)...)
	for _, transactionToRemove := range transactionsToRemove {
		err := mp.transactionsPool.removeTransaction(transactionToRemove)
		if err != nil {
			return err
		}
	}
	return nil
}

// revalidateTransactions rebuilds the pool on top of the chain as of
// current, in the order the transactions were accepted. Transactions that
// no longer resolve or whose time-relative rules don't hold anymore are
// dropped, together with whatever depends on them.
//
// this function MUST be called with the mempool mutex locked for writes
func (mp *mempool) revalidateTransactions(current *snapshot.Snapshot) error {
	remaining := mp.transactionsPool.inInsertionOrder()
	mp.transactionsPool = newTransactionsPool(mp)

	env := transactionvalidator.NewSubmittedEnv(current.TipHeader())
	dropped := 0
	for _, transaction := range remaining {
		resolved, err := mp.resolveTransaction(current, transaction.Transaction())
		if err == nil {
			err = timeRelativeVerify(current, resolved, env)
		}
		if err != nil {
			if _, ok := ExtractReject(err); !ok {
				return err
			}
			log.Debugf("Removing transaction %s from the pool: %s", transaction.Hash(), err)
			dropped++
			continue
		}

		transaction.SetResolved(resolved)
		transaction.SetParentTransactionsInPool(mp.transactionsPool.getParentTransactionsInPool(resolved))
		err = mp.transactionsPool.addMempoolTransaction(transaction)
		if err != nil {
			return err
		}
	}
	if dropped > 0 {
		log.Infof("Removed %d transactions that became invalid at tip %s", dropped, current.TipHash())
	}
	return nil
}
