package mempool

import (
	"sort"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool/model"
)

type transactionsPool struct {
	mempool                      *mempool
	allTransactions              model.HashToTransaction
	transactionsByShortID        model.ShortIDToTransaction
	spentOutPoints               model.OutPointToTransaction
	dependentTransactions        map[externalapi.DomainHash]model.HashToTransaction
	transactionsOrderedByFeeRate model.TransactionsOrderedByFeeRate
	totalSize                    uint64
	totalCycles                  uint64
	nextSequence                 uint64
}

func newTransactionsPool(mp *mempool) *transactionsPool {
	return &transactionsPool{
		mempool:                      mp,
		allTransactions:              model.HashToTransaction{},
		transactionsByShortID:        model.ShortIDToTransaction{},
		spentOutPoints:               model.OutPointToTransaction{},
		dependentTransactions:        map[externalapi.DomainHash]model.HashToTransaction{},
		transactionsOrderedByFeeRate: model.TransactionsOrderedByFeeRate{},
	}
}

// this function MUST be called with the mempool mutex locked for writes
func (tp *transactionsPool) addMempoolTransaction(transaction *model.MempoolTransaction) error {
	err := tp.transactionsOrderedByFeeRate.Push(transaction)
	if err != nil {
		return err
	}

	transaction.SetSequence(tp.nextSequence)
	tp.nextSequence++

	hash := *transaction.Hash()
	tp.allTransactions[hash] = transaction
	tp.transactionsByShortID[transaction.ShortID()] = transaction
	for _, input := range transaction.Transaction().Inputs {
		tp.spentOutPoints[input.PreviousOutput] = transaction
	}
	for _, parent := range transaction.ParentTransactionsInPool() {
		dependents, ok := tp.dependentTransactions[*parent.Hash()]
		if !ok {
			dependents = model.HashToTransaction{}
			tp.dependentTransactions[*parent.Hash()] = dependents
		}
		dependents[hash] = transaction
	}

	tp.totalSize += transaction.Size()
	tp.totalCycles += transaction.Cycles()
	return nil
}

// this function MUST be called with the mempool mutex locked for writes
func (tp *transactionsPool) removeTransaction(transaction *model.MempoolTransaction) error {
	err := tp.transactionsOrderedByFeeRate.Remove(transaction)
	if err != nil {
		return err
	}

	hash := *transaction.Hash()
	delete(tp.allTransactions, hash)
	delete(tp.transactionsByShortID, transaction.ShortID())
	for _, input := range transaction.Transaction().Inputs {
		if spender, ok := tp.spentOutPoints[input.PreviousOutput]; ok && spender == transaction {
			delete(tp.spentOutPoints, input.PreviousOutput)
		}
	}
	for _, parent := range transaction.ParentTransactionsInPool() {
		if dependents, ok := tp.dependentTransactions[*parent.Hash()]; ok {
			delete(dependents, hash)
			if len(dependents) == 0 {
				delete(tp.dependentTransactions, *parent.Hash())
			}
		}
	}
	for _, dependent := range tp.dependentTransactions[hash] {
		parents := dependent.ParentTransactionsInPool()
		for outPoint, parent := range parents {
			if parent == transaction {
				delete(parents, outPoint)
			}
		}
	}
	delete(tp.dependentTransactions, hash)

	tp.totalSize -= transaction.Size()
	tp.totalCycles -= transaction.Cycles()
	return nil
}

// Cell answers for the outputs of pool transactions and for the cells pool
// transactions spend. Everything else is unknown to the pool.
//
// this function MUST be called with the mempool mutex locked for reads
func (tp *transactionsPool) Cell(outPoint *externalapi.OutPoint) (cell.Status, error) {
	if _, ok := tp.spentOutPoints[*outPoint]; ok {
		return cell.Dead(), nil
	}
	transaction, ok := tp.allTransactions[outPoint.TxHash]
	if !ok {
		return cell.Unknown(), nil
	}
	meta, ok := cell.NewCellMeta(transaction.Transaction(), outPoint, nil)
	if !ok {
		return cell.Unknown(), nil
	}
	return cell.Live(meta), nil
}

// this function MUST be called with the mempool mutex locked for reads
func (tp *transactionsPool) getParentTransactionsInPool(
	resolved *cell.ResolvedTransaction) model.OutPointToTransaction {

	parentsTransactionsInPool := model.OutPointToTransaction{}
	collect := func(metas []*externalapi.CellMeta) {
		for _, meta := range metas {
			if meta.TransactionInfo != nil {
				continue
			}
			if transaction, ok := tp.allTransactions[meta.OutPoint.TxHash]; ok {
				parentsTransactionsInPool[meta.OutPoint] = transaction
			}
		}
	}
	collect(resolved.ResolvedInputs)
	collect(resolved.ResolvedCellDeps)
	collect(resolved.ResolvedDepGroups)

	return parentsTransactionsInPool
}

// getRedeemers returns every pool transaction that directly or indirectly
// spends or depends on an output of transaction.
//
// this function MUST be called with the mempool mutex locked for reads
func (tp *transactionsPool) getRedeemers(transaction *model.MempoolTransaction) []*model.MempoolTransaction {
	queue := []*model.MempoolTransaction{transaction}
	visited := map[externalapi.DomainHash]struct{}{*transaction.Hash(): {}}
	redeemers := []*model.MempoolTransaction{}
	for len(queue) > 0 {
		var current *model.MempoolTransaction
		current, queue = queue[0], queue[1:]

		for hash, redeemerTransaction := range tp.dependentTransactions[*current.Hash()] {
			if _, ok := visited[hash]; ok {
				continue
			}
			visited[hash] = struct{}{}
			queue = append(queue, redeemerTransaction)
			redeemers = append(redeemers, redeemerTransaction)
		}
	}
	return redeemers
}

// this function MUST be called with the mempool mutex locked for reads
func (tp *transactionsPool) reachSizeLimit(size uint64) bool {
	return tp.totalSize+size > tp.mempool.config.MaxTxPoolSize
}

// this function MUST be called with the mempool mutex locked for reads
func (tp *transactionsPool) reachCyclesLimit(cycles uint64) bool {
	return tp.totalCycles+cycles > tp.mempool.config.MaxTxPoolCycles
}

// inInsertionOrder returns the pool transactions with every parent before
// its children.
//
// this function MUST be called with the mempool mutex locked for reads
func (tp *transactionsPool) inInsertionOrder() []*model.MempoolTransaction {
	transactions := make([]*model.MempoolTransaction, 0, len(tp.allTransactions))
	for _, transaction := range tp.allTransactions {
		transactions = append(transactions, transaction)
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].Sequence() < transactions[j].Sequence()
	})
	return transactions
}

func (tp *transactionsPool) getTransaction(hash *externalapi.DomainHash) (*model.MempoolTransaction, bool) {
	transaction, ok := tp.allTransactions[*hash]
	return transaction, ok
}

func (tp *transactionsPool) containsShortID(shortID externalapi.ProposalShortID) bool {
	_, ok := tp.transactionsByShortID[shortID]
	return ok
}

func (tp *transactionsPool) transactionCount() int {
	return len(tp.allTransactions)
}
