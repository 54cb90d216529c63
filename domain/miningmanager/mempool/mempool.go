package mempool

import (
	"context"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	miningmanagermodel "github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/cellnetwork/celld/domain/miningmanager/verifycache"
	"github.com/cellnetwork/celld/util/prioritylock"
)

// SnapshotSource hands out the current chain snapshot. The returned
// snapshot holds a reference the caller must Release.
type SnapshotSource interface {
	Snapshot() *snapshot.Snapshot
}

type mempool struct {
	mtx *prioritylock.Mutex

	config *Config
	source SnapshotSource

	transactionsPool *transactionsPool
	orphansPool      *orphansPool
	verifyCache      *verifycache.Cache
	verifyWorkers    *verifyWorkers
}

// New constructs a new mempool
func New(config *Config, source SnapshotSource) miningmanagermodel.Mempool {
	mp := &mempool{
		mtx:         prioritylock.New(),
		config:      config,
		source:      source,
		verifyCache: verifycache.New(config.VerifyCacheSize),
	}
	mp.transactionsPool = newTransactionsPool(mp)
	mp.orphansPool = newOrphansPool(mp)
	mp.verifyWorkers = newVerifyWorkers(config.VerifyWorkers, config.VerifyChunkCycles, mp.cacheSuspended)
	return mp
}

func (mp *mempool) SubmitTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) (
	*transactionvalidator.Completed, error) {

	completed, err := mp.validateAndInsertTransaction(ctx, transaction)
	if err != nil {
		observeRejection(err)
		return nil, err
	}
	return completed, nil
}

func (mp *mempool) NotifyTransaction(transaction *externalapi.DomainTransaction) {
	spawn("mempool.NotifyTransaction", func() {
		_, err := mp.SubmitTransaction(context.Background(), transaction)
		if err != nil {
			log.Debugf("Notified transaction was not accepted: %s", err)
		}
	})
}

func (mp *mempool) Transactions() []*externalapi.DomainTransaction {
	mp.mtx.HighPriorityReadLock()
	defer mp.mtx.HighPriorityReadUnlock()

	transactions := make([]*externalapi.DomainTransaction, 0, mp.transactionsPool.transactionCount())
	for _, transaction := range mp.transactionsPool.inInsertionOrder() {
		transactions = append(transactions, transaction.Transaction())
	}
	return transactions
}

func (mp *mempool) GetTransaction(hash *externalapi.DomainHash) (*externalapi.DomainTransaction, bool) {
	mp.mtx.HighPriorityReadLock()
	defer mp.mtx.HighPriorityReadUnlock()

	transaction, ok := mp.transactionsPool.getTransaction(hash)
	if !ok {
		return nil, false
	}
	return transaction.Transaction(), true
}

func (mp *mempool) TransactionCount() int {
	mp.mtx.HighPriorityReadLock()
	defer mp.mtx.HighPriorityReadUnlock()

	return mp.transactionsPool.transactionCount()
}

func (mp *mempool) OrphanCount() int {
	mp.mtx.HighPriorityReadLock()
	defer mp.mtx.HighPriorityReadUnlock()

	return len(mp.orphansPool.allOrphans)
}

func (mp *mempool) ClearPool(current *snapshot.Snapshot) {
	mp.mtx.HighPriorityLock()
	defer mp.mtx.HighPriorityUnlock()

	log.Infof("Clearing the transaction pool at tip %s: dropping %d transactions and %d orphans",
		current.TipHash(), mp.transactionsPool.transactionCount(), len(mp.orphansPool.allOrphans))
	mp.transactionsPool = newTransactionsPool(mp)
	mp.orphansPool.clear()
	mp.updateMetrics()
}

func (mp *mempool) Close() {
	mp.verifyWorkers.close()
}

// cacheSuspended keeps the progress of a verification whose caller went
// away, so submitting the transaction again resumes it.
func (mp *mempool) cacheSuspended(current *snapshot.Snapshot, transaction *externalapi.DomainTransaction,
	suspended *transactionvalidator.Suspended) {

	mp.verifyCache.Put(consensushashing.WitnessHash(transaction), current.FeatureSet(), suspended)
}
