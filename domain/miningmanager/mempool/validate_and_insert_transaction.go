package mempool

import (
	"context"
	"fmt"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool/model"
	"github.com/cellnetwork/celld/infrastructure/logger"
)

// validateAndInsertTransaction admits transaction in three steps: cheap
// checks and resolution under the lock, script verification without it,
// and insertion under the lock again. Orphans waiting for the accepted
// transaction are submitted afterwards.
func (mp *mempool) validateAndInsertTransaction(ctx context.Context, transaction *externalapi.DomainTransaction) (
	*transactionvalidator.Completed, error) {

	hash := consensushashing.TransactionHash(transaction)
	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("validateAndInsertTransaction %s", hash))
	defer onEnd()

	current := mp.source.Snapshot()
	defer current.Release()

	size := serialization.TransactionSize(transaction)
	resolved, entry, err := mp.preCheck(current, transaction, hash, size)
	if err != nil {
		return nil, err
	}

	env := transactionvalidator.NewSubmittedEnv(current.TipHeader())
	completed, err := mp.verifyRTX(ctx, current, resolved, env, entry)
	if err != nil {
		return nil, err
	}
	if _, ok := entry.(*transactionvalidator.Completed); !ok {
		mp.verifyCache.Put(consensushashing.WitnessHash(transaction), current.FeatureSet(), completed)
	}

	orphans, err := mp.insert(current, transaction, hash, size, completed)
	if err != nil {
		return nil, err
	}

	for _, orphan := range orphans {
		_, err := mp.SubmitTransaction(ctx, orphan.Transaction())
		if err != nil {
			log.Debugf("Orphan %s waiting for %s was not accepted: %s", orphan.Hash(), hash, err)
		}
	}
	return completed, nil
}

// preCheck runs every check that doesn't execute scripts and returns the
// resolved transaction with what the verification cache knows about it.
// A transaction missing inputs is kept as an orphan.
func (mp *mempool) preCheck(current *snapshot.Snapshot, transaction *externalapi.DomainTransaction,
	hash *externalapi.DomainHash, size uint64) (*cell.ResolvedTransaction, transactionvalidator.CacheEntry, error) {

	mp.mtx.LowPriorityLock()
	defer mp.mtx.LowPriorityUnlock()

	err := nonContextualVerify(current, transaction)
	if err != nil {
		return nil, nil, err
	}
	err = mp.checkTxIDCollision(hash)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := mp.resolveTransaction(current, transaction)
	if err != nil {
		if IsMissingInput(err) {
			missingOutPoints, hasDead := mp.missingOutPoints(current, transaction)
			if hasDead {
				log.Debugf("Not keeping %s as an orphan: it spends a dead cell", hash)
				return nil, nil, err
			}
			mp.orphansPool.maybeAddOrphan(transaction, hash, size, missingOutPoints, current.TipHeader().Number)
			mp.updateMetrics()
		}
		return nil, nil, err
	}

	err = mp.checkTxSizeLimit(size)
	if err != nil {
		return nil, nil, err
	}
	_, err = mp.checkTxFee(current, resolved, size)
	if err != nil {
		return nil, nil, err
	}

	entry, _ := mp.verifyCache.Get(consensushashing.WitnessHash(transaction), current.FeatureSet())
	return resolved, entry, nil
}

// insert adds the verified transaction to the pool. The pool and the chain
// may have changed while the scripts ran, so the transaction is resolved
// again against both, which also catches a conflicting transaction
// admitted in the meantime.
func (mp *mempool) insert(verifiedAt *snapshot.Snapshot, transaction *externalapi.DomainTransaction,
	hash *externalapi.DomainHash, size uint64, completed *transactionvalidator.Completed) (
	[]*model.OrphanTransaction, error) {

	mp.mtx.LowPriorityLock()
	defer mp.mtx.LowPriorityUnlock()

	err := mp.checkTxIDCollision(hash)
	if err != nil {
		return nil, err
	}

	latest := mp.source.Snapshot()
	defer latest.Release()

	resolved, err := mp.resolveTransaction(latest, transaction)
	if err != nil {
		return nil, err
	}
	if !latest.TipHash().Equal(verifiedAt.TipHash()) {
		err = timeRelativeVerify(latest, resolved, transactionvalidator.NewSubmittedEnv(latest.TipHeader()))
		if err != nil {
			return nil, err
		}
	}
	err = mp.checkTxSizeLimit(size)
	if err != nil {
		return nil, err
	}
	err = mp.checkTxCycleLimit(completed.Cycles)
	if err != nil {
		return nil, err
	}

	parents := mp.transactionsPool.getParentTransactionsInPool(resolved)
	mempoolTransaction := model.NewMempoolTransaction(resolved, size, completed.Cycles, completed.Fee, parents,
		latest.TipHeader().Number)
	err = mp.transactionsPool.addMempoolTransaction(mempoolTransaction)
	if err != nil {
		return nil, err
	}
	log.Debugf("Accepted transaction %s (fee: %s, cycles: %d, pool size: %d)",
		hash, completed.Fee, completed.Cycles, mp.transactionsPool.transactionCount())

	orphans := mp.orphansPool.takeOrphansWaitingFor(
		[]*externalapi.DomainTransaction{transaction}, []*externalapi.DomainHash{hash})
	mp.updateMetrics()
	return orphans, nil
}

// resolveTransaction resolves transaction on top of the pool.
//
// this function MUST be called with the mempool mutex locked for reads
func (mp *mempool) resolveTransaction(current *snapshot.Snapshot,
	transaction *externalapi.DomainTransaction) (*cell.ResolvedTransaction, error) {

	provider := cell.NewOverlayProvider(mp.transactionsPool, current)
	options := cell.NewResolveOptions(current.FeatureSet())
	resolved, err := cell.ResolveTransaction(transaction, cell.SeenInputs{}, provider, current, options)
	if err != nil {
		return nil, resolveError(err)
	}
	return resolved, nil
}

// missingOutPoints returns the inputs and cell deps of transaction that
// neither the pool nor the chain knows about, and whether any of them is
// already dead.
//
// this function MUST be called with the mempool mutex locked for reads
func (mp *mempool) missingOutPoints(current *snapshot.Snapshot,
	transaction *externalapi.DomainTransaction) (missing []externalapi.OutPoint, hasDead bool) {

	provider := cell.NewOverlayProvider(mp.transactionsPool, current)
	seen := make(map[externalapi.OutPoint]struct{})
	missing = []externalapi.OutPoint{}
	check := func(outPoint externalapi.OutPoint) {
		if _, ok := seen[outPoint]; ok {
			return
		}
		seen[outPoint] = struct{}{}
		status, err := provider.Cell(&outPoint)
		if err != nil {
			log.Warnf("Failed looking up cell %s: %s", outPoint, err)
			return
		}
		switch status.Kind {
		case cell.StatusUnknown:
			missing = append(missing, outPoint)
		case cell.StatusDead:
			hasDead = true
		}
	}
	for _, input := range transaction.Inputs {
		check(input.PreviousOutput)
	}
	for _, cellDep := range transaction.CellDeps {
		check(cellDep.OutPoint)
	}
	return missing, hasDead
}
