package mempool

import (
	"sort"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool/model"
)

type missingOutPointToOrphans map[externalapi.OutPoint]model.HashToOrphan

type orphansPool struct {
	mempool                  *mempool
	allOrphans               model.HashToOrphan
	orphansByShortID         map[externalapi.ProposalShortID]*model.OrphanTransaction
	orphansByMissingOutPoint missingOutPointToOrphans
}

func newOrphansPool(mp *mempool) *orphansPool {
	return &orphansPool{
		mempool:                  mp,
		allOrphans:               model.HashToOrphan{},
		orphansByShortID:         map[externalapi.ProposalShortID]*model.OrphanTransaction{},
		orphansByMissingOutPoint: missingOutPointToOrphans{},
	}
}

// maybeAddOrphan keeps transaction until one of missingOutPoints shows up.
// Oversized orphans are dropped, and when the pool is at capacity a random
// orphan is evicted to make room.
//
// this function MUST be called with the mempool mutex locked for writes
func (op *orphansPool) maybeAddOrphan(transaction *externalapi.DomainTransaction, hash *externalapi.DomainHash,
	size uint64, missingOutPoints []externalapi.OutPoint, tipNumber uint64) {

	if _, ok := op.allOrphans[*hash]; ok {
		return
	}
	if size > op.mempool.config.MaximumOrphanTransactionSize {
		log.Debugf("Not keeping orphan %s: its size of %d bytes is larger than max allowed size of %d bytes",
			hash, size, op.mempool.config.MaximumOrphanTransactionSize)
		return
	}
	if op.mempool.config.MaximumOrphanTransactionCount <= 0 || len(missingOutPoints) == 0 {
		return
	}
	for len(op.allOrphans) >= op.mempool.config.MaximumOrphanTransactionCount {
		evicted := op.randomOrphan()
		log.Debugf("Evicting orphan %s to make room for %s", evicted.Hash(), hash)
		op.removeOrphan(evicted.Hash())
	}

	orphan := model.NewOrphanTransaction(transaction, hash, size, missingOutPoints, tipNumber)
	op.allOrphans[*hash] = orphan
	op.orphansByShortID[orphan.ShortID()] = orphan
	for _, outPoint := range missingOutPoints {
		orphans, ok := op.orphansByMissingOutPoint[outPoint]
		if !ok {
			orphans = model.HashToOrphan{}
			op.orphansByMissingOutPoint[outPoint] = orphans
		}
		orphans[*hash] = orphan
	}
	log.Debugf("Added orphan %s waiting for %d cells", hash, len(missingOutPoints))
}

// this function MUST be called with the mempool mutex locked for writes
func (op *orphansPool) removeOrphan(hash *externalapi.DomainHash) {
	orphan, ok := op.allOrphans[*hash]
	if !ok {
		return
	}
	delete(op.allOrphans, *hash)
	delete(op.orphansByShortID, orphan.ShortID())
	for _, outPoint := range orphan.MissingOutPoints() {
		orphans, ok := op.orphansByMissingOutPoint[outPoint]
		if !ok {
			continue
		}
		delete(orphans, *hash)
		if len(orphans) == 0 {
			delete(op.orphansByMissingOutPoint, outPoint)
		}
	}
}

// takeOrphansWaitingFor removes and returns the orphans waiting for any
// output of the given transactions, in a deterministic order.
//
// this function MUST be called with the mempool mutex locked for writes
func (op *orphansPool) takeOrphansWaitingFor(transactions []*externalapi.DomainTransaction,
	hashes []*externalapi.DomainHash) []*model.OrphanTransaction {

	taken := []*model.OrphanTransaction{}
	for i, transaction := range transactions {
		outPoint := externalapi.OutPoint{TxHash: *hashes[i]}
		for index := range transaction.Outputs {
			outPoint.Index = uint32(index)
			orphans, ok := op.orphansByMissingOutPoint[outPoint]
			if !ok {
				continue
			}
			waiting := make([]*model.OrphanTransaction, 0, len(orphans))
			for _, orphan := range orphans {
				waiting = append(waiting, orphan)
			}
			sortOrphansByHash(waiting)
			for _, orphan := range waiting {
				op.removeOrphan(orphan.Hash())
				taken = append(taken, orphan)
			}
		}
	}
	return taken
}

// expireOrphans removes the orphans that waited for more than the expire
// interval.
//
// this function MUST be called with the mempool mutex locked for writes
func (op *orphansPool) expireOrphans(tipNumber uint64) {
	for _, orphan := range op.allOrphans {
		if tipNumber > orphan.AddedAtBlockNumber() &&
			tipNumber-orphan.AddedAtBlockNumber() > op.mempool.config.OrphanExpireIntervalBlocks {
			log.Debugf("Removing orphan %s after waiting since block %d", orphan.Hash(), orphan.AddedAtBlockNumber())
			op.removeOrphan(orphan.Hash())
		}
	}
}

// this function MUST be called with the mempool mutex locked for writes
func (op *orphansPool) clear() {
	op.allOrphans = model.HashToOrphan{}
	op.orphansByShortID = map[externalapi.ProposalShortID]*model.OrphanTransaction{}
	op.orphansByMissingOutPoint = missingOutPointToOrphans{}
}

// this function MUST be called with the mempool mutex locked for reads
func (op *orphansPool) randomOrphan() *model.OrphanTransaction {
	for _, orphan := range op.allOrphans {
		return orphan
	}
	return nil
}

// this function MUST be called with the mempool mutex locked for reads
func (op *orphansPool) containsShortID(shortID externalapi.ProposalShortID) bool {
	_, ok := op.orphansByShortID[shortID]
	return ok
}

func sortOrphansByHash(orphans []*model.OrphanTransaction) {
	sort.Slice(orphans, func(i, j int) bool {
		return orphans[i].Hash().Less(orphans[j].Hash())
	})
}
