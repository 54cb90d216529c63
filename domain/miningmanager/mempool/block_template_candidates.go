package mempool

import (
	"sort"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool/model"
)

// BlockTemplateCandidates selects pool transactions for a block, highest
// fee rate first, within maxBytes serialized bytes and maxCycles script
// cycles. A transaction is only selected together with its in-pool
// ancestors, and the result lists every parent before its children.
func (mp *mempool) BlockTemplateCandidates(maxBytes, maxCycles uint64) []*model.MempoolTransaction {
	mp.mtx.HighPriorityReadLock()
	defer mp.mtx.HighPriorityReadUnlock()

	selected := make(map[externalapi.DomainHash]struct{})
	candidates := []*model.MempoolTransaction{}
	var totalBytes, totalCycles uint64
	for _, transaction := range mp.transactionsPool.transactionsOrderedByFeeRate.Descending() {
		if _, ok := selected[*transaction.Hash()]; ok {
			continue
		}
		bundle := unselectedAncestry(transaction, selected)
		var bundleBytes, bundleCycles uint64
		for _, member := range bundle {
			bundleBytes += member.Size()
			bundleCycles += member.Cycles()
		}
		if totalBytes+bundleBytes > maxBytes || totalCycles+bundleCycles > maxCycles {
			continue
		}
		totalBytes += bundleBytes
		totalCycles += bundleCycles
		for _, member := range bundle {
			selected[*member.Hash()] = struct{}{}
			candidates = append(candidates, member)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Sequence() < candidates[j].Sequence()
	})
	log.Debugf("Selected %d of %d pool transactions for a block template (%d bytes, %d cycles)",
		len(candidates), mp.transactionsPool.transactionCount(), totalBytes, totalCycles)
	return candidates
}

// unselectedAncestry returns transaction and its in-pool ancestors that
// aren't in selected yet.
func unselectedAncestry(transaction *model.MempoolTransaction,
	selected map[externalapi.DomainHash]struct{}) []*model.MempoolTransaction {

	visited := map[externalapi.DomainHash]struct{}{*transaction.Hash(): {}}
	ancestry := []*model.MempoolTransaction{transaction}
	for i := 0; i < len(ancestry); i++ {
		for _, parent := range ancestry[i].ParentTransactionsInPool() {
			hash := *parent.Hash()
			if _, ok := selected[hash]; ok {
				continue
			}
			if _, ok := visited[hash]; ok {
				continue
			}
			visited[hash] = struct{}{}
			ancestry = append(ancestry, parent)
		}
	}
	return ancestry
}

// ProposalCandidates returns up to limit short ids of pool transactions,
// highest fee rate first, skipping the ones in exclude.
func (mp *mempool) ProposalCandidates(limit uint64,
	exclude map[externalapi.ProposalShortID]struct{}) []externalapi.ProposalShortID {

	mp.mtx.HighPriorityReadLock()
	defer mp.mtx.HighPriorityReadUnlock()

	proposals := []externalapi.ProposalShortID{}
	for _, transaction := range mp.transactionsPool.transactionsOrderedByFeeRate.Descending() {
		if uint64(len(proposals)) >= limit {
			break
		}
		shortID := transaction.ShortID()
		if _, ok := exclude[shortID]; ok {
			continue
		}
		proposals = append(proposals, shortID)
	}
	return proposals
}
