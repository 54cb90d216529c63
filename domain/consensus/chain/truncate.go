package chain

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

// Truncate rolls the main chain back until targetHash is the tip. The
// reverted blocks stay stored.
func (c *Chain) Truncate(targetHash *externalapi.DomainHash) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	current := c.snapshots.Load()
	defer current.Release()

	isMainChain, err := current.IsMainChain(targetHash)
	if err != nil {
		return err
	}
	if !isMainChain {
		return errors.Errorf("block %s is not on the main chain", targetHash)
	}

	batch := ldb.NewBatch()
	var detached []*externalapi.DomainBlock
	for hash := current.TipHash(); !hash.Equal(targetHash); {
		blockOption, err := current.GetBlock(hash)
		if err != nil {
			return err
		}
		if blockOption.IsNone() {
			return errors.Errorf("main chain block %s is missing", hash)
		}
		block := blockOption.UnsafeFromSome()
		err = c.store.StageDetach(batch, c.db, hash, block)
		if err != nil {
			return err
		}
		detached = append(detached, block)
		parentHash := block.Header.ParentHash
		hash = &parentHash
	}
	if len(detached) == 0 {
		return nil
	}

	err = c.db.Write(batch)
	if err != nil {
		return err
	}
	next, err := c.publishSnapshot()
	if err != nil {
		return err
	}
	log.Infof("Truncated %d blocks, the tip is now %s at number %d", len(detached), next.TipHash(),
		next.TipHeader().Number)
	return nil
}
