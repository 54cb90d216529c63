package chain

import (
	"sort"

	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/cellnetwork/celld/infrastructure/logger"
)

// ProcessBlock verifies block and inserts it. isNew is false when the
// block was already stored.
func (c *Chain) ProcessBlock(block *externalapi.DomainBlock) (isNew bool, err error) {
	return c.InternalProcessBlock(block, 0)
}

// InternalProcessBlock inserts block skipping the verification steps set
// in verificationSwitch.
func (c *Chain) InternalProcessBlock(block *externalapi.DomainBlock,
	verificationSwitch model.VerificationSwitch) (isNew bool, err error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "InternalProcessBlock")
	defer onEnd()

	c.lock.Lock()
	defer c.lock.Unlock()

	blockHash := consensushashing.BlockHash(block)
	current := c.snapshots.Load()
	defer current.Release()

	hasBlock, err := current.HasBlock(blockHash)
	if err != nil {
		return false, err
	}
	if hasBlock {
		log.Debugf("Block %s is already known", blockHash)
		return false, nil
	}
	log.Tracef("Processing block %s: %s", blockHash, logger.Dump(block))

	if block.Header.Number == 0 {
		return false, ruleerrors.ErrGenesisOnInitializedChain
	}

	if verificationSwitch&model.DisableHeaderVerification == 0 {
		err = c.validator.ValidateHeaderInContext(current, block.Header)
	} else {
		err = checkParentKnown(current, block.Header)
	}
	if err != nil {
		return false, err
	}

	if verificationSwitch&model.DisableTransactionVerification == 0 {
		err = c.validator.ValidateBodyInIsolation(block)
		if err != nil {
			return false, err
		}
	}

	medianTime, err := c.validator.PastMedianTime(current, block.Header)
	if err != nil {
		return false, err
	}

	if !block.Header.ParentHash.Equal(current.TipHash()) {
		return true, c.storeSideBlock(blockHash, block, medianTime)
	}

	err = c.validator.ValidateBodyInContext(current, blockHash, block, verificationSwitch)
	if err != nil {
		return false, err
	}
	err = c.attach(current, blockHash, block, medianTime)
	if err != nil {
		return false, err
	}
	return true, nil
}

func checkParentKnown(current *snapshot.Snapshot, header *externalapi.DomainBlockHeader) error {
	parent, err := current.GetBlockHeader(&header.ParentHash)
	if err != nil {
		return err
	}
	if parent.IsNone() {
		parentHash := header.ParentHash
		return ruleerrors.NewErrMissingParents([]*externalapi.DomainHash{&parentHash})
	}
	return nil
}

func (c *Chain) storeSideBlock(blockHash *externalapi.DomainHash, block *externalapi.DomainBlock,
	medianTime uint64) error {

	batch := ldb.NewBatch()
	c.store.StageBlock(batch, blockHash, block, medianTime)
	err := c.db.Write(batch)
	if err != nil {
		return err
	}
	c.sideBlocks[*blockHash] = &externalapi.UncleBlock{Header: block.Header, Proposals: block.Proposals}
	log.Infof("Stored side block %s at number %d", blockHash, block.Header.Number)
	return nil
}

func (c *Chain) attach(current *snapshot.Snapshot, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock, medianTime uint64) error {

	batch := ldb.NewBatch()
	c.store.StageBlock(batch, blockHash, block, medianTime)
	err := c.store.StageAttach(batch, c.db, blockHash, block)
	if err != nil {
		return err
	}
	err = c.db.Write(batch)
	if err != nil {
		return err
	}

	next, err := c.publishSnapshot()
	if err != nil {
		return err
	}
	for _, uncle := range block.Uncles {
		delete(c.sideBlocks, *consensushashing.HeaderHash(uncle.Header))
	}
	c.pruneSideBlocks(block.Header.Number)
	log.Infof("Attached block %s at number %d with %d transactions", blockHash, block.Header.Number,
		len(block.Transactions))

	held := next.Acquire()
	defer held.Release()
	for _, handler := range c.blockAttachedHandlers {
		handler(block, held)
	}
	return nil
}

func sortUncleTemplates(uncles []*externalapi.UncleTemplate) {
	sort.Slice(uncles, func(i, j int) bool {
		if uncles[i].Header.Number != uncles[j].Header.Number {
			return uncles[i].Header.Number < uncles[j].Header.Number
		}
		return uncles[i].Hash.Less(&uncles[j].Hash)
	})
}
