package chainstore

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/infrastructure/db/database"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
)

// StageBlock stages a new block with its median time.
func (cs *ChainStore) StageBlock(batch *ldb.Batch, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock, medianTime uint64) {

	batch.Put(hashKey(headersBucket, blockHash), serialization.HeaderToBytes(block.Header))
	batch.Put(hashKey(blocksBucket, blockHash), serialization.BlockToBytes(block))
	batch.Put(hashKey(medianTimesBucket, blockHash), uint64ToBytes(medianTime))
}

// BlockHeader returns the header of a stored block.
func (cs *ChainStore) BlockHeader(dbContext database.DataAccessor,
	blockHash *externalapi.DomainHash) (fn.Option[*externalapi.DomainBlockHeader], error) {

	if cached, err := cs.headerCache.Get(*blockHash); err == nil {
		return fn.Some(cached.header), nil
	}

	headerBytes, err := get(dbContext, hashKey(headersBucket, blockHash))
	if err != nil {
		return fn.None[*externalapi.DomainBlockHeader](), err
	}
	if headerBytes == nil {
		return fn.None[*externalapi.DomainBlockHeader](), nil
	}
	header, err := serialization.HeaderFromBytes(headerBytes)
	if err != nil {
		return fn.None[*externalapi.DomainBlockHeader](), errors.Wrapf(err, "corrupted header %s", blockHash)
	}
	_, err = cs.headerCache.Put(*blockHash, &cachedHeader{header: header})
	if err != nil {
		return fn.None[*externalapi.DomainBlockHeader](), err
	}
	return fn.Some(header), nil
}

// HasBlock returns whether a block with the given hash is stored.
func (cs *ChainStore) HasBlock(dbContext database.DataAccessor, blockHash *externalapi.DomainHash) (bool, error) {
	return dbContext.Has(hashKey(blocksBucket, blockHash))
}

// Block returns a stored block.
func (cs *ChainStore) Block(dbContext database.DataAccessor,
	blockHash *externalapi.DomainHash) (fn.Option[*externalapi.DomainBlock], error) {

	blockBytes, err := get(dbContext, hashKey(blocksBucket, blockHash))
	if err != nil || blockBytes == nil {
		return fn.None[*externalapi.DomainBlock](), err
	}
	block, err := serialization.BlockFromBytes(blockBytes)
	if err != nil {
		return fn.None[*externalapi.DomainBlock](), errors.Wrapf(err, "corrupted block %s", blockHash)
	}
	return fn.Some(block), nil
}

// BlockMedianTime returns the median time recorded for a stored block.
func (cs *ChainStore) BlockMedianTime(dbContext database.DataAccessor, blockHash *externalapi.DomainHash) (uint64, error) {
	medianTimeBytes, err := dbContext.Get(hashKey(medianTimesBucket, blockHash))
	if err != nil {
		return 0, errors.Wrapf(err, "median time of %s", blockHash)
	}
	return uint64FromBytes(medianTimeBytes)
}
