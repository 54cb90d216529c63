// Package chainstore persists the chain: every stored block and header,
// the main chain index, and the live cell set of the main chain tip
// together with what is needed to roll it back.
package chainstore

import (
	"encoding/binary"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/infrastructure/db/database"
	"github.com/lightninglabs/neutrino/cache/lru"
)

var (
	headersBucket      = database.MakeBucket([]byte("block-headers"))
	blocksBucket       = database.MakeBucket([]byte("blocks"))
	medianTimesBucket  = database.MakeBucket([]byte("block-median-times"))
	mainChainBucket    = database.MakeBucket([]byte("main-chain"))
	transactionsBucket = database.MakeBucket([]byte("transactions"))
	cellsBucket        = database.MakeBucket([]byte("live-cells"))
	undoBucket         = database.MakeBucket([]byte("undo"))
	tipKey             = database.MakeBucket().Key([]byte("tip"))
)

// cachedHeader is a header kept in the header cache. Every header counts
// as one entry.
type cachedHeader struct {
	header *externalapi.DomainBlockHeader
}

func (c *cachedHeader) Size() (uint64, error) {
	return 1, nil
}

// ChainStore reads chain data from any database view and stages writes
// into batches. Headers are immutable once stored, so a header cache is
// shared by all views.
type ChainStore struct {
	headerCache *lru.Cache[externalapi.DomainHash, *cachedHeader]
}

// New instantiates a new ChainStore caching up to headerCacheSize headers.
func New(headerCacheSize uint64) *ChainStore {
	return &ChainStore{
		headerCache: lru.NewCache[externalapi.DomainHash, *cachedHeader](headerCacheSize),
	}
}

func hashKey(bucket *database.Bucket, hash *externalapi.DomainHash) *database.Key {
	return bucket.Key(hash.ByteSlice())
}

func numberKey(number uint64) *database.Key {
	var suffix [8]byte
	binary.BigEndian.PutUint64(suffix[:], number)
	return mainChainBucket.Key(suffix[:])
}

func outPointKey(outPoint *externalapi.OutPoint) *database.Key {
	suffix := make([]byte, externalapi.DomainHashSize+4)
	copy(suffix, outPoint.TxHash.ByteSlice())
	binary.LittleEndian.PutUint32(suffix[externalapi.DomainHashSize:], outPoint.Index)
	return cellsBucket.Key(suffix)
}

// get returns the value stored under key, or nil when there is none.
func get(dbContext database.DataAccessor, key *database.Key) ([]byte, error) {
	value, err := dbContext.Get(key)
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}
