package chainstore

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/infrastructure/db/database"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
)

// Tip returns the hash of the main chain tip. It returns None for an
// uninitialized store.
func (cs *ChainStore) Tip(dbContext database.DataAccessor) (fn.Option[*externalapi.DomainHash], error) {
	tipBytes, err := get(dbContext, tipKey)
	if err != nil || tipBytes == nil {
		return fn.None[*externalapi.DomainHash](), err
	}
	tip, err := externalapi.NewDomainHashFromByteSlice(tipBytes)
	if err != nil {
		return fn.None[*externalapi.DomainHash](), errors.Wrap(err, "corrupted tip")
	}
	return fn.Some(tip), nil
}

// MainChainHash returns the hash of the main chain block at number.
func (cs *ChainStore) MainChainHash(dbContext database.DataAccessor, number uint64) (fn.Option[*externalapi.DomainHash], error) {
	hashBytes, err := get(dbContext, numberKey(number))
	if err != nil || hashBytes == nil {
		return fn.None[*externalapi.DomainHash](), err
	}
	hash, err := externalapi.NewDomainHashFromByteSlice(hashBytes)
	if err != nil {
		return fn.None[*externalapi.DomainHash](), errors.Wrapf(err, "corrupted main chain entry %d", number)
	}
	return fn.Some(hash), nil
}

// IsMainChain returns whether a stored block is on the main chain.
func (cs *ChainStore) IsMainChain(dbContext database.DataAccessor, blockHash *externalapi.DomainHash) (bool, error) {
	header, err := cs.BlockHeader(dbContext, blockHash)
	if err != nil || header.IsNone() {
		return false, err
	}
	mainChainHash, err := cs.MainChainHash(dbContext, header.UnsafeFromSome().Number)
	if err != nil {
		return false, err
	}
	return fn.MapOptionZ(mainChainHash, func(hash *externalapi.DomainHash) bool {
		return hash.Equal(blockHash)
	}), nil
}
