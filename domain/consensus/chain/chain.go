// Package chain inserts blocks into the main chain and publishes a new
// snapshot after every change.
package chain

import (
	"sync"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/datastructures/chainstore"
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/blockvalidator"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/pkg/errors"
)

const headerCacheSize = 10_000

// BlockAttachedHandler is notified after a block became the tip, with the
// snapshot taken right after it. The snapshot is only valid during the call.
type BlockAttachedHandler func(block *externalapi.DomainBlock, snapshot *snapshot.Snapshot)

// Chain is the reference model.ChainController. Blocks on top of the tip
// are verified and attached; valid blocks on other parents are kept as
// side blocks, which are offered as uncles. Fork choice is out of its
// scope: a side chain never replaces the main chain.
type Chain struct {
	params    *chainconfig.Params
	db        *ldb.LevelDB
	store     *chainstore.ChainStore
	validator *blockvalidator.BlockValidator
	snapshots *snapshot.Manager
	genesis   *externalapi.DomainBlock

	lock                  sync.Mutex
	sideBlocks            map[externalapi.DomainHash]*externalapi.UncleBlock
	blockAttachedHandlers []BlockAttachedHandler
}

// New returns a Chain on top of db, storing the genesis block of params
// if db is empty.
func New(params *chainconfig.Params, db *ldb.LevelDB, clock clock.Clock) (*Chain, error) {
	genesis, err := GenesisBlock(params)
	if err != nil {
		return nil, err
	}
	c := &Chain{
		params:     params,
		db:         db,
		store:      chainstore.New(headerCacheSize),
		validator:  blockvalidator.New(params, clock),
		genesis:    genesis,
		sideBlocks: make(map[externalapi.DomainHash]*externalapi.UncleBlock),
	}

	err = c.initGenesis()
	if err != nil {
		return nil, err
	}
	initial, err := snapshot.New(params, c.store, db)
	if err != nil {
		return nil, err
	}
	c.snapshots = snapshot.NewManager(initial)
	log.Infof("Chain tip is %s at number %d", initial.TipHash(), initial.TipHeader().Number)
	return c, nil
}

func (c *Chain) initGenesis() error {
	genesisHash := consensushashing.BlockHash(c.genesis)
	storedGenesisHash, err := c.store.MainChainHash(c.db, 0)
	if err != nil {
		return err
	}
	if storedGenesisHash.IsSome() {
		if !storedGenesisHash.UnsafeFromSome().Equal(genesisHash) {
			return errors.Errorf("the database holds genesis %s, but %s expects genesis %s",
				storedGenesisHash.UnsafeFromSome(), c.params.Name, genesisHash)
		}
		return nil
	}

	log.Infof("Initializing the chain with genesis %s", genesisHash)
	batch := ldb.NewBatch()
	c.store.StageBlock(batch, genesisHash, c.genesis, c.genesis.Header.Timestamp)
	err = c.store.StageAttach(batch, c.db, genesisHash, c.genesis)
	if err != nil {
		return err
	}
	return c.db.Write(batch)
}

// Genesis returns the genesis block.
func (c *Chain) Genesis() *externalapi.DomainBlock {
	return c.genesis
}

// Params returns the consensus parameters of the chain.
func (c *Chain) Params() *chainconfig.Params {
	return c.params
}

// Snapshot returns the current snapshot. The caller must Release it.
func (c *Chain) Snapshot() *snapshot.Snapshot {
	return c.snapshots.Load()
}

// HeaderVerifier returns the verifier blocks on top of the current tip
// are checked with.
func (c *Chain) HeaderVerifier(snapshot *snapshot.Snapshot) model.HeaderVerifier {
	return c.validator.HeaderVerifier(snapshot)
}

// PastMedianTime returns the median time of header, whose ancestors must
// be stored.
func (c *Chain) PastMedianTime(snapshot *snapshot.Snapshot, header *externalapi.DomainBlockHeader) (uint64, error) {
	return c.validator.PastMedianTime(snapshot, header)
}

// RegisterBlockAttachedHandler adds a handler run after every attached
// block. Handlers run synchronously with block processing.
func (c *Chain) RegisterBlockAttachedHandler(handler BlockAttachedHandler) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.blockAttachedHandlers = append(c.blockAttachedHandlers, handler)
}

// UncleCandidates returns the side blocks that may be included as uncles
// by a child of the current tip, oldest first.
func (c *Chain) UncleCandidates() []*externalapi.UncleTemplate {
	c.lock.Lock()
	defer c.lock.Unlock()

	current := c.snapshots.Load()
	defer current.Release()
	nextNumber := current.TipHeader().Number + 1
	nextEpoch := c.params.EpochAt(nextNumber).Number()

	candidates := make([]*externalapi.UncleTemplate, 0, len(c.sideBlocks))
	for hash, uncle := range c.sideBlocks {
		if uncle.Header.Number >= nextNumber || nextNumber-uncle.Header.Number > c.params.MaxUncleAge ||
			uncle.Header.Epoch.Number() != nextEpoch {

			continue
		}
		candidates = append(candidates, &externalapi.UncleTemplate{
			Hash:      hash,
			Proposals: uncle.Proposals,
			Header:    uncle.Header,
		})
	}
	sortUncleTemplates(candidates)
	return candidates
}

func (c *Chain) publishSnapshot() (*snapshot.Snapshot, error) {
	next, err := snapshot.New(c.params, c.store, c.db)
	if err != nil {
		return nil, err
	}
	c.snapshots.Store(next)
	return next, nil
}

func (c *Chain) pruneSideBlocks(tipNumber uint64) {
	for hash, uncle := range c.sideBlocks {
		if uncle.Header.Number+c.params.MaxUncleAge < tipNumber {
			delete(c.sideBlocks, hash)
		}
	}
}

var _ model.ChainController = (*Chain)(nil)
