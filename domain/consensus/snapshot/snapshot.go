// Package snapshot provides immutable point-in-time views of chain state.
// Readers hold a reference for the duration of an operation; the chain
// publishes a new view after every change and never mutates an old one.
package snapshot

import (
	"sync/atomic"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/datastructures/chainstore"
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
)

// Snapshot is chain state as of one tip.
type Snapshot struct {
	params     *chainconfig.Params
	chainStore *chainstore.ChainStore
	dbSnapshot *ldb.Snapshot
	tipHash    externalapi.DomainHash
	tipHeader  *externalapi.DomainBlockHeader
	references atomic.Int32
}

// New takes a snapshot of db. The returned snapshot holds one reference.
func New(params *chainconfig.Params, chainStore *chainstore.ChainStore, db *ldb.LevelDB) (*Snapshot, error) {
	dbSnapshot, err := db.Snapshot()
	if err != nil {
		return nil, err
	}
	snapshot := &Snapshot{params: params, chainStore: chainStore, dbSnapshot: dbSnapshot}

	tip, err := chainStore.Tip(dbSnapshot)
	if err == nil && tip.IsNone() {
		err = errors.New("the chain store has no tip")
	}
	if err != nil {
		dbSnapshot.Release()
		return nil, err
	}
	snapshot.tipHash = *tip.UnsafeFromSome()

	header, err := chainStore.BlockHeader(dbSnapshot, &snapshot.tipHash)
	if err == nil && header.IsNone() {
		err = errors.Errorf("the tip header %s is missing", snapshot.tipHash)
	}
	if err != nil {
		dbSnapshot.Release()
		return nil, err
	}
	snapshot.tipHeader = header.UnsafeFromSome()
	snapshot.references.Store(1)
	return snapshot, nil
}

// Acquire adds a reference that the caller must Release.
func (s *Snapshot) Acquire() *Snapshot {
	if !s.tryAcquire() {
		panic(errors.New("acquired a released snapshot"))
	}
	return s
}

func (s *Snapshot) tryAcquire() bool {
	for {
		references := s.references.Load()
		if references <= 0 {
			return false
		}
		if s.references.CompareAndSwap(references, references+1) {
			return true
		}
	}
}

// Release drops a reference. The underlying database view is released
// with the last one.
func (s *Snapshot) Release() {
	references := s.references.Add(-1)
	if references == 0 {
		s.dbSnapshot.Release()
	}
	if references < 0 {
		panic(errors.New("released a snapshot more times than it was acquired"))
	}
}

// TipHash returns the hash of the tip the snapshot was taken at.
func (s *Snapshot) TipHash() *externalapi.DomainHash {
	return &s.tipHash
}

// TipHeader returns the tip header.
func (s *Snapshot) TipHeader() *externalapi.DomainBlockHeader {
	return s.tipHeader
}

// Params returns the consensus parameters.
func (s *Snapshot) Params() *chainconfig.Params {
	return s.params
}

// FeatureSet returns the consensus features of the block after the tip.
func (s *Snapshot) FeatureSet() chainconfig.FeatureSet {
	return s.params.HardforkSwitch.FeatureSet(s.params.EpochAt(s.tipHeader.Number + 1).Number())
}

// GetBlockHeader returns a stored header, on or off the main chain.
func (s *Snapshot) GetBlockHeader(blockHash *externalapi.DomainHash) (fn.Option[*externalapi.DomainBlockHeader], error) {
	return s.chainStore.BlockHeader(s.dbSnapshot, blockHash)
}

// GetBlock returns a stored block.
func (s *Snapshot) GetBlock(blockHash *externalapi.DomainHash) (fn.Option[*externalapi.DomainBlock], error) {
	return s.chainStore.Block(s.dbSnapshot, blockHash)
}

// HasBlock returns whether the block is stored.
func (s *Snapshot) HasBlock(blockHash *externalapi.DomainHash) (bool, error) {
	return s.chainStore.HasBlock(s.dbSnapshot, blockHash)
}

// IsMainChain returns whether the block is on the main chain.
func (s *Snapshot) IsMainChain(blockHash *externalapi.DomainHash) (bool, error) {
	return s.chainStore.IsMainChain(s.dbSnapshot, blockHash)
}

// MainChainHash returns the hash of the main chain block at number.
func (s *Snapshot) MainChainHash(number uint64) (fn.Option[*externalapi.DomainHash], error) {
	return s.chainStore.MainChainHash(s.dbSnapshot, number)
}

// BlockMedianTime returns the median time of a stored block.
func (s *Snapshot) BlockMedianTime(blockHash *externalapi.DomainHash) (uint64, error) {
	return s.chainStore.BlockMedianTime(s.dbSnapshot, blockHash)
}

// Cell returns the status of a cell at the tip. A cell created by a main
// chain transaction that is no longer live is dead.
func (s *Snapshot) Cell(outPoint *externalapi.OutPoint) (cell.Status, error) {
	meta, err := s.chainStore.LiveCell(s.dbSnapshot, outPoint)
	if err != nil {
		return cell.Status{}, err
	}
	if meta.IsSome() {
		return cell.Live(meta.UnsafeFromSome()), nil
	}

	record, err := s.chainStore.TransactionRecord(s.dbSnapshot, &outPoint.TxHash)
	if err != nil {
		return cell.Status{}, err
	}
	isDead := fn.MapOptionZ(record, func(record *chainstore.TransactionRecord) bool {
		return outPoint.Index < record.OutputsCount
	})
	if isDead {
		return cell.Dead(), nil
	}
	return cell.Unknown(), nil
}

// CheckValid accepts header deps on the main chain.
func (s *Snapshot) CheckValid(blockHash *externalapi.DomainHash) error {
	isMainChain, err := s.IsMainChain(blockHash)
	if err != nil {
		return err
	}
	if !isMainChain {
		return cell.NewInvalidHeaderError(blockHash)
	}
	return nil
}

var _ model.ChainStore = (*Snapshot)(nil)
var _ cell.Provider = (*Snapshot)(nil)
var _ cell.HeaderChecker = (*Snapshot)(nil)
