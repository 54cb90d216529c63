// Package testutils builds devnet chains for tests of the packages that
// sit on top of the chain controller.
package testutils

import (
	"testing"
	"time"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/chain"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/dao"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/lightningnetwork/lnd/clock"
)

// TestChain is a devnet chain on an in-memory database.
type TestChain struct {
	T      *testing.T
	Params *chainconfig.Params
	DB     *ldb.LevelDB
	Chain  *chain.Chain
	Clock  *clock.TestClock
}

// NewTestChain returns a TestChain holding only the genesis block. Its
// clock is set well past genesis so blocks built by BuildBlock aren't in
// the future.
func NewTestChain(t *testing.T) *TestChain {
	return NewTestChainWithParams(t, &chainconfig.DevnetParams)
}

// NewTestChainWithParams is NewTestChain on top of the given params.
func NewTestChainWithParams(t *testing.T, params *chainconfig.Params) *TestChain {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %s", err)
	}
	t.Cleanup(func() { db.Close() })

	testClock := clock.NewTestClock(time.UnixMilli(int64(params.GenesisTimestamp) + 1_000_000))
	c, err := chain.New(params, db, testClock)
	if err != nil {
		t.Fatalf("chain.New: %s", err)
	}
	return &TestChain{T: t, Params: params, DB: db, Chain: c, Clock: testClock}
}

// Tip returns the header of the current tip.
func (tc *TestChain) Tip() *externalapi.DomainBlockHeader {
	current := tc.Chain.Snapshot()
	defer current.Release()
	return current.TipHeader()
}

// BuildBlock builds a valid child of parent committing transactions. If
// the transactions don't resolve the DAO field is left empty.
func (tc *TestChain) BuildBlock(parent *externalapi.DomainBlockHeader,
	transactions ...*externalapi.DomainTransaction) *externalapi.DomainBlock {

	number := parent.Number + 1
	epoch := tc.Params.EpochAt(number)
	cellbase := &externalapi.DomainTransaction{
		Inputs: []*externalapi.CellInput{{Since: number, PreviousOutput: externalapi.NullOutPoint()}},
		Outputs: []*externalapi.CellOutput{{
			Capacity: tc.Params.PrimaryBlockReward(epoch),
			Lock:     chainconfig.AlwaysSuccessLock(),
		}},
		OutputsData: [][]byte{nil},
		Witnesses:   [][]byte{nil},
	}
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Version:       tc.Params.BlockVersion,
			CompactTarget: parent.CompactTarget,
			Timestamp:     parent.Timestamp + 1000,
			Number:        number,
			Epoch:         epoch,
			ParentHash:    *consensushashing.HeaderHash(parent),
		},
		Transactions: append([]*externalapi.DomainTransaction{cellbase}, transactions...),
	}
	block.Header.TransactionsRoot = *consensushashing.TransactionsRoot(block.Transactions)
	block.Header.ProposalsHash = *consensushashing.ProposalsHash(block.Proposals)
	block.Header.ExtraHash = *consensushashing.ExtraHash(block.Uncles, block.Extension)

	current := tc.Chain.Snapshot()
	defer current.Release()
	blockProvider, err := cell.NewBlockProvider(block)
	if err != nil {
		tc.T.Fatalf("NewBlockProvider: %s", err)
	}
	provider := cell.NewOverlayProvider(blockProvider, current)
	options := cell.NewResolveOptions(tc.Params.HardforkSwitch.FeatureSet(epoch.Number()))
	seenInputs := make(cell.SeenInputs)
	resolved := make([]*cell.ResolvedTransaction, 0, len(block.Transactions))
	for _, transaction := range block.Transactions {
		rtx, err := cell.ResolveTransaction(transaction, seenInputs, provider, current, options)
		if err != nil {
			return block
		}
		resolved = append(resolved, rtx)
	}
	block.Header.DAO, err = dao.NewCalculator(tc.Params, current).DAOField(resolved, parent, epoch)
	if err != nil {
		tc.T.Fatalf("DAOField: %s", err)
	}
	return block
}

// AddBlock builds a block on top of the tip committing transactions and
// processes it.
func (tc *TestChain) AddBlock(transactions ...*externalapi.DomainTransaction) *externalapi.DomainBlock {
	block := tc.BuildBlock(tc.Tip(), transactions...)
	_, err := tc.Chain.ProcessBlock(block)
	if err != nil {
		tc.T.Fatalf("ProcessBlock: %+v", err)
	}
	return block
}

// IssuanceOutPoint returns the genesis cell issued to the always success
// lock.
func (tc *TestChain) IssuanceOutPoint() externalapi.OutPoint {
	genesisCellbase := tc.Chain.Genesis().Cellbase()
	return externalapi.OutPoint{
		TxHash: *consensushashing.TransactionHash(genesisCellbase),
		Index:  uint32(len(systemcells.All())),
	}
}

// IssuanceCapacity returns the capacity of the cell at IssuanceOutPoint.
func (tc *TestChain) IssuanceCapacity() externalapi.Capacity {
	return tc.Params.GenesisIssuance[0].Capacity
}
