package chain

import (
	"testing"
	"time"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/dao"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/pkg/errors"
)

type testChain struct {
	t      *testing.T
	params *chainconfig.Params
	db     *ldb.LevelDB
	chain  *Chain
}

func newTestChain(t *testing.T) *testChain {
	params := &chainconfig.DevnetParams
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %s", err)
	}
	t.Cleanup(func() { db.Close() })
	testClock := clock.NewTestClock(time.UnixMilli(int64(params.GenesisTimestamp) + 1_000_000))
	c, err := New(params, db, testClock)
	if err != nil {
		t.Fatalf("New: %s", err)
	}
	return &testChain{t: t, params: params, db: db, chain: c}
}

func (tc *testChain) tip() *externalapi.DomainBlockHeader {
	current := tc.chain.Snapshot()
	defer current.Release()
	return current.TipHeader()
}

// buildBlock builds a valid child of parent committing txs, with the DAO
// field computed against the current snapshot.
func (tc *testChain) buildBlock(parent *externalapi.DomainBlockHeader, txs ...*externalapi.DomainTransaction) *externalapi.DomainBlock {
	number := parent.Number + 1
	epoch := tc.params.EpochAt(number)
	cellbase := &externalapi.DomainTransaction{
		Inputs: []*externalapi.CellInput{{Since: number, PreviousOutput: externalapi.NullOutPoint()}},
		Outputs: []*externalapi.CellOutput{{
			Capacity: tc.params.PrimaryBlockReward(epoch),
			Lock:     chainconfig.AlwaysSuccessLock(),
		}},
		OutputsData: [][]byte{nil},
		Witnesses:   [][]byte{nil},
	}
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			Version:       tc.params.BlockVersion,
			CompactTarget: parent.CompactTarget,
			Timestamp:     parent.Timestamp + 1000,
			Number:        number,
			Epoch:         epoch,
			ParentHash:    *consensushashing.HeaderHash(parent),
		},
		Transactions: append([]*externalapi.DomainTransaction{cellbase}, txs...),
	}
	block.Header.TransactionsRoot = *consensushashing.TransactionsRoot(block.Transactions)
	block.Header.ProposalsHash = *consensushashing.ProposalsHash(block.Proposals)
	block.Header.ExtraHash = *consensushashing.ExtraHash(block.Uncles, block.Extension)

	current := tc.chain.Snapshot()
	defer current.Release()
	blockProvider, err := cell.NewBlockProvider(block)
	if err != nil {
		tc.t.Fatalf("NewBlockProvider: %s", err)
	}
	provider := cell.NewOverlayProvider(blockProvider, current)
	options := cell.NewResolveOptions(tc.params.HardforkSwitch.FeatureSet(epoch.Number()))
	seenInputs := make(cell.SeenInputs)
	rtxs := make([]*cell.ResolvedTransaction, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		rtx, err := cell.ResolveTransaction(tx, seenInputs, provider, current, options)
		if err != nil {
			// Leave the DAO field empty; the block is expected to fail
			// resolution anyway.
			return block
		}
		rtxs = append(rtxs, rtx)
	}
	block.Header.DAO, err = dao.NewCalculator(tc.params, current).DAOField(rtxs, parent, epoch)
	if err != nil {
		tc.t.Fatalf("DAOField: %s", err)
	}
	return block
}

func (tc *testChain) issuanceOutPoint() externalapi.OutPoint {
	genesisCellbase := tc.chain.Genesis().Cellbase()
	return externalapi.OutPoint{
		TxHash: *consensushashing.TransactionHash(genesisCellbase),
		Index:  uint32(len(systemcells.All())),
	}
}

func (tc *testChain) spend(outPoint externalapi.OutPoint, capacity externalapi.Capacity) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		CellDeps: []*externalapi.CellDep{SystemCellDep(tc.chain.Genesis(), systemcells.ProgramAlwaysSuccess)},
		Inputs:   []*externalapi.CellInput{{PreviousOutput: outPoint}},
		Outputs: []*externalapi.CellOutput{
			{Capacity: capacity, Lock: chainconfig.AlwaysSuccessLock()},
		},
		OutputsData: [][]byte{nil},
		Witnesses:   [][]byte{nil},
	}
}

func (tc *testChain) cellStatus(outPoint externalapi.OutPoint) cell.StatusKind {
	current := tc.chain.Snapshot()
	defer current.Release()
	status, err := current.Cell(&outPoint)
	if err != nil {
		tc.t.Fatalf("Cell: %s", err)
	}
	return status.Kind
}

func TestGenesis(t *testing.T) {
	tc := newTestChain(t)
	genesisHash := consensushashing.BlockHash(tc.chain.Genesis())
	if !consensushashing.HeaderHash(tc.tip()).Equal(genesisHash) {
		t.Fatalf("TestGenesis: the tip of a new chain is not genesis")
	}
	if tc.cellStatus(tc.issuanceOutPoint()) != cell.StatusLive {
		t.Fatalf("TestGenesis: the genesis issuance cell is not live")
	}

	depGroup := Secp256k1DepGroup(tc.chain.Genesis())
	current := tc.chain.Snapshot()
	defer current.Release()
	status, err := current.Cell(&depGroup.OutPoint)
	if err != nil || status.Kind != cell.StatusLive {
		t.Fatalf("TestGenesis: the secp256k1 dep group is not live: %v", err)
	}

	// Reopening keeps the stored chain.
	_, err = New(tc.params, tc.db, clock.NewDefaultClock())
	if err != nil {
		t.Fatalf("TestGenesis: reopening failed: %s", err)
	}
	otherParams := *tc.params
	otherParams.GenesisMessage = []byte("another network")
	_, err = New(&otherParams, tc.db, clock.NewDefaultClock())
	if err == nil {
		t.Fatalf("TestGenesis: opening a database of another network is expected to fail")
	}

	_, err = tc.chain.ProcessBlock(tc.chain.Genesis())
	if err != nil {
		t.Fatalf("TestGenesis: processing the stored genesis is expected to be a no-op, got %s", err)
	}
}

func TestProcessBlock(t *testing.T) {
	tc := newTestChain(t)
	genesis := tc.chain.Genesis().Header

	var attached []*externalapi.DomainHash
	tc.chain.RegisterBlockAttachedHandler(func(block *externalapi.DomainBlock, current *snapshot.Snapshot) {
		if !current.TipHash().Equal(consensushashing.BlockHash(block)) {
			t.Fatalf("TestProcessBlock: handler snapshot is not at the attached block")
		}
		attached = append(attached, consensushashing.BlockHash(block))
	})

	issuance := tc.issuanceOutPoint()
	spend := tc.spend(issuance, tc.params.GenesisIssuance[0].Capacity-1000)
	block := tc.buildBlock(genesis, spend)
	isNew, err := tc.chain.ProcessBlock(block)
	if err != nil {
		t.Fatalf("TestProcessBlock: ProcessBlock: %s", err)
	}
	if !isNew {
		t.Fatalf("TestProcessBlock: a new block is reported as known")
	}
	if len(attached) != 1 {
		t.Fatalf("TestProcessBlock: expected one attached notification, got %d", len(attached))
	}
	if tc.cellStatus(issuance) != cell.StatusDead {
		t.Fatalf("TestProcessBlock: the spent issuance cell is expected to be dead")
	}
	spendOutPoint := externalapi.OutPoint{TxHash: *consensushashing.TransactionHash(spend)}
	if tc.cellStatus(spendOutPoint) != cell.StatusLive {
		t.Fatalf("TestProcessBlock: the created cell is expected to be live")
	}

	isNew, err = tc.chain.ProcessBlock(block)
	if err != nil || isNew {
		t.Fatalf("TestProcessBlock: reprocessing returned %t, %v", isNew, err)
	}

	// A second child of genesis is kept as a side block.
	sideBlock := tc.buildBlock(genesis)
	sideBlock.Header.Timestamp++
	isNew, err = tc.chain.ProcessBlock(sideBlock)
	if err != nil || !isNew {
		t.Fatalf("TestProcessBlock: processing a side block returned %t, %v", isNew, err)
	}
	if !consensushashing.HeaderHash(tc.tip()).Equal(consensushashing.BlockHash(block)) {
		t.Fatalf("TestProcessBlock: a side block changed the tip")
	}
	uncles := tc.chain.UncleCandidates()
	if len(uncles) != 1 || !uncles[0].Hash.Equal(consensushashing.BlockHash(sideBlock)) {
		t.Fatalf("TestProcessBlock: expected the side block as the only uncle candidate, got %d", len(uncles))
	}
}

func TestProcessInvalidBlocks(t *testing.T) {
	tc := newTestChain(t)
	genesis := tc.chain.Genesis().Header
	issuance := tc.issuanceOutPoint()
	capacity := tc.params.GenesisIssuance[0].Capacity

	tests := []struct {
		name          string
		build         func() *externalapi.DomainBlock
		expectedError error
	}{
		{
			name: "wrong DAO field",
			build: func() *externalapi.DomainBlock {
				block := tc.buildBlock(genesis)
				block.Header.DAO[0]++
				return block
			},
			expectedError: ruleerrors.ErrUnexpectedDAOField,
		},
		{
			name: "double spend within the block",
			build: func() *externalapi.DomainBlock {
				return tc.buildBlock(genesis, tc.spend(issuance, capacity-1000), tc.spend(issuance, capacity-2000))
			},
		},
		{
			name: "outputs exceed inputs",
			build: func() *externalapi.DomainBlock {
				return tc.buildBlock(genesis, tc.spend(issuance, capacity+1))
			},
		},
		{
			name: "cellbase overpays",
			build: func() *externalapi.DomainBlock {
				block := tc.buildBlock(genesis)
				block.Transactions[0].Outputs[0].Capacity++
				block.Header.TransactionsRoot = *consensushashing.TransactionsRoot(block.Transactions)
				return block
			},
			expectedError: ruleerrors.ErrBadCellbaseTransaction,
		},
	}

	for _, test := range tests {
		_, err := tc.chain.ProcessBlock(test.build())
		if err == nil {
			t.Fatalf("TestProcessInvalidBlocks: %s: expected an error", test.name)
		}
		var ruleErr ruleerrors.RuleError
		if !errors.As(err, &ruleErr) {
			t.Fatalf("TestProcessInvalidBlocks: %s: expected a rule error, got %s", test.name, err)
		}
		if test.expectedError != nil && !errors.Is(err, test.expectedError) {
			t.Fatalf("TestProcessInvalidBlocks: %s: expected %s, got %s", test.name, test.expectedError, err)
		}
	}

	// Skipping DAO verification accepts the block with a wrong DAO field.
	block := tc.buildBlock(genesis)
	block.Header.DAO[0]++
	isNew, err := tc.chain.InternalProcessBlock(block, model.DisableDAOVerification)
	if err != nil || !isNew {
		t.Fatalf("TestProcessInvalidBlocks: InternalProcessBlock returned %t, %v", isNew, err)
	}
}

func TestTruncate(t *testing.T) {
	tc := newTestChain(t)
	genesis := tc.chain.Genesis().Header
	genesisHash := consensushashing.HeaderHash(genesis)
	issuance := tc.issuanceOutPoint()

	spend := tc.spend(issuance, tc.params.GenesisIssuance[0].Capacity-1000)
	first := tc.buildBlock(genesis, spend)
	_, err := tc.chain.ProcessBlock(first)
	if err != nil {
		t.Fatalf("TestTruncate: ProcessBlock: %s", err)
	}
	spendOutPoint := externalapi.OutPoint{TxHash: *consensushashing.TransactionHash(spend)}
	second := tc.buildBlock(first.Header, tc.spend(spendOutPoint, tc.params.GenesisIssuance[0].Capacity-2000))
	_, err = tc.chain.ProcessBlock(second)
	if err != nil {
		t.Fatalf("TestTruncate: ProcessBlock: %s", err)
	}

	err = tc.chain.Truncate(&externalapi.DomainHash{})
	if err == nil {
		t.Fatalf("TestTruncate: truncating to an unknown block is expected to fail")
	}

	err = tc.chain.Truncate(genesisHash)
	if err != nil {
		t.Fatalf("TestTruncate: Truncate: %s", err)
	}
	if !consensushashing.HeaderHash(tc.tip()).Equal(genesisHash) {
		t.Fatalf("TestTruncate: the tip is not genesis after truncation")
	}
	if tc.cellStatus(issuance) != cell.StatusLive {
		t.Fatalf("TestTruncate: the issuance cell is expected to be live again")
	}
	if tc.cellStatus(spendOutPoint) != cell.StatusUnknown {
		t.Fatalf("TestTruncate: a cell of a truncated block is expected to be unknown")
	}

	// The truncated block is still stored, so processing it again is a
	// no-op and a new block on genesis is needed to move forward.
	isNew, err := tc.chain.ProcessBlock(first)
	if err != nil || isNew {
		t.Fatalf("TestTruncate: reprocessing a truncated block returned %t, %v", isNew, err)
	}
}
