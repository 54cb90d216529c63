package chainstore

import (
	"testing"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
)

func testBlock(number uint64, parent *externalapi.DomainHash, txs ...*externalapi.DomainTransaction) *externalapi.DomainBlock {
	header := &externalapi.DomainBlockHeader{Number: number, Timestamp: 1000 + number}
	if parent != nil {
		header.ParentHash = *parent
	}
	cellbase := &externalapi.DomainTransaction{
		Inputs:      []*externalapi.CellInput{{Since: number, PreviousOutput: externalapi.NullOutPoint()}},
		Outputs:     []*externalapi.CellOutput{{Capacity: 1000, Lock: &externalapi.Script{}}},
		OutputsData: [][]byte{nil},
	}
	return &externalapi.DomainBlock{Header: header, Transactions: append([]*externalapi.DomainTransaction{cellbase}, txs...)}
}

func spend(outPoint externalapi.OutPoint, outputs int) *externalapi.DomainTransaction {
	tx := &externalapi.DomainTransaction{Inputs: []*externalapi.CellInput{{PreviousOutput: outPoint}}}
	for i := 0; i < outputs; i++ {
		tx.Outputs = append(tx.Outputs, &externalapi.CellOutput{Capacity: 10, Lock: &externalapi.Script{}})
		tx.OutputsData = append(tx.OutputsData, []byte{byte(i)})
	}
	return tx
}

func TestAttachDetach(t *testing.T) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("TestAttachDetach: %s", err)
	}
	defer db.Close()
	store := New(100)

	apply := func(block *externalapi.DomainBlock) *externalapi.DomainHash {
		hash := consensushashing.BlockHash(block)
		batch := ldb.NewBatch()
		store.StageBlock(batch, hash, block, block.Header.Timestamp)
		err := store.StageAttach(batch, db, hash, block)
		if err != nil {
			t.Fatalf("TestAttachDetach: StageAttach: %s", err)
		}
		err = db.Write(batch)
		if err != nil {
			t.Fatalf("TestAttachDetach: Write: %s", err)
		}
		return hash
	}

	genesis := testBlock(0, nil)
	genesisHash := apply(genesis)
	genesisCellbase := externalapi.OutPoint{TxHash: *consensushashing.TransactionHash(genesis.Transactions[0])}

	// The first transaction spends the genesis cellbase output and the
	// second spends an output of the first one within the same block.
	first := spend(genesisCellbase, 2)
	firstHash := consensushashing.TransactionHash(first)
	second := spend(externalapi.OutPoint{TxHash: *firstHash, Index: 0}, 1)
	block := testBlock(1, genesisHash, first, second)
	blockHash := apply(block)

	tip, err := store.Tip(db)
	if err != nil || !tip.UnsafeFromSome().Equal(blockHash) {
		t.Fatalf("TestAttachDetach: unexpected tip %v, %v", tip, err)
	}
	isMainChain, err := store.IsMainChain(db, genesisHash)
	if err != nil || !isMainChain {
		t.Fatalf("TestAttachDetach: genesis is expected to be on the main chain")
	}

	expectLive := func(outPoint externalapi.OutPoint, expected bool) {
		meta, err := store.LiveCell(db, &outPoint)
		if err != nil {
			t.Fatalf("TestAttachDetach: LiveCell: %s", err)
		}
		if meta.IsSome() != expected {
			t.Fatalf("TestAttachDetach: cell %s liveness is %t, expected %t", outPoint, meta.IsSome(), expected)
		}
	}
	expectLive(genesisCellbase, false)
	expectLive(externalapi.OutPoint{TxHash: *firstHash, Index: 0}, false)
	expectLive(externalapi.OutPoint{TxHash: *firstHash, Index: 1}, true)
	expectLive(externalapi.OutPoint{TxHash: *consensushashing.TransactionHash(second), Index: 0}, true)

	meta, err := store.LiveCell(db, &externalapi.OutPoint{TxHash: *firstHash, Index: 1})
	if err != nil {
		t.Fatalf("TestAttachDetach: LiveCell: %s", err)
	}
	info := meta.UnsafeFromSome().TransactionInfo
	if info.BlockNumber != 1 || info.Index != 1 || !info.BlockHash.Equal(blockHash) {
		t.Fatalf("TestAttachDetach: unexpected transaction info %+v", info)
	}

	batch := ldb.NewBatch()
	err = store.StageDetach(batch, db, blockHash, block)
	if err != nil {
		t.Fatalf("TestAttachDetach: StageDetach: %s", err)
	}
	err = db.Write(batch)
	if err != nil {
		t.Fatalf("TestAttachDetach: Write: %s", err)
	}

	expectLive(genesisCellbase, true)
	expectLive(externalapi.OutPoint{TxHash: *firstHash, Index: 1}, false)
	record, err := store.TransactionRecord(db, firstHash)
	if err != nil || record.IsSome() {
		t.Fatalf("TestAttachDetach: detached transaction is expected to be unindexed")
	}
	isMainChain, err = store.IsMainChain(db, blockHash)
	if err != nil || isMainChain {
		t.Fatalf("TestAttachDetach: detached block is expected to leave the main chain")
	}
	header, err := store.BlockHeader(db, blockHash)
	if err != nil || header.IsNone() {
		t.Fatalf("TestAttachDetach: detached block header is expected to stay stored")
	}
}
