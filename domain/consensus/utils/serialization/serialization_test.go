package serialization

import (
	"bytes"
	"testing"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

func testTransaction() *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		Version:    0,
		CellDeps:   []*externalapi.CellDep{{OutPoint: externalapi.OutPoint{Index: 3}, DepType: externalapi.DepTypeDepGroup}},
		HeaderDeps: []externalapi.DomainHash{{}},
		Inputs: []*externalapi.CellInput{
			{Since: 0x2000000000000010, PreviousOutput: externalapi.OutPoint{Index: 1}},
		},
		Outputs: []*externalapi.CellOutput{
			{Capacity: 500, Lock: &externalapi.Script{Args: []byte{1, 2, 3}}},
			{Capacity: 700, Lock: &externalapi.Script{}, Type: &externalapi.Script{HashType: externalapi.ScriptHashTypeType}},
		},
		OutputsData: [][]byte{{}, {9, 9}},
		Witnesses:   [][]byte{{4, 5}},
	}
}

func TestTransactionRoundTripKeepsWitnesses(t *testing.T) {
	tx := testTransaction()
	decoded, err := TransactionFromBytes(TransactionToBytes(tx))
	if err != nil {
		t.Fatalf("TransactionFromBytes: %+v", err)
	}
	if !decoded.Equal(tx) {
		t.Fatalf("TestTransactionRoundTripKeepsWitnesses: decoded transaction differs from the original")
	}
}

func TestWitnessesAreLeftOutOfTheHashedEncoding(t *testing.T) {
	tx := testTransaction()
	var withoutWitnesses bytes.Buffer
	if err := SerializeTransaction(&withoutWitnesses, tx, false); err != nil {
		t.Fatalf("SerializeTransaction: %+v", err)
	}
	changed := tx.Clone()
	changed.Witnesses[0][0] = 0xff
	var changedWithoutWitnesses bytes.Buffer
	if err := SerializeTransaction(&changedWithoutWitnesses, changed, false); err != nil {
		t.Fatalf("SerializeTransaction: %+v", err)
	}
	if !bytes.Equal(withoutWitnesses.Bytes(), changedWithoutWitnesses.Bytes()) {
		t.Fatalf("TestWitnessesAreLeftOutOfTheHashedEncoding: witness change altered the encoding")
	}
	if uint64(withoutWitnesses.Len()) >= TransactionSize(tx) {
		t.Fatalf("TestWitnessesAreLeftOutOfTheHashedEncoding: full size must include witnesses")
	}
}

func TestMalformedInput(t *testing.T) {
	serialized := TransactionToBytes(testTransaction())
	tests := []struct {
		name  string
		input []byte
	}{
		{"truncated", serialized[:len(serialized)-1]},
		{"trailing bytes", append(append([]byte{}, serialized...), 0)},
		{"empty", []byte{}},
	}
	for _, test := range tests {
		_, err := TransactionFromBytes(test.input)
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("TestMalformedInput: %s: expected ErrMalformed, got %v", test.name, err)
		}
	}
}

func TestBlockExtensionPresence(t *testing.T) {
	block := &externalapi.DomainBlock{
		Header:       &externalapi.DomainBlockHeader{Number: 7, Epoch: externalapi.NewEpochNumberWithFraction(0, 7, 10)},
		Transactions: []*externalapi.DomainTransaction{testTransaction()},
		Proposals:    []externalapi.ProposalShortID{{1}},
	}
	decoded, err := BlockFromBytes(BlockToBytes(block))
	if err != nil {
		t.Fatalf("BlockFromBytes: %+v", err)
	}
	if decoded.Extension != nil {
		t.Fatalf("TestBlockExtensionPresence: absent extension decoded as present")
	}
	if !decoded.Header.Equal(block.Header) || len(decoded.Proposals) != 1 {
		t.Fatalf("TestBlockExtensionPresence: decoded block differs")
	}

	block.Extension = []byte{}
	decoded, err = BlockFromBytes(BlockToBytes(block))
	if err != nil {
		t.Fatalf("BlockFromBytes: %+v", err)
	}
	if decoded.Extension == nil {
		t.Fatalf("TestBlockExtensionPresence: empty extension decoded as absent")
	}
}

func TestCellbaseWitness(t *testing.T) {
	lock := &externalapi.Script{HashType: externalapi.ScriptHashTypeType, Args: []byte{7, 7}}
	witness := CellbaseWitnessToBytes(lock, []byte("miner"))

	decodedLock, message, err := CellbaseWitnessFromBytes(witness)
	if err != nil {
		t.Fatalf("CellbaseWitnessFromBytes: %+v", err)
	}
	if !decodedLock.Equal(lock) || string(message) != "miner" {
		t.Fatalf("TestCellbaseWitness: decoded %+v with message %q", decodedLock, message)
	}

	_, _, err = CellbaseWitnessFromBytes(append(witness, 0))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("TestCellbaseWitness: expected ErrMalformed for trailing bytes, got %v", err)
	}
}
