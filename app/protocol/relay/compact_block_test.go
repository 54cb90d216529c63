package relay

import (
	"testing"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/testutils"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func buildTestBlock(t *testing.T) *externalapi.DomainBlock {
	tc := testutils.NewTestChain(t)
	first := tc.Spend([]externalapi.OutPoint{tc.IssuanceOutPoint()},
		tc.IssuanceCapacity()-externalapi.ShannonsPerByte)
	second := tc.Spend([]externalapi.OutPoint{testutils.OutPoint(first, 0)},
		tc.IssuanceCapacity()-2*externalapi.ShannonsPerByte)
	block := tc.BuildBlock(tc.Tip(), first, second)
	block.Proposals = []externalapi.ProposalShortID{{1, 2, 3}}
	block.Extension = []byte{7}
	return block
}

func TestCompactBlockMessageRoundTrip(t *testing.T) {
	block := buildTestBlock(t)

	compactBlock, err := ParseMessage(CompactBlockMessage(block))
	if err != nil {
		t.Fatalf("TestCompactBlockMessageRoundTrip: ParseMessage: %+v", err)
	}
	if !compactBlock.Header.Equal(block.Header) {
		t.Fatalf("TestCompactBlockMessageRoundTrip: header changed")
	}
	if len(compactBlock.PrefilledTransactions) != 1 || compactBlock.PrefilledTransactions[0].Index != 0 {
		t.Fatalf("TestCompactBlockMessageRoundTrip: expected only the cellbase to be prefilled, got %d",
			len(compactBlock.PrefilledTransactions))
	}
	if len(compactBlock.ShortIDs) != 2 {
		t.Fatalf("TestCompactBlockMessageRoundTrip: expected 2 short ids, got %d", len(compactBlock.ShortIDs))
	}
	if compactBlock.ShortIDs[1] != consensushashing.ProposalShortID(block.Transactions[2]) {
		t.Fatalf("TestCompactBlockMessageRoundTrip: short ids out of order")
	}
	if len(compactBlock.Proposals) != 1 || string(compactBlock.Extension) != string(block.Extension) {
		t.Fatalf("TestCompactBlockMessageRoundTrip: proposals or extension changed")
	}
}

func TestCompactBlockReconstruct(t *testing.T) {
	block := buildTestBlock(t)
	pool := make(map[externalapi.ProposalShortID]*externalapi.DomainTransaction)
	for _, transaction := range block.Transactions[1:] {
		pool[consensushashing.ProposalShortID(transaction)] = transaction
	}
	lookup := func(shortID externalapi.ProposalShortID) (*externalapi.DomainTransaction, bool) {
		transaction, ok := pool[shortID]
		return transaction, ok
	}

	compactBlock := NewCompactBlock(block, nil)
	reconstructed, missing, err := compactBlock.Reconstruct(lookup)
	if err != nil {
		t.Fatalf("TestCompactBlockReconstruct: %+v", err)
	}
	if len(missing) != 0 {
		t.Fatalf("TestCompactBlockReconstruct: unexpected missing transactions %v", missing)
	}
	if !consensushashing.TransactionsRoot(reconstructed.Transactions).Equal(&block.Header.TransactionsRoot) {
		t.Fatalf("TestCompactBlockReconstruct: reconstructed transactions don't match the header")
	}

	delete(pool, consensushashing.ProposalShortID(block.Transactions[1]))
	reconstructed, missing, err = compactBlock.Reconstruct(lookup)
	if err != nil {
		t.Fatalf("TestCompactBlockReconstruct: %+v", err)
	}
	if reconstructed != nil || len(missing) != 1 || missing[0] != 1 {
		t.Fatalf("TestCompactBlockReconstruct: expected index 1 to be missing, got %v", missing)
	}

	prefilled := map[externalapi.DomainHash]struct{}{
		*consensushashing.TransactionHash(block.Transactions[1]): {},
	}
	reconstructed, missing, err = NewCompactBlock(block, prefilled).Reconstruct(lookup)
	if err != nil || len(missing) != 0 || len(reconstructed.Transactions) != 3 {
		t.Fatalf("TestCompactBlockReconstruct: prefilled transaction wasn't used: %v %v", err, missing)
	}
}

func TestParseMessageMalformed(t *testing.T) {
	payload := CompactBlockMessage(buildTestBlock(t))
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "unknown type", payload: append([]byte{9}, payload[1:]...)},
		{name: "truncated", payload: payload[:len(payload)-1]},
		{name: "trailing bytes", payload: append(append([]byte{}, payload...), 0)},
	}
	for _, test := range tests {
		_, err := ParseMessage(test.payload)
		if err == nil {
			t.Fatalf("TestParseMessageMalformed: %s: expected an error", test.name)
		}
	}
}

type fakeNetworkController struct {
	relayV2 bool
}

func (f *fakeNetworkController) Broadcast(ProtocolID, []byte) error { return nil }
func (f *fakeNetworkController) SupportsRelayV2() bool             { return f.relayV2 }

func TestNewBlockProtocol(t *testing.T) {
	if protocol := NewBlockProtocol(&fakeNetworkController{}); protocol != Relay {
		t.Fatalf("TestNewBlockProtocol: expected %s, got %s", Relay, protocol)
	}
	if protocol := NewBlockProtocol(&fakeNetworkController{relayV2: true}); protocol != RelayV2 {
		t.Fatalf("TestNewBlockProtocol: expected %s, got %s", RelayV2, protocol)
	}
}

func TestOfflineNetworkController(t *testing.T) {
	networkController := NewOfflineNetworkController(true)
	if NewBlockProtocol(networkController) != RelayV2 {
		t.Fatalf("TestOfflineNetworkController: expected %s", RelayV2)
	}

	announced := testutil.ToFloat64(announcedBlocks.WithLabelValues(RelayV2.String()))
	err := networkController.Broadcast(RelayV2, CompactBlockMessage(buildTestBlock(t)))
	if err != nil {
		t.Fatalf("TestOfflineNetworkController: Broadcast: %+v", err)
	}
	if testutil.ToFloat64(announcedBlocks.WithLabelValues(RelayV2.String())) != announced+1 {
		t.Fatalf("TestOfflineNetworkController: the announcement wasn't counted")
	}

	err = networkController.Broadcast(Relay, []byte{9})
	if err == nil {
		t.Fatalf("TestOfflineNetworkController: expected a malformed payload to be refused")
	}
}
