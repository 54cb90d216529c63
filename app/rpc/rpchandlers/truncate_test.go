package rpchandlers_test

import (
	"testing"

	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpchandlers"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

func truncate(t *testing.T, h *testHarness, targetTipHash *externalapi.DomainHash) *appmessage.TruncateResponseMessage {
	response, err := rpchandlers.HandleTruncate(h.context, appmessage.NewTruncateRequestMessage(targetTipHash))
	if err != nil {
		t.Fatalf("HandleTruncate: %+v", err)
	}
	return response.(*appmessage.TruncateResponseMessage)
}

func TestHandleTruncate(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	genesisHash := consensushashing.BlockHash(h.tc.Chain.Genesis())

	pooled := h.spend(h.cells[0], cellCapacity-externalapi.ShannonsPerByte)
	if response := submitTransaction(t, h, pooled); response.Error != nil {
		t.Fatalf("TestHandleTruncate: unexpected error: %s", response.Error)
	}

	response := truncate(t, h, genesisHash)
	if response.Error != nil {
		t.Fatalf("TestHandleTruncate: unexpected error: %s", response.Error)
	}
	if !h.tipHash().Equal(genesisHash) {
		t.Fatalf("TestHandleTruncate: the tip wasn't rolled back to genesis")
	}
	if h.context.Domain.MiningManager().TransactionCount() != 0 {
		t.Fatalf("TestHandleTruncate: the pool wasn't cleared")
	}

	// The cells created by the reverted block are gone.
	submitResponse := submitTransaction(t, h, h.spend(h.cells[1], cellCapacity-externalapi.ShannonsPerByte))
	if submitResponse.Error == nil ||
		submitResponse.Error.Code != appmessage.RPCErrorCodeTransactionFailedToResolve {

		t.Fatalf("TestHandleTruncate: expected a resolve error, got %v", submitResponse.Error)
	}
}

func TestHandleTruncateInvalidTarget(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	tip := h.tipHash()

	genesis := h.tc.Chain.Genesis()
	sideBlock := h.tc.BuildBlock(genesis.Header)
	isNew, err := h.tc.Chain.ProcessBlock(sideBlock)
	if err != nil || !isNew {
		t.Fatalf("TestHandleTruncateInvalidTarget: ProcessBlock: %v %+v", isNew, err)
	}

	tests := []struct {
		name            string
		targetTipHash   *externalapi.DomainHash
		expectedMessage string
	}{
		{name: "unknown block", targetTipHash: externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1}), expectedMessage: "block not found"},
		{name: "side block", targetTipHash: consensushashing.BlockHash(sideBlock),
			expectedMessage: "block not on main chain"},
	}
	for _, test := range tests {
		response := truncate(t, h, test.targetTipHash)
		if response.Error == nil || response.Error.Code != appmessage.RPCErrorCodeInvalid ||
			response.Error.Message != test.expectedMessage {

			t.Fatalf("TestHandleTruncateInvalidTarget: %s: expected %q, got %v",
				test.name, test.expectedMessage, response.Error)
		}
		if !h.tipHash().Equal(tip) {
			t.Fatalf("TestHandleTruncateInvalidTarget: %s: the tip moved", test.name)
		}
	}
}
