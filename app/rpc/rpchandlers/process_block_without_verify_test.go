package rpchandlers_test

import (
	"testing"

	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/app/rpc/rpchandlers"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

func processBlockWithoutVerify(t *testing.T, h *testHarness, block *externalapi.DomainBlock,
	broadcast bool) *appmessage.ProcessBlockWithoutVerifyResponseMessage {

	response, err := rpchandlers.HandleProcessBlockWithoutVerify(h.context,
		appmessage.NewProcessBlockWithoutVerifyRequestMessage(block, broadcast))
	if err != nil {
		t.Fatalf("HandleProcessBlockWithoutVerify: %+v", err)
	}
	return response.(*appmessage.ProcessBlockWithoutVerifyResponseMessage)
}

func TestHandleProcessBlockWithoutVerify(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})

	// A wrong DAO field is only caught by verification.
	block := h.tc.BuildBlock(h.tc.Tip())
	block.Header.DAO = externalapi.DAOField{}
	if response := submitBlock(t, h, block); response.Error == nil {
		t.Fatalf("TestHandleProcessBlockWithoutVerify: expected submitBlock to verify the DAO field")
	}

	response := processBlockWithoutVerify(t, h, block, false)
	blockHash := consensushashing.BlockHash(block)
	if response.BlockHash.IsNone() || !response.BlockHash.UnsafeFromSome().Equal(blockHash) {
		t.Fatalf("TestHandleProcessBlockWithoutVerify: expected the block hash to be returned")
	}
	if !h.tipHash().Equal(blockHash) {
		t.Fatalf("TestHandleProcessBlockWithoutVerify: the block wasn't attached")
	}
	if len(h.network.broadcasts) != 0 {
		t.Fatalf("TestHandleProcessBlockWithoutVerify: the block was relayed without being asked to")
	}

	next := h.tc.BuildBlock(h.tc.Tip())
	processBlockWithoutVerify(t, h, next, true)
	if len(h.network.broadcasts) != 1 || h.network.broadcasts[0].protocolID != relay.Relay {
		t.Fatalf("TestHandleProcessBlockWithoutVerify: expected one broadcast on %s", relay.Relay)
	}
}

func TestHandleProcessBlockWithoutVerifyUnknownParent(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})

	block := h.tc.BuildBlock(h.tc.Tip())
	block.Header.ParentHash = *externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	response := processBlockWithoutVerify(t, h, block, true)
	if response.BlockHash.IsSome() {
		t.Fatalf("TestHandleProcessBlockWithoutVerifyUnknownParent: expected no block hash")
	}
	if len(h.network.broadcasts) != 0 {
		t.Fatalf("TestHandleProcessBlockWithoutVerifyUnknownParent: a rejected block was relayed")
	}
}
