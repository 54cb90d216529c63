package rpchandlers_test

import (
	"strings"
	"testing"

	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/app/rpc/rpchandlers"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

func submitBlock(t *testing.T, h *testHarness, block *externalapi.DomainBlock) *appmessage.SubmitBlockResponseMessage {
	response, err := rpchandlers.HandleSubmitBlock(h.context, appmessage.NewSubmitBlockRequestMessage("7", block))
	if err != nil {
		t.Fatalf("HandleSubmitBlock: %+v", err)
	}
	return response.(*appmessage.SubmitBlockResponseMessage)
}

func TestHandleSubmitBlock(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	block := h.tc.BuildBlock(h.tc.Tip())
	blockHash := consensushashing.BlockHash(block)

	response := submitBlock(t, h, block)
	if response.Error != nil {
		t.Fatalf("TestHandleSubmitBlock: unexpected error: %s", response.Error)
	}
	if !response.BlockHash.Equal(blockHash) || !h.tipHash().Equal(blockHash) {
		t.Fatalf("TestHandleSubmitBlock: block %s wasn't attached", blockHash)
	}
	if len(h.network.broadcasts) != 1 || h.network.broadcasts[0].protocolID != relay.Relay {
		t.Fatalf("TestHandleSubmitBlock: expected one broadcast on %s, got %v", relay.Relay, h.network.broadcasts)
	}
	compactBlock, err := relay.ParseMessage(h.network.broadcasts[0].payload)
	if err != nil {
		t.Fatalf("TestHandleSubmitBlock: ParseMessage: %+v", err)
	}
	if !consensushashing.HeaderHash(compactBlock.Header).Equal(blockHash) {
		t.Fatalf("TestHandleSubmitBlock: the broadcast carries another block")
	}

	// A known block is accepted again without being relayed.
	response = submitBlock(t, h, block)
	if response.Error != nil || !response.BlockHash.Equal(blockHash) {
		t.Fatalf("TestHandleSubmitBlock: resubmission failed: %v", response.Error)
	}
	if len(h.network.broadcasts) != 1 {
		t.Fatalf("TestHandleSubmitBlock: a known block was relayed again")
	}

	h.network.relayV2 = true
	submitBlock(t, h, h.tc.BuildBlock(h.tc.Tip()))
	if len(h.network.broadcasts) != 2 || h.network.broadcasts[1].protocolID != relay.RelayV2 {
		t.Fatalf("TestHandleSubmitBlock: expected the second block on %s", relay.RelayV2)
	}
}

func TestHandleSubmitBlockInvalid(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	tip := h.tipHash()

	block := h.tc.BuildBlock(h.tc.Tip())
	block.Header.TransactionsRoot = externalapi.DomainHash{}
	response := submitBlock(t, h, block)
	if response.Error == nil || response.Error.Code != appmessage.RPCErrorCodeInvalid {
		t.Fatalf("TestHandleSubmitBlockInvalid: expected an invalid error, got %v", response.Error)
	}
	if !h.tipHash().Equal(tip) || len(h.network.broadcasts) != 0 {
		t.Fatalf("TestHandleSubmitBlockInvalid: an invalid block changed the chain or was relayed")
	}
}

func TestHandleSubmitBlockBroadcastFailure(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	h.network.fail = true

	block := h.tc.BuildBlock(h.tc.Tip())
	response := submitBlock(t, h, block)
	if response.Error != nil {
		t.Fatalf("TestHandleSubmitBlockBroadcastFailure: a failed broadcast must not fail the submission: %s",
			response.Error)
	}
	if !h.tipHash().Equal(consensushashing.BlockHash(block)) {
		t.Fatalf("TestHandleSubmitBlockBroadcastFailure: block wasn't attached")
	}
}

func TestHandleSubmitBlockExtension(t *testing.T) {
	tests := []struct {
		name          string
		isPublicChain bool
		expectError   bool
	}{
		{name: "public chain", isPublicChain: true, expectError: true},
		{name: "private chain", isPublicChain: false, expectError: false},
	}
	for _, test := range tests {
		h := newTestHarness(t, harnessOptions{isPublicChain: test.isPublicChain})
		block := h.tc.BuildBlock(h.tc.Tip())
		block.Extension = []byte{1, 2, 3}
		block.Header.ExtraHash = *consensushashing.ExtraHash(block.Uncles, block.Extension)

		response := submitBlock(t, h, block)
		if !test.expectError {
			if response.Error != nil {
				t.Fatalf("TestHandleSubmitBlockExtension: %s: unexpected error: %s", test.name, response.Error)
			}
			continue
		}
		if response.Error == nil || response.Error.Code != appmessage.RPCErrorCodeInvalid ||
			!strings.Contains(response.Error.Message, "the block extension should be null") {

			t.Fatalf("TestHandleSubmitBlockExtension: %s: expected the extension to be refused, got %v",
				test.name, response.Error)
		}
		if len(h.network.broadcasts) != 0 {
			t.Fatalf("TestHandleSubmitBlockExtension: %s: a refused block was relayed", test.name)
		}
	}
}
