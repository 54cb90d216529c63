package rpchandlers_test

import (
	"testing"

	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/app/rpc/rpchandlers"
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/lightningnetwork/lnd/fn/v2"
)

func getBlockTemplate(t *testing.T, h *testHarness) *externalapi.DomainBlockTemplate {
	response, err := rpchandlers.HandleGetBlockTemplate(h.context, appmessage.NewGetBlockTemplateRequestMessage(
		fn.None[uint64](), fn.None[uint64](), fn.None[uint32]()))
	if err != nil {
		t.Fatalf("HandleGetBlockTemplate: %+v", err)
	}
	templateResponse := response.(*appmessage.GetBlockTemplateResponseMessage)
	if templateResponse.Error != nil {
		t.Fatalf("HandleGetBlockTemplate: %s", templateResponse.Error)
	}
	return templateResponse.Template
}

func generateBlock(t *testing.T, h *testHarness,
	request *appmessage.GenerateBlockRequestMessage) *appmessage.GenerateBlockResponseMessage {

	response, err := rpchandlers.HandleGenerateBlock(h.context, request)
	if err != nil {
		t.Fatalf("HandleGenerateBlock: %+v", err)
	}
	return response.(*appmessage.GenerateBlockResponseMessage)
}

func tipBlock(t *testing.T, h *testHarness) *externalapi.DomainBlock {
	current := h.tc.Chain.Snapshot()
	defer current.Release()
	block, err := current.GetBlock(current.TipHash())
	if err != nil || block.IsNone() {
		t.Fatalf("GetBlock: %+v", err)
	}
	return block.UnsafeFromSome()
}

func TestHandleGenerateBlock(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	transaction := h.spend(h.cells[0], cellCapacity-externalapi.ShannonsPerByte)
	if response := submitTransaction(t, h, transaction); response.Error != nil {
		t.Fatalf("TestHandleGenerateBlock: unexpected error: %s", response.Error)
	}

	// Generated blocks propose the pool transaction and later commit it.
	committed := false
	for i := 0; i < 4 && !committed; i++ {
		response := generateBlock(t, h, appmessage.NewGenerateBlockRequestMessage(
			fn.None[*externalapi.Script](), fn.None[[]byte]()))
		if response.Error != nil {
			t.Fatalf("TestHandleGenerateBlock: unexpected error: %s", response.Error)
		}
		if !h.tipHash().Equal(response.BlockHash) {
			t.Fatalf("TestHandleGenerateBlock: the generated block isn't the tip")
		}
		if len(h.network.broadcasts) != i+1 || h.network.broadcasts[i].protocolID != relay.Relay {
			t.Fatalf("TestHandleGenerateBlock: expected every generated block to be relayed on %s", relay.Relay)
		}
		for _, blockTransaction := range tipBlock(t, h).Transactions {
			if consensushashing.TransactionHash(blockTransaction).Equal(consensushashing.TransactionHash(transaction)) {
				committed = true
			}
		}
	}
	if !committed {
		t.Fatalf("TestHandleGenerateBlock: the pool transaction was never committed")
	}
	if h.context.Domain.MiningManager().TransactionCount() != 0 {
		t.Fatalf("TestHandleGenerateBlock: the committed transaction is still in the pool")
	}
}

func TestHandleGenerateBlockAssembler(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	lock := chainconfig.AlwaysSuccessLock()
	lock.Args = []byte{1, 2, 3}

	response := generateBlock(t, h, appmessage.NewGenerateBlockRequestMessage(fn.Some(lock), fn.Some([]byte("hi"))))
	if response.Error != nil {
		t.Fatalf("TestHandleGenerateBlockAssembler: unexpected error: %s", response.Error)
	}
	cellbase := tipBlock(t, h).Cellbase()
	for _, output := range cellbase.Outputs {
		if !output.Lock.Equal(lock) {
			t.Fatalf("TestHandleGenerateBlockAssembler: the cellbase pays %+v instead of the requested lock",
				output.Lock)
		}
	}
}

func TestHandleGenerateBlockWithoutAssembler(t *testing.T) {
	h := newTestHarness(t, harnessOptions{noAssembler: true})
	tip := h.tipHash()

	response := generateBlock(t, h, appmessage.NewGenerateBlockRequestMessage(
		fn.None[*externalapi.Script](), fn.None[[]byte]()))
	if response.Error == nil || response.Error.Code != appmessage.RPCErrorCodeInvalid {
		t.Fatalf("TestHandleGenerateBlockWithoutAssembler: expected an invalid error, got %v", response.Error)
	}
	if !h.tipHash().Equal(tip) {
		t.Fatalf("TestHandleGenerateBlockWithoutAssembler: the tip moved")
	}
}

func TestHandleCalculateDAOField(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	template := getBlockTemplate(t, h)
	expected := template.DAO
	template.DAO = externalapi.DAOField{}

	response, err := rpchandlers.HandleCalculateDAOField(h.context,
		appmessage.NewCalculateDAOFieldRequestMessage(template))
	if err != nil {
		t.Fatalf("HandleCalculateDAOField: %+v", err)
	}
	daoResponse := response.(*appmessage.CalculateDAOFieldResponseMessage)
	if daoResponse.Error != nil {
		t.Fatalf("TestHandleCalculateDAOField: unexpected error: %s", daoResponse.Error)
	}
	if daoResponse.DAO != expected {
		t.Fatalf("TestHandleCalculateDAOField: expected %x, got %x", expected, daoResponse.DAO)
	}

	unresolvable := h.spend(externalapi.OutPoint{TxHash: *externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})}, cellCapacity)
	template.Transactions = append(template.Transactions, &externalapi.TransactionTemplate{
		Hash: *consensushashing.TransactionHash(unresolvable),
		Data: unresolvable,
	})
	response, err = rpchandlers.HandleCalculateDAOField(h.context,
		appmessage.NewCalculateDAOFieldRequestMessage(template))
	if err != nil {
		t.Fatalf("HandleCalculateDAOField: %+v", err)
	}
	daoResponse = response.(*appmessage.CalculateDAOFieldResponseMessage)
	if daoResponse.Error == nil || daoResponse.Error.Code != appmessage.RPCErrorCodeInvalidParams {
		t.Fatalf("TestHandleCalculateDAOField: expected invalid params, got %v", daoResponse.Error)
	}
}

func TestHandleGenerateBlockWithTemplate(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})
	template := getBlockTemplate(t, h)
	template.DAO = externalapi.DAOField{}

	response, err := rpchandlers.HandleGenerateBlockWithTemplate(h.context,
		appmessage.NewGenerateBlockWithTemplateRequestMessage(template))
	if err != nil {
		t.Fatalf("HandleGenerateBlockWithTemplate: %+v", err)
	}
	generateResponse := response.(*appmessage.GenerateBlockWithTemplateResponseMessage)
	if generateResponse.Error != nil {
		t.Fatalf("TestHandleGenerateBlockWithTemplate: unexpected error: %s", generateResponse.Error)
	}
	if !h.tipHash().Equal(generateResponse.BlockHash) {
		t.Fatalf("TestHandleGenerateBlockWithTemplate: the generated block isn't the tip")
	}
	if len(h.network.broadcasts) != 1 {
		t.Fatalf("TestHandleGenerateBlockWithTemplate: expected the block to be relayed")
	}

	// A template on top of an unknown parent can't be resolved.
	stale := getBlockTemplate(t, h)
	stale.ParentHash = *externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	response, err = rpchandlers.HandleGenerateBlockWithTemplate(h.context,
		appmessage.NewGenerateBlockWithTemplateRequestMessage(stale))
	if err != nil {
		t.Fatalf("HandleGenerateBlockWithTemplate: %+v", err)
	}
	if response.(*appmessage.GenerateBlockWithTemplateResponseMessage).Error == nil {
		t.Fatalf("TestHandleGenerateBlockWithTemplate: expected a template with an unknown parent to fail")
	}
}
