package rpchandlers_test

import (
	"testing"

	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpchandlers"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
)

func submitTransaction(t *testing.T, h *testHarness,
	transaction *externalapi.DomainTransaction) *appmessage.SubmitTransactionResponseMessage {

	response, err := rpchandlers.HandleSubmitTransaction(h.context,
		appmessage.NewSubmitTransactionRequestMessage(transaction))
	if err != nil {
		t.Fatalf("HandleSubmitTransaction: %+v", err)
	}
	return response.(*appmessage.SubmitTransactionResponseMessage)
}

func TestHandleSubmitTransaction(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})

	transaction := h.spend(h.cells[0], cellCapacity-externalapi.ShannonsPerByte)
	response := submitTransaction(t, h, transaction)
	if response.Error != nil {
		t.Fatalf("TestHandleSubmitTransaction: unexpected error: %s", response.Error)
	}
	if !response.TransactionHash.Equal(consensushashing.TransactionHash(transaction)) {
		t.Fatalf("TestHandleSubmitTransaction: unexpected transaction hash %s", response.TransactionHash)
	}
	if h.context.Domain.MiningManager().TransactionCount() != 1 {
		t.Fatalf("TestHandleSubmitTransaction: the transaction isn't in the pool")
	}
}

func TestHandleSubmitTransactionErrorCodes(t *testing.T) {
	tests := []struct {
		name              string
		options           harnessOptions
		buildTransactions func(h *testHarness) []*externalapi.DomainTransaction
		expectedCode      appmessage.RPCErrorCode
	}{
		{
			name: "duplicated",
			buildTransactions: func(h *testHarness) []*externalapi.DomainTransaction {
				transaction := h.spend(h.cells[0], cellCapacity-externalapi.ShannonsPerByte)
				return []*externalapi.DomainTransaction{transaction, transaction}
			},
			expectedCode: appmessage.RPCErrorCodePoolRejectedDuplicatedTx,
		},
		{
			name: "pool is full",
			options: harnessOptions{configureMempool: func(config *mempool.Config) {
				config.MaxTxPoolSize = 1
			}},
			buildTransactions: func(h *testHarness) []*externalapi.DomainTransaction {
				return []*externalapi.DomainTransaction{h.spend(h.cells[0], cellCapacity-externalapi.ShannonsPerByte)}
			},
			expectedCode: appmessage.RPCErrorCodePoolIsFull,
		},
		{
			name: "low fee rate",
			buildTransactions: func(h *testHarness) []*externalapi.DomainTransaction {
				return []*externalapi.DomainTransaction{h.spend(h.cells[0], cellCapacity)}
			},
			expectedCode: appmessage.RPCErrorCodePoolRejectedLowFeeRate,
		},
		{
			name: "outputs above inputs",
			buildTransactions: func(h *testHarness) []*externalapi.DomainTransaction {
				return []*externalapi.DomainTransaction{h.spend(h.cells[0], cellCapacity+1)}
			},
			expectedCode: appmessage.RPCErrorCodePoolRejectedMalformedTx,
		},
		{
			name: "unknown input",
			buildTransactions: func(h *testHarness) []*externalapi.DomainTransaction {
				unknown := externalapi.OutPoint{TxHash: *externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1}), Index: 0}
				return []*externalapi.DomainTransaction{h.spend(unknown, cellCapacity)}
			},
			expectedCode: appmessage.RPCErrorCodeTransactionFailedToResolve,
		},
		{
			name: "no inputs",
			buildTransactions: func(h *testHarness) []*externalapi.DomainTransaction {
				return []*externalapi.DomainTransaction{h.tc.Spend(nil, cellCapacity)}
			},
			expectedCode: appmessage.RPCErrorCodeTransactionFailedToVerify,
		},
	}
	for _, test := range tests {
		h := newTestHarness(t, test.options)
		transactions := test.buildTransactions(h)
		for _, transaction := range transactions[:len(transactions)-1] {
			response := submitTransaction(t, h, transaction)
			if response.Error != nil {
				t.Fatalf("TestHandleSubmitTransactionErrorCodes: %s: unexpected error: %s", test.name, response.Error)
			}
		}
		response := submitTransaction(t, h, transactions[len(transactions)-1])
		if response.Error == nil {
			t.Fatalf("TestHandleSubmitTransactionErrorCodes: %s: expected an error", test.name)
		}
		if response.Error.Code != test.expectedCode {
			t.Fatalf("TestHandleSubmitTransactionErrorCodes: %s: expected code %s, got %s",
				test.name, test.expectedCode, response.Error)
		}
	}
}

func TestHandleNotifyTransaction(t *testing.T) {
	h := newTestHarness(t, harnessOptions{})

	transaction := h.spend(h.cells[0], cellCapacity-externalapi.ShannonsPerByte)
	response, err := rpchandlers.HandleNotifyTransaction(h.context,
		appmessage.NewNotifyTransactionRequestMessage(transaction))
	if err != nil {
		t.Fatalf("HandleNotifyTransaction: %+v", err)
	}
	notifyResponse := response.(*appmessage.NotifyTransactionResponseMessage)
	if notifyResponse.Error != nil {
		t.Fatalf("TestHandleNotifyTransaction: unexpected error: %s", notifyResponse.Error)
	}
	if !notifyResponse.TransactionHash.Equal(consensushashing.TransactionHash(transaction)) {
		t.Fatalf("TestHandleNotifyTransaction: unexpected transaction hash %s", notifyResponse.TransactionHash)
	}
}
