package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// HandleNotifyTransaction handles the respectively named RPC command. The
// transaction is submitted in the background and the result is only logged.
func HandleNotifyTransaction(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	notifyTransactionRequest := request.(*appmessage.NotifyTransactionRequestMessage)

	transaction := notifyTransactionRequest.Transaction
	context.Domain.MiningManager().NotifyTransaction(transaction)
	return appmessage.NewNotifyTransactionResponseMessage(consensushashing.TransactionHash(transaction)), nil
}
