package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
)

var rejectCodeToRPCErrorCode = map[mempool.RejectCode]appmessage.RPCErrorCode{
	mempool.RejectDuplicated:   appmessage.RPCErrorCodePoolRejectedDuplicatedTx,
	mempool.RejectFull:         appmessage.RPCErrorCodePoolIsFull,
	mempool.RejectLowFeeRate:   appmessage.RPCErrorCodePoolRejectedLowFeeRate,
	mempool.RejectMalformed:    appmessage.RPCErrorCodePoolRejectedMalformedTx,
	mempool.RejectResolve:      appmessage.RPCErrorCodeTransactionFailedToResolve,
	mempool.RejectVerification: appmessage.RPCErrorCodeTransactionFailedToVerify,
}

// HandleSubmitTransaction handles the respectively named RPC command
func HandleSubmitTransaction(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	submitTransactionRequest := request.(*appmessage.SubmitTransactionRequestMessage)

	transaction := submitTransactionRequest.Transaction
	transactionHash := consensushashing.TransactionHash(transaction)
	_, err := context.Domain.MiningManager().SubmitTransaction(context.Lifetime(), transaction)
	if err != nil {
		errorMessage := &appmessage.SubmitTransactionResponseMessage{}
		reject, ok := mempool.ExtractReject(err)
		if !ok {
			log.Errorf("Could not submit transaction %s: %+v", transactionHash, err)
			errorMessage.Error = appmessage.RPCErrorf(appmessage.RPCErrorCodeInternal,
				"could not submit transaction %s: %s", transactionHash, err)
			return errorMessage, nil
		}

		log.Debugf("Rejected transaction %s: %s", transactionHash, err)
		code, ok := rejectCodeToRPCErrorCode[reject.Code]
		if !ok {
			code = appmessage.RPCErrorCodeInternal
		}
		errorMessage.Error = appmessage.RPCErrorf(code, "%s", reject)
		return errorMessage, nil
	}

	return appmessage.NewSubmitTransactionResponseMessage(transactionHash), nil
}
