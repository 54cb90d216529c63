package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// HandleSubmitBlock handles the respectively named RPC command
func HandleSubmitBlock(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	submitBlockRequest := request.(*appmessage.SubmitBlockRequestMessage)
	workID := submitBlockRequest.WorkID
	block := submitBlockRequest.Block
	blockHash := consensushashing.BlockHash(block)
	log.Debugf("[%s] submit_block %s at number %d", workID, blockHash, block.Header.Number)

	chain := context.Domain.Chain()
	if chain.Params().IsPublicChain && block.Extension != nil {
		errorMessage := &appmessage.SubmitBlockResponseMessage{}
		errorMessage.Error = appmessage.RPCErrorf(appmessage.RPCErrorCodeInvalid,
			"the block extension should be null")
		return errorMessage, nil
	}

	current := chain.Snapshot()
	err := chain.HeaderVerifier(current).Verify(block.Header)
	current.Release()
	if err != nil {
		return submitBlockError(workID, err), nil
	}

	isNew, err := chain.ProcessBlock(block)
	if err != nil {
		return submitBlockError(workID, err), nil
	}
	log.Infof("[%s] submit_block %s is_new: %t", workID, blockHash, isNew)

	if isNew {
		context.BroadcastBlock(relay.NewBlockProtocol(context.NetworkController), block)
	}
	return appmessage.NewSubmitBlockResponseMessage(blockHash), nil
}

func submitBlockError(workID string, err error) *appmessage.SubmitBlockResponseMessage {
	log.Errorf("[%s] submit_block error: %s", workID, err)
	errorMessage := &appmessage.SubmitBlockResponseMessage{}
	errorMessage.Error = appmessage.RPCErrorf(appmessage.RPCErrorCodeInvalid, "%s", err)
	return errorMessage
}
