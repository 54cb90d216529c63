package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/miningmanager/blocktemplatebuilder"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// HandleGenerateBlock handles the respectively named RPC command. It mines
// the current template without proof of work, which only chains skipping
// proof of work accept.
func HandleGenerateBlock(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	generateBlockRequest := request.(*appmessage.GenerateBlockRequestMessage)

	templateRequest := &model.BlockTemplateRequest{}
	generateBlockRequest.AssemblerScript.WhenSome(func(script *externalapi.Script) {
		templateRequest.Assembler = fn.Some(&model.BlockAssembler{
			Lock:    script,
			Message: generateBlockRequest.AssemblerMessage.UnwrapOr(nil),
		})
	})

	template, err := context.Domain.MiningManager().GetBlockTemplate(templateRequest)
	if err != nil {
		errorMessage := &appmessage.GenerateBlockResponseMessage{}
		errorMessage.Error = templateError(err)
		return errorMessage, nil
	}

	blockHash, err := context.ProcessAndAnnounceBlock(blocktemplatebuilder.BlockFromTemplate(template))
	if err != nil {
		errorMessage := &appmessage.GenerateBlockResponseMessage{}
		errorMessage.Error = appmessage.RPCErrorf(appmessage.RPCErrorCodeInternal,
			"generated block was rejected: %s", err)
		return errorMessage, nil
	}
	return appmessage.NewGenerateBlockResponseMessage(blockHash), nil
}
