package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/miningmanager/blocktemplatebuilder"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/pkg/errors"
)

// HandleGetBlockTemplate handles the respectively named RPC command
func HandleGetBlockTemplate(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	getBlockTemplateRequest := request.(*appmessage.GetBlockTemplateRequestMessage)

	template, err := context.Domain.MiningManager().GetBlockTemplate(&model.BlockTemplateRequest{
		BytesLimit:     getBlockTemplateRequest.BytesLimit,
		ProposalsLimit: getBlockTemplateRequest.ProposalsLimit,
		MaxVersion:     getBlockTemplateRequest.MaxVersion,
	})
	if err != nil {
		errorMessage := &appmessage.GetBlockTemplateResponseMessage{}
		errorMessage.Error = templateError(err)
		return errorMessage, nil
	}

	return appmessage.NewGetBlockTemplateResponseMessage(template), nil
}

func templateError(err error) *appmessage.RPCError {
	if errors.Is(err, blocktemplatebuilder.ErrNoBlockAssembler) {
		return appmessage.RPCErrorf(appmessage.RPCErrorCodeInvalid, "%s", err)
	}
	log.Errorf("Could not build a block template: %+v", err)
	return appmessage.RPCErrorf(appmessage.RPCErrorCodeInternal, "could not build a block template: %s", err)
}
