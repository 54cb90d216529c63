package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/miningmanager/blocktemplatebuilder"
)

// HandleGenerateBlockWithTemplate handles the respectively named RPC
// command. The DAO field of the template is recalculated, so callers may
// edit its transactions freely.
func HandleGenerateBlockWithTemplate(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	generateBlockWithTemplateRequest := request.(*appmessage.GenerateBlockWithTemplateRequestMessage)

	template := generateBlockWithTemplateRequest.Template
	dao, rpcErr := calculateDAOField(context, template)
	if rpcErr != nil {
		errorMessage := &appmessage.GenerateBlockWithTemplateResponseMessage{}
		errorMessage.Error = rpcErr
		return errorMessage, nil
	}
	template.DAO = dao

	blockHash, err := context.ProcessAndAnnounceBlock(blocktemplatebuilder.BlockFromTemplate(template))
	if err != nil {
		errorMessage := &appmessage.GenerateBlockWithTemplateResponseMessage{}
		errorMessage.Error = appmessage.RPCErrorf(appmessage.RPCErrorCodeInternal,
			"generated block was rejected: %s", err)
		return errorMessage, nil
	}
	return appmessage.NewGenerateBlockWithTemplateResponseMessage(blockHash), nil
}
