package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/miningmanager/blocktemplatebuilder"
	"github.com/pkg/errors"
)

// HandleCalculateDAOField handles the respectively named RPC command
func HandleCalculateDAOField(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	calculateDAOFieldRequest := request.(*appmessage.CalculateDAOFieldRequestMessage)

	dao, rpcErr := calculateDAOField(context, calculateDAOFieldRequest.Template)
	if rpcErr != nil {
		errorMessage := &appmessage.CalculateDAOFieldResponseMessage{}
		errorMessage.Error = rpcErr
		return errorMessage, nil
	}
	return appmessage.NewCalculateDAOFieldResponseMessage(dao), nil
}

// calculateDAOField reports templates whose cells don't resolve as invalid
// params.
func calculateDAOField(context *rpccontext.Context,
	template *externalapi.DomainBlockTemplate) (externalapi.DAOField, *appmessage.RPCError) {

	current := context.Domain.Chain().Snapshot()
	defer current.Release()

	dao, err := blocktemplatebuilder.CalculateDAOField(current, template)
	if err != nil {
		var outPointErr cell.OutPointError
		if errors.As(err, &outPointErr) {
			return externalapi.DAOField{}, appmessage.RPCErrorf(appmessage.RPCErrorCodeInvalidParams,
				"template doesn't resolve: %s", err)
		}
		return externalapi.DAOField{}, appmessage.RPCErrorf(appmessage.RPCErrorCodeInternal,
			"could not calculate the DAO field: %s", err)
	}
	return dao, nil
}
