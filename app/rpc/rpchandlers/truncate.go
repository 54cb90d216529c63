package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
)

// HandleTruncate handles the respectively named RPC command
func HandleTruncate(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	truncateRequest := request.(*appmessage.TruncateRequestMessage)
	targetTipHash := truncateRequest.TargetTipHash
	chain := context.Domain.Chain()

	errorMessage := &appmessage.TruncateResponseMessage{}
	current := chain.Snapshot()
	header, err := current.GetBlockHeader(targetTipHash)
	if err != nil {
		current.Release()
		return nil, err
	}
	if header.IsNone() {
		current.Release()
		errorMessage.Error = appmessage.RPCErrorf(appmessage.RPCErrorCodeInvalid, "block not found")
		return errorMessage, nil
	}
	isMainChain, err := current.IsMainChain(targetTipHash)
	current.Release()
	if err != nil {
		return nil, err
	}
	if !isMainChain {
		errorMessage.Error = appmessage.RPCErrorf(appmessage.RPCErrorCodeInvalid, "block not on main chain")
		return errorMessage, nil
	}

	err = chain.Truncate(targetTipHash)
	if err != nil {
		errorMessage.Error = appmessage.RPCErrorf(appmessage.RPCErrorCodeInvalid, "truncate error: %s", err)
		return errorMessage, nil
	}

	// The pool was built on top of the reverted blocks.
	truncated := chain.Snapshot()
	defer truncated.Release()
	context.Domain.MiningManager().ClearPool(truncated)

	log.Infof("Truncated the chain to %s via truncate", targetTipHash)
	return appmessage.NewTruncateResponseMessage(), nil
}
