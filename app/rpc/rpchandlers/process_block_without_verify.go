package rpchandlers

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// HandleProcessBlockWithoutVerify handles the respectively named RPC
// command. The block is inserted with every verification step disabled.
func HandleProcessBlockWithoutVerify(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error) {
	processBlockRequest := request.(*appmessage.ProcessBlockWithoutVerifyRequestMessage)
	block := processBlockRequest.Block

	_, err := context.Domain.Chain().InternalProcessBlock(block, model.DisableAll)
	if err != nil {
		log.Errorf("process_block_without_verify error: %s", err)
		return appmessage.NewProcessBlockWithoutVerifyResponseMessage(fn.None[*externalapi.DomainHash]()), nil
	}

	if processBlockRequest.Broadcast {
		context.BroadcastBlock(relay.Relay, block)
	}
	return appmessage.NewProcessBlockWithoutVerifyResponseMessage(fn.Some(consensushashing.BlockHash(block))), nil
}
