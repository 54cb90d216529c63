package appmessage

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// ProcessBlockWithoutVerifyRequestMessage is an appmessage corresponding to
// its respective RPC message
type ProcessBlockWithoutVerifyRequestMessage struct {
	baseMessage
	Block     *externalapi.DomainBlock
	Broadcast bool
}

// Command returns the protocol command string for the message
func (msg *ProcessBlockWithoutVerifyRequestMessage) Command() MessageCommand {
	return CmdProcessBlockWithoutVerifyRequestMessage
}

// NewProcessBlockWithoutVerifyRequestMessage returns a instance of the message
func NewProcessBlockWithoutVerifyRequestMessage(block *externalapi.DomainBlock,
	broadcast bool) *ProcessBlockWithoutVerifyRequestMessage {

	return &ProcessBlockWithoutVerifyRequestMessage{
		Block:     block,
		Broadcast: broadcast,
	}
}

// ProcessBlockWithoutVerifyResponseMessage is an appmessage corresponding to
// its respective RPC message. BlockHash is unset when the block could not
// be inserted.
type ProcessBlockWithoutVerifyResponseMessage struct {
	baseMessage
	BlockHash fn.Option[*externalapi.DomainHash]

	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *ProcessBlockWithoutVerifyResponseMessage) Command() MessageCommand {
	return CmdProcessBlockWithoutVerifyResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *ProcessBlockWithoutVerifyResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewProcessBlockWithoutVerifyResponseMessage returns a instance of the message
func NewProcessBlockWithoutVerifyResponseMessage(
	blockHash fn.Option[*externalapi.DomainHash]) *ProcessBlockWithoutVerifyResponseMessage {

	return &ProcessBlockWithoutVerifyResponseMessage{
		BlockHash: blockHash,
	}
}
