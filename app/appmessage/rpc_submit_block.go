package appmessage

import "github.com/cellnetwork/celld/domain/consensus/model/externalapi"

// SubmitBlockRequestMessage is an appmessage corresponding to
// its respective RPC message. WorkID is the work id of the template the
// block was mined from.
type SubmitBlockRequestMessage struct {
	baseMessage
	WorkID string
	Block  *externalapi.DomainBlock
}

// Command returns the protocol command string for the message
func (msg *SubmitBlockRequestMessage) Command() MessageCommand {
	return CmdSubmitBlockRequestMessage
}

// NewSubmitBlockRequestMessage returns a instance of the message
func NewSubmitBlockRequestMessage(workID string, block *externalapi.DomainBlock) *SubmitBlockRequestMessage {
	return &SubmitBlockRequestMessage{
		WorkID: workID,
		Block:  block,
	}
}

// SubmitBlockResponseMessage is an appmessage corresponding to
// its respective RPC message
type SubmitBlockResponseMessage struct {
	baseMessage
	BlockHash *externalapi.DomainHash

	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *SubmitBlockResponseMessage) Command() MessageCommand {
	return CmdSubmitBlockResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *SubmitBlockResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewSubmitBlockResponseMessage returns an instance of the message
func NewSubmitBlockResponseMessage(blockHash *externalapi.DomainHash) *SubmitBlockResponseMessage {
	return &SubmitBlockResponseMessage{
		BlockHash: blockHash,
	}
}
