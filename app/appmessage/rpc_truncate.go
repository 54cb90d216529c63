package appmessage

import "github.com/cellnetwork/celld/domain/consensus/model/externalapi"

// TruncateRequestMessage is an appmessage corresponding to
// its respective RPC message
type TruncateRequestMessage struct {
	baseMessage
	TargetTipHash *externalapi.DomainHash
}

// Command returns the protocol command string for the message
func (msg *TruncateRequestMessage) Command() MessageCommand {
	return CmdTruncateRequestMessage
}

// NewTruncateRequestMessage returns a instance of the message
func NewTruncateRequestMessage(targetTipHash *externalapi.DomainHash) *TruncateRequestMessage {
	return &TruncateRequestMessage{
		TargetTipHash: targetTipHash,
	}
}

// TruncateResponseMessage is an appmessage corresponding to
// its respective RPC message
type TruncateResponseMessage struct {
	baseMessage
	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *TruncateResponseMessage) Command() MessageCommand {
	return CmdTruncateResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *TruncateResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewTruncateResponseMessage returns a instance of the message
func NewTruncateResponseMessage() *TruncateResponseMessage {
	return &TruncateResponseMessage{}
}
