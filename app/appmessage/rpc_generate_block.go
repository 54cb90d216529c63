package appmessage

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// GenerateBlockRequestMessage is an appmessage corresponding to
// its respective RPC message. Without an assembler script the node's
// configured block assembler is paid.
type GenerateBlockRequestMessage struct {
	baseMessage
	AssemblerScript  fn.Option[*externalapi.Script]
	AssemblerMessage fn.Option[[]byte]
}

// Command returns the protocol command string for the message
func (msg *GenerateBlockRequestMessage) Command() MessageCommand {
	return CmdGenerateBlockRequestMessage
}

// NewGenerateBlockRequestMessage returns a instance of the message
func NewGenerateBlockRequestMessage(assemblerScript fn.Option[*externalapi.Script],
	assemblerMessage fn.Option[[]byte]) *GenerateBlockRequestMessage {

	return &GenerateBlockRequestMessage{
		AssemblerScript:  assemblerScript,
		AssemblerMessage: assemblerMessage,
	}
}

// GenerateBlockResponseMessage is an appmessage corresponding to
// its respective RPC message
type GenerateBlockResponseMessage struct {
	baseMessage
	BlockHash *externalapi.DomainHash

	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *GenerateBlockResponseMessage) Command() MessageCommand {
	return CmdGenerateBlockResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *GenerateBlockResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewGenerateBlockResponseMessage returns a instance of the message
func NewGenerateBlockResponseMessage(blockHash *externalapi.DomainHash) *GenerateBlockResponseMessage {
	return &GenerateBlockResponseMessage{
		BlockHash: blockHash,
	}
}
