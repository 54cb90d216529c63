package appmessage

import "github.com/cellnetwork/celld/domain/consensus/model/externalapi"

// GenerateBlockWithTemplateRequestMessage is an appmessage corresponding to
// its respective RPC message. The template's DAO field is recalculated
// before the block is built.
type GenerateBlockWithTemplateRequestMessage struct {
	baseMessage
	Template *externalapi.DomainBlockTemplate
}

// Command returns the protocol command string for the message
func (msg *GenerateBlockWithTemplateRequestMessage) Command() MessageCommand {
	return CmdGenerateBlockWithTemplateRequestMessage
}

// NewGenerateBlockWithTemplateRequestMessage returns a instance of the message
func NewGenerateBlockWithTemplateRequestMessage(
	template *externalapi.DomainBlockTemplate) *GenerateBlockWithTemplateRequestMessage {

	return &GenerateBlockWithTemplateRequestMessage{
		Template: template,
	}
}

// GenerateBlockWithTemplateResponseMessage is an appmessage corresponding to
// its respective RPC message
type GenerateBlockWithTemplateResponseMessage struct {
	baseMessage
	BlockHash *externalapi.DomainHash

	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *GenerateBlockWithTemplateResponseMessage) Command() MessageCommand {
	return CmdGenerateBlockWithTemplateResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *GenerateBlockWithTemplateResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewGenerateBlockWithTemplateResponseMessage returns a instance of the message
func NewGenerateBlockWithTemplateResponseMessage(
	blockHash *externalapi.DomainHash) *GenerateBlockWithTemplateResponseMessage {

	return &GenerateBlockWithTemplateResponseMessage{
		BlockHash: blockHash,
	}
}
