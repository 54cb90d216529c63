package appmessage

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// GetBlockTemplateRequestMessage is an appmessage corresponding to
// its respective RPC message. Unset limits fall back to the consensus
// limits.
type GetBlockTemplateRequestMessage struct {
	baseMessage
	BytesLimit     fn.Option[uint64]
	ProposalsLimit fn.Option[uint64]
	MaxVersion     fn.Option[uint32]
}

// Command returns the protocol command string for the message
func (msg *GetBlockTemplateRequestMessage) Command() MessageCommand {
	return CmdGetBlockTemplateRequestMessage
}

// NewGetBlockTemplateRequestMessage returns a instance of the message
func NewGetBlockTemplateRequestMessage(bytesLimit, proposalsLimit fn.Option[uint64],
	maxVersion fn.Option[uint32]) *GetBlockTemplateRequestMessage {

	return &GetBlockTemplateRequestMessage{
		BytesLimit:     bytesLimit,
		ProposalsLimit: proposalsLimit,
		MaxVersion:     maxVersion,
	}
}

// GetBlockTemplateResponseMessage is an appmessage corresponding to
// its respective RPC message
type GetBlockTemplateResponseMessage struct {
	baseMessage
	Template *externalapi.DomainBlockTemplate

	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *GetBlockTemplateResponseMessage) Command() MessageCommand {
	return CmdGetBlockTemplateResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *GetBlockTemplateResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewGetBlockTemplateResponseMessage returns a instance of the message
func NewGetBlockTemplateResponseMessage(template *externalapi.DomainBlockTemplate) *GetBlockTemplateResponseMessage {
	return &GetBlockTemplateResponseMessage{
		Template: template,
	}
}
