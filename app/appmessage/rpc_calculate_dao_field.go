package appmessage

import "github.com/cellnetwork/celld/domain/consensus/model/externalapi"

// CalculateDAOFieldRequestMessage is an appmessage corresponding to
// its respective RPC message
type CalculateDAOFieldRequestMessage struct {
	baseMessage
	Template *externalapi.DomainBlockTemplate
}

// Command returns the protocol command string for the message
func (msg *CalculateDAOFieldRequestMessage) Command() MessageCommand {
	return CmdCalculateDAOFieldRequestMessage
}

// NewCalculateDAOFieldRequestMessage returns a instance of the message
func NewCalculateDAOFieldRequestMessage(template *externalapi.DomainBlockTemplate) *CalculateDAOFieldRequestMessage {
	return &CalculateDAOFieldRequestMessage{
		Template: template,
	}
}

// CalculateDAOFieldResponseMessage is an appmessage corresponding to
// its respective RPC message
type CalculateDAOFieldResponseMessage struct {
	baseMessage
	DAO externalapi.DAOField

	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *CalculateDAOFieldResponseMessage) Command() MessageCommand {
	return CmdCalculateDAOFieldResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *CalculateDAOFieldResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewCalculateDAOFieldResponseMessage returns a instance of the message
func NewCalculateDAOFieldResponseMessage(dao externalapi.DAOField) *CalculateDAOFieldResponseMessage {
	return &CalculateDAOFieldResponseMessage{
		DAO: dao,
	}
}
