package appmessage

import "github.com/cellnetwork/celld/domain/consensus/model/externalapi"

// SubmitTransactionRequestMessage is an appmessage corresponding to
// its respective RPC message
type SubmitTransactionRequestMessage struct {
	baseMessage
	Transaction *externalapi.DomainTransaction
}

// Command returns the protocol command string for the message
func (msg *SubmitTransactionRequestMessage) Command() MessageCommand {
	return CmdSubmitTransactionRequestMessage
}

// NewSubmitTransactionRequestMessage returns a instance of the message
func NewSubmitTransactionRequestMessage(transaction *externalapi.DomainTransaction) *SubmitTransactionRequestMessage {
	return &SubmitTransactionRequestMessage{
		Transaction: transaction,
	}
}

// SubmitTransactionResponseMessage is an appmessage corresponding to
// its respective RPC message
type SubmitTransactionResponseMessage struct {
	baseMessage
	TransactionHash *externalapi.DomainHash

	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *SubmitTransactionResponseMessage) Command() MessageCommand {
	return CmdSubmitTransactionResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *SubmitTransactionResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewSubmitTransactionResponseMessage returns a instance of the message
func NewSubmitTransactionResponseMessage(transactionHash *externalapi.DomainHash) *SubmitTransactionResponseMessage {
	return &SubmitTransactionResponseMessage{
		TransactionHash: transactionHash,
	}
}
