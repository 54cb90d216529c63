package appmessage

import "github.com/cellnetwork/celld/domain/consensus/model/externalapi"

// NotifyTransactionRequestMessage is an appmessage corresponding to
// its respective RPC message
type NotifyTransactionRequestMessage struct {
	baseMessage
	Transaction *externalapi.DomainTransaction
}

// Command returns the protocol command string for the message
func (msg *NotifyTransactionRequestMessage) Command() MessageCommand {
	return CmdNotifyTransactionRequestMessage
}

// NewNotifyTransactionRequestMessage returns a instance of the message
func NewNotifyTransactionRequestMessage(transaction *externalapi.DomainTransaction) *NotifyTransactionRequestMessage {
	return &NotifyTransactionRequestMessage{
		Transaction: transaction,
	}
}

// NotifyTransactionResponseMessage is an appmessage corresponding to
// its respective RPC message
type NotifyTransactionResponseMessage struct {
	baseMessage
	TransactionHash *externalapi.DomainHash

	Error *RPCError
}

// Command returns the protocol command string for the message
func (msg *NotifyTransactionResponseMessage) Command() MessageCommand {
	return CmdNotifyTransactionResponseMessage
}

// ResponseError returns the error the request failed with, if any
func (msg *NotifyTransactionResponseMessage) ResponseError() *RPCError {
	return msg.Error
}

// NewNotifyTransactionResponseMessage returns a instance of the message
func NewNotifyTransactionResponseMessage(transactionHash *externalapi.DomainHash) *NotifyTransactionResponseMessage {
	return &NotifyTransactionResponseMessage{
		TransactionHash: transactionHash,
	}
}
