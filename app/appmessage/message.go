// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package appmessage

import (
	"fmt"
	"time"
)

// MessageCommand is a number in the header of a message that represents its type.
type MessageCommand uint32

func (cmd MessageCommand) String() string {
	cmdString, ok := RPCMessageCommandToString[cmd]
	if !ok {
		cmdString = "unknown command"
	}
	return fmt.Sprintf("%s [code %d]", cmdString, uint32(cmd))
}

// RPC commands
const (
	CmdGetBlockTemplateRequestMessage MessageCommand = iota
	CmdGetBlockTemplateResponseMessage
	CmdSubmitBlockRequestMessage
	CmdSubmitBlockResponseMessage
	CmdSubmitTransactionRequestMessage
	CmdSubmitTransactionResponseMessage
	CmdTruncateRequestMessage
	CmdTruncateResponseMessage
	CmdGenerateBlockRequestMessage
	CmdGenerateBlockResponseMessage
	CmdGenerateBlockWithTemplateRequestMessage
	CmdGenerateBlockWithTemplateResponseMessage
	CmdCalculateDAOFieldRequestMessage
	CmdCalculateDAOFieldResponseMessage
	CmdProcessBlockWithoutVerifyRequestMessage
	CmdProcessBlockWithoutVerifyResponseMessage
	CmdNotifyTransactionRequestMessage
	CmdNotifyTransactionResponseMessage
)

// RPCMessageCommandToString maps all MessageCommands to their string representation
var RPCMessageCommandToString = map[MessageCommand]string{
	CmdGetBlockTemplateRequestMessage:           "GetBlockTemplateRequest",
	CmdGetBlockTemplateResponseMessage:          "GetBlockTemplateResponse",
	CmdSubmitBlockRequestMessage:                "SubmitBlockRequest",
	CmdSubmitBlockResponseMessage:               "SubmitBlockResponse",
	CmdSubmitTransactionRequestMessage:          "SubmitTransactionRequest",
	CmdSubmitTransactionResponseMessage:         "SubmitTransactionResponse",
	CmdTruncateRequestMessage:                   "TruncateRequest",
	CmdTruncateResponseMessage:                  "TruncateResponse",
	CmdGenerateBlockRequestMessage:              "GenerateBlockRequest",
	CmdGenerateBlockResponseMessage:             "GenerateBlockResponse",
	CmdGenerateBlockWithTemplateRequestMessage:  "GenerateBlockWithTemplateRequest",
	CmdGenerateBlockWithTemplateResponseMessage: "GenerateBlockWithTemplateResponse",
	CmdCalculateDAOFieldRequestMessage:          "CalculateDAOFieldRequest",
	CmdCalculateDAOFieldResponseMessage:         "CalculateDAOFieldResponse",
	CmdProcessBlockWithoutVerifyRequestMessage:  "ProcessBlockWithoutVerifyRequest",
	CmdProcessBlockWithoutVerifyResponseMessage: "ProcessBlockWithoutVerifyResponse",
	CmdNotifyTransactionRequestMessage:          "NotifyTransactionRequest",
	CmdNotifyTransactionResponseMessage:         "NotifyTransactionResponse",
}

// Message is an interface that describes a celld message. A type that
// implements Message has complete control over the representation of its data
// and may therefore contain additional or fewer fields than those which
// are used directly in the protocol encoded message.
type Message interface {
	Command() MessageCommand
	MessageNumber() uint64
	SetMessageNumber(index uint64)
	ReceivedAt() time.Time
	SetReceivedAt(receivedAt time.Time)
}

type baseMessage struct {
	messageNumber uint64
	receivedAt    time.Time
}

func (b *baseMessage) MessageNumber() uint64 {
	return b.messageNumber
}

func (b *baseMessage) SetMessageNumber(messageNumber uint64) {
	b.messageNumber = messageNumber
}

func (b *baseMessage) ReceivedAt() time.Time {
	return b.receivedAt
}

func (b *baseMessage) SetReceivedAt(receivedAt time.Time) {
	b.receivedAt = receivedAt
}
