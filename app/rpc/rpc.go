package rpc

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/app/rpc/rpchandlers"
)

type handler func(context *rpccontext.Context, request appmessage.Message) (appmessage.Message, error)

var handlers = map[appmessage.MessageCommand]handler{
	appmessage.CmdGetBlockTemplateRequestMessage:          rpchandlers.HandleGetBlockTemplate,
	appmessage.CmdSubmitBlockRequestMessage:               rpchandlers.HandleSubmitBlock,
	appmessage.CmdSubmitTransactionRequestMessage:         rpchandlers.HandleSubmitTransaction,
	appmessage.CmdTruncateRequestMessage:                  rpchandlers.HandleTruncate,
	appmessage.CmdGenerateBlockRequestMessage:             rpchandlers.HandleGenerateBlock,
	appmessage.CmdGenerateBlockWithTemplateRequestMessage: rpchandlers.HandleGenerateBlockWithTemplate,
	appmessage.CmdCalculateDAOFieldRequestMessage:         rpchandlers.HandleCalculateDAOField,
	appmessage.CmdProcessBlockWithoutVerifyRequestMessage: rpchandlers.HandleProcessBlockWithoutVerify,
	appmessage.CmdNotifyTransactionRequestMessage:         rpchandlers.HandleNotifyTransaction,
}
