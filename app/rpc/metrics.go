package rpc

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "celld",
	Subsystem: "rpc",
	Name:      "requests_total",
	Help:      "Number of handled RPC requests by command and result.",
}, []string{"command", "result"})

func observeRequest(command appmessage.MessageCommand, response appmessage.Message) {
	result := "ok"
	if rpcResponse, ok := response.(appmessage.RPCResponse); ok && rpcResponse.ResponseError() != nil {
		result = rpcResponse.ResponseError().Code.String()
	}
	requests.WithLabelValues(appmessage.RPCMessageCommandToString[command], result).Inc()
}
