package rpc

import (
	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain"
	"github.com/cellnetwork/celld/infrastructure/config"
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/pkg/errors"
)

// Manager is an RPC manager
type Manager struct {
	context *rpccontext.Context
}

// NewManager creates a new RPC Manager
func NewManager(
	cfg *config.Config,
	domain domain.Domain,
	networkController relay.NetworkController) *Manager {

	return &Manager{
		context: rpccontext.NewContext(cfg, domain, networkController),
	}
}

// HandleRequest runs the handler of request's command and returns its
// response. Failures of the request itself are reported in the response's
// Error field; the returned error is reserved for unknown commands and
// faults of the node.
func (m *Manager) HandleRequest(request appmessage.Message) (appmessage.Message, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "RPCManager.HandleRequest "+request.Command().String())
	defer onEnd()

	handler, ok := handlers[request.Command()]
	if !ok {
		return nil, errors.Errorf("no handler for command %s", request.Command())
	}
	log.Debugf("Handling %s", request.Command())
	response, err := handler(m.context, request)
	if err != nil {
		return nil, err
	}
	observeRequest(request.Command(), response)
	return response, nil
}

// Close stops the manager. Requests still running are cancelled.
func (m *Manager) Close() {
	m.context.Close()
}
