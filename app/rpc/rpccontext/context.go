package rpccontext

import (
	"context"

	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/domain"
	"github.com/cellnetwork/celld/infrastructure/config"
)

// Context represents the RPC context
type Context struct {
	Config            *config.Config
	Domain            domain.Domain
	NetworkController relay.NetworkController

	lifetime context.Context
	cancel   context.CancelFunc
}

// NewContext creates a new RPC context
func NewContext(cfg *config.Config,
	domain domain.Domain,
	networkController relay.NetworkController) *Context {

	lifetime, cancel := context.WithCancel(context.Background())
	return &Context{
		Config:            cfg,
		Domain:            domain,
		NetworkController: networkController,

		lifetime: lifetime,
		cancel:   cancel,
	}
}

// Lifetime returns a context that is cancelled once the RPC server stops.
// Blocking domain calls made by handlers run under it.
func (c *Context) Lifetime() context.Context {
	return c.lifetime
}

// Close cancels Lifetime.
func (c *Context) Close() {
	c.cancel()
}
