package miningmanager

import (
	"github.com/cellnetwork/celld/domain/consensus/chain"
	"github.com/cellnetwork/celld/domain/miningmanager/blocktemplatebuilder"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
	miningmanagermodel "github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/lightningnetwork/lnd/clock"
)

// Chain is the part of the chain controller the mining manager follows.
type Chain interface {
	blocktemplatebuilder.ChainSource
	RegisterBlockAttachedHandler(handler chain.BlockAttachedHandler)
}

// Factory instantiates new mining managers
type Factory interface {
	NewMiningManager(chain Chain, clock clock.Clock, mempoolConfig *mempool.Config,
		blockAssembler *miningmanagermodel.BlockAssembler) MiningManager
}

type factory struct{}

// NewMiningManager instantiate a new mining manager following chain. The
// pool is updated synchronously with every block the chain attaches.
func (f *factory) NewMiningManager(chain Chain, clock clock.Clock, mempoolConfig *mempool.Config,
	blockAssembler *miningmanagermodel.BlockAssembler) MiningManager {

	mempool := mempool.New(mempoolConfig, chain)
	blockTemplateBuilder := blocktemplatebuilder.New(chain, mempool, clock, blockAssembler)
	chain.RegisterBlockAttachedHandler(mempool.HandleNewBlock)

	return &miningManager{
		mempool:              mempool,
		blockTemplateBuilder: blockTemplateBuilder,
	}
}

// NewFactory creates a new mining manager factory
func NewFactory() Factory {
	return &factory{}
}
