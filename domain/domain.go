package domain

import (
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/chain"
	"github.com/cellnetwork/celld/domain/miningmanager"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
	miningmanagermodel "github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/lightningnetwork/lnd/clock"
)

// Domain provides a reference to the domain's external aps
type Domain interface {
	MiningManager() miningmanager.MiningManager
	Chain() *chain.Chain
	Close()
}

type domain struct {
	miningManager miningmanager.MiningManager
	chain         *chain.Chain
}

func (d *domain) MiningManager() miningmanager.MiningManager {
	return d.miningManager
}

func (d *domain) Chain() *chain.Chain {
	return d.chain
}

// Close stops the mining manager. The database is owned by the caller.
func (d *domain) Close() {
	d.miningManager.Close()
}

// Config holds what the domain is built from
type Config struct {
	Params         *chainconfig.Params
	Clock          clock.Clock
	Mempool        *mempool.Config
	BlockAssembler *miningmanagermodel.BlockAssembler
}

// New instantiates a new instance of a Domain object
func New(config *Config, db *ldb.LevelDB) (Domain, error) {
	chainInstance, err := chain.New(config.Params, db, config.Clock)
	if err != nil {
		return nil, err
	}

	miningManagerFactory := miningmanager.NewFactory()
	miningManager := miningManagerFactory.NewMiningManager(chainInstance, config.Clock, config.Mempool,
		config.BlockAssembler)

	return &domain{
		chain:         chainInstance,
		miningManager: miningManager,
	}, nil
}
