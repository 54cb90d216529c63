package app

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/app/rpc"
	"github.com/cellnetwork/celld/domain"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/cellnetwork/celld/infrastructure/config"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/cellnetwork/celld/util/profiling"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const httpShutdownTimeout = 5 * time.Second

// ComponentManager is a wrapper for all the celld services
type ComponentManager struct {
	cfg           *config.Config
	domain        domain.Domain
	rpcManager    *rpc.Manager
	metricsServer *http.Server
	profileServer *http.Server

	started, shutdown int32
}

// Start launches all the celld services.
func (a *ComponentManager) Start() {
	// Already started?
	if atomic.AddInt32(&a.started, 1) != 1 {
		return
	}

	log.Trace("Starting celld")

	if a.cfg.Profile != "" {
		a.profileServer = profiling.Start(a.cfg.Profile, log)
	}

	if a.metricsServer != nil {
		spawn("ComponentManager.metricsServer", func() {
			log.Infof("Prometheus metrics served on %s/metrics", a.cfg.MetricsListen)
			err := a.metricsServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Metrics server stopped: %s", err)
			}
		})
	}
}

// Stop gracefully shuts down all the celld services.
func (a *ComponentManager) Stop() {
	// Make sure this only happens once.
	if atomic.AddInt32(&a.shutdown, 1) != 1 {
		log.Infof("Celld is already in the process of shutting down")
		return
	}

	log.Warnf("Celld shutting down")

	for _, server := range []*http.Server{a.metricsServer, a.profileServer} {
		if server == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		err := server.Shutdown(ctx)
		cancel()
		if err != nil {
			log.Errorf("Error stopping the server on %s: %+v", server.Addr, err)
		}
	}

	a.rpcManager.Close()
	a.domain.Close()
}

// RPCManager returns the manager RPC requests are handled by.
func (a *ComponentManager) RPCManager() *rpc.Manager {
	return a.rpcManager
}

// NewComponentManager returns a new ComponentManager instance.
// Use Start() to begin all services within this ComponentManager
func NewComponentManager(cfg *config.Config, db *ldb.LevelDB) (*ComponentManager, error) {
	domainInstance, err := domain.New(newDomainConfig(cfg), db)
	if err != nil {
		return nil, err
	}

	networkController := relay.NewOfflineNetworkController(true)
	rpcManager := rpc.NewManager(cfg, domainInstance, networkController)

	var metricsServer *http.Server
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}

	return &ComponentManager{
		cfg:           cfg,
		domain:        domainInstance,
		rpcManager:    rpcManager,
		metricsServer: metricsServer,
	}, nil
}

func newDomainConfig(cfg *config.Config) *domain.Config {
	params := cfg.NetParams()
	mempoolConfig := mempool.DefaultConfig(params)
	mempoolConfig.MinFeeRate = mempool.FeeRate(cfg.MinFeeRate)
	mempoolConfig.MaxTxPoolSize = cfg.MaxTxPoolSize
	mempoolConfig.MaxTxPoolCycles = cfg.MaxTxPoolCycles
	mempoolConfig.MaxTxVerifyCycles = cfg.MaxTxVerifyCycles
	mempoolConfig.MaximumOrphanTransactionCount = cfg.MaxOrphanTxs
	mempoolConfig.VerifyWorkers = cfg.VerifyWorkers
	mempoolConfig.VerifyChunkCycles = cfg.VerifyChunkCycles
	mempoolConfig.VerifyCacheSize = cfg.VerifyCacheSize

	var blockAssembler *model.BlockAssembler
	if cfg.BlockAssemblerLock != nil {
		blockAssembler = &model.BlockAssembler{
			Lock:    cfg.BlockAssemblerLock,
			Message: cfg.BlockAssemblerMessage,
		}
	}

	return &domain.Config{
		Params:         params,
		Clock:          clock.NewDefaultClock(),
		Mempool:        mempoolConfig,
		BlockAssembler: blockAssembler,
	}
}
