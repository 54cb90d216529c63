package app

import (
	"testing"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
	"github.com/cellnetwork/celld/infrastructure/config"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
)

func TestCheckDatabaseVersion(t *testing.T) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %+v", err)
	}
	defer db.Close()

	// A new database gets stamped, and the stamp is accepted afterwards.
	for i := 0; i < 2; i++ {
		err = checkDatabaseVersion(db)
		if err != nil {
			t.Fatalf("TestCheckDatabaseVersion: unexpected error: %+v", err)
		}
	}

	tests := []struct {
		name    string
		version string
	}{
		{name: "other version", version: "2"},
		{name: "malformed", version: "one"},
	}
	for _, test := range tests {
		err = db.Put(databaseVersionKey, []byte(test.version))
		if err != nil {
			t.Fatalf("Put: %+v", err)
		}
		if checkDatabaseVersion(db) == nil {
			t.Fatalf("TestCheckDatabaseVersion: %s: expected an error", test.name)
		}
	}
}

func TestNewDomainConfig(t *testing.T) {
	cfg := &config.Config{
		Flags: &config.Flags{
			MinFeeRate:        5,
			MaxTxPoolSize:     1000,
			MaxTxPoolCycles:   2000,
			MaxTxVerifyCycles: 100,
			MaxOrphanTxs:      3,
			VerifyWorkers:     2,
			VerifyChunkCycles: 10,
			VerifyCacheSize:   20,
			NetworkFlags:      config.NetworkFlags{ActiveNetParams: &chainconfig.DevnetParams},
		},
	}

	domainConfig := newDomainConfig(cfg)
	if domainConfig.BlockAssembler != nil {
		t.Fatalf("TestNewDomainConfig: expected no block assembler")
	}
	if domainConfig.Params != &chainconfig.DevnetParams {
		t.Fatalf("TestNewDomainConfig: unexpected params %s", domainConfig.Params.Name)
	}
	mempoolConfig := domainConfig.Mempool
	if mempoolConfig.MinFeeRate != mempool.FeeRate(5) || mempoolConfig.MaxTxPoolSize != 1000 ||
		mempoolConfig.MaxTxPoolCycles != 2000 || mempoolConfig.MaxTxVerifyCycles != 100 ||
		mempoolConfig.MaximumOrphanTransactionCount != 3 || mempoolConfig.VerifyWorkers != 2 ||
		mempoolConfig.VerifyChunkCycles != 10 || mempoolConfig.VerifyCacheSize != 20 {

		t.Fatalf("TestNewDomainConfig: flags weren't carried over: %+v", mempoolConfig)
	}

	cfg.BlockAssemblerLock = chainconfig.AlwaysSuccessLock()
	cfg.BlockAssemblerMessage = []byte("celld")
	domainConfig = newDomainConfig(cfg)
	if domainConfig.BlockAssembler == nil || !domainConfig.BlockAssembler.Lock.Equal(cfg.BlockAssemblerLock) ||
		string(domainConfig.BlockAssembler.Message) != "celld" {

		t.Fatalf("TestNewDomainConfig: unexpected block assembler %+v", domainConfig.BlockAssembler)
	}
}

func TestComponentManager(t *testing.T) {
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %+v", err)
	}
	defer db.Close()

	cfg := &config.Config{
		Flags: &config.Flags{
			MinFeeRate:        1000,
			MaxTxPoolSize:     180_000_000,
			MaxTxPoolCycles:   200_000_000_000,
			MaxTxVerifyCycles: 70_000_000,
			MaxOrphanTxs:      100,
			VerifyWorkers:     1,
			VerifyChunkCycles: 10_000_000,
			VerifyCacheSize:   100,
			NetworkFlags:      config.NetworkFlags{ActiveNetParams: &chainconfig.DevnetParams},
		},
		BlockAssemblerLock: chainconfig.AlwaysSuccessLock(),
	}
	componentManager, err := NewComponentManager(cfg, db)
	if err != nil {
		t.Fatalf("NewComponentManager: %+v", err)
	}
	componentManager.Start()
	componentManager.Start()
	if componentManager.RPCManager() == nil {
		t.Fatalf("TestComponentManager: no RPC manager")
	}
	componentManager.Stop()
	componentManager.Stop()
}
