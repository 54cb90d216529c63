package domain_test

import (
	"testing"
	"time"

	"github.com/cellnetwork/celld/domain"
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/miningmanager/blocktemplatebuilder"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/lightningnetwork/lnd/clock"
)

func TestNewDomain(t *testing.T) {
	params := &chainconfig.DevnetParams
	db, err := ldb.NewLevelDB(t.TempDir())
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	defer db.Close()

	config := &domain.Config{
		Params:         params,
		Clock:          clock.NewTestClock(time.UnixMilli(int64(params.GenesisTimestamp) + 1_000_000)),
		Mempool:        mempool.DefaultConfig(params),
		BlockAssembler: &model.BlockAssembler{Lock: chainconfig.AlwaysSuccessLock()},
	}
	domainInstance, err := domain.New(config, db)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	defer domainInstance.Close()

	template, err := domainInstance.MiningManager().GetBlockTemplate(&model.BlockTemplateRequest{})
	if err != nil {
		t.Fatalf("GetBlockTemplate: %+v", err)
	}
	_, err = domainInstance.Chain().ProcessBlock(blocktemplatebuilder.BlockFromTemplate(template))
	if err != nil {
		t.Fatalf("ProcessBlock: %+v", err)
	}

	current := domainInstance.Chain().Snapshot()
	defer current.Release()
	if current.TipHeader().Number != 1 {
		t.Fatalf("expected the tip at number 1, got %d", current.TipHeader().Number)
	}
}
