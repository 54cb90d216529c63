package rpc

import (
	"testing"
	"time"

	"github.com/cellnetwork/celld/app/appmessage"
	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/domain"
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/cellnetwork/celld/infrastructure/config"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type nopNetworkController struct{}

func (nopNetworkController) Broadcast(relay.ProtocolID, []byte) error { return nil }
func (nopNetworkController) SupportsRelayV2() bool                  { return false }

func newTestManager(t *testing.T) *Manager {
	params := &chainconfig.DevnetParams
	db, err := ldb.NewInMemoryLevelDB()
	if err != nil {
		t.Fatalf("NewInMemoryLevelDB: %+v", err)
	}
	t.Cleanup(func() { db.Close() })

	domainInstance, err := domain.New(&domain.Config{
		Params:         params,
		Clock:          clock.NewTestClock(time.UnixMilli(int64(params.GenesisTimestamp) + 1_000_000)),
		Mempool:        mempool.DefaultConfig(params),
		BlockAssembler: &model.BlockAssembler{Lock: chainconfig.AlwaysSuccessLock()},
	}, db)
	if err != nil {
		t.Fatalf("domain.New: %+v", err)
	}
	t.Cleanup(domainInstance.Close)

	cfg := &config.Config{Flags: &config.Flags{NetworkFlags: config.NetworkFlags{ActiveNetParams: params}}}
	manager := NewManager(cfg, domainInstance, nopNetworkController{})
	t.Cleanup(manager.Close)
	return manager
}

func TestHandleRequest(t *testing.T) {
	manager := newTestManager(t)
	generated := testutil.ToFloat64(requests.WithLabelValues("GenerateBlockRequest", "ok"))

	response, err := manager.HandleRequest(appmessage.NewGenerateBlockRequestMessage(
		fn.None[*externalapi.Script](), fn.None[[]byte]()))
	if err != nil {
		t.Fatalf("HandleRequest: %+v", err)
	}
	generateResponse, ok := response.(*appmessage.GenerateBlockResponseMessage)
	if !ok {
		t.Fatalf("TestHandleRequest: unexpected response type %T", response)
	}
	if generateResponse.Error != nil {
		t.Fatalf("TestHandleRequest: unexpected error: %s", generateResponse.Error)
	}
	if testutil.ToFloat64(requests.WithLabelValues("GenerateBlockRequest", "ok")) != generated+1 {
		t.Fatalf("TestHandleRequest: the request wasn't counted")
	}

	failed := testutil.ToFloat64(requests.WithLabelValues("TruncateRequest", "Invalid"))
	response, err = manager.HandleRequest(appmessage.NewTruncateRequestMessage(externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})))
	if err != nil {
		t.Fatalf("HandleRequest: %+v", err)
	}
	if response.(*appmessage.TruncateResponseMessage).Error == nil {
		t.Fatalf("TestHandleRequest: expected truncating to an unknown block to fail")
	}
	if testutil.ToFloat64(requests.WithLabelValues("TruncateRequest", "Invalid")) != failed+1 {
		t.Fatalf("TestHandleRequest: the failed request wasn't counted by its error code")
	}
}

func TestHandleRequestUnknownCommand(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.HandleRequest(appmessage.NewTruncateResponseMessage())
	if err == nil {
		t.Fatalf("TestHandleRequestUnknownCommand: expected a response message to be refused as a request")
	}
}

func TestHandlersCoverRequests(t *testing.T) {
	for command, name := range appmessage.RPCMessageCommandToString {
		if command%2 == 1 {
			continue
		}
		if _, ok := handlers[command]; !ok {
			t.Fatalf("TestHandlersCoverRequests: no handler for %s", name)
		}
	}
}
