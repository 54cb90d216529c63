package rpchandlers_test

import (
	"testing"

	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/app/rpc/rpccontext"
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/chain"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/testutils"
	"github.com/cellnetwork/celld/domain/miningmanager"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/cellnetwork/celld/infrastructure/config"
	"github.com/pkg/errors"
)

const cellCapacity = 1_000 * externalapi.ShannonsPerByte

type fakeDomain struct {
	chain         *chain.Chain
	miningManager miningmanager.MiningManager
}

func (d *fakeDomain) MiningManager() miningmanager.MiningManager { return d.miningManager }
func (d *fakeDomain) Chain() *chain.Chain                        { return d.chain }
func (d *fakeDomain) Close()                                     { d.miningManager.Close() }

type broadcast struct {
	protocolID relay.ProtocolID
	payload    []byte
}

type recordingNetworkController struct {
	relayV2    bool
	fail       bool
	broadcasts []broadcast
}

func (nc *recordingNetworkController) Broadcast(protocolID relay.ProtocolID, payload []byte) error {
	if nc.fail {
		return errors.New("no peers")
	}
	nc.broadcasts = append(nc.broadcasts, broadcast{protocolID: protocolID, payload: payload})
	return nil
}

func (nc *recordingNetworkController) SupportsRelayV2() bool {
	return nc.relayV2
}

type harnessOptions struct {
	isPublicChain    bool
	noAssembler      bool
	configureMempool func(config *mempool.Config)
}

type testHarness struct {
	tc      *testutils.TestChain
	context *rpccontext.Context
	network *recordingNetworkController
	cells   []externalapi.OutPoint
}

// newTestHarness sets up a devnet chain whose tip splits the genesis
// issuance into two cells of cellCapacity each.
func newTestHarness(t *testing.T, options harnessOptions) *testHarness {
	params := chainconfig.DevnetParams
	params.IsPublicChain = options.isPublicChain

	tc := testutils.NewTestChainWithParams(t, &params)
	chainInstance := tc.Chain

	split := tc.Spend([]externalapi.OutPoint{tc.IssuanceOutPoint()},
		cellCapacity, cellCapacity, tc.IssuanceCapacity()-2*cellCapacity-externalapi.ShannonsPerByte)
	tc.AddBlock(split)

	mempoolConfig := mempool.DefaultConfig(&params)
	mempoolConfig.VerifyWorkers = 1
	if options.configureMempool != nil {
		options.configureMempool(mempoolConfig)
	}
	var assembler *model.BlockAssembler
	if !options.noAssembler {
		assembler = &model.BlockAssembler{Lock: chainconfig.AlwaysSuccessLock()}
	}
	miningManager := miningmanager.NewFactory().NewMiningManager(chainInstance, tc.Clock, mempoolConfig, assembler)
	domain := &fakeDomain{chain: chainInstance, miningManager: miningManager}
	t.Cleanup(domain.Close)

	network := &recordingNetworkController{}
	cfg := &config.Config{Flags: &config.Flags{NetworkFlags: config.NetworkFlags{ActiveNetParams: &params}}}
	context := rpccontext.NewContext(cfg, domain, network)
	t.Cleanup(context.Close)

	return &testHarness{
		tc:      tc,
		context: context,
		network: network,
		cells:   []externalapi.OutPoint{testutils.OutPoint(split, 0), testutils.OutPoint(split, 1)},
	}
}

func (h *testHarness) tipHash() *externalapi.DomainHash {
	current := h.tc.Chain.Snapshot()
	defer current.Release()
	return current.TipHash()
}

func (h *testHarness) spend(cell externalapi.OutPoint, capacity externalapi.Capacity) *externalapi.DomainTransaction {
	return h.tc.Spend([]externalapi.OutPoint{cell}, capacity)
}
