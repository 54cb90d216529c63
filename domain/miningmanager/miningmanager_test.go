package miningmanager_test

import (
	"context"
	"testing"
	"time"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/testutils"
	"github.com/cellnetwork/celld/domain/miningmanager"
	"github.com/cellnetwork/celld/domain/miningmanager/blocktemplatebuilder"
	"github.com/cellnetwork/celld/domain/miningmanager/mempool"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/stretchr/testify/require"
)

const cellCapacity = 1_000 * externalapi.ShannonsPerByte

func setupMiningManager(t *testing.T) (*testutils.TestChain, miningmanager.MiningManager, []externalapi.OutPoint) {
	tc := testutils.NewTestChain(t)
	split := tc.Spend([]externalapi.OutPoint{tc.IssuanceOutPoint()},
		cellCapacity, cellCapacity, tc.IssuanceCapacity()-2*cellCapacity-externalapi.ShannonsPerByte)
	tc.AddBlock(split)

	config := mempool.DefaultConfig(tc.Params)
	config.VerifyWorkers = 1
	miningManager := miningmanager.NewFactory().NewMiningManager(tc.Chain, tc.Clock, config,
		&model.BlockAssembler{Lock: chainconfig.AlwaysSuccessLock()})
	t.Cleanup(miningManager.Close)

	return tc, miningManager, []externalapi.OutPoint{testutils.OutPoint(split, 0), testutils.OutPoint(split, 1)}
}

// TestMineSubmittedTransaction submits a transaction, mines it through a
// template and checks the attached block takes it out of the pool.
func TestMineSubmittedTransaction(t *testing.T) {
	tc, miningManager, cells := setupMiningManager(t)

	transaction := tc.Spend(cells[:1], cellCapacity-externalapi.ShannonsPerByte)
	completed, err := miningManager.SubmitTransaction(context.Background(), transaction)
	require.NoError(t, err)
	require.Equal(t, externalapi.Capacity(externalapi.ShannonsPerByte), completed.Fee)
	require.Equal(t, 1, miningManager.TransactionCount())

	template, err := miningManager.GetBlockTemplate(&model.BlockTemplateRequest{})
	require.NoError(t, err)
	require.Len(t, template.Transactions, 1)
	require.True(t, template.Transactions[0].Hash.Equal(consensushashing.TransactionHash(transaction)))

	isNew, err := tc.Chain.ProcessBlock(blocktemplatebuilder.BlockFromTemplate(template))
	require.NoError(t, err)
	require.True(t, isNew)
	require.Zero(t, miningManager.TransactionCount())

	_, err = miningManager.SubmitTransaction(context.Background(), transaction)
	require.Error(t, err, "a committed transaction must not be admitted again")
}

func TestClearPool(t *testing.T) {
	tc, miningManager, cells := setupMiningManager(t)

	for _, cell := range cells {
		_, err := miningManager.SubmitTransaction(context.Background(),
			tc.Spend([]externalapi.OutPoint{cell}, cellCapacity-externalapi.ShannonsPerByte))
		require.NoError(t, err)
	}
	require.Len(t, miningManager.Transactions(), 2)

	current := tc.Chain.Snapshot()
	defer current.Release()
	miningManager.ClearPool(current)
	require.Empty(t, miningManager.Transactions())
}

func TestNotifyTransaction(t *testing.T) {
	tc, miningManager, cells := setupMiningManager(t)

	transaction := tc.Spend(cells[:1], cellCapacity-externalapi.ShannonsPerByte)
	miningManager.NotifyTransaction(transaction)

	require.Eventually(t, func() bool {
		_, ok := miningManager.GetTransaction(consensushashing.TransactionHash(transaction))
		return ok
	}, 5*time.Second, 10*time.Millisecond)
}
