package mempool

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
	"github.com/pkg/errors"
)

// typeGroups is how many always success type groups multiGroupTransaction
// creates on top of its lock group.
const typeGroups = 4

// multiGroupTransaction spends outPoint into outputs that each carry a
// distinct always success type script, so every output is a script group
// of its own.
func multiGroupTransaction(tp *testPool, outPoint externalapi.OutPoint) *externalapi.DomainTransaction {
	capacities := make([]externalapi.Capacity, typeGroups)
	for i := range capacities {
		capacities[i] = (cellCapacity - defaultFee) / typeGroups
	}
	transaction := tp.tc.Spend([]externalapi.OutPoint{outPoint}, capacities...)
	for i, output := range transaction.Outputs {
		output.Type = &externalapi.Script{
			CodeHash: systemcells.AlwaysSuccessCodeHash,
			HashType: externalapi.ScriptHashTypeData,
			Args:     []byte{byte(i)},
		}
	}
	return transaction
}

func unchunkedCycles(t *testing.T, testName string) uint64 {
	tp := newTestPool(t, 1, func(config *Config) {
		config.VerifyChunkCycles = 0
	})
	completed, err := tp.submit(multiGroupTransaction(tp, tp.cells[0]))
	if err != nil {
		t.Fatalf("%s: SubmitTransaction: %+v", testName, err)
	}
	if completed.Cycles == 0 {
		t.Fatalf("%s: expected the scripts to consume cycles", testName)
	}
	return completed.Cycles
}

// canceledAfter is a context that reports cancellation once Err was asked
// more than checks times. Done never fires.
type canceledAfter struct {
	context.Context
	checks int32
	calls  int32
}

func (c *canceledAfter) Err() error {
	if atomic.AddInt32(&c.calls, 1) > c.checks {
		return context.Canceled
	}
	return nil
}

func TestChunkedVerification(t *testing.T) {
	expectedCycles := unchunkedCycles(t, "TestChunkedVerification")

	tests := []struct {
		name        string
		chunkCycles uint64
	}{
		{"one group per chunk", 1},
		{"some groups per chunk", expectedCycles / 2},
		{"all groups in one chunk", expectedCycles},
	}
	for _, test := range tests {
		tp := newTestPool(t, 1, func(config *Config) {
			config.VerifyChunkCycles = test.chunkCycles
		})
		transaction := multiGroupTransaction(tp, tp.cells[0])
		completed, err := tp.submit(transaction)
		if err != nil {
			t.Fatalf("TestChunkedVerification: %s: SubmitTransaction: %+v", test.name, err)
		}
		if completed.Cycles != expectedCycles {
			t.Fatalf("TestChunkedVerification: %s: consumed %d cycles, expected %d",
				test.name, completed.Cycles, expectedCycles)
		}
		if !tp.contains(transaction) {
			t.Fatalf("TestChunkedVerification: %s: the transaction was not added to the pool", test.name)
		}
	}
}

func TestAbandonedVerificationResumes(t *testing.T) {
	expectedCycles := unchunkedCycles(t, "TestAbandonedVerificationResumes")

	tp := newTestPool(t, 1, func(config *Config) {
		config.VerifyChunkCycles = 1
	})
	transaction := multiGroupTransaction(tp, tp.cells[0])
	witnessHash := consensushashing.WitnessHash(transaction)

	// The first chunk runs, then the caller is gone.
	ctx := &canceledAfter{Context: context.Background(), checks: 1}
	_, err := tp.SubmitTransaction(ctx, transaction)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("TestAbandonedVerificationResumes: expected context.Canceled, got: %+v", err)
	}
	if tp.contains(transaction) {
		t.Fatalf("TestAbandonedVerificationResumes: an abandoned transaction was added to the pool")
	}

	current := tp.tc.Chain.Snapshot()
	entry, ok := tp.verifyCache.Get(witnessHash, current.FeatureSet())
	current.Release()
	suspended, isSuspended := entry.(*transactionvalidator.Suspended)
	if !ok || !isSuspended {
		t.Fatalf("TestAbandonedVerificationResumes: expected a suspended verification to be cached, got %T", entry)
	}
	if suspended.State.NextGroup != 1 {
		t.Fatalf("TestAbandonedVerificationResumes: expected to be suspended before group 1, got %d",
			suspended.State.NextGroup)
	}
	if suspended.State.Cycles == 0 || suspended.State.Cycles >= expectedCycles {
		t.Fatalf("TestAbandonedVerificationResumes: unexpected cycles %d in the suspended state",
			suspended.State.Cycles)
	}

	completed, err := tp.submit(transaction)
	if err != nil {
		t.Fatalf("TestAbandonedVerificationResumes: SubmitTransaction: %+v", err)
	}
	if completed.Cycles != expectedCycles {
		t.Fatalf("TestAbandonedVerificationResumes: resumed verification consumed %d cycles, expected %d",
			completed.Cycles, expectedCycles)
	}
	if !tp.contains(transaction) {
		t.Fatalf("TestAbandonedVerificationResumes: the resumed transaction was not added to the pool")
	}

	current = tp.tc.Chain.Snapshot()
	entry, _ = tp.verifyCache.Get(witnessHash, current.FeatureSet())
	current.Release()
	if _, ok := entry.(*transactionvalidator.Completed); !ok {
		t.Fatalf("TestAbandonedVerificationResumes: expected the completed verification to replace the suspended one, got %T",
			entry)
	}
}
