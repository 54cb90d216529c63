package mempool

import (
	"runtime"

	"github.com/cellnetwork/celld/domain/chainconfig"
)

const (
	// DefaultMinFeeRate is the minimum fee rate, in shannons per 1000
	// bytes, a transaction must pay to be admitted.
	DefaultMinFeeRate FeeRate = 1_000

	defaultMaxTxPoolSize     = 180_000_000
	defaultMaxTxPoolCycles   = 200_000_000_000
	defaultMaxTxVerifyCycles = 70_000_000

	defaultMaximumOrphanTransactionCount = 100
	defaultMaximumOrphanTransactionSize  = 100_000
	defaultOrphanExpireIntervalBlocks    = 100

	defaultVerifyChunkCycles = 10_000_000
	defaultVerifyCacheSize   = 30_000
)

// Config represents a mempool configuration
type Config struct {
	// MinFeeRate is the minimum fee rate accepted transactions pay.
	MinFeeRate FeeRate

	// MaxTxPoolSize bounds the total serialized size of pool transactions.
	MaxTxPoolSize uint64

	// MaxTxPoolCycles bounds the total script cycles of pool transactions.
	MaxTxPoolCycles uint64

	// MaxTxVerifyCycles bounds the script cycles of a single transaction.
	MaxTxVerifyCycles uint64

	MaximumOrphanTransactionCount int
	MaximumOrphanTransactionSize  uint64
	OrphanExpireIntervalBlocks    uint64

	// VerifyWorkers is the number of script verification goroutines.
	VerifyWorkers int

	// VerifyChunkCycles is how many cycles a worker spends on one
	// transaction before moving to the next queued one.
	VerifyChunkCycles uint64

	// VerifyCacheSize is the number of verification results remembered.
	VerifyCacheSize uint64
}

// DefaultConfig returns the default mempool configuration of the given network
func DefaultConfig(params *chainconfig.Params) *Config {
	maxTxVerifyCycles := uint64(defaultMaxTxVerifyCycles)
	if params.MaxBlockCycles < maxTxVerifyCycles {
		maxTxVerifyCycles = params.MaxBlockCycles
	}
	return &Config{
		MinFeeRate:                    DefaultMinFeeRate,
		MaxTxPoolSize:                 defaultMaxTxPoolSize,
		MaxTxPoolCycles:               defaultMaxTxPoolCycles,
		MaxTxVerifyCycles:             maxTxVerifyCycles,
		MaximumOrphanTransactionCount: defaultMaximumOrphanTransactionCount,
		MaximumOrphanTransactionSize:  defaultMaximumOrphanTransactionSize,
		OrphanExpireIntervalBlocks:    defaultOrphanExpireIntervalBlocks,
		VerifyWorkers:                 runtime.NumCPU(),
		VerifyChunkCycles:             defaultVerifyChunkCycles,
		VerifyCacheSize:               defaultVerifyCacheSize,
	}
}
