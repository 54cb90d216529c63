package chainconfig

import (
	"math"
	"time"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
)

// ProposalWindow bounds, in blocks, how far after being proposed a
// transaction may be committed.
type ProposalWindow struct {
	Closest  uint64
	Farthest uint64
}

// HardforkSwitch holds the epoch numbers at which consensus features
// activate. math.MaxUint64 means never.
type HardforkSwitch struct {
	// DisallowDepConsumption forbids a resolution batch from consuming a
	// cell that an earlier transaction in the batch used as a cell dep.
	DisallowDepConsumption uint64

	// RFC0032 enables the data1 script hash type.
	RFC0032 uint64
}

// FeatureSet is a bitmask of the consensus features active at some epoch.
// Results computed under one feature set are not reusable under another.
type FeatureSet uint32

// Feature bits.
const (
	FeatureDisallowDepConsumption FeatureSet = 1 << iota
	FeatureData1HashType
)

// IsDisallowDepConsumptionEnabled returns whether the dep consumption rule
// applies at the given epoch.
func (s *HardforkSwitch) IsDisallowDepConsumptionEnabled(epochNumber uint64) bool {
	return epochNumber >= s.DisallowDepConsumption
}

// IsData1HashTypeEnabled returns whether data1 scripts are valid at the
// given epoch.
func (s *HardforkSwitch) IsData1HashTypeEnabled(epochNumber uint64) bool {
	return epochNumber >= s.RFC0032
}

// FeatureSet returns the features active at the given epoch.
func (s *HardforkSwitch) FeatureSet(epochNumber uint64) FeatureSet {
	var features FeatureSet
	if s.IsDisallowDepConsumptionEnabled(epochNumber) {
		features |= FeatureDisallowDepConsumption
	}
	if s.IsData1HashTypeEnabled(epochNumber) {
		features |= FeatureData1HashType
	}
	return features
}

// GenesisCell is an issuance cell created by the genesis cellbase.
type GenesisCell struct {
	Capacity externalapi.Capacity
	Lock     *externalapi.Script
}

// Params defines a cell network by its consensus parameters.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// IsPublicChain marks networks where block submission applies network
	// policy rules on top of consensus, such as rejecting block extensions.
	IsPublicChain bool

	GenesisTimestamp     uint64
	GenesisCompactTarget uint32
	GenesisMessage       []byte
	GenesisIssuance      []GenesisCell

	// EpochLength is the number of blocks in every epoch.
	EpochLength uint64

	// InitialPrimaryEpochReward is halved every
	// PrimaryEpochRewardHalvingInterval epochs.
	InitialPrimaryEpochReward         externalapi.Capacity
	PrimaryEpochRewardHalvingInterval uint64

	// SecondaryEpochReward is issued every epoch and split between
	// depositors and miners by the DAO rules.
	SecondaryEpochReward externalapi.Capacity

	// CellbaseMaturity is the epoch distance after which cellbase outputs
	// become spendable.
	CellbaseMaturity externalapi.EpochNumberWithFraction

	// MedianTimeBlockCount is the number of ancestors whose median
	// timestamp bounds a new block's timestamp.
	MedianTimeBlockCount int

	// MaxFutureBlockTime is how far ahead of the local clock a block
	// timestamp may be.
	MaxFutureBlockTime time.Duration

	MaxBlockBytes          uint64
	MaxBlockCycles         uint64
	MaxBlockProposalsLimit uint64
	MaxUnclesNum           int
	MaxUncleAge            uint64
	TxProposalWindow       ProposalWindow

	TxVersion    uint32
	BlockVersion uint32

	HardforkSwitch HardforkSwitch

	// SkipProofOfWork replaces proof of work verification with a no-op.
	SkipProofOfWork bool
}

// PrimaryEpochReward returns the primary issuance of the given epoch.
func (p *Params) PrimaryEpochReward(epochNumber uint64) externalapi.Capacity {
	halvings := epochNumber / p.PrimaryEpochRewardHalvingInterval
	if halvings >= 64 {
		return 0
	}
	return p.InitialPrimaryEpochReward >> halvings
}

// PrimaryBlockReward returns the primary issuance of the block at the given
// epoch position. The remainder of the epoch reward goes to the first blocks
// of the epoch.
func (p *Params) PrimaryBlockReward(epoch externalapi.EpochNumberWithFraction) externalapi.Capacity {
	return splitEpochReward(p.PrimaryEpochReward(epoch.Number()), epoch)
}

// SecondaryBlockReward returns the secondary issuance of the block at the
// given epoch position.
func (p *Params) SecondaryBlockReward(epoch externalapi.EpochNumberWithFraction) externalapi.Capacity {
	return splitEpochReward(p.SecondaryEpochReward, epoch)
}

func splitEpochReward(epochReward externalapi.Capacity, epoch externalapi.EpochNumberWithFraction) externalapi.Capacity {
	length := epoch.Length()
	if length == 0 {
		return 0
	}
	blockReward := uint64(epochReward) / length
	if epoch.Index() < uint64(epochReward)%length {
		blockReward++
	}
	return externalapi.Capacity(blockReward)
}

// EpochAt returns the epoch position of the block with the given number.
func (p *Params) EpochAt(blockNumber uint64) externalapi.EpochNumberWithFraction {
	return externalapi.NewEpochNumberWithFraction(blockNumber/p.EpochLength, blockNumber%p.EpochLength, p.EpochLength)
}

const (
	mainnetEpochLength = 1800
	devnetEpochLength  = 10
)

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:                 "mainnet",
	IsPublicChain:        true,
	GenesisTimestamp:     1573852190812,
	GenesisCompactTarget: 0x1a08a97e,
	GenesisMessage:       []byte("cell mainnet genesis"),

	EpochLength:                       mainnetEpochLength,
	InitialPrimaryEpochReward:         191_780_821_917_808,
	PrimaryEpochRewardHalvingInterval: 8760,
	SecondaryEpochReward:              61_369_863_013_698,
	CellbaseMaturity:                  externalapi.NewEpochNumberWithFraction(4, 0, 1),
	MedianTimeBlockCount:              37,
	MaxFutureBlockTime:                15 * time.Second,

	MaxBlockBytes:          597_000,
	MaxBlockCycles:         3_500_000_000,
	MaxBlockProposalsLimit: 1_500,
	MaxUnclesNum:           2,
	MaxUncleAge:            6,
	TxProposalWindow:       ProposalWindow{Closest: 2, Farthest: 10},

	TxVersion:    0,
	BlockVersion: 0,

	HardforkSwitch: HardforkSwitch{
		DisallowDepConsumption: 5414,
		RFC0032:                5414,
	},
}

// TestnetParams defines the network parameters for the public test network.
var TestnetParams = Params{
	Name:                 "testnet",
	IsPublicChain:        true,
	GenesisTimestamp:     1589276230000,
	GenesisCompactTarget: 0x1e015555,
	GenesisMessage:       []byte("cell testnet genesis"),

	EpochLength:                       mainnetEpochLength,
	InitialPrimaryEpochReward:         191_780_821_917_808,
	PrimaryEpochRewardHalvingInterval: 8760,
	SecondaryEpochReward:              61_369_863_013_698,
	CellbaseMaturity:                  externalapi.NewEpochNumberWithFraction(4, 0, 1),
	MedianTimeBlockCount:              37,
	MaxFutureBlockTime:                15 * time.Second,

	MaxBlockBytes:          597_000,
	MaxBlockCycles:         3_500_000_000,
	MaxBlockProposalsLimit: 1_500,
	MaxUnclesNum:           2,
	MaxUncleAge:            6,
	TxProposalWindow:       ProposalWindow{Closest: 2, Farthest: 10},

	HardforkSwitch: HardforkSwitch{
		DisallowDepConsumption: 3113,
		RFC0032:                3113,
	},
}

// DevnetParams defines the network parameters for local development chains.
// Proof of work is skipped and every hard fork is active from genesis.
var DevnetParams = Params{
	Name:                 "devnet",
	IsPublicChain:        false,
	GenesisTimestamp:     1700000000000,
	GenesisCompactTarget: 0x20010000,
	GenesisMessage:       []byte("cell devnet genesis"),
	GenesisIssuance: []GenesisCell{
		{Capacity: 20_000_000_000 * externalapi.ShannonsPerByte, Lock: AlwaysSuccessLock()},
	},

	EpochLength:                       devnetEpochLength,
	InitialPrimaryEpochReward:         1_000 * externalapi.ShannonsPerByte * devnetEpochLength,
	PrimaryEpochRewardHalvingInterval: 8760,
	SecondaryEpochReward:              100 * externalapi.ShannonsPerByte * devnetEpochLength,
	CellbaseMaturity:                  externalapi.NewEpochNumberWithFraction(0, 4, devnetEpochLength),
	MedianTimeBlockCount:              37,
	MaxFutureBlockTime:                15 * time.Second,

	MaxBlockBytes:          597_000,
	MaxBlockCycles:         3_500_000_000,
	MaxBlockProposalsLimit: 1_500,
	MaxUnclesNum:           2,
	MaxUncleAge:            6,
	TxProposalWindow:       ProposalWindow{Closest: 2, Farthest: 10},

	HardforkSwitch: HardforkSwitch{
		DisallowDepConsumption: 0,
		RFC0032:                0,
	},

	SkipProofOfWork: true,
}

// NeverActivated is the HardforkSwitch epoch of a feature that never activates.
const NeverActivated = math.MaxUint64

// AlwaysSuccessLock returns a lock script anyone can unlock. Only devnet
// issues cells to it.
func AlwaysSuccessLock() *externalapi.Script {
	return &externalapi.Script{
		CodeHash: systemcells.AlwaysSuccessCodeHash,
		HashType: externalapi.ScriptHashTypeData,
	}
}
