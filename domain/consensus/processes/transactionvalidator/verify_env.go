package transactionvalidator

import (
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// Phase is the stage of a transaction's life a verification is run for.
type Phase uint8

// Verification phases.
const (
	// PhaseSubmitted verifies a transaction entering the pool on top of
	// the tip. It is checked against the earliest block it could be
	// committed in.
	PhaseSubmitted Phase = iota

	// PhaseProposed verifies a transaction proposed some blocks ago.
	PhaseProposed

	// PhaseCommitted verifies a transaction inside a block.
	PhaseCommitted
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitted:
		return "submitted"
	case PhaseProposed:
		return "proposed"
	default:
		return "committed"
	}
}

// VerifyEnv is the chain position time-relative rules are evaluated at.
type VerifyEnv struct {
	phase           Phase
	alreadyProposed uint64
	number          uint64
	hash            externalapi.DomainHash
	parentHash      externalapi.DomainHash
	epoch           externalapi.EpochNumberWithFraction
}

// NewSubmittedEnv returns the environment of a transaction submitted on
// top of tip.
func NewSubmittedEnv(tip *externalapi.DomainBlockHeader) *VerifyEnv {
	return newVerifyEnv(PhaseSubmitted, 0, tip)
}

// NewProposedEnv returns the environment of a transaction proposed
// alreadyProposed blocks before tip.
func NewProposedEnv(tip *externalapi.DomainBlockHeader, alreadyProposed uint64) *VerifyEnv {
	return newVerifyEnv(PhaseProposed, alreadyProposed, tip)
}

// NewCommittedEnv returns the environment of a transaction committed in
// the block with the given header.
func NewCommittedEnv(header *externalapi.DomainBlockHeader) *VerifyEnv {
	return newVerifyEnv(PhaseCommitted, 0, header)
}

func newVerifyEnv(phase Phase, alreadyProposed uint64, header *externalapi.DomainBlockHeader) *VerifyEnv {
	return &VerifyEnv{
		phase:           phase,
		alreadyProposed: alreadyProposed,
		number:          header.Number,
		hash:            *consensushashing.HeaderHash(header),
		parentHash:      header.ParentHash,
		epoch:           header.Epoch,
	}
}

// Phase returns the verification phase.
func (env *VerifyEnv) Phase() Phase {
	return env.phase
}

// BlockNumber returns the number of the earliest block the transaction can
// be committed in.
func (env *VerifyEnv) BlockNumber(window chainconfig.ProposalWindow) uint64 {
	switch env.phase {
	case PhaseSubmitted:
		return env.number + 1 + window.Closest
	case PhaseProposed:
		if env.alreadyProposed >= window.Closest {
			return env.number + 1
		}
		return env.number + 1 + window.Closest - env.alreadyProposed
	default:
		return env.number
	}
}

// Epoch returns the epoch of the earliest block the transaction can be
// committed in.
func (env *VerifyEnv) Epoch(params *chainconfig.Params) externalapi.EpochNumberWithFraction {
	if env.phase == PhaseCommitted {
		return env.epoch
	}
	return params.EpochAt(env.BlockNumber(params.TxProposalWindow))
}

// ParentHash returns the block whose median time bounds timestamp locks:
// the tip for pool phases, the parent of the committing block otherwise.
func (env *VerifyEnv) ParentHash() *externalapi.DomainHash {
	if env.phase == PhaseCommitted {
		return &env.parentHash
	}
	return &env.hash
}

// TipEpoch returns the epoch of the header the environment was built from.
func (env *VerifyEnv) TipEpoch() externalapi.EpochNumberWithFraction {
	return env.epoch
}
