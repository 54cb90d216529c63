package txscript

import (
	"fmt"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
)

// State is where a suspended verification resumes: the index of the next
// script group to run and the cycles consumed so far.
type State struct {
	NextGroup int
	Cycles    uint64
}

// Result is the outcome of a verification run. Suspended is nil when every
// group ran.
type Result struct {
	Cycles    uint64
	Suspended *State
}

// IsCompleted returns whether every group ran.
func (r *Result) IsCompleted() bool {
	return r.Suspended == nil
}

// Verifier runs the scripts of a resolved transaction.
type Verifier struct {
	rtx          *cell.ResolvedTransaction
	groups       []*ScriptGroup
	data1Enabled bool
	depDataHash  []*externalapi.DomainHash
}

// NewVerifier returns a Verifier for rtx under the given consensus
// features.
func NewVerifier(rtx *cell.ResolvedTransaction, features chainconfig.FeatureSet) *Verifier {
	depDataHash := make([]*externalapi.DomainHash, len(rtx.ResolvedCellDeps))
	for i, dep := range rtx.ResolvedCellDeps {
		depDataHash[i] = consensushashing.DataHash(dep.Data)
	}
	return &Verifier{
		rtx:          rtx,
		groups:       ScriptGroups(rtx),
		data1Enabled: features&chainconfig.FeatureData1HashType != 0,
		depDataHash:  depDataHash,
	}
}

// Groups returns the script groups in execution order.
func (v *Verifier) Groups() []*ScriptGroup {
	return v.groups
}

// Verify runs every group and returns the consumed cycles.
func (v *Verifier) Verify(maxCycles uint64) (uint64, error) {
	result, err := v.Resume(State{}, maxCycles, 0)
	if err != nil {
		return 0, err
	}
	return result.Cycles, nil
}

// Resume runs groups starting at state. It suspends before a group that
// would take the cycles spent by this call past chunkCycles, but always
// runs at least one group. A chunkCycles of zero never suspends. Consuming
// more than maxCycles in total fails with ErrExceededCycles.
func (v *Verifier) Resume(state State, maxCycles, chunkCycles uint64) (*Result, error) {
	if state.NextGroup > len(v.groups) {
		return nil, scriptError(ErrInternal,
			fmt.Sprintf("resume point %d is past the last group %d", state.NextGroup, len(v.groups)))
	}

	cycles := state.Cycles
	var spent uint64
	for i := state.NextGroup; i < len(v.groups); i++ {
		group := v.groups[i]
		program, err := v.program(group.Script)
		if err != nil {
			return nil, groupError(i, group, err)
		}

		cost := programCycles(program, group)
		if cycles+cost < cycles || cycles+cost > maxCycles {
			return nil, scriptError(ErrExceededCycles,
				fmt.Sprintf("group %d needs %d cycles on top of %d, exceeding the limit %d",
					i, cost, cycles, maxCycles))
		}
		if chunkCycles > 0 && spent > 0 && spent+cost > chunkCycles {
			log.Tracef("Suspending verification of %s at group %d after %d cycles", v.rtx.Hash, i, cycles)
			return &Result{Cycles: cycles, Suspended: &State{NextGroup: i, Cycles: cycles}}, nil
		}

		err = runProgram(program, v.rtx, group)
		if err != nil {
			return nil, groupError(i, group, err)
		}
		cycles += cost
		spent += cost
	}
	return &Result{Cycles: cycles}, nil
}

func groupError(index int, group *ScriptGroup, err error) error {
	code := ErrInternal
	if scriptErr, ok := err.(Error); ok {
		code = scriptErr.ErrorCode
	}
	return scriptError(code, fmt.Sprintf("%s script %s (group %d): %s",
		group.GroupType, group.ScriptHash, index, err))
}

// program locates the code cell script references among the resolved cell
// deps and returns the program it deploys.
func (v *Verifier) program(script *externalapi.Script) (systemcells.Program, error) {
	var data []byte
	switch script.HashType {
	case externalapi.ScriptHashTypeData1:
		if !v.data1Enabled {
			return systemcells.ProgramUnknown, scriptError(ErrInvalidHashType, "data1 hash type is not active")
		}
		fallthrough
	case externalapi.ScriptHashTypeData:
		for i, dep := range v.rtx.ResolvedCellDeps {
			if v.depDataHash[i].Equal(&script.CodeHash) {
				data = dep.Data
				break
			}
		}
	case externalapi.ScriptHashTypeType:
		var found *externalapi.DomainHash
		for i, dep := range v.rtx.ResolvedCellDeps {
			if dep.Output.Type == nil || !consensushashing.ScriptHash(dep.Output.Type).Equal(&script.CodeHash) {
				continue
			}
			if found != nil && !found.Equal(v.depDataHash[i]) {
				return systemcells.ProgramUnknown, scriptError(ErrMultipleMatches,
					fmt.Sprintf("type hash %s matches more than one code cell", script.CodeHash))
			}
			found = v.depDataHash[i]
			data = dep.Data
		}
	default:
		return systemcells.ProgramUnknown, scriptError(ErrInvalidHashType,
			fmt.Sprintf("unknown hash type %s", script.HashType))
	}

	if data == nil {
		return systemcells.ProgramUnknown, scriptError(ErrScriptNotFound,
			fmt.Sprintf("no cell dep holds code %s (%s)", script.CodeHash, script.HashType))
	}
	program := systemcells.ProgramByData(data)
	if program == systemcells.ProgramUnknown {
		return program, scriptError(ErrUnsupportedProgram,
			fmt.Sprintf("code %s is not a supported program", script.CodeHash))
	}
	return program, nil
}
