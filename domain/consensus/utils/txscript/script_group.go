package txscript

import (
	"sort"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// ScriptGroupType tells whether a group runs a lock or a type script.
type ScriptGroupType uint8

// Script group types.
const (
	LockGroup ScriptGroupType = iota
	TypeGroup
)

func (t ScriptGroupType) String() string {
	if t == LockGroup {
		return "lock"
	}
	return "type"
}

// ScriptGroup is a script together with the inputs and outputs it guards.
// A script runs once per group, not once per cell.
type ScriptGroup struct {
	Script        *externalapi.Script
	ScriptHash    externalapi.DomainHash
	GroupType     ScriptGroupType
	InputIndexes  []int
	OutputIndexes []int
}

// ScriptGroups returns the script groups of rtx: lock groups over the input
// locks, then type groups over input and output type scripts. Groups of the
// same type are ordered by script hash.
func ScriptGroups(rtx *cell.ResolvedTransaction) []*ScriptGroup {
	lockGroups := make(map[externalapi.DomainHash]*ScriptGroup)
	typeGroups := make(map[externalapi.DomainHash]*ScriptGroup)

	groupFor := func(groups map[externalapi.DomainHash]*ScriptGroup, script *externalapi.Script,
		groupType ScriptGroupType) *ScriptGroup {

		hash := *consensushashing.ScriptHash(script)
		group, ok := groups[hash]
		if !ok {
			group = &ScriptGroup{Script: script, ScriptHash: hash, GroupType: groupType}
			groups[hash] = group
		}
		return group
	}

	for i, input := range rtx.ResolvedInputs {
		lockGroup := groupFor(lockGroups, input.Output.Lock, LockGroup)
		lockGroup.InputIndexes = append(lockGroup.InputIndexes, i)
		if input.Output.Type != nil {
			typeGroup := groupFor(typeGroups, input.Output.Type, TypeGroup)
			typeGroup.InputIndexes = append(typeGroup.InputIndexes, i)
		}
	}
	for i, output := range rtx.Transaction.Outputs {
		if output.Type != nil {
			typeGroup := groupFor(typeGroups, output.Type, TypeGroup)
			typeGroup.OutputIndexes = append(typeGroup.OutputIndexes, i)
		}
	}

	return append(sortedGroups(lockGroups), sortedGroups(typeGroups)...)
}

func sortedGroups(groups map[externalapi.DomainHash]*ScriptGroup) []*ScriptGroup {
	sorted := make([]*ScriptGroup, 0, len(groups))
	for _, group := range groups {
		sorted = append(sorted, group)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ScriptHash.Less(&sorted[j].ScriptHash)
	})
	return sorted
}
