package cell

import (
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
)

// ResolvedTransaction is a transaction with its inputs and cell deps bound
// to the cells they reference.
type ResolvedTransaction struct {
	Transaction       *externalapi.DomainTransaction
	Hash              *externalapi.DomainHash
	ResolvedCellDeps  []*externalapi.CellMeta
	ResolvedInputs    []*externalapi.CellMeta
	ResolvedDepGroups []*externalapi.CellMeta
}

// InputsCapacity sums the capacities of the resolved inputs.
func (rtx *ResolvedTransaction) InputsCapacity() (externalapi.Capacity, error) {
	capacities := make([]externalapi.Capacity, len(rtx.ResolvedInputs))
	for i, input := range rtx.ResolvedInputs {
		capacities[i] = input.Output.Capacity
	}
	return externalapi.SumCapacities(capacities...)
}

// ResolveOptions toggles resolution rules gated by hard forks.
type ResolveOptions struct {
	// DisallowDepConsumption makes a cell dep that an earlier transaction
	// of the batch consumed a dead reference.
	DisallowDepConsumption bool
}

// NewResolveOptions returns the resolve options of the given features.
func NewResolveOptions(features chainconfig.FeatureSet) ResolveOptions {
	return ResolveOptions{
		DisallowDepConsumption: features&chainconfig.FeatureDisallowDepConsumption != 0,
	}
}

// SeenInputs accumulates the inputs consumed by one resolution batch.
type SeenInputs map[externalapi.OutPoint]struct{}

// ResolveTransaction binds tx's references against provider. seenInputs
// holds the inputs consumed by earlier transactions of the same batch and
// receives tx's inputs if and only if resolution succeeds.
//
// A failure to resolve is returned as an OutPointError; any other error is
// a provider fault.
func ResolveTransaction(tx *externalapi.DomainTransaction, seenInputs SeenInputs, provider Provider,
	headerChecker HeaderChecker, options ResolveOptions) (*ResolvedTransaction, error) {

	rtx := &ResolvedTransaction{
		Transaction:      tx,
		Hash:             consensushashing.TransactionHash(tx),
		ResolvedCellDeps: make([]*externalapi.CellMeta, 0, len(tx.CellDeps)),
	}

	var currentInputs SeenInputs
	if !tx.IsCellbase() {
		currentInputs = make(SeenInputs, len(tx.Inputs))
		rtx.ResolvedInputs = make([]*externalapi.CellMeta, 0, len(tx.Inputs))
		for _, input := range tx.Inputs {
			outPoint := input.PreviousOutput
			if _, ok := seenInputs[outPoint]; ok {
				return nil, newOutPointError(OutPointDead, outPoint)
			}
			if _, ok := currentInputs[outPoint]; ok {
				return nil, newOutPointError(OutPointDead, outPoint)
			}
			currentInputs[outPoint] = struct{}{}

			meta, err := resolveLiveCell(provider, &outPoint)
			if err != nil {
				return nil, err
			}
			rtx.ResolvedInputs = append(rtx.ResolvedInputs, meta)
		}
	}

	for _, cellDep := range tx.CellDeps {
		outPoint := cellDep.OutPoint
		if options.DisallowDepConsumption {
			if _, ok := seenInputs[outPoint]; ok {
				return nil, newOutPointError(OutPointDead, outPoint)
			}
		}
		meta, err := resolveLiveCell(provider, &outPoint)
		if err != nil {
			return nil, err
		}

		if cellDep.DepType != externalapi.DepTypeDepGroup {
			rtx.ResolvedCellDeps = append(rtx.ResolvedCellDeps, meta)
			continue
		}

		subOutPoints, err := serialization.DeserializeOutPoints(meta.Data)
		if err != nil {
			return nil, newOutPointError(OutPointInvalidDepGroup, outPoint)
		}
		for i := range subOutPoints {
			subMeta, err := resolveLiveCell(provider, &subOutPoints[i])
			if err != nil {
				return nil, err
			}
			rtx.ResolvedCellDeps = append(rtx.ResolvedCellDeps, subMeta)
		}
		rtx.ResolvedDepGroups = append(rtx.ResolvedDepGroups, meta)
	}

	for i := range tx.HeaderDeps {
		err := headerChecker.CheckValid(&tx.HeaderDeps[i])
		if err != nil {
			return nil, err
		}
	}

	for outPoint := range currentInputs {
		seenInputs[outPoint] = struct{}{}
	}
	return rtx, nil
}

func resolveLiveCell(provider Provider, outPoint *externalapi.OutPoint) (*externalapi.CellMeta, error) {
	status, err := provider.Cell(outPoint)
	if err != nil {
		return nil, err
	}
	switch status.Kind {
	case StatusLive:
		return status.Cell, nil
	case StatusDead:
		return nil, newOutPointError(OutPointDead, *outPoint)
	default:
		return nil, newOutPointError(OutPointUnknown, *outPoint)
	}
}
