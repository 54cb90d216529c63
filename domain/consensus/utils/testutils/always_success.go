package testutils

import (
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/chain"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
)

// Spend returns a transaction spending outPoints, all locked by the
// always success script, into one always success output per capacity.
func (tc *TestChain) Spend(outPoints []externalapi.OutPoint,
	capacities ...externalapi.Capacity) *externalapi.DomainTransaction {

	transaction := &externalapi.DomainTransaction{
		Version:  tc.Params.TxVersion,
		CellDeps: []*externalapi.CellDep{chain.SystemCellDep(tc.Chain.Genesis(), systemcells.ProgramAlwaysSuccess)},
	}
	for _, outPoint := range outPoints {
		transaction.Inputs = append(transaction.Inputs, &externalapi.CellInput{PreviousOutput: outPoint})
		transaction.Witnesses = append(transaction.Witnesses, nil)
	}
	for _, capacity := range capacities {
		transaction.Outputs = append(transaction.Outputs,
			&externalapi.CellOutput{Capacity: capacity, Lock: chainconfig.AlwaysSuccessLock()})
		transaction.OutputsData = append(transaction.OutputsData, nil)
	}
	return transaction
}

// OutPoint returns the outpoint of output index of transaction.
func OutPoint(transaction *externalapi.DomainTransaction, index uint32) externalapi.OutPoint {
	return externalapi.OutPoint{TxHash: *consensushashing.TransactionHash(transaction), Index: index}
}
