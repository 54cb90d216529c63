package transactionvalidator

import (
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// ValidateTransactionInIsolation validates the parts of a transaction that
// don't depend on chain state.
func ValidateTransactionInIsolation(params *chainconfig.Params, tx *externalapi.DomainTransaction) error {
	err := checkTransactionVersion(params, tx)
	if err != nil {
		return err
	}
	err = checkTransactionSize(params, tx)
	if err != nil {
		return err
	}
	err = checkTransactionInputsAndOutputs(tx)
	if err != nil {
		return err
	}
	err = checkDuplicateInputs(tx)
	if err != nil {
		return err
	}
	err = checkDuplicateDeps(tx)
	if err != nil {
		return err
	}
	return checkOutputsCapacity(tx)
}

func checkTransactionVersion(params *chainconfig.Params, tx *externalapi.DomainTransaction) error {
	if tx.Version > params.TxVersion {
		return errors.Wrapf(ruleerrors.ErrTransactionVersionIsUnknown,
			"transaction version %d is above the maximum %d", tx.Version, params.TxVersion)
	}
	return nil
}

func checkTransactionSize(params *chainconfig.Params, tx *externalapi.DomainTransaction) error {
	size := serialization.TransactionSize(tx)
	if size > params.MaxBlockBytes {
		return errors.Wrapf(ruleerrors.ErrTxTooBig,
			"transaction size %d is larger than the block bytes limit %d", size, params.MaxBlockBytes)
	}
	return nil
}

func checkTransactionInputsAndOutputs(tx *externalapi.DomainTransaction) error {
	if len(tx.Inputs) == 0 {
		return errors.Wrap(ruleerrors.ErrNoTxInputs, "transaction has no inputs")
	}
	if len(tx.Outputs) == 0 {
		return errors.Wrap(ruleerrors.ErrNoTxOutputs, "transaction has no outputs")
	}
	if len(tx.Outputs) != len(tx.OutputsData) {
		return errors.Wrapf(ruleerrors.ErrOutputsDataLengthMismatch,
			"transaction has %d outputs and %d outputs data", len(tx.Outputs), len(tx.OutputsData))
	}
	return nil
}

func checkDuplicateInputs(tx *externalapi.DomainTransaction) error {
	existing := make(map[externalapi.OutPoint]struct{}, len(tx.Inputs))
	for _, input := range tx.Inputs {
		if _, ok := existing[input.PreviousOutput]; ok {
			return errors.Wrapf(ruleerrors.ErrDuplicateTxInputs,
				"transaction contains duplicate input %s", input.PreviousOutput)
		}
		existing[input.PreviousOutput] = struct{}{}
	}
	return nil
}

func checkDuplicateDeps(tx *externalapi.DomainTransaction) error {
	cellDeps := make(map[externalapi.CellDep]struct{}, len(tx.CellDeps))
	for _, cellDep := range tx.CellDeps {
		if _, ok := cellDeps[*cellDep]; ok {
			return errors.Wrapf(ruleerrors.ErrDuplicateCellDeps,
				"transaction contains duplicate cell dep %s", cellDep.OutPoint)
		}
		cellDeps[*cellDep] = struct{}{}
	}

	headerDeps := make(map[externalapi.DomainHash]struct{}, len(tx.HeaderDeps))
	for _, headerDep := range tx.HeaderDeps {
		if _, ok := headerDeps[headerDep]; ok {
			return errors.Wrapf(ruleerrors.ErrDuplicateHeaderDeps,
				"transaction contains duplicate header dep %s", headerDep)
		}
		headerDeps[headerDep] = struct{}{}
	}
	return nil
}

func checkOutputsCapacity(tx *externalapi.DomainTransaction) error {
	for i, output := range tx.Outputs {
		err := checkScriptHashType(output.Lock)
		if err != nil {
			return err
		}
		if output.Type != nil {
			err = checkScriptHashType(output.Type)
			if err != nil {
				return err
			}
		}

		occupied, err := output.OccupiedCapacity(uint64(len(tx.OutputsData[i])))
		if err != nil {
			return errors.Wrapf(ruleerrors.ErrCapacityOverflow, "output %d: %s", i, err)
		}
		if output.Capacity < occupied {
			return errors.Wrapf(ruleerrors.ErrInsufficientCellCapacity,
				"output %d has capacity %s but occupies %s", i, output.Capacity, occupied)
		}
	}
	return nil
}

func checkScriptHashType(script *externalapi.Script) error {
	switch script.HashType {
	case externalapi.ScriptHashTypeData, externalapi.ScriptHashTypeType, externalapi.ScriptHashTypeData1:
		return nil
	}
	return errors.Wrapf(ruleerrors.ErrUnknownScriptHashType, "unknown script hash type %s", script.HashType)
}
