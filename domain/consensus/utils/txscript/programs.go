package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/dao"
	"github.com/cellnetwork/celld/domain/consensus/utils/hashes"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/domain/consensus/utils/systemcells"
)

// Cycle costs of the native programs. A program is charged its base cost
// plus a per cell cost for every input and output of its group.
const (
	alwaysSuccessCycles   = 537
	alwaysFailureCycles   = 537
	secp256k1Cycles       = 1_200_000
	secp256k1InputCycles  = 3_000
	daoCycles             = 600_000
	daoCellCycles         = 12_000
	blake160ArgsLength    = 20
	depositBlockNumberLen = 8
)

// programCycles returns what running program on group costs.
func programCycles(program systemcells.Program, group *ScriptGroup) uint64 {
	cells := uint64(len(group.InputIndexes) + len(group.OutputIndexes))
	switch program {
	case systemcells.ProgramAlwaysSuccess:
		return alwaysSuccessCycles
	case systemcells.ProgramAlwaysFailure:
		return alwaysFailureCycles
	case systemcells.ProgramSecp256k1Blake160SighashAll:
		return secp256k1Cycles + secp256k1InputCycles*uint64(len(group.InputIndexes))
	case systemcells.ProgramDAO:
		return daoCycles + daoCellCycles*cells
	}
	return 0
}

// runProgram executes program against group.
func runProgram(program systemcells.Program, rtx *cell.ResolvedTransaction, group *ScriptGroup) error {
	switch program {
	case systemcells.ProgramAlwaysSuccess:
		return nil
	case systemcells.ProgramAlwaysFailure:
		return scriptError(ErrValidationFailure, "always_failure rejects every group")
	case systemcells.ProgramSecp256k1Blake160SighashAll:
		return verifySecp256k1Blake160SighashAll(rtx.Transaction, group)
	case systemcells.ProgramDAO:
		return verifyDAO(rtx, group)
	}
	return scriptError(ErrUnsupportedProgram, fmt.Sprintf("program %s can't be executed", program))
}

// verifySecp256k1Blake160SighashAll checks that the signature in the lock
// field of the group's first witness recovers to a public key whose
// blake160 equals the script args.
func verifySecp256k1Blake160SighashAll(tx *externalapi.DomainTransaction, group *ScriptGroup) error {
	if group.GroupType != LockGroup || len(group.InputIndexes) == 0 {
		return scriptError(ErrValidationFailure, "secp256k1_blake160_sighash_all only guards inputs as a lock")
	}
	if len(group.Script.Args) != blake160ArgsLength {
		return scriptError(ErrValidationFailure,
			fmt.Sprintf("lock args are %d bytes, expected %d", len(group.Script.Args), blake160ArgsLength))
	}

	message, err := consensushashing.CalcSignatureHash(tx, group.InputIndexes)
	if err != nil {
		return scriptError(ErrInvalidWitness, err.Error())
	}
	// CalcSignatureHash already validated the first witness.
	args, err := serialization.WitnessArgsFromBytes(tx.Witnesses[group.InputIndexes[0]])
	if err != nil {
		return scriptError(ErrInternal, err.Error())
	}

	publicKey, _, err := ecdsa.RecoverCompact(args.Lock, message.ByteSlice())
	if err != nil {
		return scriptError(ErrInvalidSignature, fmt.Sprintf("couldn't recover public key: %s", err))
	}
	if !bytes.Equal(hashes.Blake160(publicKey.SerializeCompressed()), group.Script.Args) {
		return scriptError(ErrInvalidSignature, "signature doesn't match the lock args")
	}
	return nil
}

// verifyDAO enforces the deposit cell life cycle. A deposit cell carries 8
// zero bytes. Spending it moves it to a withdrawing cell at the same output
// index with the same capacity whose data is the deposit block number.
// Spending a withdrawing cell requires a witness pointing at the deposit
// header among the header deps.
func verifyDAO(rtx *cell.ResolvedTransaction, group *ScriptGroup) error {
	tx := rtx.Transaction
	withdrawingOutputs := make(map[int]struct{})

	for _, inputIndex := range group.InputIndexes {
		input := rtx.ResolvedInputs[inputIndex]
		if len(input.Data) != depositBlockNumberLen {
			return scriptError(ErrValidationFailure,
				fmt.Sprintf("DAO input %d carries %d bytes of data", inputIndex, len(input.Data)))
		}

		if binary.LittleEndian.Uint64(input.Data) != 0 {
			err := verifyDAOWithdrawal(tx, inputIndex)
			if err != nil {
				return err
			}
			continue
		}

		if input.TransactionInfo == nil {
			return scriptError(ErrValidationFailure,
				fmt.Sprintf("deposit input %d is not committed", inputIndex))
		}
		if inputIndex >= len(tx.Outputs) || !dao.IsDAOTypeScript(tx.Outputs[inputIndex].Type) {
			return scriptError(ErrValidationFailure,
				fmt.Sprintf("deposit input %d has no withdrawing output at the same index", inputIndex))
		}
		output := tx.Outputs[inputIndex]
		if output.Capacity != input.Output.Capacity {
			return scriptError(ErrValidationFailure,
				fmt.Sprintf("withdrawing output %d changes the deposited capacity", inputIndex))
		}
		expectedData := dao.WithdrawingData(input.TransactionInfo.BlockNumber)
		if !bytes.Equal(tx.OutputsData[inputIndex], expectedData) {
			return scriptError(ErrValidationFailure,
				fmt.Sprintf("withdrawing output %d doesn't record deposit block %d",
					inputIndex, input.TransactionInfo.BlockNumber))
		}
		withdrawingOutputs[inputIndex] = struct{}{}
	}

	for _, outputIndex := range group.OutputIndexes {
		if _, ok := withdrawingOutputs[outputIndex]; ok {
			continue
		}
		if !bytes.Equal(tx.OutputsData[outputIndex], dao.DepositData()) {
			return scriptError(ErrValidationFailure,
				fmt.Sprintf("new DAO output %d is not a deposit", outputIndex))
		}
	}
	return nil
}

func verifyDAOWithdrawal(tx *externalapi.DomainTransaction, inputIndex int) error {
	if inputIndex >= len(tx.Witnesses) {
		return scriptError(ErrInvalidWitness, fmt.Sprintf("missing witness for withdrawing input %d", inputIndex))
	}
	args, err := serialization.WitnessArgsFromBytes(tx.Witnesses[inputIndex])
	if err != nil || len(args.InputType) != 8 {
		return scriptError(ErrInvalidWitness,
			fmt.Sprintf("witness of withdrawing input %d doesn't carry a header dep index", inputIndex))
	}
	if binary.LittleEndian.Uint64(args.InputType) >= uint64(len(tx.HeaderDeps)) {
		return scriptError(ErrInvalidWitness,
			fmt.Sprintf("header dep index of withdrawing input %d is out of range", inputIndex))
	}
	return nil
}
