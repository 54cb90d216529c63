package transactionvalidator

import (
	"math/big"

	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/pkg/errors"
)

// Since field layout. The top bit selects a relative lock, the next two
// bits select the metric and the following five bits are reserved.
const (
	sinceRelativeFlag     = uint64(1) << 63
	sinceMetricMask       = uint64(0b11) << 61
	sinceMetricBlock      = uint64(0b00) << 61
	sinceMetricEpoch      = uint64(0b01) << 61
	sinceMetricTimestamp  = uint64(0b10) << 61
	sinceReservedMask     = uint64(0b11111) << 56
	sinceValueMask        = uint64(1)<<56 - 1
	millisecondsPerSecond = 1000
)

// ValidateTransactionTimeRelative checks the rules that depend on where
// in the chain the transaction is verified: since locks and cellbase
// maturity. Pool transactions are revalidated with it when the tip moves.
func ValidateTransactionTimeRelative(store model.ChainStore, rtx *cell.ResolvedTransaction, env *VerifyEnv) error {
	if rtx.Transaction.IsCellbase() {
		return nil
	}
	err := checkCellbaseMaturity(store, rtx, env)
	if err != nil {
		return err
	}
	return checkSince(store, rtx, env)
}

func checkCellbaseMaturity(store model.ChainStore, rtx *cell.ResolvedTransaction, env *VerifyEnv) error {
	params := store.Params()
	currentEpoch := env.Epoch(params).Rat()
	maturity := params.CellbaseMaturity.Rat()

	check := func(meta *externalapi.CellMeta) error {
		// Genesis cells are spendable right away.
		if !meta.IsCellbase() || meta.TransactionInfo.BlockNumber == 0 {
			return nil
		}
		mature := new(big.Rat).Add(meta.TransactionInfo.BlockEpoch.Rat(), maturity)
		if mature.Cmp(currentEpoch) > 0 {
			return errors.Wrapf(ruleerrors.ErrCellbaseImmaturity,
				"cellbase cell %s from epoch %s used before maturity at epoch %s",
				meta.OutPoint, meta.TransactionInfo.BlockEpoch, env.Epoch(params))
		}
		return nil
	}

	for _, input := range rtx.ResolvedInputs {
		err := check(input)
		if err != nil {
			return err
		}
	}
	for _, dep := range rtx.ResolvedCellDeps {
		err := check(dep)
		if err != nil {
			return err
		}
	}
	return nil
}

func checkSince(store model.ChainStore, rtx *cell.ResolvedTransaction, env *VerifyEnv) error {
	var parentMedianTime uint64
	parentMedianTimeKnown := false
	medianTime := func() (uint64, error) {
		if !parentMedianTimeKnown {
			var err error
			parentMedianTime, err = store.BlockMedianTime(env.ParentHash())
			if err != nil {
				return 0, err
			}
			parentMedianTimeKnown = true
		}
		return parentMedianTime, nil
	}

	for i, input := range rtx.Transaction.Inputs {
		if input.Since == 0 {
			continue
		}
		err := checkInputSince(store, input.Since, rtx.ResolvedInputs[i], env, medianTime)
		if err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
	}
	return nil
}

func checkInputSince(store model.ChainStore, since uint64, meta *externalapi.CellMeta, env *VerifyEnv,
	parentMedianTime func() (uint64, error)) error {

	if since&sinceReservedMask != 0 {
		return errors.Wrapf(ruleerrors.ErrInvalidSince, "since %#x sets reserved bits", since)
	}
	metric := since & sinceMetricMask
	value := since & sinceValueMask
	if metric == sinceMetricEpoch && !externalapi.EpochNumberWithFraction(value).IsWellFormedIncrement() {
		return errors.Wrapf(ruleerrors.ErrInvalidSince, "since %#x holds a malformed epoch", since)
	}
	if metric != sinceMetricBlock && metric != sinceMetricEpoch && metric != sinceMetricTimestamp {
		return errors.Wrapf(ruleerrors.ErrInvalidSince, "since %#x uses an unknown metric", since)
	}

	params := store.Params()
	if since&sinceRelativeFlag == 0 {
		switch metric {
		case sinceMetricBlock:
			if value > env.BlockNumber(params.TxProposalWindow) {
				return errors.Wrapf(ruleerrors.ErrImmature, "locked until block %d", value)
			}
		case sinceMetricEpoch:
			if externalapi.EpochNumberWithFraction(value).Cmp(env.Epoch(params)) > 0 {
				return errors.Wrapf(ruleerrors.ErrImmature, "locked until epoch %s",
					externalapi.EpochNumberWithFraction(value))
			}
		case sinceMetricTimestamp:
			medianTime, err := parentMedianTime()
			if err != nil {
				return err
			}
			if value > medianTime/millisecondsPerSecond {
				return errors.Wrapf(ruleerrors.ErrImmature, "locked until timestamp %d", value)
			}
		}
		return nil
	}

	if meta.TransactionInfo == nil {
		return errors.Wrapf(ruleerrors.ErrImmature,
			"relative lock on uncommitted cell %s", meta.OutPoint)
	}
	info := meta.TransactionInfo
	switch metric {
	case sinceMetricBlock:
		if info.BlockNumber+value > env.BlockNumber(params.TxProposalWindow) ||
			info.BlockNumber+value < info.BlockNumber {
			return errors.Wrapf(ruleerrors.ErrImmature, "locked for %d blocks after block %d",
				value, info.BlockNumber)
		}
	case sinceMetricEpoch:
		unlock := new(big.Rat).Add(info.BlockEpoch.Rat(), externalapi.EpochNumberWithFraction(value).Rat())
		if unlock.Cmp(env.Epoch(params).Rat()) > 0 {
			return errors.Wrapf(ruleerrors.ErrImmature, "locked for %s epochs after epoch %s",
				externalapi.EpochNumberWithFraction(value), info.BlockEpoch)
		}
	case sinceMetricTimestamp:
		cellMedianTime, err := store.BlockMedianTime(&info.BlockHash)
		if err != nil {
			return err
		}
		medianTime, err := parentMedianTime()
		if err != nil {
			return err
		}
		if cellMedianTime/millisecondsPerSecond+value > medianTime/millisecondsPerSecond {
			return errors.Wrapf(ruleerrors.ErrImmature, "locked for %d seconds after %d",
				value, cellMedianTime/millisecondsPerSecond)
		}
	}
	return nil
}
