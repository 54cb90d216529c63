package transactionvalidator

import (
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/dao"
	"github.com/cellnetwork/celld/domain/consensus/utils/txscript"
	"github.com/pkg/errors"
)

// ContextualVerifier verifies a resolved transaction against chain state:
// time-relative rules, capacity and scripts.
type ContextualVerifier struct {
	store    model.ChainStore
	rtx      *cell.ResolvedTransaction
	env      *VerifyEnv
	verifier *txscript.Verifier
}

// NewContextualVerifier returns a ContextualVerifier for rtx at env.
func NewContextualVerifier(store model.ChainStore, rtx *cell.ResolvedTransaction, env *VerifyEnv) *ContextualVerifier {
	params := store.Params()
	features := params.HardforkSwitch.FeatureSet(env.Epoch(params).Number())
	return &ContextualVerifier{
		store:    store,
		rtx:      rtx,
		env:      env,
		verifier: txscript.NewVerifier(rtx, features),
	}
}

// Verify runs every check and returns the completed entry.
func (v *ContextualVerifier) Verify(maxCycles uint64) (*Completed, error) {
	fee, err := v.verifyWithoutScripts()
	if err != nil {
		return nil, err
	}
	cycles, err := v.verifier.Verify(maxCycles)
	if err != nil {
		return nil, scriptRuleError(err)
	}
	return &Completed{Cycles: cycles, Fee: fee}, nil
}

// ResumableVerify runs every check, pausing script execution once
// chunkCycles were spent. The result is Completed or Suspended.
func (v *ContextualVerifier) ResumableVerify(maxCycles, chunkCycles uint64) (CacheEntry, error) {
	fee, err := v.verifyWithoutScripts()
	if err != nil {
		return nil, err
	}
	return v.runScripts(txscript.State{}, fee, maxCycles, chunkCycles)
}

// Resume continues a suspended verification for up to chunkCycles more
// cycles. Time-relative rules are checked again first since the chain may
// have moved since the suspension.
func (v *ContextualVerifier) Resume(suspended *Suspended, maxCycles, chunkCycles uint64) (CacheEntry, error) {
	log.Tracef("Resuming verification of %s at script group %d with %d cycles consumed",
		v.rtx.Hash, suspended.State.NextGroup, suspended.State.Cycles)
	err := ValidateTransactionTimeRelative(v.store, v.rtx, v.env)
	if err != nil {
		return nil, err
	}
	return v.runScripts(suspended.State, suspended.Fee, maxCycles, chunkCycles)
}

// Complete finishes a suspended verification without pausing again.
func (v *ContextualVerifier) Complete(suspended *Suspended, maxCycles uint64) (*Completed, error) {
	entry, err := v.Resume(suspended, maxCycles, 0)
	if err != nil {
		return nil, err
	}
	completed, ok := entry.(*Completed)
	if !ok {
		return nil, errors.Errorf("verification of %s was suspended without a chunk limit", v.rtx.Hash)
	}
	return completed, nil
}

func (v *ContextualVerifier) runScripts(state txscript.State, fee externalapi.Capacity,
	maxCycles, chunkCycles uint64) (CacheEntry, error) {

	result, err := v.verifier.Resume(state, maxCycles, chunkCycles)
	if err != nil {
		return nil, scriptRuleError(err)
	}
	if !result.IsCompleted() {
		return &Suspended{Fee: fee, State: *result.Suspended}, nil
	}
	return &Completed{Cycles: result.Cycles, Fee: fee}, nil
}

func (v *ContextualVerifier) verifyWithoutScripts() (externalapi.Capacity, error) {
	err := ValidateTransactionTimeRelative(v.store, v.rtx, v.env)
	if err != nil {
		return 0, err
	}
	if v.rtx.Transaction.IsCellbase() {
		return 0, nil
	}
	return TransactionFee(v.store, v.rtx)
}

// TransactionFee returns the fee of rtx, counting DAO withdrawal interest
// as input capacity.
func TransactionFee(store model.ChainStore, rtx *cell.ResolvedTransaction) (externalapi.Capacity, error) {
	fee, err := dao.NewCalculator(store.Params(), store).TransactionFee(rtx)
	if err != nil {
		if errors.Is(err, dao.ErrOverflow) {
			return 0, errors.Wrapf(ruleerrors.ErrInsufficientCellCapacity, "%s", err)
		}
		return 0, err
	}
	return fee, nil
}

func scriptRuleError(err error) error {
	if txscript.IsErrorCode(err, txscript.ErrExceededCycles) {
		return errors.Wrapf(ruleerrors.ErrExceededMaximumCycles, "%s", err)
	}
	var scriptErr txscript.Error
	if errors.As(err, &scriptErr) {
		return errors.Wrapf(ruleerrors.ErrScriptValidation, "%s", err)
	}
	return err
}
