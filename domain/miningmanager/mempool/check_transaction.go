package mempool

import (
	"context"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/dao"
	"github.com/pkg/errors"
)

// nonContextualVerify runs the checks that need no chain state. A cellbase
// is only valid inside a block, whatever its outputs look like. On top of
// the block rules, data1 scripts are refused until the proposal window
// after their activation passed.
func nonContextualVerify(current *snapshot.Snapshot, transaction *externalapi.DomainTransaction) error {
	if transaction.IsCellbase() {
		return newMalformedReject("cellbase like")
	}
	err := transactionvalidator.ValidateTransactionInIsolation(current.Params(), transaction)
	if err != nil {
		return verificationError(err)
	}
	if !afterDelayWindow(current) && usesData1HashType(transaction) {
		return newMalformedReject("the data1 script hash type is not enabled yet")
	}
	return nil
}

// afterDelayWindow returns whether the tip passed the data1 activation epoch
// by more than the farthest proposal window.
func afterDelayWindow(current *snapshot.Snapshot) bool {
	params := current.Params()
	activation := params.HardforkSwitch.RFC0032
	if activation == 0 || activation == chainconfig.NeverActivated {
		return true
	}
	epoch := current.TipHeader().Epoch
	return epoch.Number() > activation ||
		(epoch.Number() == activation && epoch.Index() > params.TxProposalWindow.Farthest)
}

func usesData1HashType(transaction *externalapi.DomainTransaction) bool {
	for _, output := range transaction.Outputs {
		if output.Lock.HashType == externalapi.ScriptHashTypeData1 {
			return true
		}
		if output.Type != nil && output.Type.HashType == externalapi.ScriptHashTypeData1 {
			return true
		}
	}
	return false
}

// this function MUST be called with the mempool mutex locked for reads
func (mp *mempool) checkTxIDCollision(hash *externalapi.DomainHash) error {
	shortID := externalapi.NewProposalShortID(hash)
	if mp.transactionsPool.containsShortID(shortID) || mp.orphansPool.containsShortID(shortID) {
		return newDuplicatedReject(hash)
	}
	return nil
}

// this function MUST be called with the mempool mutex locked for reads
func (mp *mempool) checkTxSizeLimit(size uint64) error {
	if mp.transactionsPool.reachSizeLimit(size) {
		return newFullReject("size", mp.config.MaxTxPoolSize)
	}
	return nil
}

// this function MUST be called with the mempool mutex locked for reads
func (mp *mempool) checkTxCycleLimit(cycles uint64) error {
	if mp.transactionsPool.reachCyclesLimit(cycles) {
		return newFullReject("cycles", mp.config.MaxTxPoolCycles)
	}
	return nil
}

// checkTxFee returns the fee of resolved and rejects it if the fee is below
// what the minimum fee rate demands for size bytes. DAO withdrawal interest
// counts towards the inputs.
func (mp *mempool) checkTxFee(current *snapshot.Snapshot, resolved *cell.ResolvedTransaction,
	size uint64) (externalapi.Capacity, error) {

	calculator := dao.NewCalculator(current.Params(), current)
	maximumWithdraw, err := calculator.MaximumWithdraw(resolved)
	if err != nil {
		var ruleErr ruleerrors.RuleError
		if errors.As(err, &ruleErr) {
			return 0, newVerificationReject(err)
		}
		return 0, errors.Wrapf(err, "failed calculating the maximum withdraw of %s", resolved.Hash)
	}
	outputsCapacity, err := resolved.Transaction.OutputsCapacity()
	if err != nil {
		return 0, errors.Wrapf(err, "failed summing the outputs of %s", resolved.Hash)
	}
	fee, err := maximumWithdraw.SafeSub(outputsCapacity)
	if err != nil {
		return 0, newMalformedReject("transaction fee calculation overflow: outputs capacity %s "+
			"exceeds the maximum withdraw %s", outputsCapacity, maximumWithdraw)
	}

	minFee := mp.config.MinFeeRate.Fee(size)
	if fee < minFee {
		reject := newLowFeeRateReject(mp.config.MinFeeRate, minFee, fee)
		log.Debugf("Rejecting transaction %s: %s", resolved.Hash, reject)
		return 0, reject
	}
	return fee, nil
}

// verifyRTX verifies resolved at env, reusing what is known about it from
// an earlier verification. A completed entry only needs the time-relative
// rules checked again. A suspended entry resumes from where its scripts
// stopped, and no entry means a full verification. Script execution
// happens on the verification workers.
func (mp *mempool) verifyRTX(ctx context.Context, current *snapshot.Snapshot, resolved *cell.ResolvedTransaction,
	env *transactionvalidator.VerifyEnv, entry transactionvalidator.CacheEntry) (
	*transactionvalidator.Completed, error) {

	switch entry := entry.(type) {
	case *transactionvalidator.Completed:
		err := timeRelativeVerify(current, resolved, env)
		if err != nil {
			return nil, err
		}
		return entry, nil
	case *transactionvalidator.Suspended:
		return mp.verifyWorkers.verify(ctx, current, resolved, env, mp.config.MaxTxVerifyCycles, entry)
	case nil:
		return mp.verifyWorkers.verify(ctx, current, resolved, env, mp.config.MaxTxVerifyCycles, nil)
	default:
		return nil, errors.Errorf("unexpected cache entry type %T", entry)
	}
}

// timeRelativeVerify checks since locks and cellbase maturity only. Pool
// contents are revalidated with it whenever the tip moves.
func timeRelativeVerify(current *snapshot.Snapshot, resolved *cell.ResolvedTransaction,
	env *transactionvalidator.VerifyEnv) error {

	err := transactionvalidator.ValidateTransactionTimeRelative(current, resolved, env)
	if err != nil {
		return verificationError(err)
	}
	return nil
}

// verificationError turns consensus rule violations into a Verification
// reject and leaves internal faults as they are.
func verificationError(err error) error {
	var ruleErr ruleerrors.RuleError
	if errors.As(err, &ruleErr) {
		return newVerificationReject(err)
	}
	return err
}

// resolveError turns resolution failures into a Resolve reject and leaves
// provider faults as they are.
func resolveError(err error) error {
	var outPointErr cell.OutPointError
	if errors.As(err, &outPointErr) {
		return newResolveReject(outPointErr)
	}
	return err
}
