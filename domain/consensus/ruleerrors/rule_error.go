package ruleerrors

import (
	"fmt"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrBlockVersionIsUnknown indicates that the block version is unknown.
	ErrBlockVersionIsUnknown = newRuleError("ErrBlockVersionIsUnknown")

	// ErrTimeTooOld indicates the block timestamp is not after the median
	// time of its ancestors.
	ErrTimeTooOld = newRuleError("ErrTimeTooOld")

	//ErrTimeTooMuchInTheFuture indicates that the block timestamp is too much in the future.
	ErrTimeTooMuchInTheFuture = newRuleError("ErrTimeTooMuchInTheFuture")

	// ErrUnexpectedNumber indicates the block number is not its parent's
	// number plus one.
	ErrUnexpectedNumber = newRuleError("ErrUnexpectedNumber")

	// ErrUnexpectedEpoch indicates the block epoch does not follow its
	// parent's epoch.
	ErrUnexpectedEpoch = newRuleError("ErrUnexpectedEpoch")

	// ErrUnexpectedDifficulty indicates the compact target differs from the
	// parent's.
	ErrUnexpectedDifficulty = newRuleError("ErrUnexpectedDifficulty")

	// ErrInvalidPoW indicates that the block proof-of-work is invalid.
	ErrInvalidPoW = newRuleError("ErrInvalidPoW")

	// ErrBadTransactionsRoot indicates the calculated transactions root
	// does not match the header.
	ErrBadTransactionsRoot = newRuleError("ErrBadTransactionsRoot")

	// ErrBadProposalsHash indicates the calculated proposals hash does not
	// match the header.
	ErrBadProposalsHash = newRuleError("ErrBadProposalsHash")

	// ErrBadExtraHash indicates the calculated uncles and extension
	// commitment does not match the header.
	ErrBadExtraHash = newRuleError("ErrBadExtraHash")

	// ErrNoTransactions indicates the block does not have a least one
	// transaction. A valid block must have at least the cellbase
	// transaction.
	ErrNoTransactions = newRuleError("ErrNoTransactions")

	// ErrFirstTxNotCellbase indicates the first transaction in a block
	// is not a cellbase transaction.
	ErrFirstTxNotCellbase = newRuleError("ErrFirstTxNotCellbase")

	// ErrMultipleCellbases indicates a block contains more than one
	// cellbase transaction.
	ErrMultipleCellbases = newRuleError("ErrMultipleCellbases")

	// ErrBadCellbaseTransaction indicates that the block's cellbase is not
	// built as expected.
	ErrBadCellbaseTransaction = newRuleError("ErrBadCellbaseTransaction")

	// ErrBlockBytesTooHigh indicates the serialized block exceeds the
	// maximum block size.
	ErrBlockBytesTooHigh = newRuleError("ErrBlockBytesTooHigh")

	// ErrBlockCyclesTooHigh indicates the block's transactions consume more
	// cycles than a block may.
	ErrBlockCyclesTooHigh = newRuleError("ErrBlockCyclesTooHigh")

	// ErrTooManyUncles indicates the block has more uncles than allowed.
	ErrTooManyUncles = newRuleError("ErrTooManyUncles")

	// ErrInvalidUncle indicates an uncle that is unknown, too old, or
	// doesn't commit to its proposals.
	ErrInvalidUncle = newRuleError("ErrInvalidUncle")

	// ErrTooManyProposals indicates the block proposes more transactions
	// than allowed.
	ErrTooManyProposals = newRuleError("ErrTooManyProposals")

	// ErrDuplicateTx indicates a block contains an identical transaction
	// (or at least two transactions which hash to the same value). A
	// valid block may only contain unique transactions.
	ErrDuplicateTx = newRuleError("ErrDuplicateTx")

	// ErrUnexpectedDAOField indicates the header DAO field differs from the
	// one computed from the block transactions.
	ErrUnexpectedDAOField = newRuleError("ErrUnexpectedDAOField")

	// ErrGenesisOnInitializedChain indicates a second genesis block.
	ErrGenesisOnInitializedChain = newRuleError("ErrGenesisOnInitializedChain")

	//ErrTransactionVersionIsUnknown indicates that the transaction version is unknown.
	ErrTransactionVersionIsUnknown = newRuleError("ErrTransactionVersionIsUnknown")

	// ErrNoTxInputs indicates a transaction does not have any inputs. A
	// valid transaction must have at least one input.
	ErrNoTxInputs = newRuleError("ErrNoTxInputs")

	// ErrNoTxOutputs indicates a transaction does not have any outputs.
	ErrNoTxOutputs = newRuleError("ErrNoTxOutputs")

	// ErrOutputsDataLengthMismatch indicates the outputs data list is not
	// parallel to the outputs list.
	ErrOutputsDataLengthMismatch = newRuleError("ErrOutputsDataLengthMismatch")

	// ErrTxTooBig indicates a transaction that cannot fit in a block.
	ErrTxTooBig = newRuleError("ErrTxTooBig")

	// ErrDuplicateTxInputs indicates a transaction references the same
	// input more than once.
	ErrDuplicateTxInputs = newRuleError("ErrDuplicateTxInputs")

	// ErrDuplicateCellDeps indicates a transaction lists the same cell dep
	// more than once.
	ErrDuplicateCellDeps = newRuleError("ErrDuplicateCellDeps")

	// ErrDuplicateHeaderDeps indicates a transaction lists the same header
	// dep more than once.
	ErrDuplicateHeaderDeps = newRuleError("ErrDuplicateHeaderDeps")

	// ErrInsufficientCellCapacity indicates an output whose capacity can't
	// hold the output itself.
	ErrInsufficientCellCapacity = newRuleError("ErrInsufficientCellCapacity")

	// ErrCapacityOverflow indicates output capacities exceed the inputs.
	ErrCapacityOverflow = newRuleError("ErrCapacityOverflow")

	// ErrUnknownScriptHashType indicates a script using a hash type not
	// enabled at the current epoch.
	ErrUnknownScriptHashType = newRuleError("ErrUnknownScriptHashType")

	// ErrInvalidSince indicates a since field with reserved bits set or a
	// malformed epoch.
	ErrInvalidSince = newRuleError("ErrInvalidSince")

	// ErrImmature indicates a since lock that isn't satisfied yet.
	ErrImmature = newRuleError("ErrImmature")

	// ErrCellbaseImmaturity indicates a transaction is attempting to spend
	// or depend on a cellbase output that has not yet matured.
	ErrCellbaseImmaturity = newRuleError("ErrCellbaseImmaturity")

	// ErrScriptValidation indicates the result of executing a script group
	// failed.
	ErrScriptValidation = newRuleError("ErrScriptValidation")

	// ErrExceededMaximumCycles indicates scripts consumed more cycles than
	// the verification budget.
	ErrExceededMaximumCycles = newRuleError("ErrExceededMaximumCycles")

	// ErrInvalidDAOWithdraw indicates a DAO withdrawal that doesn't match
	// its deposit.
	ErrInvalidDAOWithdraw = newRuleError("ErrInvalidDAOWithdraw")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ErrMissingParents indicates a block points to an unknown parent.
type ErrMissingParents struct {
	MissingParentHashes []*externalapi.DomainHash
}

func (e ErrMissingParents) Error() string {
	return fmt.Sprintf("missing the following parent hashes: %v", e.MissingParentHashes)
}

// NewErrMissingParents creates a new ErrMissingParents error wrapped in a RuleError
func NewErrMissingParents(missingParentHashes []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingParents",
		inner:   ErrMissingParents{missingParentHashes},
	})
}

// InvalidTransaction is a struct containing an invalid transaction, and the error explaining why it's invalid.
type InvalidTransaction struct {
	Transaction *externalapi.DomainTransaction
	Error       error
}

func (invalid InvalidTransaction) String() string {
	return fmt.Sprintf("(%v: %s)", consensushashing.TransactionHash(invalid.Transaction), invalid.Error)
}

// ErrInvalidTransactionsInNewBlock indicates that some transactions in a new block are invalid
type ErrInvalidTransactionsInNewBlock struct {
	InvalidTransactions []InvalidTransaction
}

func (e ErrInvalidTransactionsInNewBlock) Error() string {
	return fmt.Sprint(e.InvalidTransactions)
}

// NewErrInvalidTransactionsInNewBlock Creates a new ErrInvalidTransactionsInNewBlock error wrapped in a RuleError
func NewErrInvalidTransactionsInNewBlock(invalidTransactions []InvalidTransaction) error {
	return errors.WithStack(RuleError{
		message: "ErrInvalidTransactionsInNewBlock",
		inner:   ErrInvalidTransactionsInNewBlock{invalidTransactions},
	})
}
