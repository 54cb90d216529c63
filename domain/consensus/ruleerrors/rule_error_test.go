package ruleerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
)

func TestNewErrMissingParents(t *testing.T) {
	parent, _ := externalapi.NewDomainHashFromString("ffffff0000000000000000000000000000000000000000000000000000000000")
	outer := NewErrMissingParents([]*externalapi.DomainHash{parent})
	expectedOuterErr := "ErrMissingParents: missing the following parent hashes: " +
		"[ffffff0000000000000000000000000000000000000000000000000000000000]"
	inner := &ErrMissingParents{}
	if !errors.As(outer, inner) {
		t.Fatal("TestNewErrMissingParents: Outer should contain ErrMissingParents in it")
	}

	if len(inner.MissingParentHashes) != 1 {
		t.Fatalf("TestNewErrMissingParents: Expected len(inner.MissingParentHashes) 1, found: %d",
			len(inner.MissingParentHashes))
	}

	rule := &RuleError{}
	if !errors.As(outer, rule) {
		t.Fatal("TestNewErrMissingParents: Outer should contain RuleError in it")
	}
	if rule.message != "ErrMissingParents" {
		t.Fatalf("TestNewErrMissingParents: Expected message = 'ErrMissingParents', found: '%s'", rule.message)
	}

	if outer.Error() != expectedOuterErr {
		t.Fatalf("TestNewErrMissingParents: Expected %s. found: %s", expectedOuterErr, outer.Error())
	}
}

func TestNewErrInvalidTransactionsInNewBlock(t *testing.T) {
	outer := NewErrInvalidTransactionsInNewBlock([]InvalidTransaction{{&externalapi.DomainTransaction{}, ErrNoTxInputs}})
	inner := &ErrInvalidTransactionsInNewBlock{}
	if !errors.As(outer, inner) {
		t.Fatal("TestNewErrInvalidTransactionsInNewBlock: Outer should contain ErrInvalidTransactionsInNewBlock in it")
	}

	if len(inner.InvalidTransactions) != 1 {
		t.Fatalf("TestNewErrInvalidTransactionsInNewBlock: Expected len(inner.InvalidTransactions) 1, found: %d",
			len(inner.InvalidTransactions))
	}
	if inner.InvalidTransactions[0].Error != ErrNoTxInputs {
		t.Fatalf("TestNewErrInvalidTransactionsInNewBlock: Expected ErrNoTxInputs. found: %v",
			inner.InvalidTransactions[0].Error)
	}
}

func TestErrorsIsSentinel(t *testing.T) {
	err := fmt.Errorf("input 3: %w", ErrImmature)
	if !errors.Is(err, ErrImmature) {
		t.Fatalf("TestErrorsIsSentinel: expected the wrapped error to match ErrImmature")
	}
	if errors.Is(err, ErrInvalidSince) {
		t.Fatalf("TestErrorsIsSentinel: unexpected match with ErrInvalidSince")
	}
}
