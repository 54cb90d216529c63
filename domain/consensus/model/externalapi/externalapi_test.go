package externalapi

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestEpochNumberWithFraction(t *testing.T) {
	epoch := NewEpochNumberWithFraction(1200, 37, 1800)
	if epoch.Number() != 1200 || epoch.Index() != 37 || epoch.Length() != 1800 {
		t.Fatalf("TestEpochNumberWithFraction: unexpected fields %s", epoch)
	}
	if !epoch.IsWellFormed() {
		t.Fatalf("TestEpochNumberWithFraction: %s is expected to be well formed", epoch)
	}
	if NewEpochNumberWithFraction(3, 5, 5).IsWellFormed() {
		t.Fatalf("TestEpochNumberWithFraction: index equal to length is expected to be malformed")
	}

	tests := []struct {
		a, b     EpochNumberWithFraction
		expected int
	}{
		{NewEpochNumberWithFraction(1, 1, 2), NewEpochNumberWithFraction(1, 2, 4), 0},
		{NewEpochNumberWithFraction(1, 1, 3), NewEpochNumberWithFraction(1, 1, 2), -1},
		{NewEpochNumberWithFraction(2, 0, 10), NewEpochNumberWithFraction(1, 9, 10), 1},
	}
	for i, test := range tests {
		if result := test.a.Cmp(test.b); result != test.expected {
			t.Fatalf("TestEpochNumberWithFraction: test %d: %s cmp %s is %d, expected %d",
				i, test.a, test.b, result, test.expected)
		}
	}
}

func TestCapacityArithmetic(t *testing.T) {
	sum, err := SumCapacities(1, 2, 3)
	if err != nil || sum != 6 {
		t.Fatalf("TestCapacityArithmetic: SumCapacities returned %d, %v", sum, err)
	}
	_, err = Capacity(math.MaxUint64).SafeAdd(1)
	if !errors.Is(err, ErrCapacityOverflow) {
		t.Fatalf("TestCapacityArithmetic: expected overflow, got %v", err)
	}
	_, err = Capacity(1).SafeSub(2)
	if !errors.Is(err, ErrCapacityOverflow) {
		t.Fatalf("TestCapacityArithmetic: expected underflow, got %v", err)
	}
	capacity, err := BytesToCapacity(61)
	if err != nil || capacity != 61*ShannonsPerByte {
		t.Fatalf("TestCapacityArithmetic: BytesToCapacity returned %d, %v", capacity, err)
	}
	if Capacity(150_000_000).String() != "1.50000000" {
		t.Fatalf("TestCapacityArithmetic: unexpected string %s", Capacity(150_000_000))
	}
}

func TestOccupiedCapacity(t *testing.T) {
	output := &CellOutput{Capacity: 0, Lock: &Script{Args: make([]byte, 20)}}
	occupied, err := output.OccupiedCapacity(0)
	if err != nil {
		t.Fatalf("TestOccupiedCapacity: %s", err)
	}
	// 8 bytes capacity + 32 code hash + 1 hash type + 20 args
	if occupied != 61*ShannonsPerByte {
		t.Fatalf("TestOccupiedCapacity: got %d", occupied)
	}
}

func TestTransactionCloneEqual(t *testing.T) {
	tx := &DomainTransaction{
		Version:     0,
		CellDeps:    []*CellDep{{OutPoint: OutPoint{Index: 1}, DepType: DepTypeDepGroup}},
		HeaderDeps:  []DomainHash{{}},
		Inputs:      []*CellInput{{Since: 5, PreviousOutput: OutPoint{Index: 2}}},
		Outputs:     []*CellOutput{{Capacity: 100, Lock: &Script{Args: []byte{1}}}},
		OutputsData: [][]byte{{7}},
		Witnesses:   [][]byte{{8}},
	}
	clone := tx.Clone()
	if !tx.Equal(clone) {
		t.Fatalf("TestTransactionCloneEqual: clone is not equal to the original")
	}
	clone.Outputs[0].Lock.Args[0] = 2
	if tx.Equal(clone) {
		t.Fatalf("TestTransactionCloneEqual: modifying the clone affected equality check")
	}
	if tx.Outputs[0].Lock.Args[0] != 1 {
		t.Fatalf("TestTransactionCloneEqual: modifying the clone modified the original")
	}
	if tx.IsCellbase() {
		t.Fatalf("TestTransactionCloneEqual: regular transaction reported as cellbase")
	}
	cellbase := &DomainTransaction{Inputs: []*CellInput{{PreviousOutput: NullOutPoint()}}}
	if !cellbase.IsCellbase() {
		t.Fatalf("TestTransactionCloneEqual: cellbase not detected")
	}
}
