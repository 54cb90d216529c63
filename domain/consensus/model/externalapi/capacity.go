package externalapi

import (
	"fmt"
	"math/bits"

	"github.com/pkg/errors"
)

// ShannonsPerByte is the number of shannons one byte of occupied cell
// space costs. One CKByte is 10^8 shannons.
const ShannonsPerByte = 100_000_000

// ErrCapacityOverflow is returned when capacity arithmetic overflows or underflows.
var ErrCapacityOverflow = errors.New("capacity overflow")

// Capacity is an amount of shannons.
type Capacity uint64

// BytesToCapacity returns the capacity needed to occupy the given number of bytes.
func BytesToCapacity(bytes uint64) (Capacity, error) {
	hi, lo := bits.Mul64(bytes, ShannonsPerByte)
	if hi != 0 {
		return 0, errors.Wrapf(ErrCapacityOverflow, "%d bytes", bytes)
	}
	return Capacity(lo), nil
}

// SafeAdd returns c + other or ErrCapacityOverflow.
func (c Capacity) SafeAdd(other Capacity) (Capacity, error) {
	sum, carry := bits.Add64(uint64(c), uint64(other), 0)
	if carry != 0 {
		return 0, errors.Wrapf(ErrCapacityOverflow, "%d + %d", c, other)
	}
	return Capacity(sum), nil
}

// SafeSub returns c - other or ErrCapacityOverflow when other > c.
func (c Capacity) SafeSub(other Capacity) (Capacity, error) {
	if other > c {
		return 0, errors.Wrapf(ErrCapacityOverflow, "%d - %d", c, other)
	}
	return c - other, nil
}

// SafeMul returns c * factor or ErrCapacityOverflow.
func (c Capacity) SafeMul(factor uint64) (Capacity, error) {
	hi, lo := bits.Mul64(uint64(c), factor)
	if hi != 0 {
		return 0, errors.Wrapf(ErrCapacityOverflow, "%d * %d", c, factor)
	}
	return Capacity(lo), nil
}

// SumCapacities adds all the given capacities with overflow checking.
func SumCapacities(capacities ...Capacity) (Capacity, error) {
	total := Capacity(0)
	for _, capacity := range capacities {
		var err error
		total, err = total.SafeAdd(capacity)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (c Capacity) String() string {
	return fmt.Sprintf("%d.%08d", uint64(c)/ShannonsPerByte, uint64(c)%ShannonsPerByte)
}
