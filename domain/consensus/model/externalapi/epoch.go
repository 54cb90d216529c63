package externalapi

import (
	"fmt"
	"math/big"
)

const (
	epochNumberBits = 24
	epochIndexBits  = 16
	epochLengthBits = 16

	epochNumberMask = (1 << epochNumberBits) - 1
	epochIndexMask  = (1 << epochIndexBits) - 1
	epochLengthMask = (1 << epochLengthBits) - 1

	epochIndexOffset  = epochNumberBits
	epochLengthOffset = epochNumberBits + epochIndexBits
)

// EpochNumberWithFraction packs an epoch number together with a block's
// position inside the epoch: number in bits 0-23, index in bits 24-39 and
// epoch length in bits 40-55.
type EpochNumberWithFraction uint64

// NewEpochNumberWithFraction packs the given fields. Fields wider than their
// bit width are truncated.
func NewEpochNumberWithFraction(number, index, length uint64) EpochNumberWithFraction {
	return EpochNumberWithFraction((number & epochNumberMask) |
		(index&epochIndexMask)<<epochIndexOffset |
		(length&epochLengthMask)<<epochLengthOffset)
}

// Number returns the epoch number.
func (e EpochNumberWithFraction) Number() uint64 {
	return uint64(e) & epochNumberMask
}

// Index returns the position of the block inside the epoch.
func (e EpochNumberWithFraction) Index() uint64 {
	return (uint64(e) >> epochIndexOffset) & epochIndexMask
}

// Length returns the number of blocks in the epoch.
func (e EpochNumberWithFraction) Length() uint64 {
	return (uint64(e) >> epochLengthOffset) & epochLengthMask
}

// IsWellFormed returns whether the length is positive and the index is
// inside the epoch, or the value is the all-zero genesis encoding.
func (e EpochNumberWithFraction) IsWellFormed() bool {
	if e.Length() == 0 {
		return e.Index() == 0 && e.Number() == 0
	}
	return e.Index() < e.Length()
}

// IsWellFormedIncrement returns whether the value may be used as a relative
// epoch distance, where an index equal to zero with zero length is allowed.
func (e EpochNumberWithFraction) IsWellFormedIncrement() bool {
	if e.Length() == 0 {
		return e.Index() == 0
	}
	return e.Index() < e.Length()
}

// Rat returns number + index/length as an exact rational.
func (e EpochNumberWithFraction) Rat() *big.Rat {
	result := new(big.Rat).SetUint64(e.Number())
	if e.Length() != 0 {
		result.Add(result, big.NewRat(int64(e.Index()), int64(e.Length())))
	}
	return result
}

// Cmp compares the two epoch positions as rationals.
func (e EpochNumberWithFraction) Cmp(other EpochNumberWithFraction) int {
	return e.Rat().Cmp(other.Rat())
}

func (e EpochNumberWithFraction) String() string {
	return fmt.Sprintf("%d(%d/%d)", e.Number(), e.Index(), e.Length())
}
