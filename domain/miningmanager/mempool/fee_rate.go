package mempool

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
)

// bytesPerKB is the unit fee rates are expressed in.
const bytesPerKB = 1000

// FeeRate is a fee rate in shannons per 1000 bytes.
type FeeRate uint64

// Fee returns the fee a transaction of the given size pays at this rate,
// rounded down.
func (rate FeeRate) Fee(size uint64) externalapi.Capacity {
	high, low := bits.Mul64(uint64(rate), size)
	if high >= bytesPerKB {
		return externalapi.Capacity(math.MaxUint64)
	}
	fee, _ := bits.Div64(high, low, bytesPerKB)
	return externalapi.Capacity(fee)
}

// FeeRateOf returns the rate fee pays for size bytes, rounded down.
func FeeRateOf(fee externalapi.Capacity, size uint64) FeeRate {
	if size == 0 {
		return 0
	}
	high, low := bits.Mul64(uint64(fee), bytesPerKB)
	if high >= size {
		return FeeRate(math.MaxUint64)
	}
	rate, _ := bits.Div64(high, low, size)
	return FeeRate(rate)
}

func (rate FeeRate) String() string {
	return fmt.Sprintf("%d shannons/KB", uint64(rate))
}
