// Package dao implements the chain's deposit accounting: transaction fees
// including withdrawal interest, and the DAO field every block header
// commits to.
package dao

import (
	"encoding/binary"
	"math/bits"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// GenesisAccumulatedRate is the accumulated rate of the genesis block.
const GenesisAccumulatedRate uint64 = 10_000_000_000_000_000

// ErrOverflow is returned when DAO arithmetic leaves the capacity range.
var ErrOverflow = errors.New("dao arithmetic overflow")

// Data is the unpacked DAO field.
type Data struct {
	// C is the total issuance up to and including the block.
	C externalapi.Capacity
	// AR is the accumulated rate deposits grow by.
	AR uint64
	// S is the secondary issuance set aside for depositors and not yet
	// withdrawn.
	S externalapi.Capacity
	// U is the total occupied capacity.
	U externalapi.Capacity
}

// Pack encodes the data as C, AR, S and U, each a little endian uint64.
func (d *Data) Pack() externalapi.DAOField {
	var field externalapi.DAOField
	binary.LittleEndian.PutUint64(field[0:8], uint64(d.C))
	binary.LittleEndian.PutUint64(field[8:16], d.AR)
	binary.LittleEndian.PutUint64(field[16:24], uint64(d.S))
	binary.LittleEndian.PutUint64(field[24:32], uint64(d.U))
	return field
}

// Unpack decodes a DAO field.
func Unpack(field externalapi.DAOField) *Data {
	return &Data{
		C:  externalapi.Capacity(binary.LittleEndian.Uint64(field[0:8])),
		AR: binary.LittleEndian.Uint64(field[8:16]),
		S:  externalapi.Capacity(binary.LittleEndian.Uint64(field[16:24])),
		U:  externalapi.Capacity(binary.LittleEndian.Uint64(field[24:32])),
	}
}

// mulDiv returns a*b/c computed with 128 bit intermediate precision.
func mulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, errors.Wrap(ErrOverflow, "division by zero")
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, errors.Wrapf(ErrOverflow, "%d * %d / %d doesn't fit in 64 bits", a, b, c)
	}
	quotient, _ := bits.Div64(hi, lo, c)
	return quotient, nil
}
