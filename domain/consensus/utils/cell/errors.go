package cell

import (
	"fmt"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
)

// OutPointErrorKind classifies why a reference could not be resolved.
type OutPointErrorKind uint8

// Outpoint error kinds.
const (
	// OutPointDead is a cell that existed but was consumed, either on chain
	// or earlier in the same resolution batch.
	OutPointDead OutPointErrorKind = iota

	// OutPointUnknown is a cell no provider knows about. The creating
	// transaction may simply not be known yet.
	OutPointUnknown

	// OutPointOutOfOrder is a block transaction spending an output of a
	// later transaction in the same block.
	OutPointOutOfOrder

	// OutPointInvalidDepGroup is a dep group whose data isn't a valid
	// outpoint list.
	OutPointInvalidDepGroup

	// OutPointInvalidHeader is a header dep that is not a main chain
	// header.
	OutPointInvalidHeader
)

var outPointErrorKindStrings = map[OutPointErrorKind]string{
	OutPointDead:            "Dead",
	OutPointUnknown:         "Unknown",
	OutPointOutOfOrder:      "OutOfOrder",
	OutPointInvalidDepGroup: "InvalidDepGroup",
	OutPointInvalidHeader:   "InvalidHeader",
}

func (kind OutPointErrorKind) String() string {
	if s, ok := outPointErrorKindStrings[kind]; ok {
		return s
	}
	return fmt.Sprintf("Unknown OutPointErrorKind (%d)", uint8(kind))
}

// OutPointError is a resolution failure of a single reference.
type OutPointError struct {
	Kind       OutPointErrorKind
	OutPoint   externalapi.OutPoint
	HeaderHash externalapi.DomainHash
}

func (e OutPointError) Error() string {
	if e.Kind == OutPointInvalidHeader {
		return fmt.Sprintf("%s(%s)", e.Kind, e.HeaderHash)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.OutPoint)
}

// IsUnknown returns whether resolution may succeed later once the
// referenced cell becomes known.
func (e OutPointError) IsUnknown() bool {
	return e.Kind == OutPointUnknown
}

func newOutPointError(kind OutPointErrorKind, outPoint externalapi.OutPoint) OutPointError {
	return OutPointError{Kind: kind, OutPoint: outPoint}
}

// NewInvalidHeaderError returns the error of a header dep that is not on
// the main chain.
func NewInvalidHeaderError(hash *externalapi.DomainHash) OutPointError {
	return OutPointError{Kind: OutPointInvalidHeader, HeaderHash: *hash}
}
