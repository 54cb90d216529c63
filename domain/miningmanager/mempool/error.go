// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/pkg/errors"
)

// RejectCode identifies why a transaction was not admitted to the pool.
type RejectCode uint8

// These constants define the various supported reject codes.
const (
	RejectDuplicated RejectCode = iota + 1
	RejectFull
	RejectLowFeeRate
	RejectMalformed
	RejectResolve
	RejectVerification
)

// Map of reject codes back strings for pretty printing.
var rejectCodeStrings = map[RejectCode]string{
	RejectDuplicated:   "Duplicated",
	RejectFull:         "Full",
	RejectLowFeeRate:   "LowFeeRate",
	RejectMalformed:    "Malformed",
	RejectResolve:      "Resolve",
	RejectVerification: "Verification",
}

// String returns the RejectCode in human-readable form.
func (code RejectCode) String() string {
	if s, ok := rejectCodeStrings[code]; ok {
		return s
	}

	return fmt.Sprintf("Unknown RejectCode (%d)", uint8(code))
}

// Reject is a transaction the pool refused. Which of the fields are set
// depends on Code:
//   - Duplicated: Hash
//   - Full: Resource and Limit
//   - LowFeeRate: FeeRate, MinFee and Fee
//   - Malformed: Reason
//   - Resolve: Err, a cell.OutPointError
//   - Verification: Err, usually a ruleerrors.RuleError
//
// Errors that are not a Reject are internal faults of the node rather than
// of the transaction.
type Reject struct {
	Code     RejectCode
	Hash     *externalapi.DomainHash
	Resource string
	Limit    uint64
	FeeRate  FeeRate
	MinFee   externalapi.Capacity
	Fee      externalapi.Capacity
	Reason   string
	Err      error
}

// Error satisfies the error interface and prints human-readable errors.
func (r Reject) Error() string {
	switch r.Code {
	case RejectDuplicated:
		return fmt.Sprintf("Duplicated: transaction %s already exists in the transaction pool", r.Hash)
	case RejectFull:
		return fmt.Sprintf("Full: transaction pool exceeded its maximum %s limit (%d)", r.Resource, r.Limit)
	case RejectLowFeeRate:
		return fmt.Sprintf("LowFeeRate: the min fee rate is %s, so the transaction fee should be "+
			"%d shannons at least, but only got %d", r.FeeRate, uint64(r.MinFee), uint64(r.Fee))
	case RejectMalformed:
		return fmt.Sprintf("Malformed: %s", r.Reason)
	case RejectResolve:
		return fmt.Sprintf("Resolve: %s", r.Err)
	case RejectVerification:
		return fmt.Sprintf("Verification: %s", r.Err)
	}
	return r.Code.String()
}

// Unwrap returns the wrapped resolution or verification error.
func (r Reject) Unwrap() error {
	return r.Err
}

func newDuplicatedReject(hash *externalapi.DomainHash) Reject {
	return Reject{Code: RejectDuplicated, Hash: hash}
}

func newFullReject(resource string, limit uint64) Reject {
	return Reject{Code: RejectFull, Resource: resource, Limit: limit}
}

func newLowFeeRateReject(feeRate FeeRate, minFee, fee externalapi.Capacity) Reject {
	return Reject{Code: RejectLowFeeRate, FeeRate: feeRate, MinFee: minFee, Fee: fee}
}

func newMalformedReject(format string, args ...interface{}) Reject {
	return Reject{Code: RejectMalformed, Reason: fmt.Sprintf(format, args...)}
}

func newResolveReject(err cell.OutPointError) Reject {
	return Reject{Code: RejectResolve, Err: err}
}

func newVerificationReject(err error) Reject {
	return Reject{Code: RejectVerification, Err: err}
}

// ExtractReject returns the Reject inside err, if any.
func ExtractReject(err error) (Reject, bool) {
	var reject Reject
	if errors.As(err, &reject) {
		return reject, true
	}
	return Reject{}, false
}

// IsMissingInput returns whether err rejected a transaction only because
// one of the cells it references is not known yet. Such a transaction may
// be accepted once the transaction creating the cell shows up.
func IsMissingInput(err error) bool {
	reject, ok := ExtractReject(err)
	if !ok || reject.Code != RejectResolve {
		return false
	}
	var outPointErr cell.OutPointError
	return errors.As(reject.Err, &outPointErr) && outPointErr.IsUnknown()
}
