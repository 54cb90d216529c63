// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
)

// ErrorCode identifies a kind of script error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrInternal is returned if internal consistency checks fail. In
	// practice this error should never be seen as it would mean there is an
	// error in the engine logic.
	ErrInternal ErrorCode = iota

	// ErrScriptNotFound is returned when no cell dep holds the code a
	// script references.
	ErrScriptNotFound

	// ErrMultipleMatches is returned when a type hash script references
	// more than one distinct code cell.
	ErrMultipleMatches

	// ErrInvalidHashType is returned for a script hash type that is not
	// active or not known.
	ErrInvalidHashType

	// ErrUnsupportedProgram is returned when the referenced code cell
	// holds a program that can't be executed.
	ErrUnsupportedProgram

	// ErrValidationFailure is returned when a program rejects its group.
	ErrValidationFailure

	// ErrInvalidWitness is returned when a witness a program reads is
	// missing or malformed.
	ErrInvalidWitness

	// ErrInvalidSignature is returned when a signature doesn't recover to
	// the committed public key hash.
	ErrInvalidSignature

	// ErrExceededCycles is returned when running the next group would
	// exceed the cycle limit.
	ErrExceededCycles

	// numErrorCodes is the maximum error code number used in tests. This
	// entry MUST be the last entry in the enum.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInternal:           "ErrInternal",
	ErrScriptNotFound:     "ErrScriptNotFound",
	ErrMultipleMatches:    "ErrMultipleMatches",
	ErrInvalidHashType:    "ErrInvalidHashType",
	ErrUnsupportedProgram: "ErrUnsupportedProgram",
	ErrValidationFailure:  "ErrValidationFailure",
	ErrInvalidWitness:     "ErrInvalidWitness",
	ErrInvalidSignature:   "ErrInvalidSignature",
	ErrExceededCycles:     "ErrExceededCycles",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies a script-related error. It is used to indicate which
// script group failed and why.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// scriptError creates an Error given a set of arguments.
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a script error
// with the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	serr, ok := err.(Error)
	return ok && serr.ErrorCode == c
}
