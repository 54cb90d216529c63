package appmessage

import "fmt"

// RPCErrorCode classifies an RPCError. The values are part of the RPC
// interface and must not change.
type RPCErrorCode int64

// RPCErrorCode values
const (
	RPCErrorCodeInternal                   RPCErrorCode = -1
	RPCErrorCodeInvalid                    RPCErrorCode = -2
	RPCErrorCodeInvalidParams              RPCErrorCode = -32602
	RPCErrorCodeTransactionFailedToResolve RPCErrorCode = -301
	RPCErrorCodeTransactionFailedToVerify  RPCErrorCode = -302
	RPCErrorCodePoolRejectedLowFeeRate     RPCErrorCode = -1104
	RPCErrorCodePoolIsFull                 RPCErrorCode = -1106
	RPCErrorCodePoolRejectedDuplicatedTx   RPCErrorCode = -1107
	RPCErrorCodePoolRejectedMalformedTx    RPCErrorCode = -1108
)

var rpcErrorCodeStrings = map[RPCErrorCode]string{
	RPCErrorCodeInternal:                   "Internal",
	RPCErrorCodeInvalid:                    "Invalid",
	RPCErrorCodeInvalidParams:              "InvalidParams",
	RPCErrorCodeTransactionFailedToResolve: "TransactionFailedToResolve",
	RPCErrorCodeTransactionFailedToVerify:  "TransactionFailedToVerify",
	RPCErrorCodePoolRejectedLowFeeRate:     "PoolRejectedLowFeeRate",
	RPCErrorCodePoolIsFull:                 "PoolIsFull",
	RPCErrorCodePoolRejectedDuplicatedTx:   "PoolRejectedDuplicatedTransaction",
	RPCErrorCodePoolRejectedMalformedTx:    "PoolRejectedMalformedTransaction",
}

func (code RPCErrorCode) String() string {
	if s, ok := rpcErrorCodeStrings[code]; ok {
		return s
	}
	return fmt.Sprintf("Unknown RPCErrorCode (%d)", int64(code))
}

// RPCError represents an error returned to an RPC caller
type RPCError struct {
	Code    RPCErrorCode
	Message string
}

func (err RPCError) Error() string {
	return fmt.Sprintf("%s: %s", err.Code, err.Message)
}

// RPCErrorf formats according to a format specifier and returns the string
// as an RPCError with the given code.
func RPCErrorf(code RPCErrorCode, format string, args ...interface{}) *RPCError {
	return &RPCError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// RPCResponse is a response message. A nil ResponseError means the request
// succeeded.
type RPCResponse interface {
	Message
	ResponseError() *RPCError
}
