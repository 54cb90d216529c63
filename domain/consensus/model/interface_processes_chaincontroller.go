package model

import "github.com/cellnetwork/celld/domain/consensus/model/externalapi"

// VerificationSwitch disables parts of block verification. It exists for
// test networks that insert blocks they built themselves.
type VerificationSwitch uint8

// Verification switches
const (
	DisableHeaderVerification VerificationSwitch = 1 << iota
	DisableTransactionVerification
	DisableDAOVerification
	DisableAll = DisableHeaderVerification | DisableTransactionVerification | DisableDAOVerification
)

// ChainController is responsible for inserting blocks into the chain and
// rolling it back
type ChainController interface {
	// ProcessBlock verifies and inserts block. isNew is false when the
	// block was already known.
	ProcessBlock(block *externalapi.DomainBlock) (isNew bool, err error)

	// InternalProcessBlock inserts block skipping the verification steps
	// set in verificationSwitch
	InternalProcessBlock(block *externalapi.DomainBlock, verificationSwitch VerificationSwitch) (isNew bool, err error)

	// Truncate rolls the main chain back to targetHash, which must be on it
	Truncate(targetHash *externalapi.DomainHash) error
}
