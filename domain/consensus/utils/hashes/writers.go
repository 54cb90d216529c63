package hashes

import (
	"hash"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// HashWriter is used to incrementally hash data without concatenating all of the data to a single buffer
// it exposes an io.Writer api and a Finalize function to get the resulting hash.
// The used hash function is blake2b.
// This can only be created via one of the domain separated constructors
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	copy(sum[:], h.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&sum)
}

func newHashWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}

const (
	transactionHashDomain = "TransactionHash"
	witnessHashDomain     = "TransactionWitnessHash"
	blockHashDomain       = "BlockHash"
	proofOfWorkDomain     = "ProofOfWorkHash"
	merkleBranchDomain    = "MerkleBranchHash"
	scriptHashDomain      = "ScriptHash"
	dataHashDomain        = "CellDataHash"
	proposalsHashDomain   = "ProposalsHash"
	unclesHashDomain      = "UnclesHash"
	extraHashDomain       = "ExtraHash"
	sighashDomain         = "SighashAll"
	blake160Domain        = "Blake160"
)

// NewTransactionHashWriter returns a new HashWriter used for transaction hashes
func NewTransactionHashWriter() HashWriter { return newHashWriter(transactionHashDomain) }

// NewWitnessHashWriter returns a new HashWriter used for transaction hashes that include witnesses
func NewWitnessHashWriter() HashWriter { return newHashWriter(witnessHashDomain) }

// NewBlockHashWriter returns a new HashWriter used for hashing blocks
func NewBlockHashWriter() HashWriter { return newHashWriter(blockHashDomain) }

// NewPoWHashWriter returns a new HashWriter used for the proof of work hash
func NewPoWHashWriter() HashWriter { return newHashWriter(proofOfWorkDomain) }

// NewMerkleBranchHashWriter returns a new HashWriter used for a merkle tree branch
func NewMerkleBranchHashWriter() HashWriter { return newHashWriter(merkleBranchDomain) }

// NewScriptHashWriter returns a new HashWriter used for script hashes
func NewScriptHashWriter() HashWriter { return newHashWriter(scriptHashDomain) }

// NewDataHashWriter returns a new HashWriter used for cell data hashes
func NewDataHashWriter() HashWriter { return newHashWriter(dataHashDomain) }

// NewProposalsHashWriter returns a new HashWriter used for the proposals commitment
func NewProposalsHashWriter() HashWriter { return newHashWriter(proposalsHashDomain) }

// NewUnclesHashWriter returns a new HashWriter used for the uncles commitment
func NewUnclesHashWriter() HashWriter { return newHashWriter(unclesHashDomain) }

// NewExtraHashWriter returns a new HashWriter used for the extra hash combining uncles and extension
func NewExtraHashWriter() HashWriter { return newHashWriter(extraHashDomain) }

// NewSighashWriter returns a new HashWriter used for signature messages
func NewSighashWriter() HashWriter { return newHashWriter(sighashDomain) }

// Blake160 returns the first 20 bytes of the blake2b hash of data, used to
// commit to public keys in lock args.
func Blake160(data []byte) []byte {
	writer := newHashWriter(blake160Domain)
	writer.InfallibleWrite(data)
	return writer.Finalize().ByteSlice()[:20]
}
