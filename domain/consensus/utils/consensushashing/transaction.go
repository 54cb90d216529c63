package consensushashing

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/hashes"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// TransactionHash returns the hash of the transaction without its witnesses.
// Signatures live in the witnesses, so the hash is not malleable by them.
func TransactionHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewTransactionHashWriter()
	err := serialization.SerializeTransaction(writer, tx, false)
	if err != nil {
		panic(errors.Wrap(err, "TransactionHash() failed. this should never fail for structurally-valid transactions"))
	}
	return writer.Finalize()
}

// WitnessHash returns the hash of the full transaction.
func WitnessHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewWitnessHashWriter()
	err := serialization.SerializeTransaction(writer, tx, true)
	if err != nil {
		panic(errors.Wrap(err, "WitnessHash() failed. this should never fail for structurally-valid transactions"))
	}
	return writer.Finalize()
}

// ProposalShortID returns the id under which the transaction is proposed.
func ProposalShortID(tx *externalapi.DomainTransaction) externalapi.ProposalShortID {
	return externalapi.NewProposalShortID(TransactionHash(tx))
}

// ScriptHash returns the hash of a script, which type script references
// and lock hashes are based on.
func ScriptHash(script *externalapi.Script) *externalapi.DomainHash {
	writer := hashes.NewScriptHashWriter()
	err := serialization.SerializeScript(writer, script)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

// DataHash returns the hash of cell data. Data scripts reference their code
// by it.
func DataHash(data []byte) *externalapi.DomainHash {
	writer := hashes.NewDataHashWriter()
	writer.InfallibleWrite(data)
	return writer.Finalize()
}
