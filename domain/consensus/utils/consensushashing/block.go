package consensushashing

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/hashes"
	"github.com/cellnetwork/celld/domain/consensus/utils/merkle"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// BlockHash returns the given block's hash
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	return HeaderHash(block.Header)
}

// HeaderHash returns the given header's hash
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	writer := hashes.NewBlockHashWriter()
	err := serialization.SerializeHeader(writer, header, true)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		// the only non-writer error path here is unknown types in `WriteElement`
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}

	return writer.Finalize()
}

// PoWHash returns the hash the header's proof of work is checked against.
// It commits to the header without its nonce, and then to the nonce.
func PoWHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	preimage := hashes.NewPoWHashWriter()
	err := serialization.SerializeHeader(preimage, header, false)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	preimageHash := preimage.Finalize()

	writer := hashes.NewPoWHashWriter()
	err = serialization.WriteElements(writer, preimageHash, header.Nonce)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
	return writer.Finalize()
}

// TransactionsRoot returns the header commitment to the block transactions:
// the merkle root over the pair of the transaction hashes root and the
// witness hashes root.
func TransactionsRoot(transactions []*externalapi.DomainTransaction) *externalapi.DomainHash {
	txHashes := make([]*externalapi.DomainHash, len(transactions))
	witnessHashes := make([]*externalapi.DomainHash, len(transactions))
	for i, tx := range transactions {
		txHashes[i] = TransactionHash(tx)
		witnessHashes[i] = WitnessHash(tx)
	}
	return merkle.Root([]*externalapi.DomainHash{merkle.Root(txHashes), merkle.Root(witnessHashes)})
}

// ProposalsHash returns the header commitment to the block proposals. An
// empty proposal list commits to the zero hash.
func ProposalsHash(proposals []externalapi.ProposalShortID) *externalapi.DomainHash {
	if len(proposals) == 0 {
		return externalapi.ZeroHash.Clone()
	}
	writer := hashes.NewProposalsHashWriter()
	for _, proposal := range proposals {
		writer.InfallibleWrite(proposal[:])
	}
	return writer.Finalize()
}

// UnclesHash returns the commitment to the block uncles. No uncles commit
// to the zero hash.
func UnclesHash(uncles []*externalapi.UncleBlock) *externalapi.DomainHash {
	if len(uncles) == 0 {
		return externalapi.ZeroHash.Clone()
	}
	writer := hashes.NewUnclesHashWriter()
	for _, uncle := range uncles {
		writer.InfallibleWrite(HeaderHash(uncle.Header).ByteSlice())
	}
	return writer.Finalize()
}

// ExtraHash returns the header's extra hash. Without an extension it equals
// the uncles hash, otherwise it commits to both.
func ExtraHash(uncles []*externalapi.UncleBlock, extension []byte) *externalapi.DomainHash {
	unclesHash := UnclesHash(uncles)
	if extension == nil {
		return unclesHash
	}

	extensionWriter := hashes.NewExtraHashWriter()
	extensionWriter.InfallibleWrite(extension)
	extensionHash := extensionWriter.Finalize()

	writer := hashes.NewExtraHashWriter()
	writer.InfallibleWrite(unclesHash.ByteSlice())
	writer.InfallibleWrite(extensionHash.ByteSlice())
	return writer.Finalize()
}

// UncleProposalsHash is the proposals commitment of an uncle, checked
// against its header.
func UncleProposalsHash(uncle *externalapi.UncleBlock) *externalapi.DomainHash {
	return ProposalsHash(uncle.Proposals)
}
