package serialization

import (
	"bytes"
	"io"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// SerializeHeader writes a header. The nonce is left out when includeNonce
// is false, which is the encoding proof of work commits to.
func SerializeHeader(w io.Writer, header *externalapi.DomainBlockHeader, includeNonce bool) error {
	err := WriteElements(w, header.Version, header.CompactTarget, header.Timestamp, header.Number,
		header.Epoch, header.ParentHash, header.TransactionsRoot, header.ProposalsHash,
		header.ExtraHash, header.DAO)
	if err != nil {
		return err
	}
	if includeNonce {
		return WriteElement(w, header.Nonce)
	}
	return nil
}

// DeserializeHeader reads a header written with its nonce.
func DeserializeHeader(r io.Reader) (*externalapi.DomainBlockHeader, error) {
	header := &externalapi.DomainBlockHeader{}
	err := ReadElements(r, &header.Version, &header.CompactTarget, &header.Timestamp, &header.Number,
		&header.Epoch, &header.ParentHash, &header.TransactionsRoot, &header.ProposalsHash,
		&header.ExtraHash, &header.DAO, &header.Nonce)
	if err != nil {
		return nil, err
	}
	return header, nil
}

// SerializeProposals writes a list of proposal short ids.
func SerializeProposals(w io.Writer, proposals []externalapi.ProposalShortID) error {
	err := WriteElement(w, uint32(len(proposals)))
	if err != nil {
		return err
	}
	for _, proposal := range proposals {
		err = WriteElement(w, proposal)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeserializeProposals reads a list written by SerializeProposals.
func DeserializeProposals(r io.Reader) ([]externalapi.ProposalShortID, error) {
	count, err := readCount(r, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	proposals := make([]externalapi.ProposalShortID, count)
	for i := range proposals {
		err = ReadElement(r, &proposals[i])
		if err != nil {
			return nil, err
		}
	}
	return proposals, nil
}

// SerializeBlock writes a full block including witnesses and extension.
func SerializeBlock(w io.Writer, block *externalapi.DomainBlock) error {
	err := SerializeHeader(w, block.Header, true)
	if err != nil {
		return err
	}

	err = WriteElement(w, uint32(len(block.Uncles)))
	if err != nil {
		return err
	}
	for _, uncle := range block.Uncles {
		err = SerializeHeader(w, uncle.Header, true)
		if err != nil {
			return err
		}
		err = SerializeProposals(w, uncle.Proposals)
		if err != nil {
			return err
		}
	}

	err = WriteElement(w, uint32(len(block.Transactions)))
	if err != nil {
		return err
	}
	for _, tx := range block.Transactions {
		err = SerializeTransaction(w, tx, true)
		if err != nil {
			return err
		}
	}

	err = SerializeProposals(w, block.Proposals)
	if err != nil {
		return err
	}

	err = WriteElement(w, block.Extension != nil)
	if err != nil {
		return err
	}
	if block.Extension != nil {
		return WriteVarBytes(w, block.Extension)
	}
	return nil
}

// DeserializeBlock reads a block written by SerializeBlock.
func DeserializeBlock(r io.Reader) (*externalapi.DomainBlock, error) {
	block := &externalapi.DomainBlock{}
	var err error
	block.Header, err = DeserializeHeader(r)
	if err != nil {
		return nil, err
	}

	count, err := readCount(r, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	block.Uncles = make([]*externalapi.UncleBlock, count)
	for i := range block.Uncles {
		uncle := &externalapi.UncleBlock{}
		uncle.Header, err = DeserializeHeader(r)
		if err != nil {
			return nil, err
		}
		uncle.Proposals, err = DeserializeProposals(r)
		if err != nil {
			return nil, err
		}
		block.Uncles[i] = uncle
	}

	count, err = readCount(r, maxElementsPerList)
	if err != nil {
		return nil, err
	}
	block.Transactions = make([]*externalapi.DomainTransaction, count)
	for i := range block.Transactions {
		block.Transactions[i], err = DeserializeTransaction(r)
		if err != nil {
			return nil, err
		}
	}

	block.Proposals, err = DeserializeProposals(r)
	if err != nil {
		return nil, err
	}

	var hasExtension bool
	err = ReadElement(r, &hasExtension)
	if err != nil {
		return nil, err
	}
	if hasExtension {
		block.Extension, err = ReadVarBytes(r)
		if err != nil {
			return nil, err
		}
	}
	return block, nil
}

// BlockToBytes serializes a block.
func BlockToBytes(block *externalapi.DomainBlock) []byte {
	var buf bytes.Buffer
	err := SerializeBlock(&buf, block)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

// BlockFromBytes deserializes a block and rejects trailing bytes.
func BlockFromBytes(serialized []byte) (*externalapi.DomainBlock, error) {
	reader := bytes.NewReader(serialized)
	block, err := DeserializeBlock(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, errors.Wrapf(ErrMalformed, "%d trailing bytes after block", reader.Len())
	}
	return block, nil
}

// HeaderToBytes serializes a header with its nonce.
func HeaderToBytes(header *externalapi.DomainBlockHeader) []byte {
	var buf bytes.Buffer
	err := SerializeHeader(&buf, header, true)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

// HeaderFromBytes deserializes a header.
func HeaderFromBytes(serialized []byte) (*externalapi.DomainBlockHeader, error) {
	return DeserializeHeader(bytes.NewReader(serialized))
}

// BlockSize returns the serialized size of the block, which is what the
// block bytes limit is checked against.
func BlockSize(block *externalapi.DomainBlock) uint64 {
	return uint64(len(BlockToBytes(block)))
}
