package relay

import (
	"bytes"
	"io"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/pkg/errors"
)

// MessageType is the first byte of every relay payload
type MessageType uint8

// Relay message types
const (
	MessageTypeCompactBlock MessageType = iota
)

// PrefilledTransaction is a transaction sent in full inside a compact block
type PrefilledTransaction struct {
	Index       uint32
	Transaction *externalapi.DomainTransaction
}

// CompactBlock is a block announcement where most transactions are replaced
// by their proposal short ids. Peers rebuild the block from their own pool.
type CompactBlock struct {
	Header                *externalapi.DomainBlockHeader
	ShortIDs              []externalapi.ProposalShortID
	PrefilledTransactions []*PrefilledTransaction
	Uncles                []externalapi.DomainHash
	Proposals             []externalapi.ProposalShortID
	Extension             []byte
}

// NewCompactBlock builds the compact form of block. The cellbase and the
// transactions in prefilled are sent in full.
func NewCompactBlock(block *externalapi.DomainBlock,
	prefilled map[externalapi.DomainHash]struct{}) *CompactBlock {

	compactBlock := &CompactBlock{
		Header:    block.Header,
		Uncles:    make([]externalapi.DomainHash, len(block.Uncles)),
		Proposals: block.Proposals,
		Extension: block.Extension,
	}
	for i, uncle := range block.Uncles {
		compactBlock.Uncles[i] = *consensushashing.HeaderHash(uncle.Header)
	}
	for i, transaction := range block.Transactions {
		transactionHash := consensushashing.TransactionHash(transaction)
		if _, ok := prefilled[*transactionHash]; ok || i == 0 {
			compactBlock.PrefilledTransactions = append(compactBlock.PrefilledTransactions,
				&PrefilledTransaction{Index: uint32(i), Transaction: transaction})
			continue
		}
		compactBlock.ShortIDs = append(compactBlock.ShortIDs, externalapi.NewProposalShortID(transactionHash))
	}
	return compactBlock
}

// TransactionCount returns the number of transactions of the announced block
func (cb *CompactBlock) TransactionCount() int {
	return len(cb.ShortIDs) + len(cb.PrefilledTransactions)
}

// Reconstruct rebuilds the announced block, looking short ids up with
// lookup. It returns the block indexes lookup could not fill; the block is
// nil unless that list is empty. Uncles are left out since a compact block
// only carries their hashes.
func (cb *CompactBlock) Reconstruct(
	lookup func(shortID externalapi.ProposalShortID) (*externalapi.DomainTransaction, bool)) (
	*externalapi.DomainBlock, []uint32, error) {

	transactions := make([]*externalapi.DomainTransaction, cb.TransactionCount())
	for _, prefilled := range cb.PrefilledTransactions {
		if int(prefilled.Index) >= len(transactions) || transactions[prefilled.Index] != nil {
			return nil, nil, errors.Errorf("invalid prefilled transaction index %d", prefilled.Index)
		}
		transactions[prefilled.Index] = prefilled.Transaction
	}

	var missing []uint32
	shortIDIndex := 0
	for i := range transactions {
		if transactions[i] != nil {
			continue
		}
		transaction, ok := lookup(cb.ShortIDs[shortIDIndex])
		shortIDIndex++
		if !ok {
			missing = append(missing, uint32(i))
			continue
		}
		transactions[i] = transaction
	}
	if len(missing) > 0 {
		return nil, missing, nil
	}

	return &externalapi.DomainBlock{
		Header:       cb.Header,
		Transactions: transactions,
		Proposals:    cb.Proposals,
		Extension:    cb.Extension,
	}, nil, nil
}

// Serialize writes the compact block to w
func (cb *CompactBlock) Serialize(w io.Writer) error {
	err := serialization.SerializeHeader(w, cb.Header, true)
	if err != nil {
		return err
	}
	err = serialization.SerializeProposals(w, cb.ShortIDs)
	if err != nil {
		return err
	}

	err = serialization.WriteElement(w, uint32(len(cb.PrefilledTransactions)))
	if err != nil {
		return err
	}
	for _, prefilled := range cb.PrefilledTransactions {
		err = serialization.WriteElement(w, prefilled.Index)
		if err != nil {
			return err
		}
		err = serialization.SerializeTransaction(w, prefilled.Transaction, true)
		if err != nil {
			return err
		}
	}

	err = serialization.WriteElement(w, uint32(len(cb.Uncles)))
	if err != nil {
		return err
	}
	for _, uncle := range cb.Uncles {
		err = serialization.WriteElement(w, uncle)
		if err != nil {
			return err
		}
	}

	err = serialization.SerializeProposals(w, cb.Proposals)
	if err != nil {
		return err
	}
	err = serialization.WriteElement(w, cb.Extension != nil)
	if err != nil {
		return err
	}
	if cb.Extension != nil {
		return serialization.WriteVarBytes(w, cb.Extension)
	}
	return nil
}

// Bounds on the lists of a decoded compact block. maxPrefilled is on top
// of the short id count.
const (
	maxUncles    = 1 << 10
	maxPrefilled = 1 << 16
)

// DeserializeCompactBlock reads a compact block written by Serialize
func DeserializeCompactBlock(r io.Reader) (*CompactBlock, error) {
	compactBlock := &CompactBlock{}
	var err error
	compactBlock.Header, err = serialization.DeserializeHeader(r)
	if err != nil {
		return nil, err
	}
	compactBlock.ShortIDs, err = serialization.DeserializeProposals(r)
	if err != nil {
		return nil, err
	}

	var prefilledCount uint32
	err = serialization.ReadElement(r, &prefilledCount)
	if err != nil {
		return nil, err
	}
	if prefilledCount > uint32(len(compactBlock.ShortIDs))+maxPrefilled {
		return nil, errors.Wrapf(serialization.ErrMalformed, "%d prefilled transactions", prefilledCount)
	}
	compactBlock.PrefilledTransactions = make([]*PrefilledTransaction, prefilledCount)
	for i := range compactBlock.PrefilledTransactions {
		prefilled := &PrefilledTransaction{}
		err = serialization.ReadElement(r, &prefilled.Index)
		if err != nil {
			return nil, err
		}
		prefilled.Transaction, err = serialization.DeserializeTransaction(r)
		if err != nil {
			return nil, err
		}
		compactBlock.PrefilledTransactions[i] = prefilled
	}

	var unclesCount uint32
	err = serialization.ReadElement(r, &unclesCount)
	if err != nil {
		return nil, err
	}
	if unclesCount > maxUncles {
		return nil, errors.Wrapf(serialization.ErrMalformed, "%d uncles", unclesCount)
	}
	compactBlock.Uncles = make([]externalapi.DomainHash, unclesCount)
	for i := range compactBlock.Uncles {
		err = serialization.ReadElement(r, &compactBlock.Uncles[i])
		if err != nil {
			return nil, err
		}
	}

	compactBlock.Proposals, err = serialization.DeserializeProposals(r)
	if err != nil {
		return nil, err
	}
	var hasExtension bool
	err = serialization.ReadElement(r, &hasExtension)
	if err != nil {
		return nil, err
	}
	if hasExtension {
		compactBlock.Extension, err = serialization.ReadVarBytes(r)
		if err != nil {
			return nil, err
		}
	}
	return compactBlock, nil
}

// CompactBlockMessage returns the relay payload announcing block
func CompactBlockMessage(block *externalapi.DomainBlock) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(MessageTypeCompactBlock))
	err := NewCompactBlock(block, nil).Serialize(&buf)
	if err != nil {
		panic(errors.Wrap(err, "writing to a bytes.Buffer never fails"))
	}
	return buf.Bytes()
}

// ParseMessage decodes a relay payload written by CompactBlockMessage
func ParseMessage(payload []byte) (*CompactBlock, error) {
	if len(payload) == 0 {
		return nil, errors.Wrap(serialization.ErrMalformed, "empty relay message")
	}
	messageType := MessageType(payload[0])
	if messageType != MessageTypeCompactBlock {
		return nil, errors.Wrapf(serialization.ErrMalformed, "unknown relay message type %d", messageType)
	}
	reader := bytes.NewReader(payload[1:])
	compactBlock, err := DeserializeCompactBlock(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, errors.Wrapf(serialization.ErrMalformed, "%d trailing bytes after compact block", reader.Len())
	}
	return compactBlock, nil
}
