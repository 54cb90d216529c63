package externalapi

// DAOFieldSize is the length of the DAO field in a header.
const DAOFieldSize = 32

// DAOField is the per block accounting value of the deposit mechanism. It
// packs four little endian uint64 values: total issuance C, accumulated
// rate AR, unclaimed secondary issuance S and occupied capacity U.
type DAOField [DAOFieldSize]byte

// DomainBlockHeader represents the header part of a block.
type DomainBlockHeader struct {
	Version          uint32
	CompactTarget    uint32
	Timestamp        uint64
	Number           uint64
	Epoch            EpochNumberWithFraction
	ParentHash       DomainHash
	TransactionsRoot DomainHash
	ProposalsHash    DomainHash
	ExtraHash        DomainHash
	DAO              DAOField
	Nonce            uint64
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainBlockHeader{0, 0, 0, 0, 0, DomainHash{}, DomainHash{}, DomainHash{}, DomainHash{}, DAOField{}, 0}

// Clone returns a copy of the header
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	headerClone := *header
	return &headerClone
}

// Equal returns whether header equals to other
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}
	return *header == *other
}

// UncleBlock is a side chain block referenced by a main chain block.
type UncleBlock struct {
	Header    *DomainBlockHeader
	Proposals []ProposalShortID
}

// DomainBlock represents a block. A nil Extension means the block carries
// no extension field.
type DomainBlock struct {
	Header       *DomainBlockHeader
	Uncles       []*UncleBlock
	Transactions []*DomainTransaction
	Proposals    []ProposalShortID
	Extension    []byte
}

// Cellbase returns the block's first transaction, or nil for an empty block.
func (block *DomainBlock) Cellbase() *DomainTransaction {
	if len(block.Transactions) == 0 {
		return nil
	}
	return block.Transactions[0]
}

// Clone returns a deep copy of the block
func (block *DomainBlock) Clone() *DomainBlock {
	clone := &DomainBlock{
		Header:       block.Header.Clone(),
		Uncles:       make([]*UncleBlock, len(block.Uncles)),
		Transactions: make([]*DomainTransaction, len(block.Transactions)),
		Proposals:    append([]ProposalShortID(nil), block.Proposals...),
	}
	if block.Extension != nil {
		clone.Extension = append([]byte{}, block.Extension...)
	}
	for i, uncle := range block.Uncles {
		clone.Uncles[i] = &UncleBlock{
			Header:    uncle.Header.Clone(),
			Proposals: append([]ProposalShortID(nil), uncle.Proposals...),
		}
	}
	for i, tx := range block.Transactions {
		clone.Transactions[i] = tx.Clone()
	}
	return clone
}
