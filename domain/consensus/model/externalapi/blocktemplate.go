package externalapi

// UncleTemplate is an uncle offered to the miner.
type UncleTemplate struct {
	Hash      DomainHash
	Required  bool
	Proposals []ProposalShortID
	Header    *DomainBlockHeader
}

// TransactionTemplate is a pool transaction offered to the miner. Depends
// holds the indexes of earlier template transactions it spends from.
type TransactionTemplate struct {
	Hash     DomainHash
	Required bool
	Cycles   uint64
	Fee      Capacity
	Depends  []uint64
	Data     *DomainTransaction
}

// CellbaseTemplate is the cellbase the template was built with.
type CellbaseTemplate struct {
	Hash   DomainHash
	Cycles uint64
	Data   *DomainTransaction
}

// DomainBlockTemplate is everything a miner needs to build a block on top of
// ParentHash. It is never persisted.
type DomainBlockTemplate struct {
	Version          uint32
	CompactTarget    uint32
	CurrentTime      uint64
	Number           uint64
	Epoch            EpochNumberWithFraction
	ParentHash       DomainHash
	CyclesLimit      uint64
	BytesLimit       uint64
	UnclesCountLimit uint64
	Uncles           []*UncleTemplate
	Transactions     []*TransactionTemplate
	Proposals        []ProposalShortID
	Cellbase         *CellbaseTemplate
	WorkID           uint64
	DAO              DAOField
	Extension        []byte
}
