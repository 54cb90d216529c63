package externalapi

// TransactionInfo locates the committed transaction that created a cell.
type TransactionInfo struct {
	BlockHash   DomainHash
	BlockNumber uint64
	BlockEpoch  EpochNumberWithFraction
	Index       uint32
}

// IsCellbase returns whether the creating transaction is its block's cellbase.
func (info *TransactionInfo) IsCellbase() bool {
	return info.Index == 0
}

// CellMeta is a resolved cell: the output an outpoint points to, its data,
// and where it was committed. TransactionInfo is nil for cells created by
// transactions that are not on chain yet.
type CellMeta struct {
	OutPoint        OutPoint
	Output          *CellOutput
	Data            []byte
	TransactionInfo *TransactionInfo
}

// IsCellbase returns whether the cell was created by a committed cellbase.
func (meta *CellMeta) IsCellbase() bool {
	return meta.TransactionInfo != nil && meta.TransactionInfo.IsCellbase()
}
