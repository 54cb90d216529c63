package cell

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

type blockProvider struct {
	block        *externalapi.DomainBlock
	blockHash    *externalapi.DomainHash
	indexByHash  map[externalapi.DomainHash]int
	transactions []*externalapi.DomainTransaction
}

// NewBlockProvider returns a provider of the outputs created inside block,
// with their commit info filled. It fails with an OutOfOrder error when a
// transaction spends or depends on an output of itself or a later
// transaction in the block.
func NewBlockProvider(block *externalapi.DomainBlock) (Provider, error) {
	provider := &blockProvider{
		block:        block,
		blockHash:    consensushashing.BlockHash(block),
		indexByHash:  make(map[externalapi.DomainHash]int, len(block.Transactions)),
		transactions: block.Transactions,
	}
	for i, tx := range block.Transactions {
		provider.indexByHash[*consensushashing.TransactionHash(tx)] = i
	}

	for i, tx := range block.Transactions {
		if tx.IsCellbase() {
			continue
		}
		for _, input := range tx.Inputs {
			if index, ok := provider.indexByHash[input.PreviousOutput.TxHash]; ok && index >= i {
				return nil, newOutPointError(OutPointOutOfOrder, input.PreviousOutput)
			}
		}
		for _, cellDep := range tx.CellDeps {
			if index, ok := provider.indexByHash[cellDep.OutPoint.TxHash]; ok && index >= i {
				return nil, newOutPointError(OutPointOutOfOrder, cellDep.OutPoint)
			}
		}
	}
	return provider, nil
}

func (bp *blockProvider) Cell(outPoint *externalapi.OutPoint) (Status, error) {
	index, ok := bp.indexByHash[outPoint.TxHash]
	if !ok {
		return Unknown(), nil
	}
	info := &externalapi.TransactionInfo{
		BlockHash:   *bp.blockHash,
		BlockNumber: bp.block.Header.Number,
		BlockEpoch:  bp.block.Header.Epoch,
		Index:       uint32(index),
	}
	meta, ok := NewCellMeta(bp.transactions[index], outPoint, info)
	if !ok {
		return Unknown(), nil
	}
	return Live(meta), nil
}
