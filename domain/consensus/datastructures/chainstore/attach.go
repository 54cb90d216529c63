package chainstore

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/infrastructure/db/database"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

// StageAttach stages making block, a child of the current tip, the new
// tip: its transactions are indexed, the cells they spend leave the live
// set and are kept as undo data, and the cells they create join it.
// dbContext must reflect the state before the batch.
func (cs *ChainStore) StageAttach(batch *ldb.Batch, dbContext database.DataAccessor,
	blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) error {

	created := make(map[externalapi.OutPoint]*externalapi.CellMeta)
	var spent []*externalapi.CellMeta

	for i, tx := range block.Transactions {
		txHash := consensushashing.TransactionHash(tx)
		info := externalapi.TransactionInfo{
			BlockHash:   *blockHash,
			BlockNumber: block.Header.Number,
			BlockEpoch:  block.Header.Epoch,
			Index:       uint32(i),
		}

		if !tx.IsCellbase() {
			for _, input := range tx.Inputs {
				outPoint := input.PreviousOutput
				if _, ok := created[outPoint]; ok {
					delete(created, outPoint)
					continue
				}
				meta, err := cs.LiveCell(dbContext, &outPoint)
				if err != nil {
					return err
				}
				if meta.IsNone() {
					return errors.Errorf("block %s spends %s which is not live", blockHash, outPoint)
				}
				spent = append(spent, meta.UnsafeFromSome())
				batch.Delete(outPointKey(&outPoint))
			}
		}

		for index := range tx.Outputs {
			outPoint := externalapi.OutPoint{TxHash: *txHash, Index: uint32(index)}
			output, data, _ := tx.OutputWithData(uint32(index))
			txInfo := info
			created[outPoint] = &externalapi.CellMeta{
				OutPoint:        outPoint,
				Output:          output,
				Data:            data,
				TransactionInfo: &txInfo,
			}
		}

		record := &TransactionRecord{Info: info, OutputsCount: uint32(len(tx.Outputs))}
		batch.Put(hashKey(transactionsBucket, txHash), serializeTransactionRecord(record))
	}

	for outPoint, meta := range created {
		outPoint := outPoint
		batch.Put(outPointKey(&outPoint), cellToBytes(meta))
	}
	batch.Put(hashKey(undoBucket, blockHash), undoToBytes(spent))
	batch.Put(numberKey(block.Header.Number), blockHash.ByteSlice())
	batch.Put(tipKey, blockHash.ByteSlice())
	return nil
}

// StageDetach stages reverting the tip block: the cells it created leave
// the live set, the cells it spent are restored and its parent becomes the
// tip.
func (cs *ChainStore) StageDetach(batch *ldb.Batch, dbContext database.DataAccessor,
	blockHash *externalapi.DomainHash, block *externalapi.DomainBlock) error {

	undoBytes, err := dbContext.Get(hashKey(undoBucket, blockHash))
	if err != nil {
		return errors.Wrapf(err, "undo data of %s", blockHash)
	}
	spent, err := undoFromBytes(undoBytes)
	if err != nil {
		return errors.Wrapf(err, "corrupted undo data of %s", blockHash)
	}

	for _, tx := range block.Transactions {
		txHash := consensushashing.TransactionHash(tx)
		for index := range tx.Outputs {
			batch.Delete(outPointKey(&externalapi.OutPoint{TxHash: *txHash, Index: uint32(index)}))
		}
		batch.Delete(hashKey(transactionsBucket, txHash))
	}
	for _, meta := range spent {
		batch.Put(outPointKey(&meta.OutPoint), cellToBytes(meta))
	}
	batch.Delete(hashKey(undoBucket, blockHash))
	batch.Delete(numberKey(block.Header.Number))
	batch.Put(tipKey, block.Header.ParentHash.ByteSlice())
	return nil
}
