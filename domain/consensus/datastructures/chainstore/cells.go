package chainstore

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/infrastructure/db/database"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/pkg/errors"
)

// LiveCell returns a live cell of the main chain tip.
func (cs *ChainStore) LiveCell(dbContext database.DataAccessor, outPoint *externalapi.OutPoint) (fn.Option[*externalapi.CellMeta], error) {
	cellBytes, err := get(dbContext, outPointKey(outPoint))
	if err != nil || cellBytes == nil {
		return fn.None[*externalapi.CellMeta](), err
	}
	meta, err := cellFromBytes(cellBytes)
	if err != nil {
		return fn.None[*externalapi.CellMeta](), errors.Wrapf(err, "corrupted cell %s", outPoint)
	}
	return fn.Some(meta), nil
}

// TransactionRecord returns the record of a main chain transaction.
func (cs *ChainStore) TransactionRecord(dbContext database.DataAccessor,
	txHash *externalapi.DomainHash) (fn.Option[*TransactionRecord], error) {

	recordBytes, err := get(dbContext, hashKey(transactionsBucket, txHash))
	if err != nil || recordBytes == nil {
		return fn.None[*TransactionRecord](), err
	}
	record, err := deserializeTransactionRecord(recordBytes)
	if err != nil {
		return fn.None[*TransactionRecord](), errors.Wrapf(err, "corrupted transaction record %s", txHash)
	}
	return fn.Some(record), nil
}
