package blockvalidator

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateBodyInIsolation validates block bodies in isolation from the current
// consensus state
func (v *BlockValidator) ValidateBodyInIsolation(block *externalapi.DomainBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBodyInIsolation")
	defer onEnd()

	err := v.checkBlockSize(block)
	if err != nil {
		return err
	}

	err = checkCellbase(block)
	if err != nil {
		return err
	}

	err = checkBlockCommitments(block)
	if err != nil {
		return err
	}

	err = v.checkUnclesAndProposalsLimits(block)
	if err != nil {
		return err
	}

	err = checkBlockDuplicateTransactions(block)
	if err != nil {
		return err
	}

	return v.checkTransactionsInIsolation(block)
}

func (v *BlockValidator) checkBlockSize(block *externalapi.DomainBlock) error {
	size := serialization.BlockSize(block)
	if size > v.params.MaxBlockBytes {
		return errors.Wrapf(ruleerrors.ErrBlockBytesTooHigh, "block is %d bytes, the maximum is %d",
			size, v.params.MaxBlockBytes)
	}
	return nil
}

func checkCellbase(block *externalapi.DomainBlock) error {
	if len(block.Transactions) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoTransactions, "block does not contain any transactions")
	}

	cellbase := block.Cellbase()
	if !cellbase.IsCellbase() {
		return errors.Wrapf(ruleerrors.ErrFirstTxNotCellbase, "first transaction in block is not a cellbase")
	}
	for i, tx := range block.Transactions[1:] {
		if tx.IsCellbase() {
			return errors.Wrapf(ruleerrors.ErrMultipleCellbases, "block contains a second cellbase at index %d", i+1)
		}
	}

	if cellbase.Inputs[0].Since != block.Header.Number {
		return errors.Wrapf(ruleerrors.ErrBadCellbaseTransaction, "cellbase since %d is not the block number %d",
			cellbase.Inputs[0].Since, block.Header.Number)
	}
	if len(cellbase.CellDeps) != 0 || len(cellbase.HeaderDeps) != 0 {
		return errors.Wrapf(ruleerrors.ErrBadCellbaseTransaction, "cellbase has dependencies")
	}
	// The genesis cellbase carries the system cells and the initial issuance.
	if block.Header.Number > 0 {
		if len(cellbase.Outputs) > 1 {
			return errors.Wrapf(ruleerrors.ErrBadCellbaseTransaction, "cellbase has %d outputs",
				len(cellbase.Outputs))
		}
		if len(cellbase.Witnesses) != 1 {
			return errors.Wrapf(ruleerrors.ErrBadCellbaseTransaction, "cellbase has %d witnesses, "+
				"expected exactly one", len(cellbase.Witnesses))
		}
	}
	return nil
}

func checkBlockCommitments(block *externalapi.DomainBlock) error {
	transactionsRoot := consensushashing.TransactionsRoot(block.Transactions)
	if !block.Header.TransactionsRoot.Equal(transactionsRoot) {
		return errors.Wrapf(ruleerrors.ErrBadTransactionsRoot, "block transactions root is invalid - block "+
			"header indicates %s, but calculated value is %s", block.Header.TransactionsRoot, transactionsRoot)
	}

	proposalsHash := consensushashing.ProposalsHash(block.Proposals)
	if !block.Header.ProposalsHash.Equal(proposalsHash) {
		return errors.Wrapf(ruleerrors.ErrBadProposalsHash, "block proposals hash %s is not the "+
			"calculated %s", block.Header.ProposalsHash, proposalsHash)
	}

	extraHash := consensushashing.ExtraHash(block.Uncles, block.Extension)
	if !block.Header.ExtraHash.Equal(extraHash) {
		return errors.Wrapf(ruleerrors.ErrBadExtraHash, "block extra hash %s is not the calculated %s",
			block.Header.ExtraHash, extraHash)
	}

	uncleHashes := make(map[externalapi.DomainHash]struct{}, len(block.Uncles))
	for _, uncle := range block.Uncles {
		uncleHash := consensushashing.HeaderHash(uncle.Header)
		if _, exists := uncleHashes[*uncleHash]; exists {
			return errors.Wrapf(ruleerrors.ErrInvalidUncle, "uncle %s is included twice", uncleHash)
		}
		uncleHashes[*uncleHash] = struct{}{}

		uncleProposalsHash := consensushashing.UncleProposalsHash(uncle)
		if !uncle.Header.ProposalsHash.Equal(uncleProposalsHash) {
			return errors.Wrapf(ruleerrors.ErrInvalidUncle, "uncle %s proposals hash does not match "+
				"its proposals", uncleHash)
		}
	}
	return nil
}

func (v *BlockValidator) checkUnclesAndProposalsLimits(block *externalapi.DomainBlock) error {
	if len(block.Uncles) > v.params.MaxUnclesNum {
		return errors.Wrapf(ruleerrors.ErrTooManyUncles, "block has %d uncles, the maximum is %d",
			len(block.Uncles), v.params.MaxUnclesNum)
	}

	proposalsCount := uint64(len(block.Proposals))
	for _, uncle := range block.Uncles {
		proposalsCount += uint64(len(uncle.Proposals))
	}
	if proposalsCount > v.params.MaxBlockProposalsLimit {
		return errors.Wrapf(ruleerrors.ErrTooManyProposals, "block and its uncles propose %d transactions, "+
			"the maximum is %d", proposalsCount, v.params.MaxBlockProposalsLimit)
	}
	return nil
}

func checkBlockDuplicateTransactions(block *externalapi.DomainBlock) error {
	existingTxHashes := make(map[externalapi.DomainHash]struct{}, len(block.Transactions))
	for _, tx := range block.Transactions {
		txHash := consensushashing.TransactionHash(tx)
		if _, exists := existingTxHashes[*txHash]; exists {
			return errors.Wrapf(ruleerrors.ErrDuplicateTx, "block contains duplicate "+
				"transaction %s", txHash)
		}
		existingTxHashes[*txHash] = struct{}{}
	}
	return nil
}

func (v *BlockValidator) checkTransactionsInIsolation(block *externalapi.DomainBlock) error {
	for _, tx := range block.Transactions[1:] {
		err := transactionvalidator.ValidateTransactionInIsolation(v.params, tx)
		if err != nil {
			return errors.Wrapf(err, "transaction %s failed isolation check",
				consensushashing.TransactionHash(tx))
		}
	}
	return nil
}
