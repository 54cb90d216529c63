package blockvalidator

import (
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/transactionvalidator"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/dao"
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateBodyInContext validates the block body against view, in which the
// block's parent is the tip. Checks disabled by verificationSwitch are
// skipped, except transaction resolution which attaching the block needs.
func (v *BlockValidator) ValidateBodyInContext(view ChainView, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock, verificationSwitch model.VerificationSwitch) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBodyInContext")
	defer onEnd()

	header := block.Header
	parentOption, err := view.GetBlockHeader(&header.ParentHash)
	if err != nil {
		return err
	}
	if parentOption.IsNone() {
		parentHash := header.ParentHash
		return ruleerrors.NewErrMissingParents([]*externalapi.DomainHash{&parentHash})
	}
	parent := parentOption.UnsafeFromSome()

	if verificationSwitch&model.DisableHeaderVerification == 0 {
		err = v.checkUnclesInContext(view, block)
		if err != nil {
			return err
		}
	}

	rtxs, err := v.resolveBlockTransactions(view, block)
	if err != nil {
		return err
	}

	if verificationSwitch&model.DisableTransactionVerification == 0 {
		err = v.checkTransactionsInContext(view, blockHash, block, rtxs)
		if err != nil {
			return err
		}
	}

	if verificationSwitch&model.DisableDAOVerification == 0 {
		expectedDAO, err := dao.NewCalculator(v.params, view).DAOField(rtxs, parent, header.Epoch)
		if err != nil {
			return err
		}
		if expectedDAO != header.DAO {
			return errors.Wrapf(ruleerrors.ErrUnexpectedDAOField, "block %s DAO field %x is not the "+
				"calculated %x", blockHash, header.DAO, expectedDAO)
		}
	}
	return nil
}

func (v *BlockValidator) resolveBlockTransactions(view ChainView,
	block *externalapi.DomainBlock) ([]*cell.ResolvedTransaction, error) {

	blockProvider, err := cell.NewBlockProvider(block)
	if err != nil {
		return nil, ruleerrors.NewErrInvalidTransactionsInNewBlock([]ruleerrors.InvalidTransaction{
			{Transaction: block.Cellbase(), Error: err},
		})
	}
	provider := cell.NewOverlayProvider(blockProvider, view)
	features := v.params.HardforkSwitch.FeatureSet(block.Header.Epoch.Number())
	options := cell.NewResolveOptions(features)

	seenInputs := make(cell.SeenInputs)
	rtxs := make([]*cell.ResolvedTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		rtxs[i], err = cell.ResolveTransaction(tx, seenInputs, provider, view, options)
		if err != nil {
			var outPointErr cell.OutPointError
			if !errors.As(err, &outPointErr) {
				return nil, err
			}
			return nil, ruleerrors.NewErrInvalidTransactionsInNewBlock([]ruleerrors.InvalidTransaction{
				{Transaction: tx, Error: err},
			})
		}
	}
	return rtxs, nil
}

func (v *BlockValidator) checkTransactionsInContext(view ChainView, blockHash *externalapi.DomainHash,
	block *externalapi.DomainBlock, rtxs []*cell.ResolvedTransaction) error {

	medianTime, err := v.PastMedianTime(view, block.Header)
	if err != nil {
		return err
	}
	contextView := &blockView{
		ChainView:  view,
		blockHash:  blockHash,
		header:     block.Header,
		medianTime: medianTime,
	}
	env := transactionvalidator.NewCommittedEnv(block.Header)

	var invalidTransactions []ruleerrors.InvalidTransaction
	var totalCycles uint64
	var totalFees externalapi.Capacity
	for _, rtx := range rtxs[1:] {
		completed, err := transactionvalidator.NewContextualVerifier(contextView, rtx, env).Verify(v.params.MaxBlockCycles)
		if err != nil {
			var ruleErr ruleerrors.RuleError
			if !errors.As(err, &ruleErr) {
				return err
			}
			invalidTransactions = append(invalidTransactions, ruleerrors.InvalidTransaction{
				Transaction: rtx.Transaction,
				Error:       err,
			})
			continue
		}
		totalCycles += completed.Cycles
		totalFees, err = totalFees.SafeAdd(completed.Fee)
		if err != nil {
			return errors.Wrapf(ruleerrors.ErrCapacityOverflow, "block fees overflow: %s", err)
		}
	}
	if len(invalidTransactions) > 0 {
		return ruleerrors.NewErrInvalidTransactionsInNewBlock(invalidTransactions)
	}
	if totalCycles > v.params.MaxBlockCycles {
		return errors.Wrapf(ruleerrors.ErrBlockCyclesTooHigh, "block transactions consume %d cycles, "+
			"the maximum is %d", totalCycles, v.params.MaxBlockCycles)
	}
	log.Tracef("Block %s transactions consume %d cycles and pay %s in fees", blockHash, totalCycles, totalFees)

	return v.checkCellbaseReward(block, totalFees)
}

func (v *BlockValidator) checkCellbaseReward(block *externalapi.DomainBlock, totalFees externalapi.Capacity) error {
	reward, err := v.params.PrimaryBlockReward(block.Header.Epoch).SafeAdd(totalFees)
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrCapacityOverflow, "block reward overflow: %s", err)
	}
	paid, err := block.Cellbase().OutputsCapacity()
	if err != nil {
		return errors.Wrapf(ruleerrors.ErrBadCellbaseTransaction, "cellbase outputs overflow: %s", err)
	}
	if paid > reward {
		return errors.Wrapf(ruleerrors.ErrBadCellbaseTransaction, "cellbase pays %s, the block reward is %s",
			paid, reward)
	}
	return nil
}

func (v *BlockValidator) checkUnclesInContext(view ChainView, block *externalapi.DomainBlock) error {
	for _, uncle := range block.Uncles {
		uncleHash := consensushashing.HeaderHash(uncle.Header)
		if uncle.Header.Number >= block.Header.Number ||
			block.Header.Number-uncle.Header.Number > v.params.MaxUncleAge {
			return errors.Wrapf(ruleerrors.ErrInvalidUncle, "uncle %s number %d is out of range for "+
				"block %d", uncleHash, uncle.Header.Number, block.Header.Number)
		}
		if uncle.Header.Epoch.Number() != block.Header.Epoch.Number() {
			return errors.Wrapf(ruleerrors.ErrInvalidUncle, "uncle %s is from epoch %d, block is in epoch %d",
				uncleHash, uncle.Header.Epoch.Number(), block.Header.Epoch.Number())
		}
		isMainChain, err := view.IsMainChain(uncleHash)
		if err != nil {
			return err
		}
		if isMainChain {
			return errors.Wrapf(ruleerrors.ErrInvalidUncle, "uncle %s is on the main chain", uncleHash)
		}
		uncleParent, err := view.GetBlockHeader(&uncle.Header.ParentHash)
		if err != nil {
			return err
		}
		if uncleParent.IsNone() {
			return errors.Wrapf(ruleerrors.ErrInvalidUncle, "uncle %s has an unknown parent", uncleHash)
		}
	}
	return nil
}
