package blockvalidator

import (
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/model/pow"
	"github.com/cellnetwork/celld/domain/consensus/ruleerrors"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateHeaderInContext validates a header against its parent, which must
// be known to store
func (v *BlockValidator) ValidateHeaderInContext(store model.ChainStore, header *externalapi.DomainBlockHeader) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateHeaderInContext")
	defer onEnd()

	if header.Version != v.params.BlockVersion {
		return errors.Wrapf(ruleerrors.ErrBlockVersionIsUnknown, "block version %d is not the expected %d",
			header.Version, v.params.BlockVersion)
	}

	parentOption, err := store.GetBlockHeader(&header.ParentHash)
	if err != nil {
		return err
	}
	if parentOption.IsNone() {
		parentHash := header.ParentHash
		return ruleerrors.NewErrMissingParents([]*externalapi.DomainHash{&parentHash})
	}
	parent := parentOption.UnsafeFromSome()

	err = v.checkNumberAndEpoch(header, parent)
	if err != nil {
		return err
	}

	err = v.checkTimestamp(store, header, parent)
	if err != nil {
		return err
	}

	if header.CompactTarget != parent.CompactTarget {
		return errors.Wrapf(ruleerrors.ErrUnexpectedDifficulty, "block compact target %08x differs from "+
			"the parent's %08x", header.CompactTarget, parent.CompactTarget)
	}

	return v.checkProofOfWork(header)
}

func (v *BlockValidator) checkNumberAndEpoch(header, parent *externalapi.DomainBlockHeader) error {
	if header.Number != parent.Number+1 {
		return errors.Wrapf(ruleerrors.ErrUnexpectedNumber, "block number %d does not follow its parent's "+
			"number %d", header.Number, parent.Number)
	}
	expectedEpoch := v.params.EpochAt(header.Number)
	if header.Epoch != expectedEpoch {
		return errors.Wrapf(ruleerrors.ErrUnexpectedEpoch, "block epoch %s is not the expected %s",
			header.Epoch, expectedEpoch)
	}
	return nil
}

func (v *BlockValidator) checkTimestamp(store model.ChainStore, header, parent *externalapi.DomainBlockHeader) error {
	parentMedianTime, err := store.BlockMedianTime(&header.ParentHash)
	if err != nil {
		return err
	}
	if header.Timestamp <= parentMedianTime {
		return errors.Wrapf(ruleerrors.ErrTimeTooOld, "block timestamp of %d is not after the median time "+
			"%d of its parent %d", header.Timestamp, parentMedianTime, parent.Number)
	}

	maxTimestamp := uint64(v.clock.Now().UnixMilli()) + uint64(v.params.MaxFutureBlockTime.Milliseconds())
	if header.Timestamp > maxTimestamp {
		return errors.Wrapf(ruleerrors.ErrTimeTooMuchInTheFuture, "block timestamp of %d is too far in "+
			"the future, the maximum is %d", header.Timestamp, maxTimestamp)
	}
	return nil
}

// checkProofOfWork ensures the pow hash of the header is not higher than
// its target, unless the network skips proof of work.
func (v *BlockValidator) checkProofOfWork(header *externalapi.DomainBlockHeader) error {
	if v.params.SkipProofOfWork {
		return nil
	}
	if !pow.CheckProofOfWorkByCompactTarget(header) {
		return errors.Wrapf(ruleerrors.ErrInvalidPoW, "block %s has invalid proof of work",
			consensushashing.HeaderHash(header))
	}
	return nil
}
