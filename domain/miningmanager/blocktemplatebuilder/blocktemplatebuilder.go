package blocktemplatebuilder

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/snapshot"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
	"github.com/cellnetwork/celld/domain/consensus/utils/serialization"
	"github.com/cellnetwork/celld/domain/miningmanager/model"
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/pkg/errors"
)

// ErrNoBlockAssembler is returned when a template is requested without an
// assembler and no default one is configured.
var ErrNoBlockAssembler = errors.New("no block assembler is configured")

// ChainSource is the part of the chain controller templates are built on.
type ChainSource interface {
	Snapshot() *snapshot.Snapshot
	UncleCandidates() []*externalapi.UncleTemplate
	PastMedianTime(snapshot *snapshot.Snapshot, header *externalapi.DomainBlockHeader) (uint64, error)
}

// blockTemplateBuilder creates block templates for a miner to consume
type blockTemplateBuilder struct {
	chain            ChainSource
	mempool          model.Mempool
	clock            clock.Clock
	defaultAssembler *model.BlockAssembler
	lastWorkID       atomic.Uint64
}

// New creates a new blockTemplateBuilder. defaultAssembler, which may be
// nil, is used for requests that don't name an assembler.
func New(chain ChainSource, mempool model.Mempool, clock clock.Clock,
	defaultAssembler *model.BlockAssembler) model.BlockTemplateBuilder {

	return &blockTemplateBuilder{
		chain:            chain,
		mempool:          mempool,
		clock:            clock,
		defaultAssembler: defaultAssembler,
	}
}

// GetBlockTemplate creates a block template for a miner to consume
func (btb *blockTemplateBuilder) GetBlockTemplate(request *model.BlockTemplateRequest) (
	*externalapi.DomainBlockTemplate, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "GetBlockTemplate")
	defer onEnd()

	assembler := request.Assembler.UnwrapOr(btb.defaultAssembler)
	if assembler == nil || assembler.Lock == nil {
		return nil, ErrNoBlockAssembler
	}

	current := btb.chain.Snapshot()
	defer current.Release()
	params := current.Params()
	tip := current.TipHeader()

	number := tip.Number + 1
	template := &externalapi.DomainBlockTemplate{
		Version:          minUint32(request.MaxVersion.UnwrapOr(params.BlockVersion), params.BlockVersion),
		CompactTarget:    tip.CompactTarget,
		Number:           number,
		Epoch:            params.EpochAt(number),
		ParentHash:       *current.TipHash(),
		CyclesLimit:      params.MaxBlockCycles,
		BytesLimit:       minUint64(request.BytesLimit.UnwrapOr(params.MaxBlockBytes), params.MaxBlockBytes),
		UnclesCountLimit: uint64(params.MaxUnclesNum),
		WorkID:           btb.lastWorkID.Add(1),
	}

	var err error
	template.CurrentTime, err = btb.currentTime(current, tip)
	if err != nil {
		return nil, err
	}

	template.Uncles = btb.chain.UncleCandidates()
	if len(template.Uncles) > params.MaxUnclesNum {
		template.Uncles = template.Uncles[:params.MaxUnclesNum]
	}

	proposalsLimit := minUint64(request.ProposalsLimit.UnwrapOr(params.MaxBlockProposalsLimit),
		params.MaxBlockProposalsLimit)
	uncleProposals := make(map[externalapi.ProposalShortID]struct{})
	for _, uncle := range template.Uncles {
		for _, proposal := range uncle.Proposals {
			uncleProposals[proposal] = struct{}{}
		}
		if uint64(len(uncle.Proposals)) >= proposalsLimit {
			proposalsLimit = 0
		} else {
			proposalsLimit -= uint64(len(uncle.Proposals))
		}
	}
	template.Proposals = btb.mempool.ProposalCandidates(proposalsLimit, uncleProposals)

	// Proposals of transactions that get selected are dropped later, and
	// the cellbase is sized with the largest possible reward, so the
	// reserved bytes never fall short.
	cellbase, err := buildCellbase(template, assembler, math.MaxUint64)
	if err != nil {
		return nil, err
	}
	template.Cellbase = &externalapi.CellbaseTemplate{Data: cellbase}
	reservedBytes := serialization.BlockSize(BlockFromTemplate(template))
	if reservedBytes > template.BytesLimit {
		return nil, errors.Errorf("the bytes limit %d is below the %d bytes of an empty block",
			template.BytesLimit, reservedBytes)
	}

	var fees externalapi.Capacity
	candidates := btb.mempool.BlockTemplateCandidates(template.BytesLimit-reservedBytes, template.CyclesLimit)
	indexes := make(map[externalapi.DomainHash]uint64, len(candidates))
	selected := make(map[externalapi.ProposalShortID]struct{}, len(candidates))
	template.Transactions = make([]*externalapi.TransactionTemplate, 0, len(candidates))
	for _, candidate := range candidates {
		transactionTemplate := &externalapi.TransactionTemplate{
			Hash:   *candidate.Hash(),
			Cycles: candidate.Cycles(),
			Fee:    candidate.Fee(),
			Data:   candidate.Transaction(),
		}
		depends := make(map[uint64]struct{})
		for _, parent := range candidate.ParentTransactionsInPool() {
			if index, ok := indexes[*parent.Hash()]; ok {
				if _, ok := depends[index]; !ok {
					depends[index] = struct{}{}
					transactionTemplate.Depends = append(transactionTemplate.Depends, index)
				}
			}
		}
		sort.Slice(transactionTemplate.Depends, func(i, j int) bool {
			return transactionTemplate.Depends[i] < transactionTemplate.Depends[j]
		})
		fees, err = fees.SafeAdd(candidate.Fee())
		if err != nil {
			return nil, errors.Wrap(err, "template fees overflow")
		}
		indexes[*candidate.Hash()] = uint64(len(template.Transactions))
		selected[candidate.ShortID()] = struct{}{}
		template.Transactions = append(template.Transactions, transactionTemplate)
	}

	reward, err := params.PrimaryBlockReward(template.Epoch).SafeAdd(fees)
	if err != nil {
		return nil, errors.Wrap(err, "block reward overflow")
	}
	cellbase, err = buildCellbase(template, assembler, reward)
	if err != nil {
		return nil, err
	}
	template.Cellbase = &externalapi.CellbaseTemplate{
		Hash: *consensushashing.TransactionHash(cellbase),
		Data: cellbase,
	}

	template.Proposals = filterProposals(template.Proposals, selected)

	template.DAO, err = CalculateDAOField(current, template)
	if err != nil {
		return nil, err
	}

	blockTemplatesBuilt.Inc()
	templateTransactions.Set(float64(len(template.Transactions)))
	log.Debugf("Built template %d on top of %s with %d transactions, %d proposals and %d uncles",
		template.WorkID, template.ParentHash, len(template.Transactions), len(template.Proposals),
		len(template.Uncles))
	return template, nil
}

// currentTime returns the local time, or one past the parent median time
// if the local clock is behind it.
func (btb *blockTemplateBuilder) currentTime(current *snapshot.Snapshot, tip *externalapi.DomainBlockHeader) (
	uint64, error) {

	medianTime, err := btb.chain.PastMedianTime(current, tip)
	if err != nil {
		return 0, err
	}
	now := uint64(btb.clock.Now().UnixMilli())
	if now <= medianTime {
		return medianTime + 1, nil
	}
	return now, nil
}

// filterProposals drops the proposals of transactions the template
// already commits.
func filterProposals(proposals []externalapi.ProposalShortID,
	committed map[externalapi.ProposalShortID]struct{}) []externalapi.ProposalShortID {

	filtered := make([]externalapi.ProposalShortID, 0, len(proposals))
	for _, proposal := range proposals {
		if _, ok := committed[proposal]; !ok {
			filtered = append(filtered, proposal)
		}
	}
	return filtered
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
