package blockvalidator

import (
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/processes/pastmediantimemanager"
	"github.com/cellnetwork/celld/domain/consensus/utils/cell"
	"github.com/lightningnetwork/lnd/clock"
)

// ChainView is the chain state a block is validated against
type ChainView interface {
	model.ChainStore
	cell.Provider
	cell.HeaderChecker
}

// BlockValidator exposes a set of validation classes, after which
// it's possible to determine whether either a block is valid
type BlockValidator struct {
	params                *chainconfig.Params
	clock                 clock.Clock
	pastMedianTimeManager *pastmediantimemanager.PastMedianTimeManager
}

// New instantiates a new BlockValidator
func New(params *chainconfig.Params, clock clock.Clock) *BlockValidator {
	return &BlockValidator{
		params:                params,
		clock:                 clock,
		pastMedianTimeManager: pastmediantimemanager.New(params.MedianTimeBlockCount),
	}
}

// PastMedianTime returns the median time of header over the consensus
// median time window. The ancestors of header must be known to headers.
func (v *BlockValidator) PastMedianTime(headers model.HeaderProvider,
	header *externalapi.DomainBlockHeader) (uint64, error) {

	return v.pastMedianTimeManager.PastMedianTime(headers, header)
}

type headerVerifier struct {
	validator *BlockValidator
	store     model.ChainStore
}

// HeaderVerifier returns a model.HeaderVerifier that validates headers
// against store
func (v *BlockValidator) HeaderVerifier(store model.ChainStore) model.HeaderVerifier {
	return &headerVerifier{validator: v, store: store}
}

func (hv *headerVerifier) Verify(header *externalapi.DomainBlockHeader) error {
	return hv.validator.ValidateHeaderInContext(hv.store, header)
}
