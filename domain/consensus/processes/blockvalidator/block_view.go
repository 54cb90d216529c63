package blockvalidator

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// blockView answers for the block under validation as if it was stored, so
// that cells it creates can be checked against its own header.
type blockView struct {
	ChainView
	blockHash  *externalapi.DomainHash
	header     *externalapi.DomainBlockHeader
	medianTime uint64
}

func (bv *blockView) GetBlockHeader(blockHash *externalapi.DomainHash) (fn.Option[*externalapi.DomainBlockHeader], error) {
	if blockHash.Equal(bv.blockHash) {
		return fn.Some(bv.header), nil
	}
	return bv.ChainView.GetBlockHeader(blockHash)
}

func (bv *blockView) BlockMedianTime(blockHash *externalapi.DomainHash) (uint64, error) {
	if blockHash.Equal(bv.blockHash) {
		return bv.medianTime, nil
	}
	return bv.ChainView.BlockMedianTime(blockHash)
}
