package model

import (
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// HeaderProvider looks up stored block headers, on or off the main chain
type HeaderProvider interface {
	GetBlockHeader(blockHash *externalapi.DomainHash) (fn.Option[*externalapi.DomainBlockHeader], error)
}

// ChainStore is a read-only view of chain state
type ChainStore interface {
	HeaderProvider

	// IsMainChain returns whether the block is on the main chain
	IsMainChain(blockHash *externalapi.DomainHash) (bool, error)

	// TipHeader returns the header of the main chain tip
	TipHeader() *externalapi.DomainBlockHeader

	// BlockMedianTime returns the median timestamp of the block and its
	// ancestors, over the consensus median time window
	BlockMedianTime(blockHash *externalapi.DomainHash) (uint64, error)

	Params() *chainconfig.Params
}
