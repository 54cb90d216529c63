package model

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// BlockAssembler is who a block template pays its reward to.
type BlockAssembler struct {
	Lock    *externalapi.Script
	Message []byte
}

// BlockTemplateRequest holds the optional limits a miner may ask for. An
// unset limit, or one above the consensus limit, falls back to the
// consensus limit.
type BlockTemplateRequest struct {
	BytesLimit     fn.Option[uint64]
	ProposalsLimit fn.Option[uint64]
	MaxVersion     fn.Option[uint32]
	Assembler      fn.Option[*BlockAssembler]
}

// BlockTemplateBuilder builds block templates for miners to consume
type BlockTemplateBuilder interface {
	GetBlockTemplate(request *BlockTemplateRequest) (*externalapi.DomainBlockTemplate, error)
}
