package model

import "github.com/cellnetwork/celld/domain/consensus/model/externalapi"

// HeaderVerifier checks a header against its parent and the consensus
// parameters
type HeaderVerifier interface {
	Verify(header *externalapi.DomainBlockHeader) error
}
