package model

import (
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
)

// HashToTransaction maps a transaction hash to a MempoolTransaction
type HashToTransaction map[externalapi.DomainHash]*MempoolTransaction

// ShortIDToTransaction maps a proposal short id to a MempoolTransaction
type ShortIDToTransaction map[externalapi.ProposalShortID]*MempoolTransaction

// OutPointToTransaction maps an outpoint to a MempoolTransaction
type OutPointToTransaction map[externalapi.OutPoint]*MempoolTransaction

// HashToOrphan maps a transaction hash to an OrphanTransaction
type HashToOrphan map[externalapi.DomainHash]*OrphanTransaction
