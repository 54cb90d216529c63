package rpccontext

import (
	"github.com/cellnetwork/celld/app/protocol/relay"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/domain/consensus/utils/consensushashing"
)

// BroadcastBlock relays block to peers as a compact block. A failed
// broadcast is logged and otherwise ignored.
func (c *Context) BroadcastBlock(protocolID relay.ProtocolID, block *externalapi.DomainBlock) {
	err := c.NetworkController.Broadcast(protocolID, relay.CompactBlockMessage(block))
	if err != nil {
		log.Errorf("Broadcast new block failed: %s", err)
	}
}

// ProcessAndAnnounceBlock fully verifies block, inserts it and relays it.
func (c *Context) ProcessAndAnnounceBlock(block *externalapi.DomainBlock) (*externalapi.DomainHash, error) {
	blockHash := consensushashing.BlockHash(block)
	_, err := c.Domain.Chain().ProcessBlock(block)
	if err != nil {
		return nil, err
	}
	log.Infof("Accepted generated block %s at number %d", blockHash, block.Header.Number)

	c.BroadcastBlock(relay.Relay, block)
	return blockHash, nil
}
