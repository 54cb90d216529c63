package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var announcedBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "celld",
	Subsystem: "relay",
	Name:      "announced_blocks_total",
	Help:      "Number of compact blocks handed to the network by protocol.",
}, []string{"protocol"})

type offlineNetworkController struct {
	supportsRelayV2 bool
}

// NewOfflineNetworkController returns a NetworkController for a node with
// no peer to peer layer attached. Announcements are validated, counted and
// logged, then dropped.
func NewOfflineNetworkController(supportsRelayV2 bool) NetworkController {
	return &offlineNetworkController{supportsRelayV2: supportsRelayV2}
}

func (nc *offlineNetworkController) Broadcast(protocolID ProtocolID, payload []byte) error {
	compactBlock, err := ParseMessage(payload)
	if err != nil {
		return err
	}
	announcedBlocks.WithLabelValues(protocolID.String()).Inc()
	log.Debugf("Announcing compact block at number %d with %d transactions on %s",
		compactBlock.Header.Number, compactBlock.TransactionCount(), protocolID)
	return nil
}

func (nc *offlineNetworkController) SupportsRelayV2() bool {
	return nc.supportsRelayV2
}
