package relay

// ProtocolID identifies a peer to peer sub-protocol
type ProtocolID uint16

// Relay protocols
const (
	Relay   ProtocolID = 101
	RelayV2 ProtocolID = 103
)

var protocolIDStrings = map[ProtocolID]string{
	Relay:   "Relay",
	RelayV2: "RelayV2",
}

func (id ProtocolID) String() string {
	if s, ok := protocolIDStrings[id]; ok {
		return s
	}
	return "unknown protocol"
}

// NetworkController is the part of the peer to peer layer the node core
// announces blocks through.
type NetworkController interface {
	// Broadcast sends payload to every connected peer that speaks
	// protocolID.
	Broadcast(protocolID ProtocolID, payload []byte) error

	// SupportsRelayV2 returns whether the network negotiated the second
	// version of the relay protocol.
	SupportsRelayV2() bool
}

// NewBlockProtocol returns the protocol new blocks are announced on.
func NewBlockProtocol(networkController NetworkController) ProtocolID {
	if networkController.SupportsRelayV2() {
		return RelayV2
	}
	return Relay
}
