package message

// Well-known source and destination names for envelopes produced by the
// runtime itself rather than by an actor.
const (
	// SourceTransport is the Src of every envelope produced by a transport client.
	SourceTransport = "mqtt_clients"

	// DestinationRuntime is the Dst of envelopes addressed to the runtime
	// before a derived runtime name is known.
	DestinationRuntime = "proactor"
)

// Header carries the routing information for an Envelope.
type Header struct {
	// Src is the alias of the actor (or transport) that produced the envelope.
	Src string `json:"src"`

	// Dst is the alias of the actor the envelope is addressed to.
	Dst string `json:"dst"`

	// MessageType is the payload discriminant; always Payload.TypeAlias().
	MessageType string `json:"message_type"`

	// SequenceNumber is assigned when the envelope is created. Envelopes from
	// one transport client carry strictly increasing numbers with no gaps.
	SequenceNumber uint64 `json:"sequence_number"`
}

// Envelope is the typed header+payload wrapper for every unit of work.
type Envelope struct {
	Header  Header
	Payload Payload
}

// New builds an envelope whose MessageType is taken from the payload.
// The sequence number is left for the runtime to stamp.
func New(src, dst string, payload Payload) Envelope {
	return Envelope{
		Header: Header{
			Src:         src,
			Dst:         dst,
			MessageType: payload.TypeAlias(),
		},
		Payload: payload,
	}
}

// Category groups message types for the runtime's first classification step.
type Category int

const (
	// CategoryApplication is any envelope that is not a transport event.
	CategoryApplication Category = iota
	CategoryTransportMessage
	CategoryTransportConnected
	CategoryTransportDisconnected
	CategoryTransportConnectFailed
)

// String returns the category name used in logs.
func (c Category) String() string {
	switch c {
	case CategoryTransportMessage:
		return "transport_message"
	case CategoryTransportConnected:
		return "transport_connected"
	case CategoryTransportDisconnected:
		return "transport_disconnected"
	case CategoryTransportConnectFailed:
		return "transport_connect_failed"
	default:
		return "application"
	}
}

// CategoryOf classifies an envelope by its MessageType.
func CategoryOf(env Envelope) Category {
	switch env.Header.MessageType {
	case TypeTransportMessage:
		return CategoryTransportMessage
	case TypeTransportConnected:
		return CategoryTransportConnected
	case TypeTransportDisconnected:
		return CategoryTransportDisconnected
	case TypeTransportConnectFailed:
		return CategoryTransportConnectFailed
	default:
		return CategoryApplication
	}
}
