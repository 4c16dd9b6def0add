// Package message defines the envelope and payload types that cross the
// Scada runtime's internal bus, plus the type registry used to move wire
// payloads on and off MQTT.
//
// # Envelopes
//
// Every unit of work is an Envelope: a routing Header (source, destination,
// message type, sequence number) and one Payload. Payloads form a closed set;
// each variant implements Payload and reports its own TypeAlias, which is the
// discriminant the runtime classifies on.
//
//	env := message.New("a.s", "a.elt1.relay", &message.DispatchBooleanLocal{
//	    AboutNodeAlias: "a.elt1.relay",
//	    FromNodeAlias:  "a.s",
//	    RelayState:     1,
//	})
//
// # Wire format
//
// Wire payloads are JSON objects carrying a "TypeAlias" field. Registry.Encode
// produces keys in sorted order so the same payload always encodes to the
// same bytes. Registry.Decode checks the embedded TypeAlias against the one
// taken from the topic before unmarshalling into the registered variant.
//
// Adding a message type means adding the struct and one Register call in
// DefaultRegistry; the runtime itself does not change.
package message
