// Package codec turns MQTT messages into typed payloads and back.
//
// Topics have the form "{senderAlias}/{typeAlias}". Decoding a message checks,
// in order, that the topic has exactly one separator, that the type alias is
// registered, and that the sender alias is allowed on this transport. Only
// then are the bytes unmarshalled. Content that is well formed but
// unexpected for the application is not a codec error; handlers judge it.
//
// Two sender policies are provided: Exact accepts a single alias (the Atn on
// the Gridworks broker) and Known accepts any alias in the house layout (the
// local broker).
package codec
