package codec

import "errors"

// Decode errors. Each is a protocol error: the offending message is dropped.
var (
	// ErrMalformedTopic is returned when a topic is not "src/type".
	ErrMalformedTopic = errors.New("codec: malformed topic")

	// ErrUnknownType is returned when the topic's type alias is not registered.
	ErrUnknownType = errors.New("codec: unknown type")

	// ErrUnauthorizedSource is returned when the sender alias is not allowed on the transport.
	ErrUnauthorizedSource = errors.New("codec: unauthorized source")

	// ErrMalformedPayload is returned when the bytes do not decode to the topic's type.
	ErrMalformedPayload = errors.New("codec: malformed payload")
)
