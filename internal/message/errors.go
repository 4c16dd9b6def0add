package message

import "errors"

// Registry errors.
var (
	// ErrUnknownType is returned when a type alias has no registered entry.
	ErrUnknownType = errors.New("message: unknown type alias")

	// ErrDuplicateType is returned when a type alias is registered twice.
	ErrDuplicateType = errors.New("message: type alias already registered")

	// ErrMalformedPayload is returned when bytes do not decode to the registered type.
	ErrMalformedPayload = errors.New("message: malformed payload")

	// ErrTypeMismatch is returned when the embedded TypeAlias disagrees with the requested one.
	ErrTypeMismatch = errors.New("message: type alias mismatch")
)
