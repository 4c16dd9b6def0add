package proactor

import (
	"errors"

	"github.com/nerrad567/gray-logic-scada/internal/codec"
	"github.com/nerrad567/gray-logic-scada/internal/infrastructure/mqtt"
)

// Error kinds. Wrap one of these to classify an error for reporting.
var (
	// ErrProtocol marks a message that broke the wire protocol or the
	// sender rules: malformed topic, unknown type, wrong sender.
	ErrProtocol = errors.New("protocol error")

	// ErrLogic marks a well-formed message the application cannot act on.
	ErrLogic = errors.New("logic error")

	// ErrRuntime marks an I/O or internal failure.
	ErrRuntime = errors.New("runtime error")

	// ErrConfig marks incomplete or inconsistent wiring. Fatal at startup.
	ErrConfig = errors.New("configuration error")
)

// Runtime errors.
var (
	// ErrDuplicateCommunicator is returned when two communicators share a name.
	ErrDuplicateCommunicator = errors.New("proactor: duplicate communicator")

	// ErrNoHandler is returned by Start when no Handler was set.
	ErrNoHandler = errors.New("proactor: no handler set")

	// ErrAlreadyStarted is returned by Start when called twice.
	ErrAlreadyStarted = errors.New("proactor: already started")

	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("proactor: stopped")

	// ErrNoCodec is returned when publishing on a transport without a codec.
	ErrNoCodec = errors.New("proactor: transport has no codec")

	// ErrUnknownDestination is reported for envelopes addressed to nobody.
	ErrUnknownDestination = errors.New("proactor: unknown destination")

	// ErrUnhandledPayload is reported for payload variants a handler does not accept.
	ErrUnhandledPayload = errors.New("proactor: unhandled payload")

	// ErrHandlerPanic is reported when a handler panics.
	ErrHandlerPanic = errors.New("proactor: handler panic")
)

// Kind names used in logs and metrics.
const (
	KindProtocol = "protocol"
	KindLogic    = "logic"
	KindRuntime  = "runtime"
	KindConfig   = "config"
)

// KindOf classifies err. Codec errors count as protocol errors and
// registry lookups as configuration errors; anything unclassified is a
// runtime error.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrProtocol),
		errors.Is(err, codec.ErrMalformedTopic),
		errors.Is(err, codec.ErrUnknownType),
		errors.Is(err, codec.ErrUnauthorizedSource),
		errors.Is(err, codec.ErrMalformedPayload):
		return KindProtocol
	case errors.Is(err, ErrLogic),
		errors.Is(err, ErrUnknownDestination),
		errors.Is(err, ErrUnhandledPayload):
		return KindLogic
	case errors.Is(err, ErrConfig),
		errors.Is(err, ErrDuplicateCommunicator),
		errors.Is(err, ErrNoHandler),
		errors.Is(err, ErrNoCodec),
		errors.Is(err, mqtt.ErrDuplicateName),
		errors.Is(err, mqtt.ErrUnknownClient):
		return KindConfig
	default:
		return KindRuntime
	}
}
