package proactor

import (
	"github.com/nerrad567/gray-logic-scada/internal/codec"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// Communicator is an actor that receives envelopes addressed to its name.
// ProcessMessage runs on the dispatch goroutine and must not block.
type Communicator interface {
	Name() string
	ProcessMessage(env message.Envelope) error
}

// Runnable is a Communicator with its own lifecycle. The runtime starts it
// with Start, stops it with Stop and waits for it in Join.
type Runnable interface {
	Communicator
	Start() error
	Stop()
	Join() error
}

// HasConnectionStatus is implemented by communicators that own a
// transport connection outside the runtime's transports. Proactor.Connected
// consults it for names that are not transports.
type HasConnectionStatus interface {
	Connected() bool
}

// Services is what the runtime offers the communicators it hosts.
type Services interface {
	// Name is the runtime's own alias.
	Name() string

	// Send enqueues env. For use on the dispatch goroutine.
	Send(env message.Envelope)

	// SendThreadsafe enqueues env from any goroutine.
	SendThreadsafe(env message.Envelope)

	// Publish encodes p with the transport's codec and publishes it on
	// "{src}/{typeAlias}".
	Publish(transport, src string, p message.Payload) error
}

// Handler is the application logic a runtime dispatches to.
type Handler interface {
	// ProcessTransportMessage handles a decoded transport message. For a
	// transport without a codec, decoded.Payload is the raw
	// *message.TransportMessage.
	ProcessTransportMessage(env message.Envelope, decoded codec.Decoded) error

	// ProcessApplication handles an envelope addressed to the runtime.
	ProcessApplication(env message.Envelope) error
}

// Logger defines the logging interface used by the runtime.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Metrics receives a count of every envelope outcome.
type Metrics interface {
	EnvelopeProcessed(messageType string)
	EnvelopeRejected(kind, reason string)
}

type noopMetrics struct{}

func (noopMetrics) EnvelopeProcessed(string)       {}
func (noopMetrics) EnvelopeRejected(string, string) {}
