// Package proactor provides the single-threaded event runtime that hosts
// the SCADA actors.
//
// Every unit of work is a message.Envelope on one unbounded FIFO queue.
// Transport clients, actor goroutines and timers put envelopes on the
// queue from any goroutine; one dispatch goroutine takes them off in order
// and runs the matching handler to completion before taking the next.
//
// The dispatch loop classifies each envelope:
//
//   - transport connected: every recorded subscription of that client is
//     reissued
//   - transport disconnected or connect failed: logged, nothing else
//   - transport message: decoded with the client's codec and passed to the
//     Handler, or passed through raw when the client has no codec
//   - application: routed to the Handler when addressed to the runtime,
//     otherwise to the Communicator registered under the destination
//
// A handler error or panic is logged with its kind (see KindOf) and counted;
// the loop carries on with the next envelope.
//
// Connected answers for transports added with AddTransport. A Communicator
// that owns a connection of its own (an out-of-process bridge, for example)
// implements HasConnectionStatus to answer for itself; none of the actors
// in this module do.
//
// Usage:
//
//	rt := proactor.New("a.s", proactor.Options{Logger: log})
//	rt.SetHandler(app)
//	rt.AddTransport("gridworks", cfg.GridworksMQTT, gridworksCodec)
//	if err := rt.Start(); err != nil { ... }
//	defer rt.Stop()
package proactor
