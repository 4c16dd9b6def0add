// Package actors provides the in-process device communicators hosted by
// the SCADA runtime: relays, simple sensors and the power meter.
//
// Each actor owns one goroutine. The runtime's dispatch goroutine only
// hands envelopes to an actor's inbox; driver I/O happens on the actor's
// goroutine and results go back to the runtime with SendThreadsafe,
// addressed to the runtime by name.
//
// Build creates the actors a layout calls for:
//
//	comms, err := actors.Build(lay, rt, drivers.NewSimRegistry(), actors.Options{})
//	for _, c := range comms {
//	    rt.AddCommunicator(c)
//	}
package actors
