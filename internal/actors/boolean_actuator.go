package actors

import (
	"fmt"

	"github.com/nerrad567/gray-logic-scada/internal/drivers"
	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

// BooleanActuator drives one relay.
//
// It accepts DispatchBooleanLocal envelopes. For each it sets the relay,
// then reports a BooleanActuatorCmd record and a RelayState telemetry
// reading back to the runtime.
type BooleanActuator struct {
	base
	driver drivers.RelayDriver
}

// NewBooleanActuator creates the actor for node.
func NewBooleanActuator(node layout.Node, services proactor.Services, driver drivers.RelayDriver, opts Options) *BooleanActuator {
	a := &BooleanActuator{driver: driver}
	a.init(node, services, opts.withDefaults())
	return a
}

// ProcessMessage implements proactor.Communicator.
func (a *BooleanActuator) ProcessMessage(env message.Envelope) error {
	d, ok := env.Payload.(*message.DispatchBooleanLocal)
	if !ok {
		return fmt.Errorf("%w: %s got %T", proactor.ErrUnhandledPayload, a.Name(), env.Payload)
	}
	if d.AboutNodeAlias != "" && d.AboutNodeAlias != a.Name() {
		return fmt.Errorf("%w: %s is not %s", ErrWrongTarget, d.AboutNodeAlias, a.Name())
	}
	return a.enqueue(env)
}

// Start implements proactor.Runnable.
func (a *BooleanActuator) Start() error {
	return a.start(a.run)
}

func (a *BooleanActuator) run() {
	for {
		select {
		case <-a.stop:
			return
		case env := <-a.inbox:
			d := env.Payload.(*message.DispatchBooleanLocal)
			if err := a.Actuate(d.RelayState); err != nil {
				a.opts.Logger.Warn("relay actuation failed",
					"node", a.Name(),
					"relay_state", d.RelayState,
					"from", env.Header.Src,
					"error", err,
				)
			}
		}
	}
}

// Actuate sets the relay and reports the command and the resulting state.
// It runs on the actor goroutine; tests may call it directly.
func (a *BooleanActuator) Actuate(relayState int) error {
	if err := a.driver.SetRelayState(relayState); err != nil {
		return err
	}
	a.send(&message.BooleanActuatorCmd{
		RelayState:        relayState,
		ShNodeAlias:       a.Name(),
		CommandTimeUnixMs: a.nowMs(),
	})

	state, err := a.driver.RelayState()
	if err != nil {
		return fmt.Errorf("reading relay state: %w", err)
	}
	a.send(&message.Telemetry{
		Name:                message.TelemetryRelayState,
		Value:               state,
		Exponent:            0,
		ScadaReadTimeUnixMs: a.nowMs(),
	})
	return nil
}
