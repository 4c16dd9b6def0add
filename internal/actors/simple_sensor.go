package actors

import (
	"fmt"

	"github.com/nerrad567/gray-logic-scada/internal/drivers"
	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

// SimpleSensor samples one telemetry driver every reporting period and
// sends each reading to the runtime.
type SimpleSensor struct {
	base
	driver drivers.TelemetryDriver
}

// NewSimpleSensor creates the actor for node.
func NewSimpleSensor(node layout.Node, services proactor.Services, driver drivers.TelemetryDriver, opts Options) *SimpleSensor {
	s := &SimpleSensor{driver: driver}
	s.init(node, services, opts.withDefaults())
	return s
}

// ProcessMessage implements proactor.Communicator. Sensors take no input.
func (s *SimpleSensor) ProcessMessage(env message.Envelope) error {
	return fmt.Errorf("%w: %s got %T", proactor.ErrUnhandledPayload, s.Name(), env.Payload)
}

// Start implements proactor.Runnable.
func (s *SimpleSensor) Start() error {
	return s.start(func() { s.sampleLoop(s.Sample) })
}

// Sample reads the driver once and sends the reading.
func (s *SimpleSensor) Sample() error {
	v, err := s.driver.Read()
	if err != nil {
		return err
	}
	exponent := 0
	if s.node.Component != nil {
		exponent = s.node.Component.Exponent
	}
	s.send(&message.Telemetry{
		Name:                s.node.TelemetryName(),
		Value:               v,
		Exponent:            exponent,
		ScadaReadTimeUnixMs: s.nowMs(),
	})
	return nil
}
