package actors

import (
	"errors"
	"fmt"
	"math"

	"github.com/nerrad567/gray-logic-scada/internal/drivers"
	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
	"github.com/nerrad567/gray-logic-scada/internal/proactor"
)

// PowerMeter samples the house electric meter.
//
// Every sample sends one MultipurposeTelemetry batch covering the node's
// telemetry tuples. Total power is sent as a Power message only when it
// moved by more than the async report threshold since the last report,
// and always on the first sample.
type PowerMeter struct {
	base
	driver drivers.PowerDriver

	// Only touched by the sampling goroutine.
	reported      bool
	lastReportedW int
}

// NewPowerMeter creates the actor for node.
func NewPowerMeter(node layout.Node, services proactor.Services, driver drivers.PowerDriver, opts Options) *PowerMeter {
	m := &PowerMeter{driver: driver}
	m.init(node, services, opts.withDefaults())
	return m
}

// ProcessMessage implements proactor.Communicator. The meter takes no input.
func (m *PowerMeter) ProcessMessage(env message.Envelope) error {
	return fmt.Errorf("%w: %s got %T", proactor.ErrUnhandledPayload, m.Name(), env.Payload)
}

// Start implements proactor.Runnable.
func (m *PowerMeter) Start() error {
	return m.start(func() { m.sampleLoop(m.Sample) })
}

// Sample reads the meter once and sends what is due.
func (m *PowerMeter) Sample() error {
	var errs []error

	if w, err := m.driver.PowerW(); err != nil {
		errs = append(errs, fmt.Errorf("reading power: %w", err))
	} else if m.shouldReport(w) {
		m.reported = true
		m.lastReportedW = w
		m.send(&message.Power{Power: w})
	}

	if batch := m.readTuples(&errs); len(batch.ValueList) > 0 {
		m.send(batch)
	}
	return errors.Join(errs...)
}

func (m *PowerMeter) shouldReport(w int) bool {
	if !m.reported {
		return true
	}
	if m.lastReportedW == 0 {
		return w != 0
	}
	change := math.Abs(float64(w-m.lastReportedW)) / math.Abs(float64(m.lastReportedW))
	return change > m.opts.AsyncPowerReportThreshold
}

func (m *PowerMeter) readTuples(errs *[]error) *message.MultipurposeTelemetry {
	batch := &message.MultipurposeTelemetry{ScadaReadTimeUnixMs: m.nowMs()}
	if m.node.Component == nil {
		return batch
	}
	for _, t := range m.node.Component.TelemetryTuples {
		v, err := m.driver.Read(t.AboutNode, t.TelemetryName)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("reading %s %s: %w", t.AboutNode, t.TelemetryName, err))
			continue
		}
		batch.AboutNodeAliasList = append(batch.AboutNodeAliasList, t.AboutNode)
		batch.TelemetryNameList = append(batch.TelemetryNameList, t.TelemetryName)
		batch.ValueList = append(batch.ValueList, v)
	}
	return batch
}
