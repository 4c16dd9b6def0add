package drivers

import (
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// Simulated make/models.
const (
	ModelSimRelay      = "GRIDWORKS__SIMBOOL30AMPRELAY"
	ModelSimWaterTemp  = "GRIDWORKS__WATERTEMPHIGHPRECISION"
	ModelSimPowerMeter = "GRIDWORKS__SIMPM1"
)

// simLineVoltage converts simulated watts to current.
const simLineVoltage = 240

// NewSimRegistry returns a registry with the simulated drivers registered.
func NewSimRegistry() *Registry {
	r := NewRegistry()
	//nolint:errcheck // fresh registry, models are distinct
	r.RegisterRelay(ModelSimRelay, func(layout.Component) RelayDriver { return &SimRelay{} })
	//nolint:errcheck // fresh registry, models are distinct
	r.RegisterTelemetry(ModelSimWaterTemp, func(c layout.Component) TelemetryDriver {
		return NewSimTemperature(63, c.Exponent)
	})
	//nolint:errcheck // fresh registry, models are distinct
	r.RegisterPower(ModelSimPowerMeter, func(layout.Component) PowerDriver { return NewSimPowerMeter() })
	return r
}

// SimRelay is an in-memory relay.
type SimRelay struct {
	mu    sync.Mutex
	state int
}

// SetRelayState implements RelayDriver.
func (r *SimRelay) SetRelayState(state int) error {
	if state != 0 && state != 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRelayState, state)
	}
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
	return nil
}

// RelayState implements RelayDriver.
func (r *SimRelay) RelayState() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, nil
}

// SimTemperature drifts around a base temperature in a fixed sawtooth.
type SimTemperature struct {
	mu    sync.Mutex
	base  int
	scale int
	step  int
}

// NewSimTemperature returns a sensor reading around base degrees, scaled
// by 10^exponent.
func NewSimTemperature(base, exponent int) *SimTemperature {
	scale := 1
	for i := 0; i < exponent; i++ {
		scale *= 10
	}
	return &SimTemperature{base: base * scale, scale: scale}
}

// Read implements TelemetryDriver.
func (t *SimTemperature) Read() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.step = (t.step + 1) % 10
	return t.base + t.step*t.scale/10, nil
}

// SimPowerMeter reports the load set with SetLoad against every metered node.
type SimPowerMeter struct {
	mu    sync.Mutex
	loads map[string]int
}

// NewSimPowerMeter returns a meter with no load.
func NewSimPowerMeter() *SimPowerMeter {
	return &SimPowerMeter{loads: make(map[string]int)}
}

// SetLoad sets the power drawn by aboutNode in watts.
func (m *SimPowerMeter) SetLoad(aboutNode string, watts int) {
	m.mu.Lock()
	m.loads[aboutNode] = watts
	m.mu.Unlock()
}

// PowerW implements PowerDriver.
func (m *SimPowerMeter) PowerW() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, w := range m.loads {
		total += w
	}
	return total, nil
}

// Read implements PowerDriver.
func (m *SimPowerMeter) Read(aboutNode string, name message.TelemetryName) (int, error) {
	m.mu.Lock()
	w := m.loads[aboutNode]
	m.mu.Unlock()

	switch name {
	case message.TelemetryPowerW:
		return w, nil
	case message.TelemetryCurrentRmsMicroAmps:
		return w * 1_000_000 / simLineVoltage, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedTelemetry, name)
	}
}
