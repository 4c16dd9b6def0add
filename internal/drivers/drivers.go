package drivers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// RelayDriver switches one relay.
type RelayDriver interface {
	// SetRelayState closes (1) or opens (0) the relay.
	SetRelayState(state int) error

	// RelayState reads the relay position back.
	RelayState() (int, error)
}

// TelemetryDriver reads one simple sensor value, scaled by the component's
// exponent (e.g. 63125 for 63.125 with exponent 3).
type TelemetryDriver interface {
	Read() (int, error)
}

// PowerDriver reads a multipurpose electric meter.
type PowerDriver interface {
	// PowerW reads total power in watts.
	PowerW() (int, error)

	// Read reads one telemetry value about a metered node.
	Read(aboutNode string, name message.TelemetryName) (int, error)
}

// Factories build drivers for a component.
type (
	RelayFactory     func(c layout.Component) RelayDriver
	TelemetryFactory func(c layout.Component) TelemetryDriver
	PowerFactory     func(c layout.Component) PowerDriver
)

// Registry maps make/model strings to driver factories.
//
// Thread Safety: all methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	relays    map[string]RelayFactory
	telemetry map[string]TelemetryFactory
	power     map[string]PowerFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		relays:    make(map[string]RelayFactory),
		telemetry: make(map[string]TelemetryFactory),
		power:     make(map[string]PowerFactory),
	}
}

// RegisterRelay registers a relay driver factory for makeModel.
func (r *Registry) RegisterRelay(makeModel string, f RelayFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known(makeModel) {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, makeModel)
	}
	r.relays[makeModel] = f
	return nil
}

// RegisterTelemetry registers a simple sensor driver factory for makeModel.
func (r *Registry) RegisterTelemetry(makeModel string, f TelemetryFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known(makeModel) {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, makeModel)
	}
	r.telemetry[makeModel] = f
	return nil
}

// RegisterPower registers a power meter driver factory for makeModel.
func (r *Registry) RegisterPower(makeModel string, f PowerFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known(makeModel) {
		return fmt.Errorf("%w: %s", ErrDuplicateModel, makeModel)
	}
	r.power[makeModel] = f
	return nil
}

// Relay builds the relay driver for c.
func (r *Registry) Relay(c layout.Component) (RelayDriver, error) {
	r.mu.RLock()
	f, ok := r.relays[c.MakeModel]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: relay %q", ErrNoDriver, c.MakeModel)
	}
	return f(c), nil
}

// Telemetry builds the simple sensor driver for c.
func (r *Registry) Telemetry(c layout.Component) (TelemetryDriver, error) {
	r.mu.RLock()
	f, ok := r.telemetry[c.MakeModel]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: sensor %q", ErrNoDriver, c.MakeModel)
	}
	return f(c), nil
}

// Power builds the power meter driver for c.
func (r *Registry) Power(c layout.Component) (PowerDriver, error) {
	r.mu.RLock()
	f, ok := r.power[c.MakeModel]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: power meter %q", ErrNoDriver, c.MakeModel)
	}
	return f(c), nil
}

// Models returns every registered make/model, sorted.
func (r *Registry) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.relays)+len(r.telemetry)+len(r.power))
	for m := range r.relays {
		out = append(out, m)
	}
	for m := range r.telemetry {
		out = append(out, m)
	}
	for m := range r.power {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Check verifies that every actor node in l has a driver of the right
// kind. All missing drivers are reported in one error.
func (r *Registry) Check(l *layout.Layout) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	for _, n := range l.Nodes() {
		if n.Component == nil {
			continue
		}
		model := n.Component.MakeModel
		var ok bool
		switch n.ActorClass {
		case layout.ActorBooleanActuator:
			_, ok = r.relays[model]
		case layout.ActorSimpleSensor:
			_, ok = r.telemetry[model]
		case layout.ActorPowerMeter:
			_, ok = r.power[model]
		default:
			continue
		}
		if !ok {
			missing = append(missing, fmt.Sprintf("%s (%s)", n.Alias, model))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNoDriver, strings.Join(missing, ", "))
	}
	return nil
}

func (r *Registry) known(makeModel string) bool {
	_, a := r.relays[makeModel]
	_, b := r.telemetry[makeModel]
	_, c := r.power[makeModel]
	return a || b || c
}
