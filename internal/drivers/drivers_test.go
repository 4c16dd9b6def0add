package drivers

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-scada/internal/layout"
	"github.com/nerrad567/gray-logic-scada/internal/message"
)

func testLayout(t *testing.T, relayModel string) *layout.Layout {
	t.Helper()
	nodes := []layout.Node{
		{Alias: "a", Role: layout.RoleAtomicTNode, ActorClass: layout.ActorAtn},
		{Alias: "a.s", Role: layout.RoleScada, ActorClass: layout.ActorScada},
		{Alias: "a.elt1", Role: layout.RoleBoostElement, ActorClass: layout.ActorNone},
		{
			Alias: "a.elt1.relay", Role: layout.RoleBooleanActuator, ActorClass: layout.ActorBooleanActuator,
			Component: &layout.Component{Kind: layout.KindBooleanActuator, MakeModel: relayModel},
		},
		{
			Alias: "a.tank.temp0", Role: layout.RoleTankWaterTempSensor, ActorClass: layout.ActorSimpleSensor,
			ReportingSamplePeriodS: 5,
			Component: &layout.Component{
				Kind: layout.KindTempSensor, MakeModel: ModelSimWaterTemp,
				TelemetryName: message.TelemetryWaterTempFTimes1000, Exponent: 3,
			},
		},
	}
	l, err := layout.New("atn", "atn.scada", nodes)
	if err != nil {
		t.Fatalf("layout.New() error = %v", err)
	}
	return l
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewSimRegistry()

	if _, err := r.Relay(layout.Component{MakeModel: ModelSimRelay}); err != nil {
		t.Errorf("Relay() error = %v", err)
	}
	if _, err := r.Telemetry(layout.Component{MakeModel: ModelSimWaterTemp, Exponent: 3}); err != nil {
		t.Errorf("Telemetry() error = %v", err)
	}
	if _, err := r.Power(layout.Component{MakeModel: ModelSimPowerMeter}); err != nil {
		t.Errorf("Power() error = %v", err)
	}

	// Kinds do not cross: a relay model is not a sensor.
	if _, err := r.Telemetry(layout.Component{MakeModel: ModelSimRelay}); !errors.Is(err, ErrNoDriver) {
		t.Errorf("Telemetry(relay model) error = %v, want ErrNoDriver", err)
	}
	if _, err := r.Relay(layout.Component{MakeModel: "NCD__PR814SPST"}); !errors.Is(err, ErrNoDriver) {
		t.Errorf("Relay(unknown) error = %v, want ErrNoDriver", err)
	}

	want := []string{ModelSimRelay, ModelSimPowerMeter, ModelSimWaterTemp}
	got := r.Models()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Models() = %v, want %v", got, want)
	}
}

func TestRegistry_DuplicateModel(t *testing.T) {
	r := NewSimRegistry()
	err := r.RegisterTelemetry(ModelSimRelay, func(layout.Component) TelemetryDriver { return nil })
	if !errors.Is(err, ErrDuplicateModel) {
		t.Errorf("RegisterTelemetry() error = %v, want ErrDuplicateModel", err)
	}
}

func TestRegistry_Check(t *testing.T) {
	r := NewSimRegistry()
	if err := r.Check(testLayout(t, ModelSimRelay)); err != nil {
		t.Errorf("Check() error = %v", err)
	}

	err := r.Check(testLayout(t, "NCD__PR814SPST"))
	if !errors.Is(err, ErrNoDriver) {
		t.Fatalf("Check() error = %v, want ErrNoDriver", err)
	}
	if !strings.Contains(err.Error(), "a.elt1.relay") {
		t.Errorf("Check() error %q does not name the node", err)
	}
}

func TestSimRelay(t *testing.T) {
	r := &SimRelay{}
	if s, _ := r.RelayState(); s != 0 {
		t.Errorf("initial RelayState() = %d, want 0", s)
	}
	if err := r.SetRelayState(1); err != nil {
		t.Fatalf("SetRelayState(1) error = %v", err)
	}
	if s, _ := r.RelayState(); s != 1 {
		t.Errorf("RelayState() = %d, want 1", s)
	}
	if err := r.SetRelayState(2); !errors.Is(err, ErrInvalidRelayState) {
		t.Errorf("SetRelayState(2) error = %v, want ErrInvalidRelayState", err)
	}
}

func TestSimTemperature(t *testing.T) {
	s := NewSimTemperature(63, 3)
	for i := 0; i < 20; i++ {
		v, err := s.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if v < 63000 || v >= 64000 {
			t.Fatalf("Read() = %d, want within [63000, 64000)", v)
		}
	}
}

func TestSimPowerMeter(t *testing.T) {
	m := NewSimPowerMeter()
	m.SetLoad("a.elt1", 4800)
	m.SetLoad("a.elt2", 200)

	if w, _ := m.PowerW(); w != 5000 {
		t.Errorf("PowerW() = %d, want 5000", w)
	}

	tests := []struct {
		name message.TelemetryName
		want int
	}{
		{message.TelemetryPowerW, 4800},
		{message.TelemetryCurrentRmsMicroAmps, 20_000_000},
	}
	for _, tt := range tests {
		got, err := m.Read("a.elt1", tt.name)
		if err != nil {
			t.Fatalf("Read(%s) error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Read(%s) = %d, want %d", tt.name, got, tt.want)
		}
	}

	if _, err := m.Read("a.elt1", message.TelemetryWaterTempFTimes1000); !errors.Is(err, ErrUnsupportedTelemetry) {
		t.Errorf("Read(water temp) error = %v, want ErrUnsupportedTelemetry", err)
	}
}
