package layout

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-scada/internal/message"
)

const testLayout = `
atn_g_node_alias: dwtest.isone.ct.newhaven.orange1
scada_g_node_alias: dwtest.isone.ct.newhaven.orange1.ta.scada
nodes:
  - alias: a
    role: AtomicTNode
    actor_class: Atn
  - alias: a.s
    role: Scada
    actor_class: Scada
  - alias: a.home
    role: HomeAlone
    actor_class: HomeAlone
  - alias: a.elt1
    role: BoostElement
  - alias: a.elt1.relay
    role: BooleanActuator
    actor_class: BooleanActuator
    component:
      kind: boolean_actuator
      make_model: GRIDWORKS__SIMBOOL30AMPRELAY
  - alias: a.tank.temp0
    role: TankWaterTempSensor
    actor_class: SimpleSensor
    reporting_sample_period_s: 5
    component:
      kind: temp_sensor
      make_model: GRIDWORKS__WATERTEMPHIGHPRECISION
      telemetry_name: WaterTempFTimes1000
      exponent: 3
  - alias: a.m
    role: PowerMeter
    actor_class: PowerMeter
    component:
      kind: electric_meter
      make_model: GRIDWORKS__SIMPM1
      telemetry_tuples:
        - about_node: a.elt1
          telemetry_name: CurrentRmsMicroAmps
        - about_node: a.elt1
          telemetry_name: PowerW
`

func mustParse(t *testing.T, data string) *Layout {
	t.Helper()
	l, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return l
}

func aliases(nodes []Node) string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Alias
	}
	return strings.Join(out, ",")
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte(testLayout), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(l.Nodes()); got != 7 {
		t.Errorf("len(Nodes()) = %d, want 7", got)
	}
	if l.AtnGNodeAlias() != "dwtest.isone.ct.newhaven.orange1" {
		t.Errorf("AtnGNodeAlias() = %q", l.AtnGNodeAlias())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoadShippedLayout(t *testing.T) {
	l, err := Load("../../configs/layout.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if l.Scada().Alias != "a.s" {
		t.Errorf("Scada().Alias = %q, want a.s", l.Scada().Alias)
	}
}

// =============================================================================
// Query Tests
// =============================================================================

func TestQueries(t *testing.T) {
	l := mustParse(t, testLayout)

	if got := aliases(l.BooleanActuators()); got != "a.elt1.relay" {
		t.Errorf("BooleanActuators() = %s", got)
	}
	if got := aliases(l.SimpleSensors()); got != "a.elt1.relay,a.tank.temp0" {
		t.Errorf("SimpleSensors() = %s", got)
	}
	if got := aliases(l.MultipurposeSensors()); got != "a.m" {
		t.Errorf("MultipurposeSensors() = %s", got)
	}
	if n, ok := l.PowerMeter(); !ok || n.Alias != "a.m" {
		t.Errorf("PowerMeter() = %v, %v", n.Alias, ok)
	}
	if n, ok := l.HomeAlone(); !ok || n.Alias != "a.home" {
		t.Errorf("HomeAlone() = %v, %v", n.Alias, ok)
	}

	tuples := l.TelemetryTuples()
	want := []TelemetryTuple{
		{AboutNode: "a.elt1", SensorNode: "a.m", TelemetryName: message.TelemetryCurrentRmsMicroAmps},
		{AboutNode: "a.elt1", SensorNode: "a.m", TelemetryName: message.TelemetryPowerW},
	}
	if len(tuples) != len(want) {
		t.Fatalf("TelemetryTuples() = %v, want %v", tuples, want)
	}
	for i := range want {
		if tuples[i] != want[i] {
			t.Errorf("TelemetryTuples()[%d] = %v, want %v", i, tuples[i], want[i])
		}
	}
}

func TestNode(t *testing.T) {
	l := mustParse(t, testLayout)

	n, err := l.Node("a.elt1")
	if err != nil {
		t.Fatalf("Node() error = %v", err)
	}
	if n.ActorClass != ActorNone || n.HasActor() {
		t.Errorf("a.elt1 ActorClass = %q, want NoActor", n.ActorClass)
	}
	if n.IsBooleanActuator() {
		t.Error("a.elt1 IsBooleanActuator() = true, want false")
	}

	relay, _ := l.Node("a.elt1.relay")
	if relay.TelemetryName() != message.TelemetryRelayState {
		t.Errorf("relay TelemetryName() = %q", relay.TelemetryName())
	}

	if _, err := l.Node("a.nope"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Node() error = %v, want ErrNodeNotFound", err)
	}
	if l.Has("a.nope") {
		t.Error("Has(a.nope) = true")
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		wantMsg string
	}{
		{
			name:    "no scada",
			nodes:   []Node{{Alias: "a", Role: RoleAtomicTNode, ActorClass: ActorAtn}},
			wantMsg: "exactly one Scada node",
		},
		{
			name: "duplicate alias",
			nodes: []Node{
				{Alias: "a.s", Role: RoleScada, ActorClass: ActorScada},
				{Alias: "a.s", Role: RoleScada, ActorClass: ActorScada},
			},
			wantMsg: "is duplicate",
		},
		{
			name: "unknown role",
			nodes: []Node{
				{Alias: "a.s", Role: RoleScada, ActorClass: ActorScada},
				{Alias: "a.x", Role: "Toaster"},
			},
			wantMsg: "role \"Toaster\"",
		},
		{
			name: "relay without component",
			nodes: []Node{
				{Alias: "a.s", Role: RoleScada, ActorClass: ActorScada},
				{Alias: "a.r", Role: RoleBooleanActuator, ActorClass: ActorBooleanActuator},
			},
			wantMsg: "needs a boolean_actuator component",
		},
		{
			name: "tuple about unknown node",
			nodes: []Node{
				{Alias: "a.s", Role: RoleScada, ActorClass: ActorScada},
				{Alias: "a.m", Role: RolePowerMeter, ActorClass: ActorPowerMeter, Component: &Component{
					Kind:            KindElectricMeter,
					TelemetryTuples: []TupleConfig{{AboutNode: "a.ghost", TelemetryName: message.TelemetryPowerW}},
				}},
			},
			wantMsg: "\"a.ghost\" is not in the layout",
		},
		{
			name: "sensor without sample period",
			nodes: []Node{
				{Alias: "a.s", Role: RoleScada, ActorClass: ActorScada},
				{Alias: "a.t", Role: RoleTankWaterTempSensor, ActorClass: ActorSimpleSensor, Component: &Component{
					Kind: KindTempSensor, TelemetryName: message.TelemetryWaterTempFTimes1000,
				}},
			},
			wantMsg: "reporting_sample_period_s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("atn", "atn.ta.scada", tt.nodes)
			if !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("New() error = %v, want ErrInvalidLayout", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("New() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidationRequiresGNodeAliases(t *testing.T) {
	_, err := New("", "", []Node{{Alias: "a.s", Role: RoleScada, ActorClass: ActorScada}})
	if err == nil {
		t.Fatal("New() expected error")
	}
	for _, want := range []string{"atn_g_node_alias", "scada_g_node_alias"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("New() error = %q, want it to mention %s", err, want)
		}
	}
}
