package layout

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Layout is the read-only house layout.
type Layout struct {
	atnGNodeAlias   string
	scadaGNodeAlias string
	nodes           []Node
	byAlias         map[string]*Node
}

// Load reads and validates a layout YAML file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Layout from YAML bytes.
func Parse(data []byte) (*Layout, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing layout file: %w", err)
	}
	return New(f.AtnGNodeAlias, f.ScadaGNodeAlias, f.Nodes)
}

// New validates nodes and builds a Layout. The slice is copied.
func New(atnGNodeAlias, scadaGNodeAlias string, nodes []Node) (*Layout, error) {
	l := &Layout{
		atnGNodeAlias:   atnGNodeAlias,
		scadaGNodeAlias: scadaGNodeAlias,
		nodes:           make([]Node, len(nodes)),
		byAlias:         make(map[string]*Node, len(nodes)),
	}
	copy(l.nodes, nodes)

	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// validate checks the layout and indexes nodes by alias.
func (l *Layout) validate() error {
	var errs []string

	if l.atnGNodeAlias == "" {
		errs = append(errs, "atn_g_node_alias is required")
	}
	if l.scadaGNodeAlias == "" {
		errs = append(errs, "scada_g_node_alias is required")
	}

	scadaCount, homeAloneCount, meterCount := 0, 0, 0
	for i := range l.nodes {
		n := &l.nodes[i]
		if n.Alias == "" {
			errs = append(errs, fmt.Sprintf("nodes[%d].alias is required", i))
			continue
		}
		if _, dup := l.byAlias[n.Alias]; dup {
			errs = append(errs, fmt.Sprintf("nodes[%d].alias %q is duplicate", i, n.Alias))
			continue
		}
		l.byAlias[n.Alias] = n

		if !validRoles[n.Role] {
			errs = append(errs, fmt.Sprintf("nodes[%d].role %q is not recognised", i, n.Role))
		}
		if n.ActorClass == "" {
			n.ActorClass = ActorNone
		}
		if !validActorClasses[n.ActorClass] {
			errs = append(errs, fmt.Sprintf("nodes[%d].actor_class %q is not recognised", i, n.ActorClass))
		}
		if n.Component != nil && !validKinds[n.Component.Kind] {
			errs = append(errs, fmt.Sprintf("nodes[%d].component.kind %q is not recognised", i, n.Component.Kind))
		}

		switch n.ActorClass {
		case ActorScada:
			scadaCount++
		case ActorHomeAlone:
			homeAloneCount++
		case ActorPowerMeter:
			meterCount++
			if n.Component == nil || n.Component.Kind != KindElectricMeter {
				errs = append(errs, fmt.Sprintf("nodes[%d] power meter needs an electric_meter component", i))
			}
		case ActorBooleanActuator:
			if !n.IsBooleanActuator() {
				errs = append(errs, fmt.Sprintf("nodes[%d] boolean actuator needs a boolean_actuator component", i))
			}
		case ActorSimpleSensor:
			if n.Component == nil {
				errs = append(errs, fmt.Sprintf("nodes[%d] simple sensor needs a component", i))
			} else if !n.Component.TelemetryName.Valid() {
				errs = append(errs, fmt.Sprintf("nodes[%d].component.telemetry_name %q is not recognised", i, n.Component.TelemetryName))
			}
			if n.ReportingSamplePeriodS < 1 {
				errs = append(errs, fmt.Sprintf("nodes[%d].reporting_sample_period_s must be at least 1", i))
			}
		}
	}

	if scadaCount != 1 {
		errs = append(errs, fmt.Sprintf("exactly one Scada node is required, found %d", scadaCount))
	}
	if homeAloneCount > 1 {
		errs = append(errs, fmt.Sprintf("at most one HomeAlone node is allowed, found %d", homeAloneCount))
	}
	if meterCount > 1 {
		errs = append(errs, fmt.Sprintf("at most one PowerMeter node is allowed, found %d", meterCount))
	}

	// Tuples may refer to nodes declared later in the file.
	for i := range l.nodes {
		n := &l.nodes[i]
		if n.Component == nil {
			continue
		}
		for j, t := range n.Component.TelemetryTuples {
			if _, ok := l.byAlias[t.AboutNode]; !ok {
				errs = append(errs, fmt.Sprintf("nodes[%d].component.telemetry_tuples[%d].about_node %q is not in the layout", i, j, t.AboutNode))
			}
			if !t.TelemetryName.Valid() {
				errs = append(errs, fmt.Sprintf("nodes[%d].component.telemetry_tuples[%d].telemetry_name %q is not recognised", i, j, t.TelemetryName))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidLayout, strings.Join(errs, "; "))
	}
	return nil
}

// AtnGNodeAlias is the g-node alias of the cloud supervisor.
func (l *Layout) AtnGNodeAlias() string { return l.atnGNodeAlias }

// ScadaGNodeAlias is the g-node alias the Scada reports as.
func (l *Layout) ScadaGNodeAlias() string { return l.scadaGNodeAlias }

// Has reports whether alias is a node in the layout.
func (l *Layout) Has(alias string) bool {
	_, ok := l.byAlias[alias]
	return ok
}

// Node returns the node with the given alias.
func (l *Layout) Node(alias string) (Node, error) {
	n, ok := l.byAlias[alias]
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrNodeNotFound, alias)
	}
	return *n, nil
}

// Nodes returns every node in file order.
func (l *Layout) Nodes() []Node {
	out := make([]Node, len(l.nodes))
	copy(out, l.nodes)
	return out
}

// Scada returns the Scada node.
func (l *Layout) Scada() Node {
	n, _ := l.first(ActorScada)
	return n
}

// HomeAlone returns the home-alone node, if one is declared.
func (l *Layout) HomeAlone() (Node, bool) {
	return l.first(ActorHomeAlone)
}

// PowerMeter returns the power meter node, if one is declared.
func (l *Layout) PowerMeter() (Node, bool) {
	return l.first(ActorPowerMeter)
}

// BooleanActuators returns the nodes whose component is a relay, sorted by alias.
func (l *Layout) BooleanActuators() []Node {
	return l.filter(func(n Node) bool { return n.IsBooleanActuator() })
}

// SimpleSensors returns the nodes that report single telemetry values:
// simple sensors and relays. Sorted by alias.
func (l *Layout) SimpleSensors() []Node {
	return l.filter(func(n Node) bool {
		return n.ActorClass == ActorSimpleSensor || n.ActorClass == ActorBooleanActuator
	})
}

// MultipurposeSensors returns the nodes that report telemetry batches, sorted by alias.
func (l *Layout) MultipurposeSensors() []Node {
	return l.filter(func(n Node) bool { return n.ActorClass == ActorPowerMeter })
}

// TelemetryTuples returns every configured multipurpose reading, in
// sensor then configuration order.
func (l *Layout) TelemetryTuples() []TelemetryTuple {
	var out []TelemetryTuple
	for _, n := range l.MultipurposeSensors() {
		for _, t := range n.Component.TelemetryTuples {
			out = append(out, TelemetryTuple{
				AboutNode:     t.AboutNode,
				SensorNode:    n.Alias,
				TelemetryName: t.TelemetryName,
			})
		}
	}
	return out
}

func (l *Layout) first(class ActorClass) (Node, bool) {
	for _, n := range l.nodes {
		if n.ActorClass == class {
			return n, true
		}
	}
	return Node{}, false
}

func (l *Layout) filter(keep func(Node) bool) []Node {
	var out []Node
	for _, n := range l.nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}
