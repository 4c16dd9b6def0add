package layout

import "github.com/nerrad567/gray-logic-scada/internal/message"

// Role is what a node is in the house.
type Role string

// Node roles.
const (
	RoleAtomicTNode           Role = "AtomicTNode"
	RoleScada                 Role = "Scada"
	RoleHomeAlone             Role = "HomeAlone"
	RoleBooleanActuator       Role = "BooleanActuator"
	RolePowerMeter            Role = "PowerMeter"
	RoleTankWaterTempSensor   Role = "TankWaterTempSensor"
	RolePipeTempSensor        Role = "PipeTempSensor"
	RoleRoomTempSensor        Role = "RoomTempSensor"
	RoleOutdoorTempSensor     Role = "OutdoorTempSensor"
	RolePipeFlowMeter         Role = "PipeFlowMeter"
	RoleBoostElement          Role = "BoostElement"
	RoleDedicatedThermalStore Role = "DedicatedThermalStore"
	RoleHydronicPipe          Role = "HydronicPipe"
	RoleCirculatorPump        Role = "CirculatorPump"
	RoleBaseboardRadiator     Role = "BaseboardRadiator"
	RoleHeatedSpace           Role = "HeatedSpace"
	RoleOutdoors              Role = "Outdoors"
)

var validRoles = map[Role]bool{
	RoleAtomicTNode: true, RoleScada: true, RoleHomeAlone: true,
	RoleBooleanActuator: true, RolePowerMeter: true,
	RoleTankWaterTempSensor: true, RolePipeTempSensor: true,
	RoleRoomTempSensor: true, RoleOutdoorTempSensor: true,
	RolePipeFlowMeter: true, RoleBoostElement: true,
	RoleDedicatedThermalStore: true, RoleHydronicPipe: true,
	RoleCirculatorPump: true, RoleBaseboardRadiator: true,
	RoleHeatedSpace: true, RoleOutdoors: true,
}

// ActorClass selects which actor implementation, if any, runs for a node.
type ActorClass string

// Actor classes.
const (
	ActorNone            ActorClass = "NoActor"
	ActorAtn             ActorClass = "Atn"
	ActorScada           ActorClass = "Scada"
	ActorHomeAlone       ActorClass = "HomeAlone"
	ActorBooleanActuator ActorClass = "BooleanActuator"
	ActorSimpleSensor    ActorClass = "SimpleSensor"
	ActorPowerMeter      ActorClass = "PowerMeter"
)

var validActorClasses = map[ActorClass]bool{
	ActorNone: true, ActorAtn: true, ActorScada: true, ActorHomeAlone: true,
	ActorBooleanActuator: true, ActorSimpleSensor: true, ActorPowerMeter: true,
}

// ComponentKind is the hardware category of a component.
type ComponentKind string

// Component kinds.
const (
	KindBooleanActuator ComponentKind = "boolean_actuator"
	KindTempSensor      ComponentKind = "temp_sensor"
	KindPipeFlowSensor  ComponentKind = "pipe_flow_sensor"
	KindElectricMeter   ComponentKind = "electric_meter"
)

var validKinds = map[ComponentKind]bool{
	KindBooleanActuator: true, KindTempSensor: true,
	KindPipeFlowSensor: true, KindElectricMeter: true,
}

// Node is one entry of the layout.
type Node struct {
	Alias       string     `yaml:"alias"`
	Role        Role       `yaml:"role"`
	ActorClass  ActorClass `yaml:"actor_class"`
	DisplayName string     `yaml:"display_name"`

	// ReportingSamplePeriodS is how often a sensor actor samples its driver.
	ReportingSamplePeriodS int `yaml:"reporting_sample_period_s"`

	Component *Component `yaml:"component"`
}

// HasActor reports whether an actor runs for the node.
func (n Node) HasActor() bool {
	return n.ActorClass != "" && n.ActorClass != ActorNone
}

// IsBooleanActuator reports whether the node's component is a relay.
func (n Node) IsBooleanActuator() bool {
	return n.Component != nil && n.Component.Kind == KindBooleanActuator
}

// TelemetryName returns the name of the simple telemetry the node reports.
// Relays always report RelayState.
func (n Node) TelemetryName() message.TelemetryName {
	if n.IsBooleanActuator() {
		return message.TelemetryRelayState
	}
	if n.Component == nil || n.Component.TelemetryName == "" {
		return message.TelemetryUnknown
	}
	return n.Component.TelemetryName
}

// Component describes the hardware behind a node.
type Component struct {
	Kind      ComponentKind `yaml:"kind"`
	MakeModel string        `yaml:"make_model"`

	// TelemetryName and Exponent describe the reading of a simple sensor.
	TelemetryName message.TelemetryName `yaml:"telemetry_name"`
	Exponent      int                   `yaml:"exponent"`

	// TelemetryTuples lists what a multipurpose sensor reports, and about which node.
	TelemetryTuples []TupleConfig `yaml:"telemetry_tuples"`
}

// TupleConfig is one configured multipurpose reading.
type TupleConfig struct {
	AboutNode     string                `yaml:"about_node"`
	TelemetryName message.TelemetryName `yaml:"telemetry_name"`
}

// TelemetryTuple identifies one multipurpose reading: what it is about,
// which sensor reads it and what it measures.
type TelemetryTuple struct {
	AboutNode     string
	SensorNode    string
	TelemetryName message.TelemetryName
}

// file is the YAML document shape.
type file struct {
	AtnGNodeAlias   string `yaml:"atn_g_node_alias"`
	ScadaGNodeAlias string `yaml:"scada_g_node_alias"`
	Nodes           []Node `yaml:"nodes"`
}
