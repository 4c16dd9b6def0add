package message

import "time"

// Type aliases of every payload variant.
const (
	TypeTelemetry             = "gt.telemetry.110"
	TypeMultipurposeTelemetry = "gt.sh.telemetry.from.multipurpose.sensor.100"
	TypePower                 = "p"
	TypeDispatchBoolean       = "gt.dispatch.boolean.100"
	TypeDispatchBooleanLocal  = "gt.dispatch.boolean.local.100"
	TypeBooleanActuatorCmd    = "gt.driver.booleanactuator.cmd.100"
	TypeCliAtnCmd             = "gt.sh.cli.atn.cmd.110"
	TypeContractHandoff       = "gt.sh.dispatch.contract.100"
	TypeStatus                = "gt.sh.status.110"
	TypeSnapshot              = "snapshot.spaceheat.100"

	TypeTransportMessage       = "mqtt_message"
	TypeTransportConnected     = "mqtt_connected"
	TypeTransportDisconnected  = "mqtt_disconnected"
	TypeTransportConnectFailed = "mqtt_connect_failed"
	TypeStatusTick             = "scada_status_tick"
)

// Payload is implemented by every envelope payload variant. The set is
// closed: only types in this package implement it.
type Payload interface {
	// TypeAlias returns the variant discriminant.
	TypeAlias() string

	payload()
}

// Telemetry is a single reading from a simple sensor or relay.
type Telemetry struct {
	Name                TelemetryName `json:"Name"`
	Value               int           `json:"Value"`
	Exponent            int           `json:"Exponent"`
	ScadaReadTimeUnixMs int64         `json:"ScadaReadTimeUnixMs"`
}

// MultipurposeTelemetry is a batch of readings from one multipurpose sensor
// (for example a power meter reporting current for several loads). The three
// lists are index-aligned.
type MultipurposeTelemetry struct {
	AboutNodeAliasList  []string        `json:"AboutNodeAliasList"`
	TelemetryNameList   []TelemetryName `json:"TelemetryNameList"`
	ValueList           []int           `json:"ValueList"`
	ScadaReadTimeUnixMs int64           `json:"ScadaReadTimeUnixMs"`
}

// Power is the total metered power in watts.
type Power struct {
	Power int `json:"Power"`
}

// DispatchBoolean is a relay command sent by the Atn.
type DispatchBoolean struct {
	AboutNodeAlias string `json:"AboutNodeAlias"`
	ToGNodeAlias   string `json:"ToGNodeAlias"`
	FromGNodeAlias string `json:"FromGNodeAlias"`
	FromGNodeId    string `json:"FromGNodeId"`
	RelayState     int    `json:"RelayState"`
	SendTimeUnixMs int64  `json:"SendTimeUnixMs"`
}

// DispatchBooleanLocal is a relay command from inside the house: from the
// home-alone fallback to the core, or from the core to a relay actor.
type DispatchBooleanLocal struct {
	RelayState     int    `json:"RelayState"`
	AboutNodeAlias string `json:"AboutNodeAlias"`
	FromNodeAlias  string `json:"FromNodeAlias"`
	SendTimeUnixMs int64  `json:"SendTimeUnixMs"`
}

// BooleanActuatorCmd is the relay actor's record that it commanded its driver.
type BooleanActuatorCmd struct {
	RelayState        int    `json:"RelayState"`
	ShNodeAlias       string `json:"ShNodeAlias"`
	CommandTimeUnixMs int64  `json:"CommandTimeUnixMs"`
}

// CliAtnCmd is a status request from the Atn.
type CliAtnCmd struct {
	FromGNodeAlias string `json:"FromGNodeAlias"`
	FromGNodeId    string `json:"FromGNodeId"`
	SendSnapshot   bool   `json:"SendSnapshot"`
}

// ContractAction is the explicit handoff carried by ContractHandoff.
type ContractAction string

// Contract handoff actions sent by the Atn.
const (
	// ContractEstablish starts a fast dispatch contract.
	ContractEstablish ContractAction = "Establish"

	// ContractTerminate ends the contract.
	ContractTerminate ContractAction = "Terminate"

	// ContractLocalControl hands actuation authority to the home-alone actor.
	ContractLocalControl ContractAction = "LocalControl"

	// ContractResumeCloud returns actuation authority to the Atn.
	ContractResumeCloud ContractAction = "ResumeCloud"
)

// Valid reports whether a is a known action.
func (a ContractAction) Valid() bool {
	switch a {
	case ContractEstablish, ContractTerminate, ContractLocalControl, ContractResumeCloud:
		return true
	}
	return false
}

// ContractHandoff is sent by the Atn to change the dispatch contract.
type ContractHandoff struct {
	FromGNodeAlias string         `json:"FromGNodeAlias"`
	Action         ContractAction `json:"Action"`
	SendTimeUnixMs int64          `json:"SendTimeUnixMs"`
}

// SimpleTelemetryStatus is the per-report history of one simple sensor.
type SimpleTelemetryStatus struct {
	ShNodeAlias        string        `json:"ShNodeAlias"`
	TelemetryName      TelemetryName `json:"TelemetryName"`
	ValueList          []int         `json:"ValueList"`
	ReadTimeUnixMsList []int64       `json:"ReadTimeUnixMsList"`
}

// MultipurposeTelemetryStatus is the per-report history of one telemetry tuple.
type MultipurposeTelemetryStatus struct {
	AboutNodeAlias     string        `json:"AboutNodeAlias"`
	SensorNodeAlias    string        `json:"SensorNodeAlias"`
	TelemetryName      TelemetryName `json:"TelemetryName"`
	ValueList          []int         `json:"ValueList"`
	ReadTimeUnixMsList []int64       `json:"ReadTimeUnixMsList"`
}

// BooleanActuatorCmdStatus is the per-report command history of one relay.
type BooleanActuatorCmdStatus struct {
	ShNodeAlias           string  `json:"ShNodeAlias"`
	RelayStateCommandList []int   `json:"RelayStateCommandList"`
	CommandTimeUnixMsList []int64 `json:"CommandTimeUnixMsList"`
}

// Status is the periodic aggregate report.
type Status struct {
	FromGNodeAlias            string                        `json:"FromGNodeAlias"`
	AboutGNodeAlias           string                        `json:"AboutGNodeAlias"`
	StatusUid                 string                        `json:"StatusUid"`
	SlotStartUnixS            int64                         `json:"SlotStartUnixS"`
	ReportingPeriodS          int                           `json:"ReportingPeriodS"`
	SimpleTelemetryList       []SimpleTelemetryStatus       `json:"SimpleTelemetryList"`
	MultipurposeTelemetryList []MultipurposeTelemetryStatus `json:"MultipurposeTelemetryList"`
	BooleanactuatorCmdList    []BooleanActuatorCmdStatus    `json:"BooleanactuatorCmdList"`
}

// TelemetrySnapshot lists the latest value of every tracked reading.
// The three lists are index-aligned.
type TelemetrySnapshot struct {
	AboutNodeAliasList []string        `json:"AboutNodeAliasList"`
	ValueList          []int           `json:"ValueList"`
	TelemetryNameList  []TelemetryName `json:"TelemetryNameList"`
	ReportTimeUnixMs   int64           `json:"ReportTimeUnixMs"`
}

// Snapshot is the live snapshot sent to the Atn.
type Snapshot struct {
	FromGNodeAlias      string            `json:"FromGNodeAlias"`
	FromGNodeInstanceId string            `json:"FromGNodeInstanceId"`
	Snapshot            TelemetrySnapshot `json:"Snapshot"`
}

// TransportMessage is an MQTT message received by a transport client.
type TransportMessage struct {
	Client   string
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// TransportConnected reports that a transport client (re)connected.
type TransportConnected struct {
	Client string
}

// TransportDisconnected reports a lost connection.
type TransportDisconnected struct {
	Client string
	Err    error
}

// TransportConnectFailed reports a failed connection attempt.
type TransportConnectFailed struct {
	Client string
	Err    error
}

// StatusTick asks the core to assemble and publish a status report.
type StatusTick struct {
	SlotStart time.Time
}

func (*Telemetry) TypeAlias() string              { return TypeTelemetry }
func (*MultipurposeTelemetry) TypeAlias() string  { return TypeMultipurposeTelemetry }
func (*Power) TypeAlias() string                  { return TypePower }
func (*DispatchBoolean) TypeAlias() string        { return TypeDispatchBoolean }
func (*DispatchBooleanLocal) TypeAlias() string   { return TypeDispatchBooleanLocal }
func (*BooleanActuatorCmd) TypeAlias() string     { return TypeBooleanActuatorCmd }
func (*CliAtnCmd) TypeAlias() string              { return TypeCliAtnCmd }
func (*ContractHandoff) TypeAlias() string        { return TypeContractHandoff }
func (*Status) TypeAlias() string                 { return TypeStatus }
func (*Snapshot) TypeAlias() string               { return TypeSnapshot }
func (*TransportMessage) TypeAlias() string       { return TypeTransportMessage }
func (*TransportConnected) TypeAlias() string     { return TypeTransportConnected }
func (*TransportDisconnected) TypeAlias() string  { return TypeTransportDisconnected }
func (*TransportConnectFailed) TypeAlias() string { return TypeTransportConnectFailed }
func (*StatusTick) TypeAlias() string             { return TypeStatusTick }

func (*Telemetry) payload()              {}
func (*MultipurposeTelemetry) payload()  {}
func (*Power) payload()                  {}
func (*DispatchBoolean) payload()        {}
func (*DispatchBooleanLocal) payload()   {}
func (*BooleanActuatorCmd) payload()     {}
func (*CliAtnCmd) payload()              {}
func (*ContractHandoff) payload()        {}
func (*Status) payload()                 {}
func (*Snapshot) payload()               {}
func (*TransportMessage) payload()       {}
func (*TransportConnected) payload()     {}
func (*TransportDisconnected) payload()  {}
func (*TransportConnectFailed) payload() {}
func (*StatusTick) payload()             {}
