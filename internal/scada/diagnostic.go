package scada

// Diagnostic is the outcome of a relay command.
type Diagnostic int

const (
	// Success means the command was forwarded to the relay.
	Success Diagnostic = iota

	// IgnoringAtnDispatch means an Atn dispatch arrived while the contract
	// was not alive.
	IgnoringAtnDispatch

	// IgnoringHomeAloneDispatch means a HomeAlone dispatch arrived while
	// the contract was alive.
	IgnoringHomeAloneDispatch

	// DispatchNodeNotBooleanActuator means the target is not a relay.
	DispatchNodeNotBooleanActuator

	// UnknownDispatchNode means the target is not in the layout.
	UnknownDispatchNode

	// DispatchNotDelivered means the command could not be published to
	// an out-of-process relay.
	DispatchNotDelivered
)

// String returns the diagnostic as used in logs and metrics.
func (d Diagnostic) String() string {
	switch d {
	case Success:
		return "success"
	case IgnoringAtnDispatch:
		return "ignoring cloud dispatch"
	case IgnoringHomeAloneDispatch:
		return "ignoring local dispatch"
	case DispatchNodeNotBooleanActuator:
		return "dispatch node not boolean actuator"
	case UnknownDispatchNode:
		return "unknown dispatch node"
	case DispatchNotDelivered:
		return "dispatch not delivered"
	default:
		return "unknown"
	}
}
