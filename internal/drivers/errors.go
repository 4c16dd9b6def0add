package drivers

import "errors"

var (
	// ErrNoDriver is returned when no driver is registered for a make/model.
	ErrNoDriver = errors.New("drivers: no driver for make/model")

	// ErrDuplicateModel is returned when a make/model is registered twice.
	ErrDuplicateModel = errors.New("drivers: make/model already registered")

	// ErrUnsupportedTelemetry is returned when a driver cannot read a telemetry name.
	ErrUnsupportedTelemetry = errors.New("drivers: unsupported telemetry")

	// ErrInvalidRelayState is returned for relay states other than 0 and 1.
	ErrInvalidRelayState = errors.New("drivers: relay state must be 0 or 1")
)
