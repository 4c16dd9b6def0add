// Package logging provides structured logging for the Scada.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the runtime, transports and actors.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Warn("envelope rejected", "client", "gridworks", "error", err)
//
// Every package that logs takes a narrow Logger interface, so *Logger can be
// passed anywhere without those packages importing this one.
//
// Never log broker passwords or the InfluxDB token.
package logging
