// Package influxdb exports Scada runtime diagnostics to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Every envelope the
// runtime processes or rejects, every dispatch contract transition, every
// relay dispatch outcome and every status report becomes one point, tagged
// with the Scada alias.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, "a.s")
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// The export is optional; with influxdb.enabled false, Connect returns
// ErrDisabled and the runtime uses its no-op metrics.
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes are non-blocking and
// batched (batch_size, flush_interval); write errors are delivered to the
// SetOnError callback.
package influxdb
