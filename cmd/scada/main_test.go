package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testConfigTemplate = `
scada:
  layout_file: "LAYOUT"
  seconds_per_report: 300

gridworks_mqtt:
  broker:
    host: "127.0.0.1"
    port: 1
    client_id: "test-gridworks"
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 1

local_mqtt:
  broker:
    host: "127.0.0.1"
    port: 1
    client_id: "test-local"
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 1

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stderr
`

// writeConfig writes a config using layoutPath and points SCADA_CONFIG at it.
func writeConfig(t *testing.T, layoutPath string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Replace(testConfigTemplate, "LAYOUT", layoutPath, 1)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	t.Setenv("SCADA_CONFIG", path)
}

func runWithTimeout(t *testing.T, d time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return run(ctx)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("SCADA_CONFIG", "/nonexistent/path/config.yaml")

	err := runWithTimeout(t, 5*time.Second)
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("run() error = %v, want a config error", err)
	}
}

func TestRun_MissingLayout(t *testing.T) {
	writeConfig(t, "/nonexistent/layout.yaml")

	err := runWithTimeout(t, 5*time.Second)
	if err == nil || !strings.Contains(err.Error(), "loading layout") {
		t.Fatalf("run() error = %v, want a layout error", err)
	}
}

func TestRun_UnknownDriver(t *testing.T) {
	data, err := os.ReadFile("../../configs/layout.yaml")
	if err != nil {
		t.Fatalf("reading layout: %v", err)
	}
	layoutYAML := strings.Replace(string(data), "GRIDWORKS__SIMBOOL30AMPRELAY", "ACME__RELAY9000", 1)
	layoutPath := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(layoutPath, []byte(layoutYAML), 0o600); err != nil {
		t.Fatalf("writing layout: %v", err)
	}
	writeConfig(t, layoutPath)

	err = runWithTimeout(t, 5*time.Second)
	if err == nil || !strings.Contains(err.Error(), "ACME__RELAY9000") {
		t.Fatalf("run() error = %v, want the missing driver named", err)
	}
}

// TestRun_ShutsDownOnCancel runs against unreachable brokers: the
// transports keep retrying and run returns cleanly once ctx ends.
func TestRun_ShutsDownOnCancel(t *testing.T) {
	abs, err := filepath.Abs("../../configs/layout.yaml")
	if err != nil {
		t.Fatalf("Abs() error = %v", err)
	}
	writeConfig(t, abs)

	done := make(chan error, 1)
	go func() { done <- runWithTimeout(t, 300*time.Millisecond) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v, want nil", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("SCADA_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
	t.Setenv("SCADA_CONFIG", "/etc/scada.yaml")
	if got := getConfigPath(); got != "/etc/scada.yaml" {
		t.Errorf("getConfigPath() = %q, want /etc/scada.yaml", got)
	}
}
