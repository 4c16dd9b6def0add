package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
scada:
  layout_file: "/etc/scada/layout.yaml"
  seconds_per_report: 60
gridworks_mqtt:
  broker:
    host: "gridworks.example.net"
    port: 8883
    tls: true
  qos: 1
local_mqtt:
  broker:
    host: "localhost"
    port: 1883
dispatch_contract:
  heartbeat_timeout: 120
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Scada.LayoutFile != "/etc/scada/layout.yaml" {
		t.Errorf("Scada.LayoutFile = %q, want %q", cfg.Scada.LayoutFile, "/etc/scada/layout.yaml")
	}
	if cfg.ReportInterval() != time.Minute {
		t.Errorf("ReportInterval() = %v, want 1m", cfg.ReportInterval())
	}
	if cfg.GridworksMQTT.Broker.Host != "gridworks.example.net" || !cfg.GridworksMQTT.Broker.TLS {
		t.Errorf("GridworksMQTT.Broker = %+v", cfg.GridworksMQTT.Broker)
	}
	if cfg.DispatchContract.HeartbeatTimeout != 120 {
		t.Errorf("DispatchContract.HeartbeatTimeout = %d, want 120", cfg.DispatchContract.HeartbeatTimeout)
	}
	// Untouched values keep their defaults.
	if cfg.DispatchContract.ResponseWindow != 50 {
		t.Errorf("DispatchContract.ResponseWindow = %d, want 50", cfg.DispatchContract.ResponseWindow)
	}
	if !cfg.Scada.StrictTelemetryTuples {
		t.Error("Scada.StrictTelemetryTuples = false, want true")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")

	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
scada:
  seconds_per_report: 0
gridworks_mqtt:
  qos: 3
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"scada.seconds_per_report", "gridworks_mqtt.qos"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error = %q, want it to mention %s", err, want)
		}
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	if _, err := Load("../../../configs/config.yaml"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "scada:\n  seconds_per_report: 300\n")

	t.Setenv("SCADA_LAYOUT_FILE", "/tmp/layout.yaml")
	t.Setenv("SCADA_GRIDWORKS_MQTT_HOST", "broker.gridworks")
	t.Setenv("SCADA_GRIDWORKS_MQTT_USERNAME", "scada")
	t.Setenv("SCADA_GRIDWORKS_MQTT_PASSWORD", "hunter2")
	t.Setenv("SCADA_LOCAL_MQTT_HOST", "10.0.0.2")
	t.Setenv("SCADA_INFLUXDB_TOKEN", "influx-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"layout file", cfg.Scada.LayoutFile, "/tmp/layout.yaml"},
		{"gridworks host", cfg.GridworksMQTT.Broker.Host, "broker.gridworks"},
		{"gridworks username", cfg.GridworksMQTT.Auth.Username, "scada"},
		{"gridworks password", cfg.GridworksMQTT.Auth.Password, "hunter2"},
		{"local host", cfg.LocalMQTT.Broker.Host, "10.0.0.2"},
		{"influx token", cfg.InfluxDB.Token, "influx-token"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing layout file",
			mutate:  func(c *Config) { c.Scada.LayoutFile = "" },
			wantErr: "scada.layout_file is required",
		},
		{
			name:    "bad local port",
			mutate:  func(c *Config) { c.LocalMQTT.Broker.Port = 70000 },
			wantErr: "local_mqtt.broker.port",
		},
		{
			name:    "reconnect max below initial",
			mutate:  func(c *Config) { c.LocalMQTT.Reconnect.MaxDelay = 0 },
			wantErr: "local_mqtt.reconnect",
		},
		{
			name:    "zero response window",
			mutate:  func(c *Config) { c.DispatchContract.ResponseWindow = 0 },
			wantErr: "dispatch_contract.response_window",
		},
		{
			name: "attestation age ignored when not required",
			mutate: func(c *Config) {
				c.DispatchContract.RequireMeteringAttestation = false
				c.DispatchContract.AttestationMaxAge = 0
			},
		},
		{
			name: "influxdb enabled without bucket",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Bucket = ""
			},
			wantErr: "influxdb.bucket",
		},
		{
			name:    "power threshold out of range",
			mutate:  func(c *Config) { c.Scada.AsyncPowerReportThreshold = 1.5 },
			wantErr: "async_power_report_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMQTTAuthRedaction(t *testing.T) {
	auth := MQTTAuthConfig{Username: "scada", Password: "hunter2"}

	if s := auth.String(); strings.Contains(s, "hunter2") || !strings.Contains(s, "[REDACTED]") {
		t.Errorf("String() = %q, want password redacted", s)
	}

	data, err := json.Marshal(auth)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if strings.Contains(string(data), "hunter2") {
		t.Errorf("MarshalJSON() = %s, want password redacted", data)
	}

	empty := MQTTAuthConfig{Username: "scada"}
	if strings.Contains(empty.String(), "[REDACTED]") {
		t.Errorf("String() = %q, want no redaction marker for empty password", empty.String())
	}
}
