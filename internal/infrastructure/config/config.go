package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Scada.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Scada            ScadaConfig            `yaml:"scada"`
	GridworksMQTT    MQTTConfig             `yaml:"gridworks_mqtt"`
	LocalMQTT        MQTTConfig             `yaml:"local_mqtt"`
	DispatchContract DispatchContractConfig `yaml:"dispatch_contract"`
	InfluxDB         InfluxDBConfig         `yaml:"influxdb"`
	Logging          LoggingConfig          `yaml:"logging"`
}

// ScadaConfig contains core runtime settings.
type ScadaConfig struct {
	// LayoutFile is the path to the house layout YAML.
	LayoutFile string `yaml:"layout_file"`

	// SecondsPerReport is the status report interval (seconds).
	// Default: 300
	SecondsPerReport int `yaml:"seconds_per_report"`

	// StrictTelemetryTuples rejects a whole multipurpose batch when any
	// of its readings is not a configured tuple. When false, untracked
	// readings are dropped and the rest are recorded.
	// Default: true
	StrictTelemetryTuples bool `yaml:"strict_telemetry_tuples"`

	// AsyncPowerReportThreshold is the relative power change that makes the
	// power meter report immediately.
	// Default: 0.05
	AsyncPowerReportThreshold float64 `yaml:"async_power_report_threshold"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	KeepAlive int                 `yaml:"keep_alive"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	TLS  bool   `yaml:"tls"`

	// ClientID is generated when empty.
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`

	// Password for MQTT authentication (optional).
	// Never log this value; String and MarshalJSON redact it.
	Password string `yaml:"password"`
}

// String returns a string representation with password masked.
func (a MQTTAuthConfig) String() string {
	password := ""
	if a.Password != "" {
		password = "[REDACTED]"
	}
	return fmt.Sprintf("MQTTAuthConfig{Username:%q, Password:%s}", a.Username, password)
}

// MarshalJSON implements json.Marshaler to redact the password.
func (a MQTTAuthConfig) MarshalJSON() ([]byte, error) {
	type redacted MQTTAuthConfig
	safe := redacted(a)
	if safe.Password != "" {
		safe.Password = "[REDACTED]"
	}
	return json.Marshal(safe)
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// DispatchContractConfig holds the thresholds of the dispatch contract
// liveness policy. Durations are in seconds.
type DispatchContractConfig struct {
	// HeartbeatTimeout is the longest silence from the Atn the contract survives.
	// Default: 90
	HeartbeatTimeout int `yaml:"heartbeat_timeout"`

	// MaxResponse is the longest acceptable latency of the most recent dispatch.
	// Default: 6
	MaxResponse int `yaml:"max_response"`

	// MaxAverageResponse is the longest acceptable mean latency over ResponseWindow.
	// Default: 3
	MaxAverageResponse int `yaml:"max_average_response"`

	// ResponseWindow is how many recent dispatch latencies are averaged.
	// Default: 50
	ResponseWindow int `yaml:"response_window"`

	// RequireMeteringAttestation requires a power reading within AttestationMaxAge.
	// Default: true
	RequireMeteringAttestation bool `yaml:"require_metering_attestation"`

	// AttestationMaxAge is the longest gap between power readings.
	// Default: 86400
	AttestationMaxAge int `yaml:"attestation_max_age"`
}

// InfluxDBConfig contains InfluxDB connection settings for diagnostics export.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SCADA_SECTION_KEY
// For example: SCADA_LAYOUT_FILE, SCADA_GRIDWORKS_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration, without file or environment input.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Scada: ScadaConfig{
			LayoutFile:                "./configs/layout.yaml",
			SecondsPerReport:          300,
			StrictTelemetryTuples:     true,
			AsyncPowerReportThreshold: 0.05,
		},
		GridworksMQTT: defaultMQTT(),
		LocalMQTT:     defaultMQTT(),
		DispatchContract: DispatchContractConfig{
			HeartbeatTimeout:           90,
			MaxResponse:                6,
			MaxAverageResponse:         3,
			ResponseWindow:             50,
			RequireMeteringAttestation: true,
			AttestationMaxAge:          86400,
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "gridworks",
			Bucket:        "scada",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func defaultMQTT() MQTTConfig {
	return MQTTConfig{
		Broker: MQTTBrokerConfig{
			Host: "localhost",
			Port: 1883,
		},
		QoS:       1,
		KeepAlive: 60,
		Reconnect: MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     60,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SCADA_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Scada
	if v := os.Getenv("SCADA_LAYOUT_FILE"); v != "" {
		cfg.Scada.LayoutFile = v
	}

	// Gridworks MQTT
	if v := os.Getenv("SCADA_GRIDWORKS_MQTT_HOST"); v != "" {
		cfg.GridworksMQTT.Broker.Host = v
	}
	if v := os.Getenv("SCADA_GRIDWORKS_MQTT_USERNAME"); v != "" {
		cfg.GridworksMQTT.Auth.Username = v
	}
	if v := os.Getenv("SCADA_GRIDWORKS_MQTT_PASSWORD"); v != "" {
		cfg.GridworksMQTT.Auth.Password = v
	}

	// Local MQTT
	if v := os.Getenv("SCADA_LOCAL_MQTT_HOST"); v != "" {
		cfg.LocalMQTT.Broker.Host = v
	}

	// InfluxDB
	if v := os.Getenv("SCADA_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Scada validation
	if c.Scada.LayoutFile == "" {
		errs = append(errs, "scada.layout_file is required")
	}
	if c.Scada.SecondsPerReport < 1 {
		errs = append(errs, "scada.seconds_per_report must be at least 1 second")
	}
	if c.Scada.AsyncPowerReportThreshold < 0 || c.Scada.AsyncPowerReportThreshold > 1 {
		errs = append(errs, "scada.async_power_report_threshold must be between 0 and 1")
	}

	// MQTT validation
	errs = append(errs, validateMQTT("gridworks_mqtt", c.GridworksMQTT)...)
	errs = append(errs, validateMQTT("local_mqtt", c.LocalMQTT)...)

	// Dispatch contract validation
	dc := c.DispatchContract
	if dc.HeartbeatTimeout < 1 {
		errs = append(errs, "dispatch_contract.heartbeat_timeout must be at least 1 second")
	}
	if dc.MaxResponse < 1 || dc.MaxAverageResponse < 1 {
		errs = append(errs, "dispatch_contract response limits must be at least 1 second")
	}
	if dc.ResponseWindow < 1 {
		errs = append(errs, "dispatch_contract.response_window must be at least 1")
	}
	if dc.RequireMeteringAttestation && dc.AttestationMaxAge < 1 {
		errs = append(errs, "dispatch_contract.attestation_max_age must be at least 1 second")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func validateMQTT(section string, m MQTTConfig) []string {
	var errs []string
	if m.Broker.Host == "" {
		errs = append(errs, section+".broker.host is required")
	}
	if m.Broker.Port < 1 || m.Broker.Port > 65535 {
		errs = append(errs, section+".broker.port must be between 1 and 65535")
	}
	if m.QoS < 0 || m.QoS > 2 {
		errs = append(errs, section+".qos must be 0, 1, or 2")
	}
	if m.Reconnect.InitialDelay < 1 || m.Reconnect.MaxDelay < m.Reconnect.InitialDelay {
		errs = append(errs, section+".reconnect delays must be at least 1 second and max_delay >= initial_delay")
	}
	return errs
}

// ReportInterval returns the status report interval as a Duration.
func (c *Config) ReportInterval() time.Duration {
	return time.Duration(c.Scada.SecondsPerReport) * time.Second
}
