package config

import (
	"time"

	"netscan/internal/domain"
)

// Config is the root configuration structure
type Config struct {
	Version  int             `yaml:"version"`
	Server   ServerConfig    `yaml:"server"`
	Database DatabaseConfig  `yaml:"database"`
	Probe    ProbeConfig     `yaml:"probe"`
	Log      LogConfig       `yaml:"log"`
	Presets  []domain.Preset `yaml:"presets,omitempty"` // seeded into an empty store
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr" env:"NETSCAN_ADDR"`

	// ScansPerMinute caps scan requests; 0 means unlimited
	ScansPerMinute int `yaml:"scans_per_minute" env:"NETSCAN_SCANS_PER_MINUTE"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" env:"NETSCAN_DB_PATH"`
}

// ProbeConfig controls the nmap invocation
type ProbeConfig struct {
	Binary       string   `yaml:"binary" env:"NETSCAN_NMAP_BINARY"`
	Timeout      Duration `yaml:"timeout" env:"NETSCAN_PROBE_TIMEOUT"`
	DefaultPorts string   `yaml:"default_ports" env:"NETSCAN_DEFAULT_PORTS"`
}

// LogConfig controls log output
type LogConfig struct {
	Level  string `yaml:"level" env:"NETSCAN_LOG_LEVEL"`
	Format string `yaml:"format" env:"NETSCAN_LOG_FORMAT"` // text or json
}

// Duration wraps time.Duration for YAML and environment unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
