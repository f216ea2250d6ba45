// Package config loads server settings.
//
// Settings come from a YAML file, then environment variables override
// individual keys. A .env file may seed the environment first.
//
// Config file locations (priority order):
//  1. $NETSCAN_CONFIG
//  2. ./netscan.yaml
//  3. $XDG_CONFIG_HOME/netscan/config.yaml
//  4. ~/.config/netscan/config.yaml
//  5. /etc/netscan/config.yaml
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"netscan/internal/adapter"
	"netscan/internal/domain"
)

// Defaults used when neither the file nor the environment sets a key
const (
	DefaultAddr   = ":8000"
	DefaultDBPath = "./data/netscan.sqlite3"
	DefaultBinary = "nmap"
)

// DefaultPresets are seeded into a fresh database
func DefaultPresets() []domain.Preset {
	return []domain.Preset{
		{Name: "Site A (10.10.0.0/24)", Range: "10.10.0.0/24"},
		{Name: "Site B (10.20.0.0/24)", Range: "10.20.0.0/24"},
		{Name: "Mgmt (192.168.1.0/24)", Range: "192.168.1.0/24"},
	}
}

// Load finds and loads the config file, or uses defaults if none is found.
// An explicit path must exist. Environment overrides are applied last.
func Load(explicit string) (*Config, string, error) {
	path := explicit
	if path == "" {
		path = FindConfigPath()
	}

	cfg := DefaultConfig()
	if path != "" {
		loaded, _, err := LoadFromPath(path)
		if err != nil {
			return nil, path, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("Loaded environment file", "path", path)
	}
	return nil
}

// ApplyEnv overrides settings from NETSCAN_* environment variables
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	c.applyDefaults()
	return nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDBPath
	}
	if c.Probe.Binary == "" {
		c.Probe.Binary = DefaultBinary
	}
	if c.Probe.Timeout == 0 {
		c.Probe.Timeout = Duration(adapter.DefaultProbeTimeout)
	}
	if strings.TrimSpace(c.Probe.DefaultPorts) == "" {
		c.Probe.DefaultPorts = adapter.DefaultTCPPorts
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Presets == nil {
		c.Presets = DefaultPresets()
	}
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.ScansPerMinute < 0 {
		errs = append(errs, fmt.Errorf("server.scans_per_minute must not be negative, got %d", c.Server.ScansPerMinute))
	}
	if c.Probe.Timeout.Duration() <= 0 {
		errs = append(errs, fmt.Errorf("probe.timeout must be positive, got %s", c.Probe.Timeout.Duration()))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	for i, p := range c.Presets {
		if _, err := domain.ValidateRange(p.Range); err != nil {
			errs = append(errs, fmt.Errorf("presets[%d] %q: %w", i, p.Name, err))
		}
	}

	return errors.Join(errs...)
}

// ProbeTimeout returns the probe timeout as a time.Duration
func (c *Config) ProbeTimeout() time.Duration {
	return c.Probe.Timeout.Duration()
}
