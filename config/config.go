// Package config loads the service configuration from yaml or json files
// with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/wassel-delivery/dispatch/infra/metrics"
	"github.com/wassel-delivery/dispatch/infra/mqtt"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Dispatch DispatchConfig `json:"dispatch"`
	Zones    []ZoneConfig   `json:"zones"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Metrics  MetricsConfig  `json:"metrics"`
	Logging  LoggingConfig  `json:"logging"`
}

// Load reads the configuration file at path. Environment variables prefixed
// with DD_ override file values, with __ as the section separator
// (DD_SERVER__ADDR overrides server.addr).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("DD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "dd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every section at its defaults,
// including the Riyadh zone set.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields section by section.
func (c *Config) ApplyDefaults() {
	c.Server.SetDefaults()
	c.Dispatch.SetDefaults()
	c.Logging.SetDefaults()
	if len(c.Zones) == 0 {
		c.Zones = DefaultZones()
	}
}

// Validate checks all sections.
func (c *Config) Validate() error {
	if err := c.Dispatch.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	for _, z := range c.Zones {
		if err := z.Model().Validate(); err != nil {
			return fmt.Errorf("zone %s: %w", z.ID, err)
		}
	}
	return nil
}

// ServerConfig holds the HTTP binding settings.
type ServerConfig struct {
	// Addr is the dispatch API listen address.
	Addr string `json:"addr"`
	// AuthToken guards the API when non-empty.
	AuthToken string `json:"auth_token"`
	// PromAddr is the Prometheus exposition listen address; empty disables it.
	PromAddr string `json:"prom_addr"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// MetricsConfig selects the recording sinks.
type MetricsConfig struct {
	// Prometheus enables the Prometheus sink.
	Prometheus bool `json:"prometheus"`
	// Influx enables the InfluxDB sink when InfluxURL is set.
	Influx metrics.Config `json:"influx"`
}

// LoggingConfig defines the zerolog output settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level %s", c.Level)
	}
}
