// Package config loads the service configuration from YAML or JSON files
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

	"github.com/shriram-s7/fleetdispatch/core/metrics"
	"github.com/shriram-s7/fleetdispatch/infra/telemetry"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	Depot      DepotConfig      `json:"depot"`
	Simulation SimulationConfig `json:"simulation"`
	Routing    RoutingConfig    `json:"routing"`
	Metrics    metrics.Config   `json:"metrics"`
	Logging    LoggingConfig    `json:"logging"`
	Telemetry  telemetry.Config `json:"telemetry"`
}

// Load reads the file at path, applies FD_-prefixed environment overrides
// (FD_SERVER__ADDR=:9090 sets server.addr), fills defaults and validates.
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
	// Optional environment overrides
	if err := k.Load(env.Provider("FD_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "fd_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	cfg.Depot.SetDefaults()
	cfg.Simulation.SetDefaults()
	cfg.Routing.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Telemetry.SetDefaults()
	if err := cfg.Depot.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Routing.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.SetDefaults()
	cfg.Depot.SetDefaults()
	cfg.Simulation.SetDefaults()
	cfg.Routing.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Telemetry.SetDefaults()
	return cfg
}
