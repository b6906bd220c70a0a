package config

import (
	"fmt"
	"time"

	"github.com/shriram-s7/fleetdispatch/core/sim"
)

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr string `json:"addr"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// DepotConfig defines the fixed origin and return point for all trucks.
type DepotConfig struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c *DepotConfig) SetDefaults() {
	if c.ID == "" {
		c.ID = "DEPOT"
	}
	if c.Name == "" {
		c.Name = "Central Depot"
	}
	if c.Latitude == 0 && c.Longitude == 0 {
		c.Latitude = 10.7905
		c.Longitude = 78.7047
	}
}

func (c DepotConfig) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("depot latitude %f out of range", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("depot longitude %f out of range", c.Longitude)
	}
	return nil
}

// SimulationConfig tunes the tick loop.
type SimulationConfig struct {
	TickIntervalMS      int     `json:"tick_interval_ms"`
	TickSeconds         float64 `json:"tick_seconds"`
	FuelRate            float64 `json:"fuel_rate"`
	RouteTimeoutSeconds int     `json:"route_timeout_seconds"`
	SnapThresholdKm     float64 `json:"snap_threshold_km"`
}

func (c *SimulationConfig) SetDefaults() {
	if c.TickIntervalMS <= 0 {
		c.TickIntervalMS = 1000
	}
	if c.TickSeconds <= 0 {
		c.TickSeconds = 1
	}
	if c.FuelRate <= 0 {
		c.FuelRate = 0.1
	}
	if c.RouteTimeoutSeconds <= 0 {
		c.RouteTimeoutSeconds = 5
	}
	if c.SnapThresholdKm <= 0 {
		c.SnapThresholdKm = 10
	}
}

// ToSim converts to the simulator's config type.
func (c SimulationConfig) ToSim() sim.Config {
	return sim.Config{
		TickInterval:    time.Duration(c.TickIntervalMS) * time.Millisecond,
		TickSeconds:     c.TickSeconds,
		FuelRate:        c.FuelRate,
		RouteTimeout:    time.Duration(c.RouteTimeoutSeconds) * time.Second,
		SnapThresholdKm: c.SnapThresholdKm,
	}
}

// RoutingConfig selects the road-routing provider.
type RoutingConfig struct {
	// Provider is "osrm" or "straight".
	Provider       string `json:"provider"`
	OSRMURL        string `json:"osrm_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

func (c *RoutingConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = "osrm"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 5
	}
}

func (c RoutingConfig) Validate() error {
	if c.Provider != "osrm" && c.Provider != "straight" {
		return fmt.Errorf("unknown routing provider %s", c.Provider)
	}
	return nil
}

// LoggingConfig defines settings for decision log storage.
type LoggingConfig struct {
	// Backend selects the store type: "jsonl", "sqlite" or "memory".
	Backend string `json:"backend"`
	// Path is the file location of the store. Unused for memory.
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		c.Path = "decisions.log"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown backend %s", c.Backend)
	}
	if c.Backend != "memory" && c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}
