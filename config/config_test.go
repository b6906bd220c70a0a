package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `server:
  addr: ":9090"
depot:
  id: "DEPOT"
  name: "Trichy Central"
  latitude: 10.7905
  longitude: 78.7047
simulation:
  tick_interval_ms: 500
  fuel_rate: 0.2
routing:
  provider: "osrm"
  osrm_url: "http://localhost:5000"
metrics:
  prometheus_addr: ":2112"
  sinks:
    - type: "nop"
logging:
  backend: "sqlite"
  path: "decisions.db"
telemetry:
  enabled: true
  broker: "tcp://localhost:1883"
  topic_prefix: "fleet"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "Trichy Central", cfg.Depot.Name)
	require.Equal(t, 500, cfg.Simulation.TickIntervalMS)
	require.Equal(t, 0.2, cfg.Simulation.FuelRate)
	require.Equal(t, "osrm", cfg.Routing.Provider)
	require.Equal(t, "http://localhost:5000", cfg.Routing.OSRMURL)
	require.Len(t, cfg.Metrics.Sinks, 1)
	require.Equal(t, "nop", cfg.Metrics.Sinks[0].Type)
	require.Equal(t, "sqlite", cfg.Logging.Backend)
	require.True(t, cfg.Telemetry.Enabled)

	// Defaults fill what the file omits.
	require.Equal(t, float64(1), cfg.Simulation.TickSeconds)
	require.Equal(t, 5, cfg.Routing.TimeoutSeconds)
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	path := writeConfig(t, `server:
  addr: ":8080"
`)
	t.Setenv("FD_SERVER__ADDR", ":7070")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad backend":  "logging:\n  backend: \"csv\"\n",
		"bad provider": "routing:\n  provider: \"teleport\"\n",
		"bad depot":    "depot:\n  latitude: 200.0\n",
	}
	for name, data := range cases {
		_, err := Load(writeConfig(t, data))
		require.Error(t, err, name)
	}
}

func TestLoadRejectsUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "DEPOT", cfg.Depot.ID)
	require.Equal(t, 10.7905, cfg.Depot.Latitude)
	require.Equal(t, "jsonl", cfg.Logging.Backend)
	tuned := cfg.Simulation.ToSim()
	require.Equal(t, 0.1, tuned.FuelRate)
}
