package metrics

import "github.com/shriram-s7/fleetdispatch/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" koanf:"sinks"`

	// PrometheusAddr, when non-empty, exposes /metrics on this address.
	PrometheusAddr string `json:"prometheus_addr" koanf:"prometheus_addr"`
}
