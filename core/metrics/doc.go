package metrics

// Package metrics defines the sinks that record simulation observability
// data. Sinks like PromSink and InfluxSink capture deliveries, per-tick
// aggregates and truck snapshots and can be combined with NewMultiSink.
// The factory helpers return a MultiSink automatically when multiple sinks
// are configured.
