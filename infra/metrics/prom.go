package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/shriram-s7/fleetdispatch/core/metrics"
)

// PromSink records simulation events in Prometheus metrics.
type PromSink struct {
	deliveries *prometheus.CounterVec
	blocked    *prometheus.CounterVec
	clock      prometheus.Gauge
	trucks     *prometheus.GaugeVec
	openHubs   prometheus.Gauge
	fuel       *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_deliveries_total",
		Help: "Total delivered demand units",
	}, []string{"truck_id", "hub_id", "completed"})
	blocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_road_blocks_total",
		Help: "Total road-block halts",
	}, []string{"truck_id"})
	clock := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_simulation_clock_seconds",
		Help: "Current simulation clock",
	})
	trucks := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dispatch_trucks",
		Help: "Truck counts by state",
	}, []string{"state"})
	openHubs := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_open_hubs",
		Help: "Hubs with outstanding demand",
	})
	fuel := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dispatch_truck_fuel_remaining",
		Help: "Fuel remaining per truck",
	}, []string{"truck_id"})

	s := &PromSink{deliveries: deliveries, blocked: blocked, clock: clock, trucks: trucks, openHubs: openHubs, fuel: fuel}
	collectors := map[string]prometheus.Collector{
		"deliveries": deliveries,
		"blocked":    blocked,
		"clock":      clock,
		"trucks":     trucks,
		"open_hubs":  openHubs,
		"fuel":       fuel,
	}
	for name, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch name {
			case "deliveries":
				s.deliveries = are.ExistingCollector.(*prometheus.CounterVec)
			case "blocked":
				s.blocked = are.ExistingCollector.(*prometheus.CounterVec)
			case "clock":
				s.clock = are.ExistingCollector.(prometheus.Gauge)
			case "trucks":
				s.trucks = are.ExistingCollector.(*prometheus.GaugeVec)
			case "open_hubs":
				s.openHubs = are.ExistingCollector.(prometheus.Gauge)
			case "fuel":
				s.fuel = are.ExistingCollector.(*prometheus.GaugeVec)
			}
		}
	}
	return s, nil
}

// RecordDelivery increments the delivery counter.
func (s *PromSink) RecordDelivery(rec coremetrics.DeliveryRecord) error {
	s.deliveries.WithLabelValues(rec.TruckID, rec.HubID, strconv.FormatBool(rec.Completed)).Inc()
	return nil
}

// RecordTick updates the per-tick gauges.
func (s *PromSink) RecordTick(stats coremetrics.TickStats) error {
	s.clock.Set(stats.Clock)
	s.trucks.WithLabelValues("active").Set(float64(stats.ActiveTrucks))
	s.trucks.WithLabelValues("moving").Set(float64(stats.MovingTrucks))
	s.trucks.WithLabelValues("blocked").Set(float64(stats.BlockedTrucks))
	s.openHubs.Set(float64(stats.OpenHubs))
	return nil
}

// RecordTruckState updates the per-truck fuel gauge.
func (s *PromSink) RecordTruckState(st coremetrics.TruckState) error {
	s.fuel.WithLabelValues(st.TruckID).Set(st.FuelRemaining)
	return nil
}

// RecordBlocked increments the road-block counter.
func (s *PromSink) RecordBlocked(rec coremetrics.BlockedRecord) error {
	s.blocked.WithLabelValues(rec.TruckID).Inc()
	return nil
}
