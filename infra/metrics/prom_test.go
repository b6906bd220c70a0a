package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/shriram-s7/fleetdispatch/core/metrics"
)

func TestPromSinkRecordsDeliveries(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatal(err)
	}

	recs := []coremetrics.DeliveryRecord{
		{TruckID: "T1", HubID: "H1", Remaining: 2, Completed: false, Clock: 10},
		{TruckID: "T1", HubID: "H1", Remaining: 1, Completed: false, Clock: 20},
		{TruckID: "T2", HubID: "H2", Remaining: 0, Completed: true, Clock: 25},
	}
	for _, r := range recs {
		if err := s.RecordDelivery(r); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(s.deliveries.WithLabelValues("T1", "H1", "false")); got != 2 {
		t.Errorf("T1/H1 deliveries = %v, want 2", got)
	}
	if got := testutil.ToFloat64(s.deliveries.WithLabelValues("T2", "H2", "true")); got != 1 {
		t.Errorf("T2/H2 deliveries = %v, want 1", got)
	}
}

func TestPromSinkRecordsTickAndState(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordTick(coremetrics.TickStats{Clock: 42, ActiveTrucks: 3, MovingTrucks: 2, BlockedTrucks: 1, OpenHubs: 5}); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(s.clock); got != 42 {
		t.Errorf("clock gauge = %v, want 42", got)
	}
	if got := testutil.ToFloat64(s.trucks.WithLabelValues("moving")); got != 2 {
		t.Errorf("moving gauge = %v, want 2", got)
	}

	if err := s.RecordTruckState(coremetrics.TruckState{TruckID: "T1", FuelRemaining: 77.5}); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(s.fuel.WithLabelValues("T1")); got != 77.5 {
		t.Errorf("fuel gauge = %v, want 77.5", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatal(err)
	}
	// A second sink on the same registry must reuse the existing collectors.
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("re-registration: %v", err)
	}
}
