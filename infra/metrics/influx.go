package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/shriram-s7/fleetdispatch/core/metrics"
	"github.com/shriram-s7/fleetdispatch/infra/logger"
)

// InfluxSink writes simulation events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails, so a dead backend never stalls the
// simulation.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDelivery writes the delivery as a point.
func (s *InfluxSink) RecordDelivery(rec coremetrics.DeliveryRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("delivery_event").
		AddTag("truck_id", rec.TruckID).
		AddTag("hub_id", rec.HubID).
		AddTag("completed", strconv.FormatBool(rec.Completed)).
		AddField("remaining_units", rec.Remaining).
		AddField("sim_clock", rec.Clock).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTick writes the per-tick aggregate.
func (s *InfluxSink) RecordTick(stats coremetrics.TickStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_tick").
		AddField("sim_clock", stats.Clock).
		AddField("active_trucks", stats.ActiveTrucks).
		AddField("moving_trucks", stats.MovingTrucks).
		AddField("blocked_trucks", stats.BlockedTrucks).
		AddField("open_hubs", stats.OpenHubs).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTruckState writes a truck snapshot.
func (s *InfluxSink) RecordTruckState(st coremetrics.TruckState) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("truck_state").
		AddTag("truck_id", st.TruckID).
		AddTag("status", st.Status).
		AddField("latitude", st.Latitude).
		AddField("longitude", st.Longitude).
		AddField("fuel_remaining", st.FuelRemaining).
		AddField("sim_clock", st.Clock).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }
