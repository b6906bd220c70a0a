package metrics

// DeliveryRecord represents one delivered demand unit.
type DeliveryRecord struct {
	TruckID   string
	HubID     string
	Remaining int
	Completed bool
	Clock     float64
}

// Sink records delivery events for observability purposes.
type Sink interface {
	RecordDelivery(rec DeliveryRecord) error
}

// TickStats is an aggregate snapshot taken once per simulation tick.
type TickStats struct {
	Clock         float64
	ActiveTrucks  int
	MovingTrucks  int
	BlockedTrucks int
	OpenHubs      int
}

// TickRecorder records per-tick aggregates.
type TickRecorder interface {
	RecordTick(stats TickStats) error
}

// TruckState is a per-truck snapshot.
type TruckState struct {
	TruckID       string
	Latitude      float64
	Longitude     float64
	FuelRemaining float64
	Status        string
	Clock         float64
}

// TruckStateRecorder records truck snapshots.
type TruckStateRecorder interface {
	RecordTruckState(st TruckState) error
}

// BlockedRecord captures a truck halted by a road block.
type BlockedRecord struct {
	TruckID    string
	DisasterID string
	Clock      float64
}

// BlockedRecorder records road-block halts.
type BlockedRecorder interface {
	RecordBlocked(rec BlockedRecord) error
}

// NopSink discards all records.
type NopSink struct{}

func (NopSink) RecordDelivery(DeliveryRecord) error { return nil }
