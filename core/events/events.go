package events

import "github.com/shriram-s7/fleetdispatch/core/model"

// TickEvent is published after every completed simulation tick.
type TickEvent struct {
	Clock float64
}

// CommitEvent is published when the commit planner succeeds.
type CommitEvent struct {
	Hubs   int
	Trucks int
}

// DeliveryEvent is published for every delivered demand unit.
type DeliveryEvent struct {
	TruckID   string
	HubID     string
	Remaining int
	Completed bool
	Clock     float64
}

// BlockedEvent is published when a road block halts a truck.
type BlockedEvent struct {
	TruckID    string
	DisasterID string
	Clock      float64
}

// EscalationEvent is published when a demand escalation claims a hub for a
// truck.
type EscalationEvent struct {
	HubID   string
	TruckID string
	Clock   float64
}

// DecisionEvent carries a decision-log entry for persistence.
type DecisionEvent struct {
	Decision model.Decision
}
