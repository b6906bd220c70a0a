package model

import (
	"encoding/json"
	"fmt"
)

// TruckStatus is the movement state of a truck. While moving the destination
// and route are locked until the leg is exhausted.
type TruckStatus int

const (
	StatusIdle TruckStatus = iota
	StatusMoving
	StatusReturning
)

func (s TruckStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusMoving:
		return "moving"
	case StatusReturning:
		return "returning"
	default:
		return "unknown"
	}
}

func (s TruckStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *TruckStatus) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case "idle":
		*s = StatusIdle
	case "moving":
		*s = StatusMoving
	case "returning":
		*s = StatusReturning
	default:
		return fmt.Errorf("invalid truck status %q", v)
	}
	return nil
}

// BlockedStatus reports whether a truck is halted by a road block and waiting
// for an operator override.
type BlockedStatus int

const (
	BlockedNone BlockedStatus = iota
	BlockedWaitingOverride
)

func (s BlockedStatus) MarshalJSON() ([]byte, error) {
	if s == BlockedWaitingOverride {
		return json.Marshal("BLOCKED_WAITING_OVERRIDE")
	}
	return json.Marshal(nil)
}

func (s *BlockedStatus) UnmarshalJSON(b []byte) error {
	var v *string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*s = BlockedNone
		return nil
	}
	if *v != "BLOCKED_WAITING_OVERRIDE" {
		return fmt.Errorf("invalid blocked status %q", *v)
	}
	*s = BlockedWaitingOverride
	return nil
}

// InstructionStatus tracks the lifecycle of a manual driver instruction.
type InstructionStatus int

const (
	InstructionActive InstructionStatus = iota
	InstructionAcknowledged
)

func (s InstructionStatus) String() string {
	if s == InstructionAcknowledged {
		return "ACKNOWLEDGED"
	}
	return "ACTIVE"
}

func (s InstructionStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *InstructionStatus) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case "ACTIVE":
		*s = InstructionActive
	case "ACKNOWLEDGED":
		*s = InstructionAcknowledged
	default:
		return fmt.Errorf("invalid instruction status %q", v)
	}
	return nil
}

// Instruction is a free-text message from the operator to a driver.
type Instruction struct {
	ID     string            `json:"id"`
	Text   string            `json:"text"`
	Status InstructionStatus `json:"status"`
}

// Task is a lightweight queue entry referencing a hub. Queue order is
// resorted from the cached urgency weight without touching hub state.
type Task struct {
	HubID         string  `json:"hub_id"`
	UrgencyWeight float64 `json:"urgency_weight"`
	AssignedAt    float64 `json:"assigned_at"`
}

// Truck is a fleet vehicle dispatched from the depot.
type Truck struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	FuelCapacity    float64 `json:"fuel_capacity"`
	FuelRemaining   float64 `json:"fuel_remaining"`
	CurrentFuelUsed float64 `json:"current_fuel_used"`
	FuelEfficiency  float64 `json:"fuel_efficiency"`
	CostPerKm       float64 `json:"cost_per_km"`
	Speed           float64 `json:"speed"`
	MaxCapacity     int     `json:"max_capacity"`
	Active          bool    `json:"active"`

	Status  TruckStatus   `json:"status"`
	Blocked BlockedStatus `json:"blocked_status"`

	CurrentTask *Task  `json:"current_task,omitempty"`
	FutureQueue []Task `json:"future_task_queue"`

	// RoutePlan holds the slots produced by the commit planner, one entry
	// per deliverable demand unit. It is converted into the task queue when
	// execution starts.
	RoutePlan []string `json:"route_plan"`

	Route      []LatLng `json:"route"`
	FullRoute  []LatLng `json:"full_route"`
	RouteIndex int      `json:"current_route_index"`

	Instruction    *Instruction `json:"instruction,omitempty"`
	Notifications  []string     `json:"disaster_notifications"`
	LastDecisionAt float64      `json:"last_decision_point"`
}

// Validate checks a truck produced by fleet ingestion.
func (t Truck) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("truck id is required")
	}
	if t.FuelCapacity <= 0 {
		return fmt.Errorf("fuel capacity must be positive")
	}
	if t.MaxCapacity <= 0 {
		return fmt.Errorf("max capacity must be positive")
	}
	return nil
}

// Notify appends a driver notification once; repeats are dropped.
func (t *Truck) Notify(msg string) {
	for _, n := range t.Notifications {
		if n == msg {
			return
		}
	}
	t.Notifications = append(t.Notifications, msg)
}

// ClearRoute drops the active leg buffers.
func (t *Truck) ClearRoute() {
	t.Route = nil
	t.FullRoute = nil
	t.RouteIndex = 0
}
