package model

import (
	"encoding/json"
	"fmt"
)

// OwnershipState is the per-hub ownership state machine. A hub is owned by at
// most one truck and a COMPLETED hub never returns to an earlier state.
type OwnershipState int

const (
	OwnershipUnassigned OwnershipState = iota
	OwnershipAssigned
	OwnershipCompleted
)

func (s OwnershipState) String() string {
	switch s {
	case OwnershipUnassigned:
		return "UNASSIGNED"
	case OwnershipAssigned:
		return "ASSIGNED"
	case OwnershipCompleted:
		return "COMPLETED"
	default:
		return "unknown"
	}
}

func (s OwnershipState) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *OwnershipState) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case "UNASSIGNED":
		*s = OwnershipUnassigned
	case "ASSIGNED":
		*s = OwnershipAssigned
	case "COMPLETED":
		*s = OwnershipCompleted
	default:
		return fmt.Errorf("invalid ownership state %q", v)
	}
	return nil
}

// Hub is a demand location radiating from the depot.
type Hub struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	DemandQuantity  int   `json:"demand_quantity"`
	DemandPriority  Level `json:"demand_priority"`
	DemandIntensity Level `json:"demand_intensity"`
	Availability    int   `json:"availability"`
	Delivered       bool  `json:"delivered"`

	OwnershipState OwnershipState `json:"ownership_state"`
	OwnerTruckID   string         `json:"owner_truck_id,omitempty"`
	FrozenAtCommit bool           `json:"frozen_at_commit"`
}

// Validate checks hub fields that external callers may supply.
func (h Hub) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("hub id is required")
	}
	if h.DemandQuantity < 0 {
		return fmt.Errorf("demand quantity must not be negative")
	}
	return nil
}

// DeliverableUnits is the number of route slots the hub consumes at commit.
func (h Hub) DeliverableUnits() int {
	if h.Availability > 0 && h.Availability < h.DemandQuantity {
		return h.Availability
	}
	return h.DemandQuantity
}
