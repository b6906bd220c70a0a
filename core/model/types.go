package model

import (
	"encoding/json"
	"fmt"
)

// LatLng is a single coordinate pair used for route waypoints.
type LatLng struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Level is the shared four-value urgency domain used both for the static
// demand priority class and for the live demand intensity.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelEmergency
)

// String returns the wire representation of the level.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "Low"
	case LevelMedium:
		return "Medium"
	case LevelHigh:
		return "High"
	case LevelEmergency:
		return "Emergency"
	default:
		return "unknown"
	}
}

// ParseLevel converts the wire representation back to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "Low":
		return LevelLow, nil
	case "Medium":
		return LevelMedium, nil
	case "High":
		return LevelHigh, nil
	case "Emergency":
		return LevelEmergency, nil
	default:
		return 0, fmt.Errorf("invalid level %q", s)
	}
}

// PriorityWeight is the scoring weight when the level is used as a static
// priority class.
func (l Level) PriorityWeight() float64 {
	switch l {
	case LevelEmergency:
		return 5
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	default:
		return 1
	}
}

// UrgencyWeight is the scoring weight when the level is used as live demand
// intensity.
func (l Level) UrgencyWeight() float64 {
	switch l {
	case LevelEmergency:
		return 10
	case LevelHigh:
		return 4
	case LevelMedium:
		return 2
	default:
		return 1
	}
}

func (l Level) MarshalJSON() ([]byte, error) { return json.Marshal(l.String()) }

func (l *Level) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// SimPhase tracks the lifecycle of the simulation.
type SimPhase int

const (
	PhasePreStart SimPhase = iota
	PhaseCommitting
	PhaseCommitted
	PhaseExecuting
)

func (p SimPhase) String() string {
	switch p {
	case PhasePreStart:
		return "pre_start"
	case PhaseCommitting:
		return "committing"
	case PhaseCommitted:
		return "committed"
	case PhaseExecuting:
		return "executing"
	default:
		return "unknown"
	}
}

func (p SimPhase) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *SimPhase) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "pre_start":
		*p = PhasePreStart
	case "committing":
		*p = PhaseCommitting
	case "committed":
		*p = PhaseCommitted
	case "executing":
		*p = PhaseExecuting
	default:
		return fmt.Errorf("invalid phase %q", s)
	}
	return nil
}
