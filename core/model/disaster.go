package model

import (
	"encoding/json"
	"fmt"
)

// DisasterType enumerates the supported hazards.
type DisasterType int

const (
	DisasterRain DisasterType = iota
	DisasterTraffic
	DisasterRoadBlock
)

func (t DisasterType) String() string {
	switch t {
	case DisasterRain:
		return "rain"
	case DisasterTraffic:
		return "traffic"
	case DisasterRoadBlock:
		return "road_block"
	default:
		return "unknown"
	}
}

// ParseDisasterType converts the wire representation to a DisasterType.
func ParseDisasterType(s string) (DisasterType, error) {
	switch s {
	case "rain":
		return DisasterRain, nil
	case "traffic":
		return DisasterTraffic, nil
	case "road_block":
		return DisasterRoadBlock, nil
	default:
		return 0, fmt.Errorf("invalid disaster type %q", s)
	}
}

// RouteAnchored reports whether the hazard binds to a route segment rather
// than acting by radius alone.
func (t DisasterType) RouteAnchored() bool {
	return t == DisasterTraffic || t == DisasterRoadBlock
}

func (t DisasterType) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *DisasterType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseDisasterType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Disaster is a transient hazard on the map. Traffic and road blocks bind to
// a specific truck's route segment; rain acts purely by radius.
type Disaster struct {
	ID        string       `json:"id"`
	Type      DisasterType `json:"disaster_type"`
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	RadiusKm  float64      `json:"radius_km"`
	Active    bool         `json:"active"`
	CreatedAt float64      `json:"created_at"`

	// TrafficSeverity is the fuel/speed multiplier for traffic hazards.
	TrafficSeverity float64 `json:"traffic_severity,omitempty"`

	// Route segment binding for route-anchored hazards. Empty RouteTruckID
	// means the hazard is unbound.
	RouteTruckID string  `json:"affected_route_id,omitempty"`
	SegmentStart int     `json:"affected_segment_start_idx"`
	SegmentEnd   int     `json:"affected_segment_end_idx"`
	Snapped      *LatLng `json:"snapped_coordinates,omitempty"`
}
