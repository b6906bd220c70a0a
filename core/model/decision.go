package model

// Decision is one append-only entry of the dispatch decision log.
type Decision struct {
	TruckID     string  `json:"truck_id"`
	Action      string  `json:"decision"`
	Explanation string  `json:"explanation"`
	Timestamp   float64 `json:"timestamp"`
}

// Decision actions recorded by the core.
const (
	DecisionMoving         = "MOVING"
	DecisionDelivered      = "DELIVERED"
	DecisionExtendRoute    = "EXTEND_ROUTE"
	DecisionReturning      = "RETURNING"
	DecisionBlocked        = "TRUCK_BLOCKED_BY_ROAD_BLOCK"
	DecisionUrgencyUpdated = "URGENCY_UPDATED"
	DecisionEmergency      = "EMERGENCY_ASSIGNED"
	DecisionInstruction    = "INSTRUCTION_SENT"
	DecisionOverrideClear  = "BLOCK_OVERRIDE_CLEAR_ROAD"
	DecisionOverrideReturn = "BLOCK_OVERRIDE_RETURN_TO_DEPOT"
	DecisionDisasterNew    = "DISASTER_CREATED"
	DecisionDisasterGone   = "DISASTER_REMOVED"
	DecisionInvariant      = "INVARIANT_VIOLATION"
)

// SystemTruckID marks decisions not tied to a specific truck.
const SystemTruckID = "SYSTEM"
