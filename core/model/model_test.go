package model

import (
	"encoding/json"
	"testing"
)

func TestLevelWeights(t *testing.T) {
	if LevelEmergency.PriorityWeight() != 5 || LevelLow.PriorityWeight() != 1 {
		t.Fatalf("priority weights wrong")
	}
	if LevelEmergency.UrgencyWeight() != 10 || LevelHigh.UrgencyWeight() != 4 {
		t.Fatalf("urgency weights wrong")
	}
}

func TestParseLevelInvalid(t *testing.T) {
	if _, err := ParseLevel("urgent"); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestBlockedStatusJSON(t *testing.T) {
	b, err := json.Marshal(BlockedWaitingOverride)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"BLOCKED_WAITING_OVERRIDE"` {
		t.Fatalf("unexpected marshal: %s", b)
	}
	if b, _ := json.Marshal(BlockedNone); string(b) != "null" {
		t.Fatalf("none should marshal to null, got %s", b)
	}
	var s BlockedStatus
	if err := json.Unmarshal([]byte("null"), &s); err != nil || s != BlockedNone {
		t.Fatalf("null should unmarshal to BlockedNone")
	}
}

func TestHubDeliverableUnits(t *testing.T) {
	h := Hub{DemandQuantity: 5, Availability: 3}
	if h.DeliverableUnits() != 3 {
		t.Fatalf("availability should cap units")
	}
	h.Availability = 100
	if h.DeliverableUnits() != 5 {
		t.Fatalf("demand should cap units")
	}
}

func TestTruckNotifyDeduplicates(t *testing.T) {
	var tr Truck
	tr.Notify("Rain zone ahead")
	tr.Notify("Rain zone ahead")
	if len(tr.Notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(tr.Notifications))
	}
}

func TestTruckValidate(t *testing.T) {
	tr := Truck{ID: "T1", FuelCapacity: 100, MaxCapacity: 10}
	if err := tr.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr.FuelCapacity = 0
	if err := tr.Validate(); err == nil {
		t.Fatalf("expected error for zero fuel capacity")
	}
}
