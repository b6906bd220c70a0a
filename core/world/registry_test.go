package world

import (
	"errors"
	"testing"

	"github.com/shriram-s7/fleetdispatch/core/model"
)

func testState() *State {
	st := newState(model.Hub{ID: "DEPOT", Latitude: 10.79, Longitude: 78.70})
	_ = st.AddHub(model.Hub{ID: "H1", DemandQuantity: 2, Availability: 20})
	_ = st.AddHub(model.Hub{ID: "H2", DemandQuantity: 1, Availability: 20})
	_ = st.AddTruck(model.Truck{ID: "T1", FuelCapacity: 100, FuelRemaining: 100, MaxCapacity: 10, Active: true})
	_ = st.AddTruck(model.Truck{ID: "T2", FuelCapacity: 100, FuelRemaining: 100, MaxCapacity: 10, Active: true})
	return st
}

func TestAssignGrantsExclusiveOwnership(t *testing.T) {
	st := testState()
	if err := st.AssignHub("H1", "T1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	h := st.Hubs["H1"]
	if h.OwnershipState != model.OwnershipAssigned || h.OwnerTruckID != "T1" {
		t.Fatalf("hub not assigned to T1: %+v", h)
	}

	err := st.AssignHub("H1", "T2")
	if !errors.Is(err, ErrOwnedByOther) {
		t.Fatalf("expected ownership violation, got %v", err)
	}
	if h.OwnerTruckID != "T1" {
		t.Fatalf("failed assign must not mutate owner")
	}
}

func TestAssignIdempotentForOwner(t *testing.T) {
	st := testState()
	if err := st.AssignHub("H1", "T1"); err != nil {
		t.Fatal(err)
	}
	if err := st.AssignHub("H1", "T1"); err != nil {
		t.Fatalf("re-assign to owner should succeed: %v", err)
	}
}

func TestAssignUnknownHub(t *testing.T) {
	st := testState()
	if err := st.AssignHub("nope", "T1"); !errors.Is(err, ErrHubNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReleaseCompleted(t *testing.T) {
	st := testState()
	_ = st.AssignHub("H1", "T1")
	if err := st.ReleaseHub("H1", true); err != nil {
		t.Fatal(err)
	}
	h := st.Hubs["H1"]
	if h.OwnershipState != model.OwnershipCompleted || !h.Delivered || h.OwnerTruckID != "" {
		t.Fatalf("completed release wrong: %+v", h)
	}
	if err := st.AssignHub("H1", "T2"); !errors.Is(err, ErrHubCompleted) {
		t.Fatalf("completed hub must never be re-assigned, got %v", err)
	}
}

func TestReleaseWithoutCompletion(t *testing.T) {
	st := testState()
	_ = st.AssignHub("H1", "T1")
	if err := st.ReleaseHub("H1", false); err != nil {
		t.Fatal(err)
	}
	h := st.Hubs["H1"]
	if h.OwnershipState != model.OwnershipUnassigned || h.Delivered || h.OwnerTruckID != "" {
		t.Fatalf("cancellation release wrong: %+v", h)
	}
}

func TestOwnedByIsExclusive(t *testing.T) {
	st := testState()
	_ = st.AssignHub("H1", "T1")
	_ = st.AssignHub("H2", "T2")
	t1 := st.OwnedBy("T1")
	t2 := st.OwnedBy("T2")
	if len(t1) != 1 || t1[0].ID != "H1" {
		t.Fatalf("T1 owned set wrong: %v", t1)
	}
	if len(t2) != 1 || t2[0].ID != "H2" {
		t.Fatalf("T2 owned set wrong: %v", t2)
	}
}

func TestHubAvailable(t *testing.T) {
	st := testState()
	if st.HubAvailable(st.Depot()) {
		t.Fatalf("depot must never be available")
	}
	if !st.HubAvailable(st.Hubs["H1"]) {
		t.Fatalf("H1 should be available")
	}
	_ = st.AssignHub("H1", "T1")
	if st.HubAvailable(st.Hubs["H1"]) {
		t.Fatalf("assigned hub must not be available")
	}
	st.Hubs["H2"].DemandQuantity = 0
	if st.HubAvailable(st.Hubs["H2"]) {
		t.Fatalf("zero-demand hub must not be available")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	st := testState()
	tr := st.Trucks["T1"]
	tr.FutureQueue = []model.Task{{HubID: "H1"}}
	snap := st.Snapshot()

	tr.FutureQueue[0].HubID = "changed"
	for _, s := range snap.Trucks {
		if s.ID == "T1" && s.FutureQueue[0].HubID != "H1" {
			t.Fatalf("snapshot shares queue memory with live state")
		}
	}
}

func TestNextLiveHubID(t *testing.T) {
	st := testState()
	id := st.NextLiveHubID()
	if id != "LIVE_1" {
		t.Fatalf("expected LIVE_1, got %s", id)
	}
	_ = st.AddHub(model.Hub{ID: "LIVE_1", DemandQuantity: 1})
	if id := st.NextLiveHubID(); id != "LIVE_2" {
		t.Fatalf("expected LIVE_2, got %s", id)
	}
}
