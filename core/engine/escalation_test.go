package engine

import (
	"testing"

	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/world"
	"github.com/shriram-s7/fleetdispatch/infra/logger"
)

func TestHandleEscalationReordersOwnerQueue(t *testing.T) {
	e := New(0.1, logger.NopLogger{})
	w := newWorld(t, []model.Truck{truck("T1")}, []model.Hub{
		hub("A", 10.9, 78.8, 2, model.LevelLow, model.LevelLow),
		hub("B", 10.95, 78.85, 2, model.LevelLow, model.LevelLow),
	})
	w.Mutate(func(st *world.State) {
		if err := st.AssignHub("A", "T1"); err != nil {
			t.Fatal(err)
		}
		if err := st.AssignHub("B", "T1"); err != nil {
			t.Fatal(err)
		}
		tr, _ := st.Truck("T1")
		tr.FutureQueue = []model.Task{
			{HubID: "A", UrgencyWeight: 1},
			{HubID: "B", UrgencyWeight: 1},
		}

		h, _ := st.Hub("B")
		h.DemandIntensity = model.LevelEmergency
		id, ok := e.HandleEscalation(st, "B")
		if !ok || id != "T1" {
			t.Fatalf("escalation = %q/%v, want owner T1", id, ok)
		}
		if tr.FutureQueue[0].HubID != "B" {
			t.Errorf("queue head = %s, want escalated B", tr.FutureQueue[0].HubID)
		}
		last := st.Decisions[len(st.Decisions)-1]
		if last.Action != model.DecisionUrgencyUpdated {
			t.Errorf("logged %s, want %s", last.Action, model.DecisionUrgencyUpdated)
		}
	})
}

func TestHandleEscalationClaimsCheapestTruck(t *testing.T) {
	e := New(0.1, logger.NopLogger{})
	busy := truck("T1")
	free := truck("T2")
	w := newWorld(t, []model.Truck{busy, free}, []model.Hub{
		hub("E", 10.9, 78.8, 2, model.LevelEmergency, model.LevelEmergency),
	})
	w.Mutate(func(st *world.State) {
		// Same position, but T1 carries queued work; the queue penalty
		// steers the emergency to the free truck.
		tr1, _ := st.Truck("T1")
		tr1.FutureQueue = []model.Task{{HubID: "X", UrgencyWeight: 1}, {HubID: "Y", UrgencyWeight: 1}}

		id, ok := e.HandleEscalation(st, "E")
		if !ok || id != "T2" {
			t.Fatalf("escalation claimed by %q, want idle T2", id)
		}
		h, _ := st.Hub("E")
		if h.OwnerTruckID != "T2" {
			t.Fatalf("hub owner = %q, want T2", h.OwnerTruckID)
		}
		tr2, _ := st.Truck("T2")
		if tr2.CurrentTask == nil || tr2.CurrentTask.HubID != "E" {
			t.Fatalf("idle claimer should take the task immediately: %+v", tr2.CurrentTask)
		}
	})
}

func TestHandleEscalationSkipsBlockedAndInfeasibleTrucks(t *testing.T) {
	e := New(0.1, logger.NopLogger{})
	blocked := truck("T1")
	blocked.Blocked = model.BlockedWaitingOverride
	dry := truck("T2")
	dry.FuelRemaining = 1
	w := newWorld(t, []model.Truck{blocked, dry}, []model.Hub{
		hub("E", 11.5, 79.5, 2, model.LevelEmergency, model.LevelEmergency),
	})
	w.Mutate(func(st *world.State) {
		if id, ok := e.HandleEscalation(st, "E"); ok {
			t.Fatalf("escalation claimed by %q, want no feasible truck", id)
		}
		h, _ := st.Hub("E")
		if h.OwnershipState != model.OwnershipUnassigned {
			t.Fatalf("hub state = %v, want UNASSIGNED", h.OwnershipState)
		}
	})
}
