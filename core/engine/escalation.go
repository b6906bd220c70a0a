package engine

import (
	"fmt"

	"github.com/shriram-s7/fleetdispatch/core/geo"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/world"
)

// Escalation cost tuning. Queue length is penalized heavily so a nearby busy
// truck does not starve the emergency, and a truck that cannot change its
// destination now pays an interruption penalty.
const (
	queuePenaltyPerTask = 50.0
	unsafePointPenalty  = 100.0
)

// HandleEscalation reacts to a hub's demand intensity being raised to
// Emergency during execution. If the hub is already owned the owner's queue
// is refreshed; if it is unowned and not frozen, the cheapest feasible truck
// claims it. Returns the id of the truck now responsible, if any.
func (e *Engine) HandleEscalation(st *world.State, hubID string) (string, bool) {
	h, ok := st.Hub(hubID)
	if !ok || h.ID == st.DepotID {
		return "", false
	}

	switch h.OwnershipState {
	case model.OwnershipAssigned:
		owner, ok := st.Truck(h.OwnerTruckID)
		if !ok {
			return "", false
		}
		if owner.CurrentTask != nil && owner.CurrentTask.HubID == hubID {
			owner.CurrentTask.UrgencyWeight = h.DemandIntensity.UrgencyWeight()
		}
		for i := range owner.FutureQueue {
			if owner.FutureQueue[i].HubID == hubID {
				owner.FutureQueue[i].UrgencyWeight = h.DemandIntensity.UrgencyWeight()
			}
		}
		e.ReorderQueue(st, owner)
		st.Log(owner.ID, model.DecisionUrgencyUpdated,
			fmt.Sprintf("hub %s escalated to %s, queue re-prioritized", hubID, h.DemandIntensity))
		return owner.ID, true

	case model.OwnershipCompleted:
		return "", false
	}

	if h.FrozenAtCommit {
		// Frozen hubs carry committed ownership; an unowned one here is the
		// same execution-invariant violation SelectNextHub reports.
		e.log.Errorf("escalated frozen hub %s is UNASSIGNED", hubID)
		return "", false
	}
	if h.DemandQuantity <= 0 || h.Delivered {
		return "", false
	}

	var best *model.Truck
	bestCost := 0.0
	for _, id := range st.TruckIDs() {
		t, _ := st.Truck(id)
		if !t.Active || t.Blocked == model.BlockedWaitingOverride {
			continue
		}
		if !e.RoundTripFeasible(st, t, h) {
			continue
		}
		cost := geo.Haversine(t.Latitude, t.Longitude, h.Latitude, h.Longitude)
		cost += queuePenaltyPerTask * float64(len(t.FutureQueue))
		if !e.AtSafeDecisionPoint(st, t) {
			cost += unsafePointPenalty
		}
		if best == nil || cost < bestCost {
			best = t
			bestCost = cost
		}
	}
	if best == nil {
		e.log.Warnf("no feasible truck for escalated hub %s", hubID)
		return "", false
	}

	if err := st.AssignHub(hubID, best.ID); err != nil {
		e.log.Warnf("escalation claim on hub %s by truck %s failed: %v", hubID, best.ID, err)
		return "", false
	}

	task := model.Task{
		HubID:         hubID,
		UrgencyWeight: h.DemandIntensity.UrgencyWeight(),
		AssignedAt:    st.Clock,
	}
	if best.CurrentTask == nil && e.AtSafeDecisionPoint(st, best) {
		best.CurrentTask = &task
	} else {
		best.FutureQueue = append(best.FutureQueue, task)
		e.ReorderQueue(st, best)
	}
	st.Log(best.ID, model.DecisionEmergency,
		fmt.Sprintf("claimed escalated hub %s (cost=%.1f)", hubID, bestCost))
	e.log.Infof("truck %s claimed escalated hub %s (cost=%.1f)", best.ID, hubID, bestCost)
	return best.ID, true
}
