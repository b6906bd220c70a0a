// Package engine implements the per-truck local decision logic: safe decision
// point detection, hub scoring, selection, route extension and task queue
// reordering. Decisions are deliberately myopic; no global optimum is sought.
package engine

import (
	"math"
	"sort"

	"github.com/shriram-s7/fleetdispatch/core/geo"
	"github.com/shriram-s7/fleetdispatch/core/logger"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/world"
)

// DefaultDepotTolerance is the coordinate tolerance, in degrees, for the
// "stationary at depot" predicate.
const DefaultDepotTolerance = 0.01

// extensionMargin is the clustering preference: a fresh claim after a
// delivery is only considered when the marginal distance is below this
// fraction of serving the hub with a new truck from the depot.
const extensionMargin = 0.8

type Engine struct {
	fuelRate float64
	depotTol float64
	log      logger.Logger
}

// New creates an Engine. fuelRate is the fleet-wide fuel consumption per km.
func New(fuelRate float64, log logger.Logger) *Engine {
	return &Engine{fuelRate: fuelRate, depotTol: DefaultDepotTolerance, log: log}
}

// AtSafeDecisionPoint reports whether the truck's destination may be
// (re)chosen: idle, or stationary at the depot. Never true while moving; the
// destination is locked for the whole leg.
func (e *Engine) AtSafeDecisionPoint(st *world.State, t *model.Truck) bool {
	if t.Status == model.StatusMoving {
		return false
	}
	if t.Status == model.StatusIdle {
		return true
	}
	d := st.Depot()
	return math.Abs(t.Latitude-d.Latitude) < e.depotTol &&
		math.Abs(t.Longitude-d.Longitude) < e.depotTol
}

// Score evaluates a candidate hub from the truck's current position. Higher
// is better.
func (e *Engine) Score(t *model.Truck, h *model.Hub) float64 {
	dist := geo.Haversine(t.Latitude, t.Longitude, h.Latitude, h.Longitude)
	gain := h.DemandPriority.PriorityWeight() * h.DemandIntensity.UrgencyWeight()
	return gain - 0.5*dist - dist*e.fuelRate*t.FuelEfficiency
}

// RoundTripFeasible is the hard fuel constraint: the truck must be able to
// reach the hub and still return to the depot.
func (e *Engine) RoundTripFeasible(st *world.State, t *model.Truck, h *model.Hub) bool {
	d := st.Depot()
	toHub := geo.Haversine(t.Latitude, t.Longitude, h.Latitude, h.Longitude)
	toDepot := geo.Haversine(h.Latitude, h.Longitude, d.Latitude, d.Longitude)
	return (toHub+toDepot)*e.fuelRate <= t.FuelRemaining
}

// bestOwned returns the highest-scoring hub the truck already owns that still
// has demand and passes the fuel check.
func (e *Engine) bestOwned(st *world.State, t *model.Truck) (*model.Hub, bool) {
	var best *model.Hub
	bestScore := math.Inf(-1)
	for _, h := range st.OwnedBy(t.ID) {
		if h.DemandQuantity <= 0 || h.Delivered {
			continue
		}
		if !e.RoundTripFeasible(st, t, h) {
			continue
		}
		if s := e.Score(t, h); s > bestScore {
			bestScore = s
			best = h
		}
	}
	return best, best != nil
}

// SelectNextHub picks the next hub for the truck, callable only at a safe
// decision point. Owned hubs are served first; otherwise the truck claims the
// best available non-frozen hub through the ownership registry. A lost claim
// race yields no selection rather than a retry.
func (e *Engine) SelectNextHub(st *world.State, t *model.Truck) (string, bool) {
	if !e.AtSafeDecisionPoint(st, t) {
		return "", false
	}

	if h, ok := e.bestOwned(st, t); ok {
		return h.ID, true
	}

	var best *model.Hub
	bestScore := math.Inf(-1)
	for _, h := range st.HubsSorted() {
		if !st.HubAvailable(h) {
			continue
		}
		if h.FrozenAtCommit {
			// Frozen hubs were committed with an owner; finding one
			// UNASSIGNED is an execution-invariant violation.
			e.log.Errorf("frozen hub %s is UNASSIGNED during execution", h.ID)
			continue
		}
		if !e.RoundTripFeasible(st, t, h) {
			continue
		}
		if s := e.Score(t, h); s > bestScore {
			bestScore = s
			best = h
		}
	}
	if best == nil {
		return "", false
	}
	if err := st.AssignHub(best.ID, t.ID); err != nil {
		e.log.Warnf("truck %s lost claim on hub %s: %v", t.ID, best.ID, err)
		return "", false
	}
	e.log.Infof("truck %s claimed hub %s (score=%.2f intensity=%s)", t.ID, best.ID, bestScore, best.DemandIntensity)
	return best.ID, true
}

// ExtendIfEfficient decides, right after a delivery, whether to serve another
// hub before returning to the depot. Owned hubs win over fresh claims; fresh
// claims must beat the depot-dispatch cost by the extension margin.
func (e *Engine) ExtendIfEfficient(st *world.State, t *model.Truck) (string, bool) {
	if !e.AtSafeDecisionPoint(st, t) {
		return "", false
	}
	d := st.Depot()
	toDepot := geo.Haversine(t.Latitude, t.Longitude, d.Latitude, d.Longitude)
	reserve := t.FuelRemaining - toDepot*e.fuelRate
	if reserve <= 0 {
		return "", false
	}

	if h, ok := e.bestOwned(st, t); ok {
		return h.ID, true
	}

	var best *model.Hub
	bestScore := math.Inf(-1)
	for _, h := range st.HubsSorted() {
		if !st.HubAvailable(h) || h.FrozenAtCommit {
			continue
		}
		if !e.RoundTripFeasible(st, t, h) {
			continue
		}
		marginal := geo.Haversine(t.Latitude, t.Longitude, h.Latitude, h.Longitude)
		fresh := geo.Haversine(h.Latitude, h.Longitude, d.Latitude, d.Longitude)
		if marginal >= fresh*extensionMargin {
			continue
		}
		if s := e.Score(t, h); s > bestScore {
			bestScore = s
			best = h
		}
	}
	if best == nil {
		return "", false
	}
	if err := st.AssignHub(best.ID, t.ID); err != nil {
		e.log.Warnf("truck %s could not claim extension hub %s: %v", t.ID, best.ID, err)
		return "", false
	}
	return best.ID, true
}

// ReorderQueue drops tasks for hubs the truck no longer owns, refreshes each
// remaining task's urgency weight from the hub's live intensity and sorts the
// queue most urgent first. Callable only at a safe decision point.
func (e *Engine) ReorderQueue(st *world.State, t *model.Truck) {
	if !e.AtSafeDecisionPoint(st, t) {
		return
	}
	if len(t.FutureQueue) == 0 {
		return
	}

	valid := t.FutureQueue[:0]
	for _, task := range t.FutureQueue {
		h, ok := st.Hub(task.HubID)
		if !ok || h.OwnershipState != model.OwnershipAssigned || h.OwnerTruckID != t.ID {
			e.log.Warnf("dropping task for hub %s from truck %s queue: not owned", task.HubID, t.ID)
			continue
		}
		task.UrgencyWeight = h.DemandIntensity.UrgencyWeight()
		valid = append(valid, task)
	}
	t.FutureQueue = valid

	sort.SliceStable(t.FutureQueue, func(i, j int) bool {
		return t.FutureQueue[i].UrgencyWeight > t.FutureQueue[j].UrgencyWeight
	})

	if !e.queueFuelFeasible(st, t) {
		e.log.Warnf("truck %s queue may exceed fuel after reordering", t.ID)
	}
}

// queueFuelFeasible walks the current task plus queue in order and checks the
// cumulative fuel cost against the remaining fuel.
func (e *Engine) queueFuelFeasible(st *world.State, t *model.Truck) bool {
	lat, lng := t.Latitude, t.Longitude
	total := 0.0
	visit := func(hubID string) {
		h, ok := st.Hub(hubID)
		if !ok {
			return
		}
		total += geo.Haversine(lat, lng, h.Latitude, h.Longitude)
		lat, lng = h.Latitude, h.Longitude
	}
	if t.CurrentTask != nil {
		visit(t.CurrentTask.HubID)
	}
	for _, task := range t.FutureQueue {
		visit(task.HubID)
	}
	return total*e.fuelRate <= t.FuelRemaining
}
