// Package planner implements the two-phase commit that turns the pre-start
// demand picture into frozen hub ownership and per-truck route plans. Commit
// either assigns every demand hub or rolls the world back untouched.
package planner

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/shriram-s7/fleetdispatch/core/geo"
	"github.com/shriram-s7/fleetdispatch/core/logger"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/world"
)

// CorridorWidthDeg is the angular width of one planning corridor around the
// depot. Hubs in the same corridor are offered to the same truck so routes
// radiate outward instead of zig-zagging.
const CorridorWidthDeg = 30.0

// ErrNoFeasibleTruck reports a commit validation failure: at least one demand
// hub cannot be served by any truck under capacity and round-trip fuel
// constraints.
var ErrNoFeasibleTruck = errors.New("no feasible truck for demand hub")

type Planner struct {
	fuelRate float64
	log      logger.Logger
}

func New(fuelRate float64, log logger.Logger) *Planner {
	return &Planner{fuelRate: fuelRate, log: log}
}

// plannedTruck is the planner's working view of a truck: remaining slot
// capacity, projected fuel and the position of its last planned stop.
type plannedTruck struct {
	truck *model.Truck
	cap   int
	dist  float64 // km already planned
	lat   float64
	lng   float64
}

// Commit runs the two-phase assignment. Phase one proposes hub-to-truck
// allocations per angular corridor with a nearest-truck fallback; phase two
// validates that every demand hub found an owner. On success hub ownership is
// frozen for the run; on failure the world is restored and an error returned.
func (p *Planner) Commit(st *world.State) error {
	before := st.Snapshot()
	st.Phase = model.PhaseCommitting
	p.reset(st)

	trucks := make([]*plannedTruck, 0, len(st.Trucks))
	for _, t := range st.ActiveTrucks() {
		trucks = append(trucks, &plannedTruck{
			truck: t,
			cap:   t.MaxCapacity,
			lat:   t.Latitude,
			lng:   t.Longitude,
		})
	}

	var unplaced []*model.Hub
	for _, corridor := range p.corridors(st) {
		for _, h := range corridor {
			if !p.place(st, trucks, h) {
				unplaced = append(unplaced, h)
			}
		}
	}
	// Fallback pass: corridor packing is a heuristic, left-over hubs get the
	// nearest truck that can still take them.
	for _, h := range unplaced {
		if !p.place(st, trucks, h) {
			st.Log(model.SystemTruckID, model.DecisionInvariant,
				fmt.Sprintf("commit failed: hub %s has no feasible truck", h.ID))
			st.Restore(before)
			p.log.Errorf("commit validation failed at hub %s, rolled back", h.ID)
			return fmt.Errorf("commit hub %s: %w", h.ID, ErrNoFeasibleTruck)
		}
	}

	if err := p.validate(st); err != nil {
		st.Log(model.SystemTruckID, model.DecisionInvariant, "commit failed: "+err.Error())
		st.Restore(before)
		p.log.Errorf("commit validation failed: %v, rolled back", err)
		return err
	}

	st.InitialDemand = st.InitialDemand[:0]
	for _, h := range st.DemandHubs() {
		h.FrozenAtCommit = true
		st.InitialDemand = append(st.InitialDemand, h.ID)
	}
	st.HubsFrozen = true
	st.Phase = model.PhaseCommitted
	st.Log(model.SystemTruckID, "COMMIT",
		fmt.Sprintf("committed %d hubs across %d trucks", len(st.InitialDemand), len(trucks)))
	p.log.Infof("commit complete: %d hubs frozen", len(st.InitialDemand))
	return nil
}

// reset clears any earlier plan: non-completed hubs return to UNASSIGNED and
// trucks drop their route plans and queues.
func (p *Planner) reset(st *world.State) {
	for _, h := range st.HubsSorted() {
		if h.ID == st.DepotID || h.OwnershipState == model.OwnershipCompleted {
			continue
		}
		h.OwnershipState = model.OwnershipUnassigned
		h.OwnerTruckID = ""
		h.FrozenAtCommit = false
	}
	for _, id := range st.TruckIDs() {
		t := st.Trucks[id]
		t.RoutePlan = nil
		t.CurrentTask = nil
		t.FutureQueue = nil
		t.ClearRoute()
		t.Status = model.StatusIdle
	}
	st.HubsFrozen = false
	st.InitialDemand = nil
}

// corridors buckets demand hubs into angular bins around the depot. Within a
// bin the highest priority class goes first, ties broken by distance from
// the depot so the truck sweeps outward. Intensity plays no role here; it
// only matters once execution reorders live queues.
func (p *Planner) corridors(st *world.State) [][]*model.Hub {
	depot := st.Depot()
	bins := map[int][]*model.Hub{}
	for _, h := range st.DemandHubs() {
		if h.DeliverableUnits() <= 0 {
			continue
		}
		angle := math.Atan2(h.Latitude-depot.Latitude, h.Longitude-depot.Longitude) * 180 / math.Pi
		if angle < 0 {
			angle += 360
		}
		bin := int(math.Round(angle/CorridorWidthDeg)) % int(360/CorridorWidthDeg)
		bins[bin] = append(bins[bin], h)
	}
	keys := make([]int, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([][]*model.Hub, 0, len(keys))
	for _, k := range keys {
		hubs := bins[k]
		sort.SliceStable(hubs, func(i, j int) bool {
			if hubs[i].DemandPriority != hubs[j].DemandPriority {
				return hubs[i].DemandPriority > hubs[j].DemandPriority
			}
			di := geo.Haversine(depot.Latitude, depot.Longitude, hubs[i].Latitude, hubs[i].Longitude)
			dj := geo.Haversine(depot.Latitude, depot.Longitude, hubs[j].Latitude, hubs[j].Longitude)
			return di < dj
		})
		out = append(out, hubs)
	}
	return out
}

// place assigns hub h to the cheapest truck that has slot capacity and can
// still make the round trip. Returns false when no truck qualifies.
func (p *Planner) place(st *world.State, trucks []*plannedTruck, h *model.Hub) bool {
	if h.OwnershipState != model.OwnershipUnassigned {
		return true
	}
	units := h.DeliverableUnits()
	depot := st.Depot()
	hubToDepot := geo.Haversine(h.Latitude, h.Longitude, depot.Latitude, depot.Longitude)

	costs := make([]float64, len(trucks))
	for i, pt := range trucks {
		costs[i] = math.Inf(1)
		if pt.cap < units {
			continue
		}
		toHub := geo.Haversine(pt.lat, pt.lng, h.Latitude, h.Longitude)
		if (pt.dist+toHub+hubToDepot)*p.fuelRate > pt.truck.FuelRemaining {
			continue
		}
		costs[i] = toHub
	}
	if len(costs) == 0 {
		return false
	}
	best := floats.MinIdx(costs)
	if math.IsInf(costs[best], 1) {
		return false
	}

	pt := trucks[best]
	if err := st.AssignHub(h.ID, pt.truck.ID); err != nil {
		p.log.Errorf("commit assign %s to %s: %v", h.ID, pt.truck.ID, err)
		return false
	}
	for i := 0; i < units; i++ {
		pt.truck.RoutePlan = append(pt.truck.RoutePlan, h.ID)
	}
	pt.cap -= units
	pt.dist += costs[best]
	pt.lat, pt.lng = h.Latitude, h.Longitude
	p.log.Debugf("planned hub %s -> truck %s (%d units, %.1f km)", h.ID, pt.truck.ID, units, costs[best])
	return true
}

// validate is the commit barrier: every hub with deliverable demand must be
// ASSIGNED, and every planned slot must reference a hub its truck owns.
func (p *Planner) validate(st *world.State) error {
	for _, h := range st.DemandHubs() {
		if h.DeliverableUnits() > 0 && h.OwnershipState != model.OwnershipAssigned {
			return fmt.Errorf("hub %s unassigned after planning: %w", h.ID, ErrNoFeasibleTruck)
		}
	}
	for _, id := range st.TruckIDs() {
		t := st.Trucks[id]
		for _, hubID := range t.RoutePlan {
			h, ok := st.Hub(hubID)
			if !ok || h.OwnerTruckID != t.ID {
				return fmt.Errorf("truck %s plans hub %s it does not own", t.ID, hubID)
			}
		}
	}
	return nil
}
