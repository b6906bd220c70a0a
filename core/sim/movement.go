package sim

import (
	"fmt"

	"github.com/shriram-s7/fleetdispatch/core/events"
	"github.com/shriram-s7/fleetdispatch/core/geo"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/world"
)

// Disaster fuel multipliers.
const rainFuelMultiplier = 1.1

// step advances one truck by one tick. A blocked truck does nothing until an
// operator override arrives.
func (s *Simulator) step(st *world.State, t *model.Truck) {
	if t.Blocked == model.BlockedWaitingOverride {
		return
	}
	switch t.Status {
	case model.StatusIdle:
		s.stepIdle(st, t)
	case model.StatusMoving:
		s.stepMoving(st, t)
	case model.StatusReturning:
		s.stepReturning(st, t)
	}
}

// stepIdle tries to obtain a destination: the current task if one was handed
// over (extension or escalation), else the queue head after a reorder, else a
// fresh selection. On success the leg is routed and locked.
func (s *Simulator) stepIdle(st *world.State, t *model.Truck) {
	if t.CurrentTask == nil {
		s.engine.ReorderQueue(st, t)
		if len(t.FutureQueue) > 0 {
			task := t.FutureQueue[0]
			t.FutureQueue = t.FutureQueue[1:]
			t.CurrentTask = &task
		} else if hubID, ok := s.engine.SelectNextHub(st, t); ok {
			h, _ := st.Hub(hubID)
			t.CurrentTask = &model.Task{
				HubID:         hubID,
				UrgencyWeight: h.DemandIntensity.UrgencyWeight(),
				AssignedAt:    st.Clock,
			}
		} else {
			return
		}
	}

	h, ok := st.Hub(t.CurrentTask.HubID)
	if !ok {
		t.CurrentTask = nil
		return
	}
	if h.OwnerTruckID != t.ID {
		st.Log(t.ID, model.DecisionInvariant,
			fmt.Sprintf("current task hub %s not owned by truck, dropping", h.ID))
		t.CurrentTask = nil
		return
	}

	r := s.fetchRoute(s.truckPos(t), hubPos(h))
	t.Route = r.Waypoints
	t.FullRoute = append([]model.LatLng(nil), r.Waypoints...)
	t.RouteIndex = 0
	t.Status = model.StatusMoving
	t.LastDecisionAt = st.Clock
	s.rebindRouteHazards(st, t)
	st.Log(t.ID, model.DecisionMoving,
		fmt.Sprintf("dispatched to hub %s (%.1f km)", h.ID, r.DistanceKm))
}

// rebindRouteHazards re-snaps every hazard bound to this truck onto its new
// leg. Segment indices are only meaningful against the polyline they were
// taken from; a re-routed truck would otherwise apply them at arbitrary
// points. Hazards the new leg no longer touches are unbound.
func (s *Simulator) rebindRouteHazards(st *world.State, t *model.Truck) {
	for _, d := range st.Disasters {
		if !d.Active || !d.Type.RouteAnchored() || d.RouteTruckID != t.ID {
			continue
		}
		start, end, snapped, dist := nearestSegmentOnRoute(t.FullRoute, d.Latitude, d.Longitude, d.RadiusKm)
		if dist > s.cfg.SnapThresholdKm {
			d.RouteTruckID = ""
			d.Snapped = nil
			d.SegmentStart, d.SegmentEnd = 0, 0
			continue
		}
		d.SegmentStart = start
		d.SegmentEnd = end
		d.Snapped = &snapped
	}
}

// stepMoving advances one waypoint toward the current hub, burns fuel under
// the active disaster multiplier and handles arrival.
func (s *Simulator) stepMoving(st *world.State, t *model.Truck) {
	if t.CurrentTask == nil || len(t.Route) == 0 {
		t.ClearRoute()
		t.Status = model.StatusIdle
		return
	}
	if s.advance(st, t) {
		s.arriveAtHub(st, t)
	}
}

// stepReturning advances along the depot-bound route; arrival refuels.
func (s *Simulator) stepReturning(st *world.State, t *model.Truck) {
	if len(t.Route) == 0 {
		s.arriveAtDepot(st, t)
		return
	}
	if s.advance(st, t) {
		s.arriveAtDepot(st, t)
	}
}

// advance moves the truck one waypoint forward and applies fuel and disaster
// effects. It returns true when the route is exhausted. A road block halts
// the truck instead.
func (s *Simulator) advance(st *world.State, t *model.Truck) bool {
	if t.RouteIndex >= len(t.Route)-1 {
		return true
	}
	prev := t.Route[t.RouteIndex]
	t.RouteIndex++
	cur := t.Route[t.RouteIndex]
	t.Latitude, t.Longitude = cur.Lat, cur.Lng

	segKm := geo.Haversine(prev.Lat, prev.Lng, cur.Lat, cur.Lng)
	mult, blockedBy := s.hazards(st, t)
	if blockedBy != "" {
		s.block(st, t, blockedBy)
		return false
	}

	cost := segKm * s.cfg.FuelRate * mult
	if cost > t.FuelRemaining {
		cost = t.FuelRemaining
	}
	t.FuelRemaining -= cost
	t.CurrentFuelUsed += cost

	return t.RouteIndex >= len(t.Route)-1
}

// hazards evaluates active disasters against the truck's new position.
// Rain acts by radius; traffic and road blocks bind to a specific truck's
// route segment, the same policy outbound and depot-bound. A road block
// whose radius swallows the truck without a segment binding is treated as an
// execution anomaly and still halts it.
func (s *Simulator) hazards(st *world.State, t *model.Truck) (mult float64, blockedBy string) {
	mult = 1.0
	for _, d := range st.Disasters {
		if !d.Active {
			continue
		}
		switch d.Type {
		case model.DisasterRain:
			if geo.Haversine(t.Latitude, t.Longitude, d.Latitude, d.Longitude) <= d.RadiusKm {
				mult *= rainFuelMultiplier
				t.Notify("Rain zone ahead, ETA may increase")
			}
		case model.DisasterTraffic:
			if s.onBoundSegment(d, t) {
				mult *= d.TrafficSeverity
				t.Notify("Traffic ahead, continuing on current route")
			}
		case model.DisasterRoadBlock:
			if s.onBoundSegment(d, t) {
				return mult, d.ID
			}
			if geo.Haversine(t.Latitude, t.Longitude, d.Latitude, d.Longitude) <= d.RadiusKm {
				st.Log(t.ID, model.DecisionInvariant,
					fmt.Sprintf("truck inside road block %s zone while moving, halting", d.ID))
				return mult, d.ID
			}
		}
	}
	return mult, ""
}

func (s *Simulator) onBoundSegment(d *model.Disaster, t *model.Truck) bool {
	return d.RouteTruckID == t.ID && t.RouteIndex >= d.SegmentStart && t.RouteIndex <= d.SegmentEnd
}

// block halts the truck until an operator override. Ownership of the current
// task is retained.
func (s *Simulator) block(st *world.State, t *model.Truck, disasterID string) {
	t.Status = model.StatusIdle
	t.Blocked = model.BlockedWaitingOverride
	t.ClearRoute()
	t.Notify(fmt.Sprintf("Road block %s on your route. Awaiting dispatch override.", disasterID))
	dec := st.Log(t.ID, model.DecisionBlocked,
		fmt.Sprintf("halted by road block %s, waiting for override", disasterID))
	s.bus.Publish(events.BlockedEvent{TruckID: t.ID, DisasterID: disasterID, Clock: dec.Timestamp})
	s.log.Warnf("truck %s blocked by %s", t.ID, disasterID)
}

// arriveAtHub delivers one demand unit and decides what happens next:
// extension, queue, or the trip home.
func (s *Simulator) arriveAtHub(st *world.State, t *model.Truck) {
	h, ok := st.Hub(t.CurrentTask.HubID)
	if !ok {
		t.CurrentTask = nil
		t.ClearRoute()
		t.Status = model.StatusIdle
		return
	}
	t.Latitude, t.Longitude = h.Latitude, h.Longitude
	t.ClearRoute()
	t.CurrentTask = nil
	t.Status = model.StatusIdle
	t.LastDecisionAt = st.Clock

	if h.DemandQuantity > 0 {
		h.DemandQuantity--
	}
	completed := h.DemandQuantity == 0
	if completed {
		if err := st.ReleaseHub(h.ID, true); err != nil {
			s.log.Errorf("release of delivered hub %s: %v", h.ID, err)
		}
	}
	st.Log(t.ID, model.DecisionDelivered,
		fmt.Sprintf("delivered 1 unit to hub %s (%d remaining)", h.ID, h.DemandQuantity))
	s.bus.Publish(events.DeliveryEvent{
		TruckID:   t.ID,
		HubID:     h.ID,
		Remaining: h.DemandQuantity,
		Completed: completed,
		Clock:     st.Clock,
	})

	if hubID, ok := s.engine.ExtendIfEfficient(st, t); ok {
		next, _ := st.Hub(hubID)
		t.CurrentTask = &model.Task{
			HubID:         hubID,
			UrgencyWeight: next.DemandIntensity.UrgencyWeight(),
			AssignedAt:    st.Clock,
		}
		st.Log(t.ID, model.DecisionExtendRoute,
			fmt.Sprintf("extending route to hub %s before depot return", hubID))
		return
	}
	if len(t.FutureQueue) > 0 {
		return
	}
	s.returnToDepot(st, t, "all tasks done, returning to depot")
}

// returnToDepot routes the truck home and transitions it to returning.
func (s *Simulator) returnToDepot(st *world.State, t *model.Truck, why string) {
	d := st.Depot()
	r := s.fetchRoute(s.truckPos(t), hubPos(d))
	t.Route = r.Waypoints
	t.FullRoute = append([]model.LatLng(nil), r.Waypoints...)
	t.RouteIndex = 0
	t.Status = model.StatusReturning
	s.rebindRouteHazards(st, t)
	st.Log(t.ID, model.DecisionReturning, why)
}

// arriveAtDepot snaps the truck home, refuels it fully and resets the trip
// counters.
func (s *Simulator) arriveAtDepot(st *world.State, t *model.Truck) {
	d := st.Depot()
	t.Latitude, t.Longitude = d.Latitude, d.Longitude
	t.Status = model.StatusIdle
	t.FuelRemaining = t.FuelCapacity
	t.CurrentFuelUsed = 0
	t.ClearRoute()
	t.LastDecisionAt = st.Clock
}
