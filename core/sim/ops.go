package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/shriram-s7/fleetdispatch/core/events"
	"github.com/shriram-s7/fleetdispatch/core/geo"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/world"
)

var (
	ErrHubsFrozen       = errors.New("hubs are frozen after commit")
	ErrHubNotFound      = errors.New("hub not found")
	ErrTruckNotFound    = errors.New("truck not found")
	ErrTruckNotBlocked  = errors.New("truck is not blocked")
	ErrNoRouteInRange   = errors.New("no active route within snap threshold")
	ErrInvalidOverride  = errors.New("invalid override action")
	ErrDisasterNotFound = errors.New("disaster not found")
)

// LoadFleet replaces the truck registry with freshly ingested records.
// Rejected while the simulation is running.
func (s *Simulator) LoadFleet(trucks []model.Truck) (int, error) {
	var opErr error
	count := 0
	s.mutate(func(st *world.State) {
		if st.Running {
			opErr = ErrAlreadyRunning
			return
		}
		for _, id := range st.TruckIDs() {
			delete(st.Trucks, id)
		}
		for _, t := range trucks {
			if err := st.AddTruck(t); err != nil {
				opErr = err
				return
			}
			count++
		}
	})
	if opErr != nil {
		return 0, opErr
	}
	return count, nil
}

// SeedSet is the fixed demand set used to bootstrap demos and tests.
func SeedSet() []model.Hub {
	return []model.Hub{
		{ID: "HUB_CHENNAI", Name: "Chennai", Latitude: 13.0827, Longitude: 80.2707,
			DemandQuantity: 20, DemandPriority: model.LevelHigh, DemandIntensity: model.LevelHigh},
		{ID: "HUB_COIMBATORE", Name: "Coimbatore", Latitude: 11.0168, Longitude: 76.9558,
			DemandQuantity: 15, DemandPriority: model.LevelMedium, DemandIntensity: model.LevelMedium},
		{ID: "HUB_MADURAI", Name: "Madurai", Latitude: 9.9252, Longitude: 78.1198,
			DemandQuantity: 10, DemandPriority: model.LevelMedium, DemandIntensity: model.LevelLow},
	}
}

// CreateHub registers a new demand hub. Rejected once hubs are frozen by a
// successful commit. An empty id gets a generated live id.
func (s *Simulator) CreateHub(h model.Hub) (model.Hub, error) {
	var out model.Hub
	var opErr error
	s.mutate(func(st *world.State) {
		if st.HubsFrozen {
			opErr = ErrHubsFrozen
			return
		}
		if h.ID == "" {
			h.ID = st.NextLiveHubID()
		}
		if err := st.AddHub(h); err != nil {
			opErr = err
			return
		}
		added, _ := st.Hub(h.ID)
		out = *added
	})
	return out, opErr
}

// SeedHubs replaces every non-depot hub with the given fixed set. Rejected
// once hubs are frozen.
func (s *Simulator) SeedHubs(hubs []model.Hub) error {
	var opErr error
	s.mutate(func(st *world.State) {
		if st.HubsFrozen {
			opErr = ErrHubsFrozen
			return
		}
		for _, h := range st.HubsSorted() {
			if h.ID != st.DepotID {
				st.RemoveHub(h.ID)
			}
		}
		for _, h := range hubs {
			if err := st.AddHub(h); err != nil {
				opErr = err
				return
			}
		}
	})
	return opErr
}

// DeleteHub removes a hub. Ownership is released without completion, every
// truck drops its tasks for the hub, and a truck currently driving there is
// recalled to idle. No re-commit happens; frozen plans stay frozen.
func (s *Simulator) DeleteHub(hubID string) error {
	var opErr error
	s.mutate(func(st *world.State) {
		h, ok := st.Hub(hubID)
		if !ok {
			opErr = ErrHubNotFound
			return
		}
		if h.OwnershipState == model.OwnershipAssigned {
			if err := st.ReleaseHub(hubID, false); err != nil {
				s.log.Errorf("release on hub delete: %v", err)
			}
		}
		for _, id := range st.TruckIDs() {
			t := st.Trucks[id]
			kept := t.FutureQueue[:0]
			for _, task := range t.FutureQueue {
				if task.HubID != hubID {
					kept = append(kept, task)
				}
			}
			t.FutureQueue = kept
			if t.CurrentTask != nil && t.CurrentTask.HubID == hubID {
				t.CurrentTask = nil
				if t.Status == model.StatusMoving {
					t.ClearRoute()
					t.Status = model.StatusIdle
					st.Log(t.ID, model.DecisionInvariant,
						fmt.Sprintf("destination hub %s deleted mid-leg, recalled to idle", hubID))
				}
			}
		}
		st.RemoveHub(hubID)
	})
	return opErr
}

// UpdateDemand sets a hub's demand quantity and priority class. Rejected for
// frozen hubs; the committed demand picture does not shift under the plan.
func (s *Simulator) UpdateDemand(hubID string, quantity int, priority model.Level) error {
	var opErr error
	s.mutate(func(st *world.State) {
		h, ok := st.Hub(hubID)
		if !ok {
			opErr = ErrHubNotFound
			return
		}
		if h.FrozenAtCommit {
			opErr = ErrHubsFrozen
			return
		}
		if quantity < 0 {
			opErr = fmt.Errorf("demand quantity must not be negative")
			return
		}
		h.DemandQuantity = quantity
		h.DemandPriority = priority
		h.Delivered = h.Delivered && quantity == 0
	})
	return opErr
}

// UpdateIntensity sets a hub's live demand intensity. Raising it while the
// simulation executes triggers the escalation handler synchronously.
func (s *Simulator) UpdateIntensity(hubID string, intensity model.Level) error {
	var opErr error
	var claimed events.EscalationEvent
	s.mutate(func(st *world.State) {
		h, ok := st.Hub(hubID)
		if !ok {
			opErr = ErrHubNotFound
			return
		}
		raised := intensity > h.DemandIntensity
		h.DemandIntensity = intensity
		if raised && st.Running {
			if truckID, ok := s.engine.HandleEscalation(st, hubID); ok {
				claimed = events.EscalationEvent{HubID: hubID, TruckID: truckID, Clock: st.Clock}
			}
		}
	})
	if opErr == nil && claimed.TruckID != "" {
		s.bus.Publish(claimed)
	}
	return opErr
}

// CreateDisaster validates and registers a hazard. Route-anchored types
// (traffic, road block) snap to the nearest active route segment within the
// snap threshold and are rejected when no route is close enough. The affected
// driver gets a notification.
func (s *Simulator) CreateDisaster(d model.Disaster) (model.Disaster, error) {
	var out model.Disaster
	var opErr error
	s.mutate(func(st *world.State) {
		d.ID = uuid.NewString()
		d.Active = true
		d.CreatedAt = st.Clock
		if d.Type == model.DisasterTraffic && d.TrafficSeverity <= 0 {
			d.TrafficSeverity = 1.5
		}

		if d.Type.RouteAnchored() {
			truckID, start, end, snapped, dist := s.nearestRouteSegment(st, d.Latitude, d.Longitude, d.RadiusKm)
			if truckID == "" || dist > s.cfg.SnapThresholdKm {
				opErr = fmt.Errorf("%s at (%.4f, %.4f): %w", d.Type, d.Latitude, d.Longitude, ErrNoRouteInRange)
				return
			}
			d.RouteTruckID = truckID
			d.SegmentStart = start
			d.SegmentEnd = end
			d.Snapped = &snapped
			if t, ok := st.Truck(truckID); ok {
				t.Notify(fmt.Sprintf("%s reported on your route.", d.Type))
			}
		}

		disaster := d
		st.Disasters = append(st.Disasters, &disaster)
		st.Log(model.SystemTruckID, model.DecisionDisasterNew,
			fmt.Sprintf("%s %s at (%.4f, %.4f) radius %.1f km", d.Type, d.ID, d.Latitude, d.Longitude, d.RadiusKm))
		out = disaster
	})
	return out, opErr
}

// nearestRouteSegment scans every moving or returning truck's full route for
// the segment closest to the given point. The affected index range covers
// all waypoints inside the hazard radius, at minimum the nearest segment.
func (s *Simulator) nearestRouteSegment(st *world.State, lat, lng, radiusKm float64) (truckID string, start, end int, snapped model.LatLng, best float64) {
	best = math.Inf(1)
	for _, id := range st.TruckIDs() {
		t := st.Trucks[id]
		st2, en2, sn2, dist := nearestSegmentOnRoute(t.FullRoute, lat, lng, radiusKm)
		if dist < best {
			best = dist
			truckID = id
			start, end = st2, en2
			snapped = sn2
		}
	}
	if truckID == "" {
		return "", 0, 0, model.LatLng{}, best
	}
	return truckID, start, end, snapped, best
}

// nearestSegmentOnRoute finds the route segment closest to the point and
// widens the affected index range to every waypoint inside the radius.
// Returns +Inf distance for routes too short to have a segment.
func nearestSegmentOnRoute(route []model.LatLng, lat, lng, radiusKm float64) (start, end int, snapped model.LatLng, best float64) {
	best = math.Inf(1)
	if len(route) < 2 {
		return 0, 0, model.LatLng{}, best
	}
	for i := 0; i < len(route)-1; i++ {
		a, b := route[i], route[i+1]
		dist, cLat, cLng := geo.PointToSegment(lat, lng, a.Lat, a.Lng, b.Lat, b.Lng)
		if dist < best {
			best = dist
			start, end = i, i+1
			snapped = model.LatLng{Lat: cLat, Lng: cLng}
		}
	}
	for start > 0 {
		wp := route[start-1]
		if geo.Haversine(lat, lng, wp.Lat, wp.Lng) > radiusKm {
			break
		}
		start--
	}
	for end < len(route)-1 {
		wp := route[end+1]
		if geo.Haversine(lat, lng, wp.Lat, wp.Lng) > radiusKm {
			break
		}
		end++
	}
	return start, end, snapped, best
}

// RemoveDisaster deletes a hazard by id.
func (s *Simulator) RemoveDisaster(id string) error {
	var opErr error
	s.mutate(func(st *world.State) {
		if !st.RemoveDisaster(id) {
			opErr = ErrDisasterNotFound
			return
		}
		st.Log(model.SystemTruckID, model.DecisionDisasterGone, fmt.Sprintf("disaster %s removed", id))
	})
	return opErr
}

// SendInstruction attaches a free-text operator instruction to a truck.
func (s *Simulator) SendInstruction(truckID, text string) (model.Instruction, error) {
	var out model.Instruction
	var opErr error
	s.mutate(func(st *world.State) {
		t, ok := st.Truck(truckID)
		if !ok {
			opErr = ErrTruckNotFound
			return
		}
		ins := model.Instruction{ID: uuid.NewString(), Text: text, Status: model.InstructionActive}
		t.Instruction = &ins
		st.Log(truckID, model.DecisionInstruction, fmt.Sprintf("operator instruction: %s", text))
		out = ins
	})
	return out, opErr
}

// AckInstruction marks the truck's active instruction as acknowledged by the
// driver.
func (s *Simulator) AckInstruction(truckID string) error {
	var opErr error
	s.mutate(func(st *world.State) {
		t, ok := st.Truck(truckID)
		if !ok {
			opErr = ErrTruckNotFound
			return
		}
		if t.Instruction == nil {
			opErr = fmt.Errorf("truck %s has no instruction", truckID)
			return
		}
		t.Instruction.Status = model.InstructionAcknowledged
	})
	return opErr
}

// Override actions for blocked trucks.
const (
	OverrideClearRoad     = "clear_road"
	OverrideReturnToDepot = "return_to_depot"
)

// OverrideBlock resolves a road-blocked truck. clear_road returns it to idle
// so the next tick re-plans; return_to_depot routes it straight home.
func (s *Simulator) OverrideBlock(truckID, action string) error {
	var opErr error
	s.mutate(func(st *world.State) {
		t, ok := st.Truck(truckID)
		if !ok {
			opErr = ErrTruckNotFound
			return
		}
		if t.Blocked != model.BlockedWaitingOverride {
			opErr = ErrTruckNotBlocked
			return
		}
		switch action {
		case OverrideClearRoad:
			t.Blocked = model.BlockedNone
			t.Status = model.StatusIdle
			st.Log(truckID, model.DecisionOverrideClear, "operator cleared road block, truck resumes")
		case OverrideReturnToDepot:
			t.Blocked = model.BlockedNone
			if t.CurrentTask != nil {
				if h, ok := st.Hub(t.CurrentTask.HubID); ok && h.OwnerTruckID == truckID {
					if err := st.ReleaseHub(h.ID, false); err != nil {
						s.log.Errorf("release on depot override: %v", err)
					}
				}
				t.CurrentTask = nil
			}
			s.returnToDepot(st, t, "operator override: forced return to depot")
			st.Log(truckID, model.DecisionOverrideReturn, "operator forced depot return after road block")
		default:
			opErr = ErrInvalidOverride
		}
	})
	return opErr
}
