package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shriram-s7/fleetdispatch/core/model"
)

// State is the single shared aggregate: hub and truck registries, disasters,
// the decision log and the simulation clock and phase. It is never accessed
// directly by callers; World serializes every read and write.
type State struct {
	DepotID   string
	Hubs      map[string]*model.Hub
	Trucks    map[string]*model.Truck
	Disasters []*model.Disaster
	Decisions []model.Decision

	Clock      float64
	Phase      model.SimPhase
	HubsFrozen bool
	Running    bool

	// InitialDemand records the hub ids frozen by the last successful
	// commit, for completion tracking.
	InitialDemand []string
}

func newState(depot model.Hub) *State {
	st := &State{
		DepotID: depot.ID,
		Hubs:    map[string]*model.Hub{},
		Trucks:  map[string]*model.Truck{},
		Phase:   model.PhasePreStart,
	}
	d := depot
	st.Hubs[d.ID] = &d
	return st
}

// Depot returns the depot hub record.
func (s *State) Depot() *model.Hub { return s.Hubs[s.DepotID] }

// Hub looks up a hub by id.
func (s *State) Hub(id string) (*model.Hub, bool) {
	h, ok := s.Hubs[id]
	return h, ok
}

// Truck looks up a truck by id.
func (s *State) Truck(id string) (*model.Truck, bool) {
	t, ok := s.Trucks[id]
	return t, ok
}

// TruckIDs returns all truck ids in stable order.
func (s *State) TruckIDs() []string {
	ids := make([]string, 0, len(s.Trucks))
	for id := range s.Trucks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ActiveTrucks returns active trucks in stable order.
func (s *State) ActiveTrucks() []*model.Truck {
	var out []*model.Truck
	for _, id := range s.TruckIDs() {
		if t := s.Trucks[id]; t.Active {
			out = append(out, t)
		}
	}
	return out
}

// HubsSorted returns all hubs in stable order, depot included.
func (s *State) HubsSorted() []*model.Hub {
	ids := make([]string, 0, len(s.Hubs))
	for id := range s.Hubs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*model.Hub, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.Hubs[id])
	}
	return out
}

// DemandHubs returns non-depot hubs with positive remaining demand.
func (s *State) DemandHubs() []*model.Hub {
	var out []*model.Hub
	for _, h := range s.HubsSorted() {
		if h.ID != s.DepotID && h.DemandQuantity > 0 {
			out = append(out, h)
		}
	}
	return out
}

// AddHub registers a new hub. Duplicate ids are rejected.
func (s *State) AddHub(h model.Hub) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if _, exists := s.Hubs[h.ID]; exists {
		return fmt.Errorf("hub %s already exists", h.ID)
	}
	hub := h
	s.Hubs[h.ID] = &hub
	return nil
}

// RemoveHub drops a hub from the registry. The depot cannot be removed.
func (s *State) RemoveHub(id string) bool {
	if id == s.DepotID {
		return false
	}
	if _, ok := s.Hubs[id]; !ok {
		return false
	}
	delete(s.Hubs, id)
	return true
}

// NextLiveHubID generates an unused id for hubs created at runtime.
func (s *State) NextLiveHubID() string {
	for n := 1; ; n++ {
		id := fmt.Sprintf("LIVE_%d", n)
		if _, exists := s.Hubs[id]; !exists {
			return id
		}
	}
}

// AddTruck registers a truck.
func (s *State) AddTruck(t model.Truck) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, exists := s.Trucks[t.ID]; exists {
		return fmt.Errorf("truck %s already exists", t.ID)
	}
	truck := t
	s.Trucks[t.ID] = &truck
	return nil
}

// Disaster looks up an active disaster by id.
func (s *State) Disaster(id string) (*model.Disaster, bool) {
	for _, d := range s.Disasters {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// RemoveDisaster drops a disaster by id.
func (s *State) RemoveDisaster(id string) bool {
	for i, d := range s.Disasters {
		if d.ID == id {
			s.Disasters = append(s.Disasters[:i], s.Disasters[i+1:]...)
			return true
		}
	}
	return false
}

// Log appends an entry to the decision log and returns it.
func (s *State) Log(truckID, action, explanation string) model.Decision {
	dec := model.Decision{
		TruckID:     truckID,
		Action:      action,
		Explanation: explanation,
		Timestamp:   s.Clock,
	}
	s.Decisions = append(s.Decisions, dec)
	return dec
}

// World wraps State behind one coarse lock. Every tick and every external
// operation runs as a single Mutate or View transaction, so no caller can
// observe a partially updated hub or truck record.
type World struct {
	mu sync.Mutex
	st *State
}

// New creates a World seeded with the depot hub.
func New(depot model.Hub) *World {
	return &World{st: newState(depot)}
}

// Mutate runs fn with exclusive access to the state.
func (w *World) Mutate(fn func(*State)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.st)
}

// View runs fn with exclusive access for reading. The lock is shared with
// Mutate on purpose: the state is small and tightly coupled, so one coarse
// lock is both sufficient and simplest to reason about.
func (w *World) View(fn func(*State)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.st)
}
