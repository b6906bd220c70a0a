package world

import "github.com/shriram-s7/fleetdispatch/core/model"

// Snapshot is a deep read-only copy of the world for presentation. It is safe
// to serialize outside the world lock.
type Snapshot struct {
	Hubs           []model.Hub      `json:"hubs"`
	Trucks         []model.Truck    `json:"trucks"`
	Disasters      []model.Disaster `json:"disasters"`
	Decisions      []model.Decision `json:"ai_decisions"`
	SimulationTime float64          `json:"simulation_time"`
	Phase          model.SimPhase   `json:"simulation_phase"`
	Running        bool             `json:"simulation_running"`
	HubsFrozen     bool             `json:"hubs_frozen"`
	InitialDemand  []string         `json:"initial_hubs_with_demand"`
}

// Snapshot builds the copy. Must run inside a View or Mutate transaction.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		SimulationTime: s.Clock,
		Phase:          s.Phase,
		Running:        s.Running,
		HubsFrozen:     s.HubsFrozen,
		InitialDemand:  append([]string(nil), s.InitialDemand...),
		Decisions:      append([]model.Decision(nil), s.Decisions...),
	}
	for _, h := range s.HubsSorted() {
		snap.Hubs = append(snap.Hubs, *h)
	}
	for _, id := range s.TruckIDs() {
		snap.Trucks = append(snap.Trucks, copyTruck(s.Trucks[id]))
	}
	for _, d := range s.Disasters {
		snap.Disasters = append(snap.Disasters, copyDisaster(d))
	}
	return snap
}

// Restore rewinds hubs, trucks, phase and the freeze flags to a previously
// captured snapshot. The decision log and disasters are deliberately left
// untouched so that the record of a failed commit survives its rollback.
func (s *State) Restore(snap Snapshot) {
	s.Hubs = make(map[string]*model.Hub, len(snap.Hubs))
	for i := range snap.Hubs {
		h := snap.Hubs[i]
		s.Hubs[h.ID] = &h
	}
	s.Trucks = make(map[string]*model.Truck, len(snap.Trucks))
	for i := range snap.Trucks {
		t := copyTruck(&snap.Trucks[i])
		s.Trucks[t.ID] = &t
	}
	s.Phase = snap.Phase
	s.HubsFrozen = snap.HubsFrozen
	s.InitialDemand = append([]string(nil), snap.InitialDemand...)
}

func copyTruck(t *model.Truck) model.Truck {
	c := *t
	c.FutureQueue = append([]model.Task(nil), t.FutureQueue...)
	c.RoutePlan = append([]string(nil), t.RoutePlan...)
	c.Route = append([]model.LatLng(nil), t.Route...)
	c.FullRoute = append([]model.LatLng(nil), t.FullRoute...)
	c.Notifications = append([]string(nil), t.Notifications...)
	if t.CurrentTask != nil {
		task := *t.CurrentTask
		c.CurrentTask = &task
	}
	if t.Instruction != nil {
		ins := *t.Instruction
		c.Instruction = &ins
	}
	return c
}

func copyDisaster(d *model.Disaster) model.Disaster {
	c := *d
	if d.Snapped != nil {
		p := *d.Snapped
		c.Snapped = &p
	}
	return c
}
