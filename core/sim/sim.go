// Package sim drives the simulation: the periodic tick loop that moves
// trucks, burns fuel and applies disasters, plus the external control
// operations that mutate the world while the loop runs. Every tick and every
// operation is one transaction against the world lock.
package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shriram-s7/fleetdispatch/core/engine"
	"github.com/shriram-s7/fleetdispatch/core/events"
	"github.com/shriram-s7/fleetdispatch/core/logger"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/planner"
	"github.com/shriram-s7/fleetdispatch/core/routing"
	"github.com/shriram-s7/fleetdispatch/core/world"
	"github.com/shriram-s7/fleetdispatch/internal/eventbus"
)

// Config tunes the simulation loop.
type Config struct {
	TickInterval    time.Duration `koanf:"tick_interval"`
	TickSeconds     float64       `koanf:"tick_seconds"`
	FuelRate        float64       `koanf:"fuel_rate"`
	RouteTimeout    time.Duration `koanf:"route_timeout"`
	SnapThresholdKm float64       `koanf:"snap_threshold_km"`
}

// SetDefaults fills zero fields with production defaults: one simulated
// second per one-second tick, 0.1 fuel units per km.
func (c *Config) SetDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.TickSeconds <= 0 {
		c.TickSeconds = 1
	}
	if c.FuelRate <= 0 {
		c.FuelRate = 0.1
	}
	if c.RouteTimeout <= 0 {
		c.RouteTimeout = 5 * time.Second
	}
	if c.SnapThresholdKm <= 0 {
		c.SnapThresholdKm = 10
	}
}

var (
	ErrAlreadyRunning = errors.New("simulation already running")
	ErrNotRunning     = errors.New("simulation not running")
)

// Simulator owns the tick loop and the external control surface.
type Simulator struct {
	world    *world.World
	provider routing.Provider
	planner  *planner.Planner
	engine   *engine.Engine
	bus      *eventbus.Bus
	log      logger.Logger
	cfg      Config

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(w *world.World, provider routing.Provider, bus *eventbus.Bus, log logger.Logger, cfg Config) *Simulator {
	cfg.SetDefaults()
	return &Simulator{
		world:    w,
		provider: provider,
		planner:  planner.New(cfg.FuelRate, log),
		engine:   engine.New(cfg.FuelRate, log),
		bus:      bus,
		log:      log,
		cfg:      cfg,
	}
}

// Engine exposes the decision engine for operations that run it synchronously.
func (s *Simulator) Engine() *engine.Engine { return s.engine }

// mutate runs fn as one world transaction and publishes every decision-log
// entry it appended once the lock is released.
func (s *Simulator) mutate(fn func(*world.State)) {
	var appended []model.Decision
	s.world.Mutate(func(st *world.State) {
		n := len(st.Decisions)
		fn(st)
		appended = append(appended, st.Decisions[n:]...)
	})
	for _, d := range appended {
		s.bus.Publish(events.DecisionEvent{Decision: d})
	}
}

// Start runs the commit planner and, on success, converts route plans into
// task queues and launches the tick loop. A failed commit leaves the world as
// it was and returns the planner's error.
func (s *Simulator) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var startErr error
	hubs, trucks := 0, 0
	s.mutate(func(st *world.State) {
		if st.Running {
			startErr = ErrAlreadyRunning
			return
		}
		if err := s.planner.Commit(st); err != nil {
			startErr = err
			return
		}
		for _, id := range st.TruckIDs() {
			t := st.Trucks[id]
			t.FutureQueue = t.FutureQueue[:0]
			for _, hubID := range t.RoutePlan {
				h, ok := st.Hub(hubID)
				if !ok {
					continue
				}
				t.FutureQueue = append(t.FutureQueue, model.Task{
					HubID:         hubID,
					UrgencyWeight: h.DemandIntensity.UrgencyWeight(),
					AssignedAt:    st.Clock,
				})
			}
			if t.Active {
				trucks++
			}
		}
		hubs = len(st.InitialDemand)
		st.Phase = model.PhaseExecuting
		st.Running = true
	})
	if startErr != nil {
		return startErr
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx)

	s.bus.Publish(events.CommitEvent{Hubs: hubs, Trucks: trucks})
	s.log.Infof("simulation started: %d hubs committed, %d trucks active", hubs, trucks)
	return nil
}

// Stop halts the tick loop. World state is preserved for inspection.
func (s *Simulator) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return ErrNotRunning
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.mutate(func(st *world.State) { st.Running = false })
	s.log.Infof("simulation stopped")
	return nil
}

func (s *Simulator) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances the simulation by one step. Exported so tests and tooling
// can drive the loop deterministically.
func (s *Simulator) Tick() {
	var clock float64
	s.mutate(func(st *world.State) {
		st.Clock += s.cfg.TickSeconds
		clock = st.Clock
		for _, id := range st.TruckIDs() {
			t := st.Trucks[id]
			if !t.Active {
				continue
			}
			s.step(st, t)
		}
	})
	s.bus.Publish(events.TickEvent{Clock: clock})
}

// fetchRoute asks the provider for a leg and falls back to straight-line
// interpolation on any failure. It never returns an empty route.
func (s *Simulator) fetchRoute(from, to model.LatLng) routing.Route {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RouteTimeout)
	defer cancel()
	r, err := s.provider.Route(ctx, from, to)
	if err != nil || len(r.Waypoints) < 2 {
		if err != nil {
			s.log.Warnf("route provider failed, using fallback: %v", err)
		}
		return routing.Fallback(from, to)
	}
	return r
}

// Depot returns the depot coordinates.
func (s *Simulator) Depot() model.LatLng {
	var pos model.LatLng
	s.world.View(func(st *world.State) {
		d := st.Depot()
		pos = model.LatLng{Lat: d.Latitude, Lng: d.Longitude}
	})
	return pos
}

// Snapshot returns a deep copy of the world for presentation.
func (s *Simulator) Snapshot() world.Snapshot {
	var snap world.Snapshot
	s.world.View(func(st *world.State) { snap = st.Snapshot() })
	return snap
}

func (s *Simulator) truckPos(t *model.Truck) model.LatLng {
	return model.LatLng{Lat: t.Latitude, Lng: t.Longitude}
}

func hubPos(h *model.Hub) model.LatLng {
	return model.LatLng{Lat: h.Latitude, Lng: h.Longitude}
}
