// Package app assembles the dispatch service from configuration: world,
// simulator, routing provider, metrics sinks, decision log store, telemetry
// publisher and the HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shriram-s7/fleetdispatch/api"
	"github.com/shriram-s7/fleetdispatch/config"
	"github.com/shriram-s7/fleetdispatch/core/decisionlog"
	"github.com/shriram-s7/fleetdispatch/core/events"
	"github.com/shriram-s7/fleetdispatch/core/logger"
	coremetrics "github.com/shriram-s7/fleetdispatch/core/metrics"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/routing"
	"github.com/shriram-s7/fleetdispatch/core/sim"
	"github.com/shriram-s7/fleetdispatch/core/world"
	infradlog "github.com/shriram-s7/fleetdispatch/infra/decisionlog"
	infralog "github.com/shriram-s7/fleetdispatch/infra/logger"
	inframetrics "github.com/shriram-s7/fleetdispatch/infra/metrics"
	infrarouting "github.com/shriram-s7/fleetdispatch/infra/routing"
	"github.com/shriram-s7/fleetdispatch/infra/telemetry"
	"github.com/shriram-s7/fleetdispatch/internal/eventbus"
)

// Service orchestrates the simulator and its surrounding infrastructure.
type Service struct {
	Sim   *sim.Simulator
	World *world.World

	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.Sink
	store     decisionlog.Store
	telemetry telemetry.Publisher
	srv       *http.Server
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := infralog.New("service")

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	store, err := newStore(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("decision log: %w", err)
	}

	var pub telemetry.Publisher = telemetry.NopPublisher{}
	if cfg.Telemetry.Enabled {
		pub, err = telemetry.NewPahoPublisher(cfg.Telemetry)
		if err != nil {
			return nil, fmt.Errorf("telemetry publisher: %w", err)
		}
	}

	var provider routing.Provider = routing.Straight
	if cfg.Routing.Provider == "osrm" {
		provider = infrarouting.New(cfg.Routing.OSRMURL, time.Duration(cfg.Routing.TimeoutSeconds)*time.Second)
	}

	w := world.New(model.Hub{
		ID:        cfg.Depot.ID,
		Name:      cfg.Depot.Name,
		Latitude:  cfg.Depot.Latitude,
		Longitude: cfg.Depot.Longitude,
	})

	bus := eventbus.New()
	simulator := sim.New(w, provider, bus, infralog.New("sim"), cfg.Simulation.ToSim())

	apiSrv := api.NewServer(simulator, bus, store, infralog.New("api"))
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           apiSrv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Service{
		Sim:       simulator,
		World:     w,
		cfg:       cfg,
		bus:       bus,
		sink:      sink,
		store:     store,
		telemetry: pub,
		srv:       srv,
		log:       logg,
	}, nil
}

func newStore(cfg config.LoggingConfig) (decisionlog.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return infradlog.NewSQLiteStore(cfg.Path)
	case "memory":
		return decisionlog.NewMemoryStore(), nil
	default:
		return infradlog.NewJSONLStore(cfg.Path)
	}
}

// Run serves HTTP and drains simulation events until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prometheus server: %v", err)
			}
		}()
	}

	if s.cfg.Telemetry.Enabled {
		acks, err := telemetry.NewAckListener(s.cfg.Telemetry, s.Sim)
		if err != nil {
			return fmt.Errorf("ack listener: %w", err)
		}
		go acks.Start(ctx)
	}

	sub := s.bus.SubscribeBuffered(256)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		s.drain(ctx, sub)
	}()

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Server.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("http shutdown: %v", err)
	}
	s.bus.Unsubscribe(sub)
	<-drained
	return s.Close()
}

// drain fans simulation events out to the decision log, the metrics sink and
// the telemetry publisher.
func (s *Service) drain(ctx context.Context, sub <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			s.handleEvent(ctx, ev)
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.DecisionEvent:
		if err := s.store.Append(ctx, e.Decision); err != nil {
			s.log.Errorf("append decision: %v", err)
		}
		if e.Decision.Action == model.DecisionInstruction {
			s.publishInstruction(e.Decision.TruckID)
		}
	case events.DeliveryEvent:
		if err := s.sink.RecordDelivery(coremetrics.DeliveryRecord{
			TruckID:   e.TruckID,
			HubID:     e.HubID,
			Remaining: e.Remaining,
			Completed: e.Completed,
			Clock:     e.Clock,
		}); err != nil {
			s.log.Errorf("record delivery: %v", err)
		}
	case events.BlockedEvent:
		if rec, ok := s.sink.(coremetrics.BlockedRecorder); ok {
			if err := rec.RecordBlocked(coremetrics.BlockedRecord{
				TruckID: e.TruckID, DisasterID: e.DisasterID, Clock: e.Clock,
			}); err != nil {
				s.log.Errorf("record blocked: %v", err)
			}
		}
	case events.EscalationEvent:
		s.log.Infof("escalation: hub %s assigned to truck %s", e.HubID, e.TruckID)
	case events.TickEvent:
		s.recordTick(e.Clock)
	}
}

// publishInstruction forwards the truck's active instruction to its driver
// topic so MQTT-connected terminals see it without polling.
func (s *Service) publishInstruction(truckID string) {
	var ins *model.Instruction
	s.World.View(func(st *world.State) {
		if t, ok := st.Trucks[truckID]; ok && t.Instruction != nil {
			cp := *t.Instruction
			ins = &cp
		}
	})
	if ins == nil {
		return
	}
	if err := s.telemetry.PublishInstruction(truckID, *ins); err != nil {
		s.log.Errorf("publish instruction: %v", err)
	}
}

func (s *Service) recordTick(clock float64) {
	snap := s.Sim.Snapshot()

	stats := coremetrics.TickStats{Clock: clock}
	for _, t := range snap.Trucks {
		if !t.Active {
			continue
		}
		stats.ActiveTrucks++
		switch t.Status {
		case model.StatusMoving, model.StatusReturning:
			stats.MovingTrucks++
		}
		if t.Blocked == model.BlockedWaitingOverride {
			stats.BlockedTrucks++
		}
		if rec, ok := s.sink.(coremetrics.TruckStateRecorder); ok {
			if err := rec.RecordTruckState(coremetrics.TruckState{
				TruckID:       t.ID,
				Latitude:      t.Latitude,
				Longitude:     t.Longitude,
				FuelRemaining: t.FuelRemaining,
				Status:        t.Status.String(),
				Clock:         clock,
			}); err != nil {
				s.log.Errorf("record truck state: %v", err)
			}
		}
		if err := s.telemetry.PublishPosition(t.ID, model.LatLng{Lat: t.Latitude, Lng: t.Longitude}, t.Status.String(), clock); err != nil {
			s.log.Errorf("publish position: %v", err)
		}
	}
	for _, h := range snap.Hubs {
		if h.DemandQuantity > 0 {
			stats.OpenHubs++
		}
	}
	if rec, ok := s.sink.(coremetrics.TickRecorder); ok {
		if err := rec.RecordTick(stats); err != nil {
			s.log.Errorf("record tick: %v", err)
		}
	}
}

// Close releases the store and the telemetry connection and stops the
// simulation if it is still running.
func (s *Service) Close() error {
	if err := s.Sim.Stop(); err != nil && !errors.Is(err, sim.ErrNotRunning) {
		s.log.Errorf("stop simulation: %v", err)
	}
	s.telemetry.Close()
	return s.store.Close()
}
