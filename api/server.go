// Package api exposes the dispatch control surface over HTTP: hub and fleet
// lifecycle, simulation control, disasters, manual driver controls, the
// decision log and a live state stream.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shriram-s7/fleetdispatch/core/decisionlog"
	"github.com/shriram-s7/fleetdispatch/core/logger"
	"github.com/shriram-s7/fleetdispatch/core/planner"
	"github.com/shriram-s7/fleetdispatch/core/sim"
	"github.com/shriram-s7/fleetdispatch/internal/eventbus"
)

// Server bundles the HTTP handlers around the simulator.
type Server struct {
	sim  *sim.Simulator
	bus  *eventbus.Bus
	logs decisionlog.Store
	log  logger.Logger
}

func NewServer(s *sim.Simulator, bus *eventbus.Bus, logs decisionlog.Store, log logger.Logger) *Server {
	return &Server{sim: s, bus: bus, logs: logs, log: log}
}

// Routes builds the request mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/trucks", s.handleListTrucks)
	mux.HandleFunc("POST /api/trucks/upload", s.handleFleetUpload)
	mux.HandleFunc("POST /api/trucks/{id}/instruction", s.handleInstruction)
	mux.HandleFunc("POST /api/trucks/{id}/ack-instruction", s.handleAckInstruction)
	mux.HandleFunc("POST /api/trucks/{id}/override-block", s.handleOverride)

	mux.HandleFunc("POST /api/hubs", s.handleCreateHub)
	mux.HandleFunc("POST /api/hubs/seed", s.handleSeedHubs)
	mux.HandleFunc("DELETE /api/hubs/{id}", s.handleDeleteHub)
	mux.HandleFunc("PUT /api/hubs/{id}/demand", s.handleUpdateDemand)
	mux.HandleFunc("PUT /api/hubs/{id}/intensity", s.handleUpdateIntensity)

	mux.HandleFunc("POST /api/simulation/start", s.handleStart)
	mux.HandleFunc("POST /api/simulation/stop", s.handleStop)

	mux.HandleFunc("POST /api/disasters", s.handleCreateDisaster)
	mux.HandleFunc("DELETE /api/disasters/{id}", s.handleRemoveDisaster)

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/decisions", s.handleDecisions)
	mux.HandleFunc("GET /ws/state", s.handleStateStream)

	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, sim.ErrHubNotFound),
		errors.Is(err, sim.ErrTruckNotFound),
		errors.Is(err, sim.ErrDisasterNotFound):
		status = http.StatusNotFound
	case errors.Is(err, sim.ErrHubsFrozen),
		errors.Is(err, sim.ErrAlreadyRunning),
		errors.Is(err, sim.ErrNotRunning),
		errors.Is(err, sim.ErrTruckNotBlocked),
		errors.Is(err, planner.ErrNoFeasibleTruck):
		status = http.StatusConflict
	case errors.Is(err, sim.ErrInvalidOverride),
		errors.Is(err, sim.ErrNoRouteInRange):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}
