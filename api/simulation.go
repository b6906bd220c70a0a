package api

import (
	"net/http"
	"strconv"

	"github.com/shriram-s7/fleetdispatch/core/decisionlog"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/pkg/export"
)

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.sim.Start(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.sim.Stop(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	q := decisionlog.Query{
		TruckID: r.URL.Query().Get("truck_id"),
		Action:  r.URL.Query().Get("action"),
	}
	var err error
	if v := r.URL.Query().Get("after"); v != "" {
		if q.After, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid after: " + v})
			return
		}
	}
	if v := r.URL.Query().Get("before"); v != "" {
		if q.Before, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid before: " + v})
			return
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if q.Limit, err = strconv.Atoi(v); err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit: " + v})
			return
		}
	}

	recs, err := s.logs.Query(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []model.Decision{}
	}
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="decisions.csv"`)
		if err := export.WriteCSV(w, recs); err != nil {
			s.log.Errorf("export decisions: %v", err)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, recs)
}

type disasterRequest struct {
	Type      string  `json:"disaster_type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius_km"`
	Severity  float64 `json:"traffic_severity"`
}

func (s *Server) handleCreateDisaster(w http.ResponseWriter, r *http.Request) {
	var req disasterRequest
	if !s.decode(w, r, &req) {
		return
	}
	typ, err := model.ParseDisasterType(req.Type)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if req.RadiusKm <= 0 {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "radius_km must be positive"})
		return
	}
	d, err := s.sim.CreateDisaster(model.Disaster{
		Type:            typ,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		RadiusKm:        req.RadiusKm,
		TrafficSeverity: req.Severity,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleRemoveDisaster(w http.ResponseWriter, r *http.Request) {
	if err := s.sim.RemoveDisaster(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
