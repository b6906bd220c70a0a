package api

import (
	"net/http"

	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/sim"
)

type hubRequest struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Quantity  int     `json:"demand_quantity"`
	Priority  string  `json:"demand_priority"`
	Intensity string  `json:"demand_intensity"`
}

func (r hubRequest) toHub() (model.Hub, error) {
	h := model.Hub{
		ID:        r.ID,
		Name:      r.Name,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,

		DemandQuantity: r.Quantity,
	}
	var err error
	if r.Priority != "" {
		if h.DemandPriority, err = model.ParseLevel(r.Priority); err != nil {
			return h, err
		}
	}
	if r.Intensity != "" {
		if h.DemandIntensity, err = model.ParseLevel(r.Intensity); err != nil {
			return h, err
		}
	}
	return h, nil
}

func (s *Server) handleCreateHub(w http.ResponseWriter, r *http.Request) {
	var req hubRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "hub name is required"})
		return
	}
	h, err := req.toHub()
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	created, err := s.sim.CreateHub(h)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleSeedHubs(w http.ResponseWriter, _ *http.Request) {
	if err := s.sim.SeedHubs(sim.SeedSet()); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"hubs_seeded": len(sim.SeedSet())})
}

func (s *Server) handleDeleteHub(w http.ResponseWriter, r *http.Request) {
	if err := s.sim.DeleteHub(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateDemand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int    `json:"demand_quantity"`
		Priority string `json:"demand_priority"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	priority, err := model.ParseLevel(req.Priority)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.sim.UpdateDemand(r.PathValue("id"), req.Quantity, priority); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateIntensity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Intensity string `json:"demand_intensity"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	intensity, err := model.ParseLevel(req.Intensity)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := s.sim.UpdateIntensity(r.PathValue("id"), intensity); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
