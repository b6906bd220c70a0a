package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/shriram-s7/fleetdispatch/core/fleet"
)

func (s *Server) handleListTrucks(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sim.Snapshot().Trucks)
}

// handleFleetUpload ingests a CSV fleet file, either as a multipart "file"
// field or as the raw request body.
func (s *Server) handleFleetUpload(w http.ResponseWriter, r *http.Request) {
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, _, err := r.FormFile("file")
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field: " + err.Error()})
			return
		}
		defer func() { _ = f.Close() }()
		src = f
	}

	trucks, err := fleet.ParseCSV(src, s.sim.Depot())
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	count, err := s.sim.LoadFleet(trucks)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Infof("fleet uploaded: %d trucks", count)
	s.writeJSON(w, http.StatusCreated, map[string]int{"trucks_loaded": count})
}

func (s *Server) handleInstruction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "instruction text is required"})
		return
	}
	ins, err := s.sim.SendInstruction(r.PathValue("id"), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, ins)
}

func (s *Server) handleAckInstruction(w http.ResponseWriter, r *http.Request) {
	if err := s.sim.AckInstruction(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.sim.OverrideBlock(r.PathValue("id"), req.Action); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
