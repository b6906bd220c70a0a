package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shriram-s7/fleetdispatch/core/decisionlog"
	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/routing"
	"github.com/shriram-s7/fleetdispatch/core/sim"
	"github.com/shriram-s7/fleetdispatch/core/world"
	"github.com/shriram-s7/fleetdispatch/infra/logger"
	"github.com/shriram-s7/fleetdispatch/internal/eventbus"
)

func newTestServer(t *testing.T) (*Server, *decisionlog.MemoryStore) {
	t.Helper()
	w := world.New(model.Hub{ID: "DEPOT", Name: "Central Depot", Latitude: 10.7905, Longitude: 78.7047})
	cfg := sim.Config{
		TickInterval:    time.Hour,
		TickSeconds:     1,
		FuelRate:        0.1,
		RouteTimeout:    time.Second,
		SnapThresholdKm: 10,
	}
	bus := eventbus.New()
	sm := sim.New(w, routing.Straight, bus, logger.NopLogger{}, cfg)
	store := decisionlog.NewMemoryStore()
	return NewServer(sm, bus, store, logger.NopLogger{}), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateHubAndState(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/hubs", map[string]any{
		"id": "H1", "name": "Trichy East", "latitude": 10.83, "longitude": 78.69,
		"demand_quantity": 5, "demand_priority": "High", "demand_intensity": "Medium",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create hub status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/state", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("state status = %d", rec.Code)
	}
	var snap world.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Hubs) != 2 {
		t.Fatalf("snapshot hubs = %d, want depot plus H1", len(snap.Hubs))
	}
}

func TestCreateHubRejectsBadLevel(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Routes(), http.MethodPost, "/api/hubs", map[string]any{
		"name": "Bad", "latitude": 10.8, "longitude": 78.7, "demand_priority": "Urgent",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFleetUploadAndStartStop(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	csv := "id,fuel_capacity,max_capacity\nT1,500,100\nT2,400,80\n"
	req := httptest.NewRequest(http.MethodPost, "/api/trucks/upload", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}
	var out map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["trucks_loaded"] != 2 {
		t.Fatalf("trucks_loaded = %d, want 2", out["trucks_loaded"])
	}

	if rec := doJSON(t, mux, http.MethodPost, "/api/hubs", map[string]any{
		"id": "H1", "name": "H1", "latitude": 10.83, "longitude": 78.69,
		"demand_quantity": 3, "demand_priority": "High", "demand_intensity": "High",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create hub status = %d", rec.Code)
	}

	if rec := doJSON(t, mux, http.MethodPost, "/api/simulation/start", nil); rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	// Hubs are frozen while running.
	if rec := doJSON(t, mux, http.MethodPost, "/api/hubs", map[string]any{
		"name": "Late", "latitude": 10.9, "longitude": 78.8,
	}); rec.Code != http.StatusConflict {
		t.Fatalf("create hub while running status = %d, want 409", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPost, "/api/simulation/start", nil); rec.Code != http.StatusConflict {
		t.Fatalf("double start status = %d, want 409", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPost, "/api/simulation/stop", nil); rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPost, "/api/simulation/stop", nil); rec.Code != http.StatusConflict {
		t.Fatalf("double stop status = %d, want 409", rec.Code)
	}
}

func TestFleetUploadRejectsBadCSV(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/trucks/upload", strings.NewReader("name\nnope\n"))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStartWithoutFeasibleTruckConflicts(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()
	if rec := doJSON(t, mux, http.MethodPost, "/api/hubs", map[string]any{
		"id": "H1", "name": "H1", "latitude": 10.83, "longitude": 78.69,
		"demand_quantity": 3, "demand_priority": "High", "demand_intensity": "High",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("create hub status = %d", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPost, "/api/simulation/start", nil); rec.Code != http.StatusConflict {
		t.Fatalf("start status = %d, want 409", rec.Code)
	}
}

func TestDisasterLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	rec := doJSON(t, mux, http.MethodPost, "/api/disasters", map[string]any{
		"disaster_type": "rain", "latitude": 10.8, "longitude": 78.7, "radius_km": 15,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create disaster status = %d, body %s", rec.Code, rec.Body.String())
	}
	var d model.Disaster
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.ID == "" || !d.Active {
		t.Fatalf("unexpected disaster %+v", d)
	}

	if rec := doJSON(t, mux, http.MethodDelete, "/api/disasters/"+d.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("remove status = %d", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodDelete, "/api/disasters/"+d.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("remove missing status = %d, want 404", rec.Code)
	}
}

func TestDisasterValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()
	if rec := doJSON(t, mux, http.MethodPost, "/api/disasters", map[string]any{
		"disaster_type": "plague", "latitude": 10.8, "longitude": 78.7, "radius_km": 5,
	}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad type status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPost, "/api/disasters", map[string]any{
		"disaster_type": "rain", "latitude": 10.8, "longitude": 78.7,
	}); rec.Code != http.StatusBadRequest {
		t.Fatalf("zero radius status = %d, want 400", rec.Code)
	}
}

func TestOverrideValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	if rec := doJSON(t, mux, http.MethodPost, "/api/trucks/T9/override-block",
		map[string]string{"action": "clear_road"}); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown truck status = %d, want 404", rec.Code)
	}

	csv := "id,fuel_capacity\nT1,500\n"
	req := httptest.NewRequest(http.MethodPost, "/api/trucks/upload", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d", rec.Code)
	}

	if rec := doJSON(t, mux, http.MethodPost, "/api/trucks/T1/override-block",
		map[string]string{"action": "clear_road"}); rec.Code != http.StatusConflict {
		t.Fatalf("not blocked status = %d, want 409", rec.Code)
	}
}

func TestDecisionsQuery(t *testing.T) {
	srv, store := newTestServer(t)
	mux := srv.Routes()

	for _, d := range []model.Decision{
		{TruckID: "T1", Action: model.DecisionMoving, Timestamp: 1},
		{TruckID: "T1", Action: model.DecisionDelivered, Timestamp: 2},
		{TruckID: "T2", Action: model.DecisionMoving, Timestamp: 3},
	} {
		if err := store.Append(context.Background(), d); err != nil {
			t.Fatal(err)
		}
	}

	rec := doJSON(t, mux, http.MethodGet, "/api/decisions?truck_id=T1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("decisions status = %d", rec.Code)
	}
	var recs []model.Decision
	if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d decisions, want 2", len(recs))
	}

	if rec := doJSON(t, mux, http.MethodGet, "/api/decisions?after=abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad after status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/decisions?format=csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("csv content type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("csv lines = %d, want header plus 3 rows", len(lines))
	}
}

func TestInstructionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	mux := srv.Routes()

	csv := "id,fuel_capacity\nT1,500\n"
	req := httptest.NewRequest(http.MethodPost, "/api/trucks/upload", strings.NewReader(csv))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodPost, "/api/trucks/T1/instruction",
		map[string]string{"text": "take the bypass"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("instruction status = %d, body %s", rec.Code, rec.Body.String())
	}
	var ins model.Instruction
	if err := json.Unmarshal(rec.Body.Bytes(), &ins); err != nil {
		t.Fatal(err)
	}
	if ins.ID == "" || ins.Status != model.InstructionActive {
		t.Fatalf("unexpected instruction %+v", ins)
	}

	if rec := doJSON(t, mux, http.MethodPost, "/api/trucks/T1/ack-instruction", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("ack status = %d", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPost, "/api/trucks/T1/instruction",
		map[string]string{"text": ""}); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty text status = %d, want 400", rec.Code)
	}
}
