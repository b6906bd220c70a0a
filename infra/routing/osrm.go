// Package routing provides the OSRM-backed road routing provider.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shriram-s7/fleetdispatch/core/model"
	"github.com/shriram-s7/fleetdispatch/core/routing"
	"github.com/shriram-s7/fleetdispatch/infra/logger"
)

// DefaultBaseURL targets the public OSRM demo server.
const DefaultBaseURL = "https://router.project-osrm.org"

// OSRM queries an OSRM instance for driving routes. Every failure path,
// network, HTTP, decode or an empty result, degrades to the straight-line
// fallback instead of returning an error, so a dead router never stalls a
// truck.
type OSRM struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
}

// New creates an OSRM provider. An empty baseURL selects the public demo
// server.
func New(baseURL string, timeout time.Duration) *OSRM {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OSRM{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     logger.New("osrm"),
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Route implements routing.Provider.
func (o *OSRM) Route(ctx context.Context, from, to model.LatLng) (routing.Route, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		o.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return routing.Fallback(from, to), nil
	}
	resp, err := o.client.Do(req)
	if err != nil {
		o.log.Warnf("osrm request failed: %v", err)
		return routing.Fallback(from, to), nil
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		o.log.Warnf("osrm status %d", resp.StatusCode)
		return routing.Fallback(from, to), nil
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		o.log.Warnf("osrm decode: %v", err)
		return routing.Fallback(from, to), nil
	}
	if body.Code != "Ok" || len(body.Routes) == 0 || len(body.Routes[0].Geometry.Coordinates) < 2 {
		o.log.Warnf("osrm returned no usable route (code=%s)", body.Code)
		return routing.Fallback(from, to), nil
	}

	r := body.Routes[0]
	wps := make([]model.LatLng, 0, len(r.Geometry.Coordinates))
	for _, c := range r.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		wps = append(wps, model.LatLng{Lat: c[1], Lng: c[0]})
	}
	return routing.Route{
		Waypoints:   wps,
		DistanceKm:  r.Distance / 1000,
		DurationSec: r.Duration,
		Success:     true,
	}, nil
}
