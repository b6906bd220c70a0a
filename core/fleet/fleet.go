// Package fleet ingests bulk truck records. The input is header-mapped CSV;
// unknown columns are ignored and missing optional columns fall back to
// fleet-wide defaults. Every truck starts at the depot.
package fleet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shriram-s7/fleetdispatch/core/model"
)

// Defaults applied when a column is absent or empty.
const (
	DefaultCostPerKm      = 2.0
	DefaultMaxCapacity    = 100
	DefaultFuelEfficiency = 1.0
	DefaultSpeedKmh       = 50.0
)

// ParseCSV reads truck records and places them at the depot. The id and
// fuel_capacity columns are required; everything else has a default.
func ParseCSV(r io.Reader, depot model.LatLng) ([]model.Truck, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["id"]; !ok {
		return nil, fmt.Errorf("csv header missing id column")
	}
	if _, ok := col["fuel_capacity"]; !ok {
		return nil, fmt.Errorf("csv header missing fuel_capacity column")
	}

	var trucks []model.Truck
	seen := map[string]bool{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		t, err := parseRow(row, col, depot)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("csv line %d: duplicate truck id %s", line, t.ID)
		}
		seen[t.ID] = true
		trucks = append(trucks, t)
	}
	if len(trucks) == 0 {
		return nil, fmt.Errorf("csv contains no truck rows")
	}
	return trucks, nil
}

func parseRow(row []string, col map[string]int, depot model.LatLng) (model.Truck, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(name string, def float64) (float64, error) {
		s := field(name)
		if s == "" {
			return def, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q", name, s)
		}
		return v, nil
	}

	t := model.Truck{
		ID:       field("id"),
		Latitude: depot.Lat, Longitude: depot.Lng,
		Active: true,
		Status: model.StatusIdle,
	}
	if t.ID == "" {
		return t, fmt.Errorf("empty truck id")
	}

	var err error
	if t.FuelCapacity, err = num("fuel_capacity", 0); err != nil {
		return t, err
	}
	if t.FuelCapacity <= 0 {
		return t, fmt.Errorf("fuel_capacity must be positive")
	}
	t.FuelRemaining = t.FuelCapacity
	if t.CostPerKm, err = num("cost_per_km", DefaultCostPerKm); err != nil {
		return t, err
	}
	if t.FuelEfficiency, err = num("fuel_efficiency", DefaultFuelEfficiency); err != nil {
		return t, err
	}
	if t.Speed, err = num("speed", DefaultSpeedKmh); err != nil {
		return t, err
	}
	capf, err := num("max_capacity", DefaultMaxCapacity)
	if err != nil {
		return t, err
	}
	t.MaxCapacity = int(capf)
	if t.MaxCapacity <= 0 {
		return t, fmt.Errorf("max_capacity must be positive")
	}

	if s := field("active"); s != "" {
		active, err := strconv.ParseBool(s)
		if err != nil {
			return t, fmt.Errorf("invalid active flag %q", s)
		}
		t.Active = active
	}
	return t, t.Validate()
}
