// Package decisionlog defines persistence for dispatch decision records.
package decisionlog

import (
	"context"
	"sync"

	"github.com/shriram-s7/fleetdispatch/core/model"
)

// Query defines filters for retrieving decisions.
type Query struct {
	TruckID string
	Action  string
	After   float64 // simulation clock, inclusive
	Before  float64 // simulation clock, inclusive; zero means open-ended
	Limit   int
}

// Match reports whether a decision passes the filter.
func (q Query) Match(d model.Decision) bool {
	if q.TruckID != "" && d.TruckID != q.TruckID {
		return false
	}
	if q.Action != "" && d.Action != q.Action {
		return false
	}
	if d.Timestamp < q.After {
		return false
	}
	if q.Before > 0 && d.Timestamp > q.Before {
		return false
	}
	return true
}

// Store persists decision records and supports querying.
type Store interface {
	Append(ctx context.Context, d model.Decision) error
	Query(ctx context.Context, q Query) ([]model.Decision, error)
	Close() error
}

// MemoryStore keeps decisions in memory. Used in tests and as the default
// when no persistence backend is configured.
type MemoryStore struct {
	mu   sync.Mutex
	recs []model.Decision
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, d model.Decision) error {
	s.mu.Lock()
	s.recs = append(s.recs, d)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]model.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.Decision
	for _, d := range s.recs {
		if !q.Match(d) {
			continue
		}
		res = append(res, d)
		if q.Limit > 0 && len(res) >= q.Limit {
			break
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
