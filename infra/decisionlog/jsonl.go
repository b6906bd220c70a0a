// Package decisionlog provides file and database backends for the decision
// log.
package decisionlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	core "github.com/shriram-s7/fleetdispatch/core/decisionlog"
	"github.com/shriram-s7/fleetdispatch/core/model"
)

// JSONLStore appends decisions to a JSONL file, one record per line.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONLStore(path string) (*JSONLStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLStore{path: path}, nil
}

func (s *JSONLStore) Append(_ context.Context, d model.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(d)
}

func (s *JSONLStore) Query(_ context.Context, q core.Query) ([]model.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []model.Decision
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var d model.Decision
		if err := json.Unmarshal(scanner.Bytes(), &d); err != nil {
			continue
		}
		if !q.Match(d) {
			continue
		}
		res = append(res, d)
		if q.Limit > 0 && len(res) >= q.Limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *JSONLStore) Close() error { return nil }
