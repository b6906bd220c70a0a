package decisionlog

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	core "github.com/shriram-s7/fleetdispatch/core/decisionlog"
	"github.com/shriram-s7/fleetdispatch/core/model"
)

// SQLiteStore persists decisions to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS decisions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        truck_id TEXT,
        action TEXT,
        explanation TEXT,
        ts REAL
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, d model.Decision) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (truck_id, action, explanation, ts) VALUES (?, ?, ?, ?)`,
		d.TruckID, d.Action, d.Explanation, d.Timestamp)
	return err
}

func (s *SQLiteStore) Query(ctx context.Context, q core.Query) ([]model.Decision, error) {
	query := `SELECT truck_id, action, explanation, ts FROM decisions WHERE ts >= ?`
	args := []any{q.After}
	if q.Before > 0 {
		query += ` AND ts <= ?`
		args = append(args, q.Before)
	}
	if q.TruckID != "" {
		query += ` AND truck_id = ?`
		args = append(args, q.TruckID)
	}
	if q.Action != "" {
		query += ` AND action = ?`
		args = append(args, q.Action)
	}
	query += ` ORDER BY id`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Decision
	for rows.Next() {
		var d model.Decision
		if err := rows.Scan(&d.TruckID, &d.Action, &d.Explanation, &d.Timestamp); err != nil {
			return nil, err
		}
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
