package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RunSummary is the stored rollup of one batch run.
type RunSummary struct {
	ID        string
	StartedAt string
	Files     int
	Analyzed  int
	Failed    int
}

// ErrRunNotFound is returned when a run id has no stored row.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the stored summary for a run id.
func (s *Store) ReadRun(ctx context.Context, id string) (RunSummary, error) {
	var rs RunSummary
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, files, analyzed, failed FROM runs WHERE id = ?`, id).
		Scan(&rs.ID, &rs.StartedAt, &rs.Files, &rs.Analyzed, &rs.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return RunSummary{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunSummary{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return rs, nil
}

// ListRuns returns every stored run, newest first. Run ids are UUIDv7 so
// lexical descending order is creation order.
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, files, analyzed, failed FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.ID, &rs.StartedAt, &rs.Files, &rs.Analyzed, &rs.Failed); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// CountFindings returns the number of findings stored for a run.
func (s *Store) CountFindings(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM findings WHERE run_id = ?`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count findings for run %s: %w", runID, err)
	}
	return n, nil
}
