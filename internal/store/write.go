package store

import (
	"context"
	"fmt"
	"time"

	"github.com/drivelab/oscheck/internal/batch"
)

// WriteRun persists a batch result - the run row, per-file rollups, and
// every finding - in a single transaction. Re-writing the same run id is
// rejected by the primary key, keeping historical runs immutable.
func (s *Store) WriteRun(ctx context.Context, res *batch.Result, startedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, files, analyzed, failed) VALUES (?, ?, ?, ?, ?)`,
		res.RunID, startedAt.UTC().Format(time.RFC3339), len(res.Files), res.Analyzed, res.Failed)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", res.RunID, err)
	}

	fileStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_files (run_id, path, analyzed, errors, warnings, total) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare run_files insert: %w", err)
	}
	defer fileStmt.Close()

	findingStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings (run_id, path, severity, category, entity_id, message, locator) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare findings insert: %w", err)
	}
	defer findingStmt.Close()

	for _, fr := range res.Files {
		_, err = fileStmt.ExecContext(ctx, res.RunID, fr.Path, fr.Analyzed,
			fr.Summary.Errors(), fr.Summary.Warnings(), fr.Summary.Total)
		if err != nil {
			return fmt.Errorf("insert run file %s: %w", fr.Path, err)
		}
		for _, f := range fr.Findings {
			_, err = findingStmt.ExecContext(ctx, res.RunID, fr.Path,
				f.Severity.String(), f.Category.String(), f.EntityID, f.Message, f.Locator.String())
			if err != nil {
				return fmt.Errorf("insert finding for %s: %w", fr.Path, err)
			}
		}
	}

	return tx.Commit()
}
