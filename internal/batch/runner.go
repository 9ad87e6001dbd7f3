// Package batch runs the per-file analysis pipeline over a directory of
// scenarios. Files are independent, so the pipeline fans out to a bounded
// worker pool and collects per-file results through a channel; one broken
// file is recorded as a failed row and never aborts the run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/drivelab/oscheck/internal/check"
	"github.com/drivelab/oscheck/internal/xosc"
)

// FileResult is the outcome of one file's parse -> schema gate -> analyze
// pipeline. Analyzed is false when the file never reached the rule engine
// (unreadable, unparseable, or schema-invalid); its findings then hold the
// file-level failure.
type FileResult struct {
	Path     string          `json:"path"`
	Analyzed bool            `json:"analyzed"`
	Findings []check.Finding `json:"findings"`
	Summary  check.Summary   `json:"summary"`
}

// Result is the multi-file rollup.
type Result struct {
	// RunID is a time-sortable UUIDv7 identifying this batch run.
	RunID    string       `json:"run_id"`
	Files    []FileResult `json:"files"`
	Analyzed int          `json:"analyzed"`
	Failed   int          `json:"failed"`
}

// AnalyzeFile runs the full single-file pipeline. Schema-invalid files do
// not reach the checkers: their result carries the schema findings only,
// mirroring the collaborator contract where validation gates analysis.
func AnalyzeFile(path string, cfg check.Config) FileResult {
	res, err := xosc.Load(path)
	if err != nil {
		findings := check.Aggregate([]check.Finding{xosc.FileFailure(err)})
		return FileResult{
			Path:     path,
			Findings: findings,
			Summary:  check.Summarize(findings),
		}
	}

	if res.Scenario == nil || len(res.Schema) > 0 {
		findings := check.Aggregate(res.Schema)
		return FileResult{
			Path:     path,
			Findings: findings,
			Summary:  check.Summarize(findings),
		}
	}

	findings, summary := check.Analyze(res.Scenario, cfg)
	return FileResult{
		Path:     path,
		Analyzed: true,
		Findings: findings,
		Summary:  summary,
	}
}

// Run analyzes every .xosc file under dir with up to workers parallel
// pipelines. Results are returned sorted by path so the rollup is
// deterministic regardless of completion order.
func Run(ctx context.Context, dir string, cfg check.Config, workers int) (*Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.xosc"))
	if err != nil {
		return nil, fmt.Errorf("scan directory %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .xosc files in %s", dir)
	}
	sort.Strings(paths)

	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	runID := uuid.Must(uuid.NewV7()).String()
	slog.Info("batch run starting", "run_id", runID, "files", len(paths), "workers", workers)

	jobs := make(chan string)
	results := make(chan FileResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- AnalyzeFile(path, cfg)
			}
		}()
	}

	// The producer must stay responsive to cancellation: workers stop
	// receiving once the context is done, and an unconditional send here
	// would block forever.
produce:
	for _, path := range paths {
		select {
		case jobs <- path:
		case <-ctx.Done():
			break produce
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	out := &Result{RunID: runID}
	for fr := range results {
		out.Files = append(out.Files, fr)
		if fr.Analyzed {
			out.Analyzed++
		} else {
			out.Failed++
		}
	}
	sort.Slice(out.Files, func(i, j int) bool {
		return out.Files[i].Path < out.Files[j].Path
	})

	if err := ctx.Err(); err != nil {
		return out, err
	}
	slog.Info("batch run finished", "run_id", runID,
		"analyzed", out.Analyzed, "failed", out.Failed)
	return out, nil
}
