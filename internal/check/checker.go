package check

import (
	"log/slog"

	"github.com/drivelab/oscheck/internal/model"
)

// Checker is a single analysis rule set. Checkers are pure: they read the
// scenario, emit findings, and never mutate the model. Any subset of
// checkers may run; the aggregator makes the combined output deterministic
// regardless of composition order.
type Checker interface {
	// Name identifies the checker in logs.
	Name() string

	// Check analyzes the scenario and returns its findings, possibly
	// empty, never an error: checkers are total over any Scenario that
	// passed model construction.
	Check(s *model.Scenario, cfg Config) []Finding
}

// DefaultCheckers returns the full rule set in evaluation order.
func DefaultCheckers() []Checker {
	return []Checker{
		&LifecycleChecker{},
		&PlacementChecker{},
		&DynamicsChecker{},
	}
}

// Analyze runs every default checker over the scenario and aggregates the
// results. extra carries externally produced findings (e.g. the schema
// validation collaborator) to merge into the same ordered sequence.
func Analyze(s *model.Scenario, cfg Config, extra ...Finding) ([]Finding, Summary) {
	lists := make([][]Finding, 0, 4)
	for _, c := range DefaultCheckers() {
		fs := c.Check(s, cfg)
		slog.Debug("checker finished", "checker", c.Name(), "findings", len(fs))
		lists = append(lists, fs)
	}
	lists = append(lists, extra)

	findings := Aggregate(lists...)
	return findings, Summarize(findings)
}
