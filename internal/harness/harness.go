// Package harness runs YAML conformance fixtures against the rule
// engine. A fixture declares a scenario, threshold overrides, and the
// findings the analysis must produce; the harness builds the model,
// runs the real checkers, and verifies the expectations by subset
// match. Golden comparison of the full finding sequence is layered on
// top for fixtures where exact output matters.
package harness

import (
	"fmt"
	"strings"

	"github.com/drivelab/oscheck/internal/check"
)

// Result is the outcome of running one fixture.
type Result struct {
	Findings []check.Finding
	Summary  check.Summary

	// Mismatches lists expectation failures, empty when the fixture
	// passed. Each entry is human readable and names the expectation.
	Mismatches []string
}

// Passed reports whether every expectation was satisfied.
func (r *Result) Passed() bool {
	return len(r.Mismatches) == 0
}

// Run builds the fixture's scenario model, analyzes it, and checks the
// expected findings. Building errors (malformed fixtures) are returned
// as errors; expectation failures land in Result.Mismatches.
func Run(s *Scenario) (*Result, error) {
	sc, cfg, err := s.Build()
	if err != nil {
		return nil, err
	}

	findings, summary := check.Analyze(sc, cfg)
	res := &Result{Findings: findings, Summary: summary}

	matched := make([]bool, len(findings))
	for _, exp := range s.Expect {
		if !matchExpected(exp, findings, matched) {
			res.Mismatches = append(res.Mismatches,
				fmt.Sprintf("expected finding not produced: %s", describeExpected(exp)))
		}
	}
	for i, f := range findings {
		if !matched[i] {
			res.Mismatches = append(res.Mismatches,
				fmt.Sprintf("unexpected finding: %s %s [%s] %s", f.Severity, f.Category, f.EntityID, f.Message))
		}
	}
	return res, nil
}

// matchExpected finds the first unclaimed finding satisfying the matcher
// and claims it, so one finding cannot satisfy two expectations.
func matchExpected(exp ExpectedFinding, findings []check.Finding, matched []bool) bool {
	for i, f := range findings {
		if matched[i] {
			continue
		}
		if exp.Severity != "" && f.Severity.String() != exp.Severity {
			continue
		}
		if exp.Category != "" && f.Category.String() != exp.Category {
			continue
		}
		if exp.Entity != "" && f.EntityID != exp.Entity {
			continue
		}
		if exp.Contains != "" && !strings.Contains(f.Message, exp.Contains) {
			continue
		}
		matched[i] = true
		return true
	}
	return false
}

func describeExpected(exp ExpectedFinding) string {
	var parts []string
	if exp.Severity != "" {
		parts = append(parts, "severity="+exp.Severity)
	}
	if exp.Category != "" {
		parts = append(parts, "category="+exp.Category)
	}
	if exp.Entity != "" {
		parts = append(parts, "entity="+exp.Entity)
	}
	if exp.Contains != "" {
		parts = append(parts, fmt.Sprintf("message~%q", exp.Contains))
	}
	if len(parts) == 0 {
		return "(any finding)"
	}
	return strings.Join(parts, " ")
}
