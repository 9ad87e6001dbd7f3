package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/drivelab/oscheck/internal/check"
)

// snapshot is the canonical JSON form compared against golden files.
// Findings are already in report order, so marshaling is deterministic.
type snapshot struct {
	Name     string          `json:"name"`
	Findings []check.Finding `json:"findings"`
	Summary  check.Summary   `json:"summary"`
}

// RunWithGolden runs a fixture and compares the full finding sequence
// against testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()

	res, err := Run(s)
	if err != nil {
		return nil, err
	}

	findings := res.Findings
	if findings == nil {
		findings = []check.Finding{}
	}
	data, err := json.MarshalIndent(snapshot{
		Name:     s.Name,
		Findings: findings,
		Summary:  res.Summary,
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, append(data, '\n'))

	return res, nil
}
