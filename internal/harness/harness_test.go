package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "fixtures", name))
	require.NoError(t, err)
	return s
}

func TestFixturesPass(t *testing.T) {
	entries, err := os.ReadDir(filepath.Join("testdata", "fixtures"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		entry := entry
		t.Run(entry.Name(), func(t *testing.T) {
			s := loadFixture(t, entry.Name())
			res, err := Run(s)
			require.NoError(t, err)
			assert.True(t, res.Passed(), "mismatches: %v", res.Mismatches)
		})
	}
}

func TestGoldenDoubleAdd(t *testing.T) {
	s := loadFixture(t, "double-add.yaml")
	res, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, res.Passed())
}

func TestGoldenClean(t *testing.T) {
	s := loadFixture(t, "clean.yaml")
	res, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, res.Passed())
}

func TestUnexpectedFindingIsMismatch(t *testing.T) {
	s := loadFixture(t, "double-add.yaml")
	s.Expect = nil

	res, err := Run(s)
	require.NoError(t, err)
	require.Len(t, res.Mismatches, 1)
	assert.Contains(t, res.Mismatches[0], "unexpected finding")
}

func TestUnmetExpectationIsMismatch(t *testing.T) {
	s := loadFixture(t, "clean.yaml")
	s.Expect = []ExpectedFinding{{Category: "SpeedThreshold"}}

	res, err := Run(s)
	require.NoError(t, err)
	require.Len(t, res.Mismatches, 1)
	assert.Contains(t, res.Mismatches[0], "expected finding not produced")
	assert.Contains(t, res.Mismatches[0], "category=SpeedThreshold")
}

func TestLoadScenarioRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\nbogus: true\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenarioRequiresName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unnamed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: no name\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
}

func TestBuildRejectsUnknownEventKind(t *testing.T) {
	s := &Scenario{
		Name:     "bad-kind",
		Entities: []EntityDef{{ID: "ego"}},
		Events:   []EventDef{{Kind: "teleport", Entity: "ego"}},
	}

	_, _, err := s.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event kind")
}

func TestBuildAppliesConfigOverrides(t *testing.T) {
	warn := 1.5
	s := &Scenario{
		Name:     "override",
		Config:   &ConfigOverride{SpeedWarn: &warn},
		Entities: []EntityDef{{ID: "ego"}},
	}

	_, cfg, err := s.Build()
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.SpeedWarn)
	// Untouched thresholds keep defaults.
	assert.Equal(t, 83.0, cfg.SpeedError)
}
