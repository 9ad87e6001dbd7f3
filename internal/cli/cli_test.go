package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanScenario = `<?xml version="1.0" encoding="UTF-8"?>
<OpenSCENARIO>
  <FileHeader revMajor="1" revMinor="0" author="test" date="" description=""/>
  <Entities>
    <ScenarioObject name="Ego"><Vehicle name="car" vehicleCategory="car"/></ScenarioObject>
  </Entities>
  <Storyboard/>
</OpenSCENARIO>`

const doubleAddScenario = `<?xml version="1.0" encoding="UTF-8"?>
<OpenSCENARIO>
  <FileHeader revMajor="1" revMinor="0" author="test" date="" description=""/>
  <Entities>
    <ScenarioObject name="Ped"><Pedestrian name="walker" pedestrianCategory="pedestrian"/></ScenarioObject>
  </Entities>
  <Storyboard>
    <Story name="main">
      <Act name="act1">
        <ManeuverGroup name="peds">
          <Actors><EntityRef entityRef="Ped"/></Actors>
          <Maneuver name="m1">
            <Event name="Add_Ped"/>
            <Event name="Add_Ped_again">
              <StartTrigger>
                <ConditionGroup>
                  <Condition name="c1">
                    <ByValueCondition>
                      <SimulationTimeCondition value="8" rule="greaterThan"/>
                    </ByValueCondition>
                  </Condition>
                </ConditionGroup>
              </StartTrigger>
            </Event>
          </Maneuver>
        </ManeuverGroup>
      </Act>
    </Story>
  </Storyboard>
</OpenSCENARIO>`

const brokenScenario = `<OpenSCENARIO>
  <Entities/>
  <Storyboard/>
</OpenSCENARIO>`

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (*cobra.Command, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return cmd, out.String(), err
}

func TestCheckCleanFile(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "clean.xosc", cleanScenario)

	_, out, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0 finding(s)")
}

func TestCheckErrorFindingExitCode(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "double.xosc", doubleAddScenario)

	_, out, err := execute(t, "check", path)
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.Contains(t, out, "InvalidAddRemove")
	assert.Contains(t, out, "already present")
}

func TestCheckInvalidFileExitCode(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "broken.xosc", brokenScenario)

	_, out, err := execute(t, "check", path)
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.Contains(t, out, "file failed validation")
}

func TestCheckJSONOutput(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "clean.xosc", cleanScenario)

	_, out, err := execute(t, "--format", "json", "check", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestCheckWritesCSVAndSARIF(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "double.xosc", doubleAddScenario)
	csvPath := filepath.Join(dir, "out.csv")
	sarifPath := filepath.Join(dir, "out.sarif")

	_, _, err := execute(t, "check", path, "--out-csv", csvPath, "--out-sarif", sarifPath)
	require.Error(t, err) // error findings still exit 1

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "InvalidAddRemove")

	sarifData, err := os.ReadFile(sarifPath)
	require.NoError(t, err)
	assert.Contains(t, string(sarifData), `"2.1.0"`)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "check", "whatever.xosc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestBadConfigExitCode(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("speed_warn: 50\nspeed_error: 40\n"), 0o644))
	path := writeScenario(t, dir, "clean.xosc", cleanScenario)

	_, _, err := execute(t, "--config", cfgPath, "check", path)
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitCommandError, exitErr.Code)
}

func TestBatchMixedDirectory(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.xosc", cleanScenario)
	writeScenario(t, dir, "b.xosc", brokenScenario)
	writeScenario(t, dir, "c.xosc", cleanScenario)

	_, out, err := execute(t, "batch", dir)
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitFailure, exitErr.Code)
	assert.Contains(t, out, "3 file(s), 2 analyzed, 1 failed")
}

func TestBatchAllCleanExitsZero(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.xosc", cleanScenario)

	_, out, err := execute(t, "batch", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 analyzed, 0 failed")
}

func TestBatchEmptyDirectory(t *testing.T) {
	_, _, err := execute(t, "batch", t.TempDir())
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, ExitCommandError, exitErr.Code)
}

func TestBatchWritesCSVAndDatabase(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.xosc", cleanScenario)
	csvPath := filepath.Join(dir, "rollup.csv")
	dbPath := filepath.Join(dir, "results.db")

	_, _, err := execute(t, "batch", dir, "--out-csv", csvPath, "--db", dbPath)
	require.NoError(t, err)

	csvData, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "scenario_file,analyzed,errors,warnings,total")

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
}

func TestBatchJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.xosc", cleanScenario)

	_, out, err := execute(t, "--format", "json", "batch", dir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(WrapExitError(ExitFailure, "wrap", errors.New("cause"))))
}
