package xosc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelab/oscheck/internal/check"
	"github.com/drivelab/oscheck/internal/model"
)

const validScenario = `<?xml version="1.0" encoding="UTF-8"?>
<OpenSCENARIO>
  <FileHeader revMajor="1" revMinor="0" author="test" date="2024-05-01" description="crossing"/>
  <Entities>
    <ScenarioObject name="Ego">
      <Vehicle name="car" vehicleCategory="car">
        <BoundingBox>
          <Dimensions width="2" length="4.5" height="1.5"/>
        </BoundingBox>
      </Vehicle>
    </ScenarioObject>
    <ScenarioObject name="Ped">
      <Pedestrian name="walker" pedestrianCategory="pedestrian"/>
    </ScenarioObject>
  </Entities>
  <Storyboard>
    <Init>
      <Actions>
        <Private entityRef="Ego">
          <PrivateAction>
            <TeleportAction>
              <Position>
                <WorldPosition x="10" y="20" z="0" h="1.5"/>
              </Position>
            </TeleportAction>
          </PrivateAction>
        </Private>
      </Actions>
    </Init>
    <Story name="main">
      <Act name="act1">
        <ManeuverGroup name="peds">
          <Actors>
            <EntityRef entityRef="Ped"/>
          </Actors>
          <Maneuver name="m1">
            <Event name="Add_Ped">
              <StartTrigger>
                <ConditionGroup>
                  <Condition name="c1">
                    <ByValueCondition>
                      <SimulationTimeCondition value="3" rule="greaterThan"/>
                    </ByValueCondition>
                  </Condition>
                </ConditionGroup>
              </StartTrigger>
            </Event>
            <Event name="Remove_Ped">
              <StartTrigger>
                <ConditionGroup>
                  <Condition name="c2">
                    <ByValueCondition>
                      <SimulationTimeCondition value="8" rule="greaterThan"/>
                    </ByValueCondition>
                  </Condition>
                </ConditionGroup>
              </StartTrigger>
            </Event>
          </Maneuver>
        </ManeuverGroup>
        <ManeuverGroup name="ego">
          <Actors>
            <EntityRef entityRef="Ego"/>
          </Actors>
          <Maneuver name="m2">
            <Event name="Drive">
              <Action name="follow">
                <PrivateAction>
                  <RoutingAction>
                    <FollowTrajectoryAction>
                      <Trajectory name="lane">
                        <Shape>
                          <Polyline>
                            <Vertex time="0">
                              <Position><WorldPosition x="10" y="20" h="0"/></Position>
                            </Vertex>
                            <Vertex time="1">
                              <Position><WorldPosition x="20" y="20" h="0"/></Position>
                            </Vertex>
                          </Polyline>
                        </Shape>
                      </Trajectory>
                    </FollowTrajectoryAction>
                  </RoutingAction>
                </PrivateAction>
              </Action>
            </Event>
          </Maneuver>
        </ManeuverGroup>
      </Act>
    </Story>
  </Storyboard>
</OpenSCENARIO>`

func TestParseValidScenario(t *testing.T) {
	res, err := Parse([]byte(validScenario))
	require.NoError(t, err)
	require.NotNil(t, res.Scenario)
	assert.Empty(t, res.Schema)

	s := res.Scenario
	assert.Equal(t, "test", s.Header.Author)
	assert.Equal(t, 1, s.Header.RevMajor)

	require.Len(t, s.Entities, 2)
	ego := s.Entity("Ego")
	require.NotNil(t, ego)
	assert.Equal(t, "car", ego.Type)
	require.NotNil(t, ego.InitialPose)
	assert.Equal(t, 10.0, ego.InitialPose.X)
	assert.Equal(t, 20.0, ego.InitialPose.Y)
	assert.Equal(t, 4.5, ego.Footprint.Length)

	ped := s.Entity("Ped")
	require.NotNil(t, ped)
	assert.Equal(t, "pedestrian", ped.Type)
	assert.Nil(t, ped.InitialPose)

	require.Len(t, s.Events, 3)
	assert.Equal(t, model.EventTrajectory, s.Events[0].Kind)
	assert.Equal(t, model.EventAdd, s.Events[1].Kind)
	assert.Equal(t, 3.0, s.Events[1].Time)
	assert.Equal(t, model.EventRemove, s.Events[2].Kind)
	assert.Equal(t, 8.0, s.Events[2].Time)

	tr := s.Trajectories["Ego"]
	require.NotNil(t, tr)
	require.Len(t, tr.Waypoints, 2)
	assert.Equal(t, 20.0, tr.Waypoints[1].X)
}

func TestParseInitPoseMatchesUncanonicalName(t *testing.T) {
	// The object name carries stray whitespace while the teleport ref is
	// clean; the pose must still attach to the entity.
	doc := `<OpenSCENARIO>
  <FileHeader revMajor="1" revMinor="0" author="" date="" description=""/>
  <Entities>
    <ScenarioObject name=" Ego "><Vehicle name="car" vehicleCategory="car"/></ScenarioObject>
  </Entities>
  <Storyboard>
    <Init>
      <Actions>
        <Private entityRef="Ego">
          <PrivateAction>
            <TeleportAction>
              <Position><WorldPosition x="7" y="0" z="0" h="0"/></Position>
            </TeleportAction>
          </PrivateAction>
        </Private>
      </Actions>
    </Init>
  </Storyboard>
</OpenSCENARIO>`

	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, res.Scenario)

	ego := res.Scenario.Entity("Ego")
	require.NotNil(t, ego)
	require.NotNil(t, ego.InitialPose)
	assert.Equal(t, 7.0, ego.InitialPose.X)
}

func TestParseRejectsMalformedXML(t *testing.T) {
	_, err := Parse([]byte("<OpenSCENARIO><FileHeader"))
	require.Error(t, err)
}

func TestParseMissingHeader(t *testing.T) {
	doc := `<OpenSCENARIO>
  <Entities>
    <ScenarioObject name="Ego"><Vehicle name="car" vehicleCategory="car"/></ScenarioObject>
  </Entities>
  <Storyboard/>
</OpenSCENARIO>`

	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, res.Schema, 1)
	assert.Equal(t, check.CategorySchemaViolation, res.Schema[0].Category)
	assert.Contains(t, res.Schema[0].Message, "FileHeader")
}

func TestParseUnsupportedRevision(t *testing.T) {
	doc := `<OpenSCENARIO>
  <FileHeader revMajor="2" revMinor="0" author="" date="" description=""/>
  <Entities>
    <ScenarioObject name="Ego"><Vehicle name="car" vehicleCategory="car"/></ScenarioObject>
  </Entities>
  <Storyboard/>
</OpenSCENARIO>`

	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, res.Schema, 1)
	assert.Contains(t, res.Schema[0].Message, "unsupported OpenSCENARIO revision 2.0")
}

func TestParseNoEntities(t *testing.T) {
	doc := `<OpenSCENARIO>
  <FileHeader revMajor="1" revMinor="0" author="" date="" description=""/>
  <Entities/>
  <Storyboard/>
</OpenSCENARIO>`

	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, res.Schema, 1)
	assert.Contains(t, res.Schema[0].Message, "no ScenarioObject")
}

func TestParseUnnamedObject(t *testing.T) {
	doc := `<OpenSCENARIO>
  <FileHeader revMajor="1" revMinor="0" author="" date="" description=""/>
  <Entities>
    <ScenarioObject><Vehicle name="car" vehicleCategory="car"/></ScenarioObject>
  </Entities>
  <Storyboard/>
</OpenSCENARIO>`

	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	// The unnamed object is both a schema violation and a model
	// postcondition failure, so no scenario is produced.
	assert.Nil(t, res.Scenario)
	require.NotEmpty(t, res.Schema)
	assert.Contains(t, res.Schema[0].Message, "has no name")
}

func TestParseDuplicateEntityIDs(t *testing.T) {
	doc := `<OpenSCENARIO>
  <FileHeader revMajor="1" revMinor="0" author="" date="" description=""/>
  <Entities>
    <ScenarioObject name="Ego"><Vehicle name="car" vehicleCategory="car"/></ScenarioObject>
    <ScenarioObject name="Ego"><Vehicle name="car" vehicleCategory="car"/></ScenarioObject>
  </Entities>
  <Storyboard/>
</OpenSCENARIO>`

	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Nil(t, res.Scenario)
	require.Len(t, res.Schema, 1)
	assert.Contains(t, res.Schema[0].Message, "duplicate entity id")
}

func TestParameterExpansion(t *testing.T) {
	doc := `<OpenSCENARIO>
  <FileHeader revMajor="1" revMinor="0" author="" date="" description=""/>
  <ParameterDeclarations>
    <ParameterDeclaration name="EgoX" parameterType="double" value="42"/>
  </ParameterDeclarations>
  <Entities>
    <ScenarioObject name="Ego"><Vehicle name="car" vehicleCategory="car"/></ScenarioObject>
  </Entities>
  <Storyboard>
    <Init>
      <Actions>
        <Private entityRef="Ego">
          <PrivateAction>
            <TeleportAction>
              <Position><WorldPosition x="$EgoX" y="0" z="0" h="0"/></Position>
            </TeleportAction>
          </PrivateAction>
        </Private>
      </Actions>
    </Init>
  </Storyboard>
</OpenSCENARIO>`

	res, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, res.Scenario)

	ego := res.Scenario.Entity("Ego")
	require.NotNil(t, ego)
	require.NotNil(t, ego.InitialPose)
	assert.Equal(t, 42.0, ego.InitialPose.X)
}

func TestParameterSinglePassExpansion(t *testing.T) {
	// A parameter referencing another parameter is not re-expanded.
	data := []byte(`<Root>
  <ParameterDeclaration name="A" value="$B"/>
  <ParameterDeclaration name="B" value="7"/>
  <Value v="$A"/>
</Root>`)

	out, err := expandParameters(data)
	require.NoError(t, err)
	// $A is replaced by its literal value "$B" first, then the $B pass
	// rewrites that occurrence too: single pass in declaration order.
	assert.Contains(t, string(out), `<Value v="7"/>`)
}

func TestParameterScanSkipsStoryboard(t *testing.T) {
	data := []byte(`<Root>
  <Storyboard>
    <ParameterDeclaration name="Hidden" value="1"/>
  </Storyboard>
  <Value v="$Hidden"/>
</Root>`)

	out, err := expandParameters(data)
	require.NoError(t, err)
	assert.Contains(t, string(out), `$Hidden`)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xosc"))
	require.Error(t, err)
}

func TestLoadFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valid.xosc")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	res, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, res.Scenario)
	assert.Empty(t, res.Schema)
}

func TestFileFailure(t *testing.T) {
	f := FileFailure(assert.AnError)
	assert.Equal(t, check.SeverityError, f.Severity)
	assert.Equal(t, check.CategorySchemaViolation, f.Category)
	assert.Contains(t, f.Message, "not analyzable")
}
