package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/drivelab/oscheck/internal/check"
	"github.com/drivelab/oscheck/internal/geom"
	"github.com/drivelab/oscheck/internal/model"
)

// Scenario is a YAML conformance fixture: a scenario description, the
// thresholds to analyze it with, and the findings the rule engine is
// expected to produce.
type Scenario struct {
	// Name uniquely identifies this fixture. It is also the golden file
	// name for golden comparisons.
	Name string `yaml:"name"`

	// Description explains what this fixture validates.
	Description string `yaml:"description,omitempty"`

	// Config overrides individual analysis thresholds. Unset fields keep
	// the documented defaults.
	Config *ConfigOverride `yaml:"config,omitempty"`

	// Entities declares the scene members.
	Entities []EntityDef `yaml:"entities"`

	// Events lists storyboard events in file order.
	Events []EventDef `yaml:"events,omitempty"`

	// Trajectories maps entity ids to waypoint lists.
	Trajectories map[string][]WaypointDef `yaml:"trajectories,omitempty"`

	// Expect lists the findings the analysis must produce, in any order.
	// Subset match per finding: empty fields are not compared.
	Expect []ExpectedFinding `yaml:"expect"`
}

// ConfigOverride mirrors the threshold configuration with optional fields.
type ConfigOverride struct {
	PositionEpsilon *float64 `yaml:"position_epsilon,omitempty"`
	SpeedWarn       *float64 `yaml:"speed_warn,omitempty"`
	SpeedError      *float64 `yaml:"speed_error,omitempty"`
	AccelWarn       *float64 `yaml:"accel_warn,omitempty"`
	AccelError      *float64 `yaml:"accel_error,omitempty"`
	SwimAngleWarn   *float64 `yaml:"swim_angle_warn,omitempty"`
	SwimAngleError  *float64 `yaml:"swim_angle_error,omitempty"`
}

// EntityDef declares one entity.
type EntityDef struct {
	ID   string   `yaml:"id"`
	Type string   `yaml:"type,omitempty"`
	Pose *PoseDef `yaml:"pose,omitempty"`

	// Footprint dimensions. Radius selects a circular footprint; length
	// and width select a rectangular one.
	Length float64 `yaml:"length,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
}

// PoseDef is an initial pose.
type PoseDef struct {
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z,omitempty"`
	Heading float64 `yaml:"heading,omitempty"`
}

// EventDef is one storyboard event. Trajectory events pick up the
// waypoints declared for their entity in Trajectories.
type EventDef struct {
	Kind   string  `yaml:"kind"` // add | remove | trajectory
	Entity string  `yaml:"entity"`
	Time   float64 `yaml:"time"`
}

// WaypointDef is one trajectory waypoint.
type WaypointDef struct {
	Time    float64 `yaml:"t"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z,omitempty"`
	Heading float64 `yaml:"heading,omitempty"`
}

// ExpectedFinding is a subset matcher for one finding.
type ExpectedFinding struct {
	Severity string `yaml:"severity,omitempty"`
	Category string `yaml:"category,omitempty"`
	Entity   string `yaml:"entity,omitempty"`

	// Contains matches a substring of the finding message.
	Contains string `yaml:"contains,omitempty"`
}

// LoadScenario reads and strictly decodes a fixture file. Unknown YAML
// keys are an error so typos in fixtures fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("fixture %s: missing name", path)
	}
	return &s, nil
}

// Build constructs the immutable scenario model and the analysis config
// from the fixture.
func (s *Scenario) Build() (*model.Scenario, check.Config, error) {
	cfg := check.DefaultConfig()
	if o := s.Config; o != nil {
		applyOverride(&cfg.PositionEpsilon, o.PositionEpsilon)
		applyOverride(&cfg.SpeedWarn, o.SpeedWarn)
		applyOverride(&cfg.SpeedError, o.SpeedError)
		applyOverride(&cfg.AccelWarn, o.AccelWarn)
		applyOverride(&cfg.AccelError, o.AccelError)
		applyOverride(&cfg.SwimAngleWarn, o.SwimAngleWarn)
		applyOverride(&cfg.SwimAngleError, o.SwimAngleError)
	}

	entities := make([]model.Entity, 0, len(s.Entities))
	for _, e := range s.Entities {
		entities = append(entities, buildEntity(e))
	}

	trajectories := make(map[string]*model.Trajectory, len(s.Trajectories))
	for entityID, wps := range s.Trajectories {
		tr := &model.Trajectory{Waypoints: make([]model.Waypoint, 0, len(wps))}
		for _, wp := range wps {
			tr.Waypoints = append(tr.Waypoints, model.Waypoint{
				Time: wp.Time, X: wp.X, Y: wp.Y, Z: wp.Z, Heading: wp.Heading,
			})
		}
		trajectories[entityID] = tr
	}

	events := make([]model.StoryboardEvent, 0, len(s.Events))
	for i, ev := range s.Events {
		kind, err := eventKind(ev.Kind)
		if err != nil {
			return nil, cfg, fmt.Errorf("event %d: %w", i, err)
		}
		sev := model.StoryboardEvent{
			Kind:     kind,
			EntityID: ev.Entity,
			Time:     ev.Time,
			Index:    i,
		}
		if kind == model.EventTrajectory {
			sev.Trajectory = trajectories[ev.Entity]
		}
		events = append(events, sev)
	}

	sc, err := model.NewScenario(model.Header{Description: s.Description}, entities, events, trajectories)
	if err != nil {
		return nil, cfg, fmt.Errorf("build scenario %s: %w", s.Name, err)
	}
	return sc, cfg, nil
}

func buildEntity(e EntityDef) model.Entity {
	ent := model.Entity{ID: e.ID, Type: e.Type}
	if e.Pose != nil {
		ent.InitialPose = &geom.Pose{X: e.Pose.X, Y: e.Pose.Y, Z: e.Pose.Z, Heading: e.Pose.Heading}
	}
	switch {
	case e.Radius > 0:
		ent.Footprint = geom.Footprint{Kind: geom.FootprintCircle, Radius: e.Radius}
	case e.Length > 0 && e.Width > 0:
		ent.Footprint = geom.Footprint{Kind: geom.FootprintRect, Length: e.Length, Width: e.Width}
	}
	return ent
}

func eventKind(s string) (model.EventKind, error) {
	switch s {
	case "add":
		return model.EventAdd, nil
	case "remove":
		return model.EventRemove, nil
	case "trajectory":
		return model.EventTrajectory, nil
	default:
		return 0, fmt.Errorf("unknown event kind %q", s)
	}
}

func applyOverride(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
