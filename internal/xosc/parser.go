// Package xosc converts OpenSCENARIO (.xosc) files into the analysis
// model. It is the parsing collaborator sitting outside the rule engine:
// the checkers only ever see the model.Scenario it produces.
//
// The conversion follows the authoring conventions of the source corpus:
// entity presence events are maneuver events named "Add_*" / "Remove_*",
// trajectories come from FollowTrajectoryAction polylines, and event times
// come from SimulationTimeCondition start triggers (0 when absent).
package xosc

import (
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/drivelab/oscheck/internal/check"
	"github.com/drivelab/oscheck/internal/geom"
	"github.com/drivelab/oscheck/internal/model"
)

// Result is the parser output: the scenario model plus any schema-level
// findings the structural gate produced. The findings satisfy the
// schema-validation collaborator contract and merge into the same ordered
// sequence as the rule-engine findings. Scenario is nil when the document
// parsed as XML but could not satisfy the model postconditions.
type Result struct {
	Scenario *model.Scenario
	Schema   []check.Finding
}

// Load reads, expands, and parses a .xosc file.
func Load(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse expands $parameter placeholders and converts the document into a
// model.Scenario. A document that cannot be parsed at all yields an error;
// structural defects in a parseable document yield SchemaViolation
// findings in the Result instead.
func Parse(data []byte) (*Result, error) {
	expanded, err := expandParameters(data)
	if err != nil {
		return nil, fmt.Errorf("expand parameters: %w", err)
	}

	var doc document
	if err := xml.Unmarshal(expanded, &doc); err != nil {
		return nil, fmt.Errorf("parse OpenSCENARIO XML: %w", err)
	}

	schema := validateStructure(&doc)

	scenario, err := buildModel(&doc)
	if err != nil {
		// The document parsed but violates the model postconditions.
		// Record it as a schema failure so batch runs keep going; the
		// Result carries no scenario in that case.
		schema = append(schema, FileFailure(err))
		return &Result{Schema: schema}, nil
	}

	return &Result{Scenario: scenario, Schema: schema}, nil
}

// buildModel walks the parsed document and assembles the immutable model.
func buildModel(doc *document) (*model.Scenario, error) {
	header := model.Header{}
	if doc.FileHeader != nil {
		header = model.Header{
			Author:      doc.FileHeader.Author,
			Date:        doc.FileHeader.Date,
			Description: doc.FileHeader.Description,
			RevMajor:    doc.FileHeader.RevMajor,
			RevMinor:    doc.FileHeader.RevMinor,
		}
	}

	var entities []model.Entity
	if doc.Entities != nil {
		for _, obj := range doc.Entities.Objects {
			entities = append(entities, buildEntity(obj))
		}
	}

	var events []model.StoryboardEvent
	trajectories := make(map[string]*model.Trajectory)

	if doc.Storyboard != nil {
		applyInitPoses(doc.Storyboard, entities)

		for _, st := range doc.Storyboard.Stories {
			for _, a := range st.Acts {
				for _, mg := range a.Groups {
					actorIDs := actorRefs(mg)
					if len(actorIDs) > 1 {
						slog.Warn("multiple actors in maneuver group, events apply to all",
							"group", mg.Name, "actors", actorIDs)
					}
					for _, mv := range mg.Maneuvers {
						for _, ev := range mv.Events {
							events = append(events,
								buildEvents(ev, actorIDs, trajectories)...)
						}
					}
				}
			}
		}
	}

	return model.NewScenario(header, entities, events, trajectories)
}

// buildEntity maps a ScenarioObject to a typed entity with a rectangular
// footprint from its bounding box, when one is declared.
func buildEntity(obj scenarioObject) model.Entity {
	e := model.Entity{ID: obj.Name}

	var bb *boundingBox
	switch {
	case obj.Vehicle != nil:
		e.Type = obj.Vehicle.Category
		bb = obj.Vehicle.BoundingBox
	case obj.Pedestrian != nil:
		e.Type = obj.Pedestrian.Category
		if e.Type == "" {
			e.Type = "pedestrian"
		}
		bb = obj.Pedestrian.BoundingBox
	case obj.MiscObject != nil:
		e.Type = obj.MiscObject.Category
		bb = obj.MiscObject.BoundingBox
	}

	if bb != nil && bb.Dimensions.Length > 0 && bb.Dimensions.Width > 0 {
		e.Footprint = geom.Footprint{
			Kind:   geom.FootprintRect,
			Length: bb.Dimensions.Length,
			Width:  bb.Dimensions.Width,
		}
	}
	return e
}

// applyInitPoses attaches TeleportAction world positions to the declared
// entities. Entities without a teleport in Init stay parked (nil pose).
// Both sides of the match are canonicalized: entity names are still raw
// here and only normalized later at model construction.
func applyInitPoses(sb *storyboard, entities []model.Entity) {
	if sb.Init == nil {
		return
	}
	for _, priv := range sb.Init.Privates {
		ref := model.CanonicalID(priv.EntityRef)
		for _, action := range priv.Actions {
			if action.Teleport == nil || action.Teleport.Position.World == nil {
				continue
			}
			wp := action.Teleport.Position.World
			for i := range entities {
				if model.CanonicalID(entities[i].ID) == ref {
					entities[i].InitialPose = &geom.Pose{X: wp.X, Y: wp.Y, Z: wp.Z, Heading: wp.H}
				}
			}
		}
	}
}

// actorRefs collects the concrete actor ids of a maneuver group. Refs
// still containing an unexpanded parameter are dropped, matching the
// source corpus convention of skipping "$" actors.
func actorRefs(mg maneuverGroup) []string {
	var ids []string
	for _, ref := range mg.Actors.Refs {
		if strings.Contains(ref.EntityRef, "$") {
			continue
		}
		ids = append(ids, ref.EntityRef)
	}
	return ids
}

// buildEvents maps a maneuver event onto storyboard events for each actor.
// The kind is inferred from the authoring name convention, trajectories
// from the action payload.
func buildEvents(ev event, actorIDs []string, trajectories map[string]*model.Trajectory) []model.StoryboardEvent {
	t := eventTime(ev)
	traj := eventTrajectory(ev)

	var out []model.StoryboardEvent
	for _, id := range actorIDs {
		switch {
		case strings.Contains(ev.Name, "Add_"):
			out = append(out, model.StoryboardEvent{
				Kind: model.EventAdd, EntityID: id, Time: t,
			})
		case strings.Contains(ev.Name, "Remove_"):
			out = append(out, model.StoryboardEvent{
				Kind: model.EventRemove, EntityID: id, Time: t,
			})
		case traj != nil:
			out = append(out, model.StoryboardEvent{
				Kind: model.EventTrajectory, EntityID: id, Time: t, Trajectory: traj,
			})
			trajectories[model.CanonicalID(id)] = traj
		}
	}
	return out
}

// eventTime reads the first SimulationTimeCondition of the start trigger.
func eventTime(ev event) float64 {
	if ev.StartTrigger == nil || len(ev.StartTrigger.SimTimes) == 0 {
		return 0
	}
	return ev.StartTrigger.SimTimes[0].Value
}

// eventTrajectory extracts the polyline of a FollowTrajectoryAction.
func eventTrajectory(ev event) *model.Trajectory {
	for _, action := range ev.Actions {
		if action.Private == nil || action.Private.Routing == nil {
			continue
		}
		follow := action.Private.Routing.Follow
		if follow == nil || follow.Trajectory == nil {
			continue
		}
		tr := &model.Trajectory{}
		for _, v := range follow.Trajectory.Vertices {
			wp := model.Waypoint{Time: v.Time}
			if v.Position.World != nil {
				wp.X = v.Position.World.X
				wp.Y = v.Position.World.Y
				wp.Z = v.Position.World.Z
				wp.Heading = v.Position.World.H
			}
			tr.Waypoints = append(tr.Waypoints, wp)
		}
		return tr
	}
	return nil
}
