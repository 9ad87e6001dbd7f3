// Package model defines the scenario data contract consumed by the rule
// engine. A Scenario is produced once by a parser (internal/xosc in this
// repo, or any other front end honoring the same postconditions) and is
// never mutated by the checkers.
//
// Postconditions enforced by NewScenario:
//   - entity ids are unique after NFC normalization
//   - waypoint times within a trajectory are monotonic non-decreasing
//   - storyboard events are ordered by (time, declaration index)
//
// A model violating these is rejected at construction, so every checker
// can assume them and stay total over any Scenario it receives.
package model

import (
	"fmt"
	"sort"

	"github.com/drivelab/oscheck/internal/geom"
)

// Entity is a declared scenario object.
type Entity struct {
	// ID uniquely identifies the entity within the scenario.
	ID string `json:"id"`

	// Type is the declared category, e.g. "car", "pedestrian".
	Type string `json:"type,omitempty"`

	// InitialPose is the init teleport position, nil when the entity is
	// declared without an on-scene placement (parked).
	InitialPose *geom.Pose `json:"initial_pose,omitempty"`

	// Footprint is the bounding shape used for overlap checks.
	Footprint geom.Footprint `json:"footprint,omitempty"`
}

// EventKind enumerates storyboard event variants.
type EventKind int

const (
	// EventAdd brings an entity onto the scene.
	EventAdd EventKind = iota

	// EventRemove takes an entity off the scene.
	EventRemove

	// EventTrajectory attaches a trajectory to an entity.
	EventTrajectory
)

// String returns the lower-case event kind name.
func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "add"
	case EventRemove:
		return "remove"
	case EventTrajectory:
		return "trajectory"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// StoryboardEvent is a single time-stamped storyboard action.
// Events reference entities by id; the reference is resolved by the
// lifecycle checker, not at construction, so a dangling id is a finding
// rather than a model error.
type StoryboardEvent struct {
	Kind     EventKind `json:"kind"`
	EntityID string    `json:"entity_id"`

	// Time is the scenario time in seconds at which the event fires.
	Time float64 `json:"time"`

	// Index is the zero-based declaration position in the storyboard.
	// Assigned by NewScenario; ties on Time are broken by Index.
	Index int `json:"index"`

	// Trajectory is set for EventTrajectory events only.
	Trajectory *Trajectory `json:"trajectory,omitempty"`
}

// Waypoint is one (time, position, heading) sample along a trajectory.
type Waypoint struct {
	Time    float64 `json:"time"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z,omitempty"`
	Heading float64 `json:"heading"`
}

// Trajectory is an ordered sequence of waypoints. Fewer than two waypoints
// is valid input ("insufficient data"), decreasing time is not.
type Trajectory struct {
	Waypoints []Waypoint `json:"waypoints"`
}

// Header carries file-level metadata read by report renderers.
type Header struct {
	Author      string `json:"author,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	RevMajor    int    `json:"rev_major"`
	RevMinor    int    `json:"rev_minor"`
}

// Scenario is the immutable analysis input.
type Scenario struct {
	Header       Header
	Entities     []Entity
	Events       []StoryboardEvent
	Trajectories map[string]*Trajectory
}

// NewScenario validates the parser postconditions and returns an immutable
// Scenario. Slices are copied so later caller mutation cannot break the
// ordering invariants.
func NewScenario(header Header, entities []Entity, events []StoryboardEvent, trajectories map[string]*Trajectory) (*Scenario, error) {
	ents := make([]Entity, len(entities))
	copy(ents, entities)

	seen := make(map[string]bool, len(ents))
	for i := range ents {
		ents[i].ID = CanonicalID(ents[i].ID)
		if ents[i].ID == "" {
			return nil, fmt.Errorf("entity %d: id must not be empty", i)
		}
		if seen[ents[i].ID] {
			return nil, fmt.Errorf("duplicate entity id %q", ents[i].ID)
		}
		seen[ents[i].ID] = true
	}

	evs := make([]StoryboardEvent, len(events))
	copy(evs, events)
	for i := range evs {
		evs[i].Index = i
		evs[i].EntityID = CanonicalID(evs[i].EntityID)
		if evs[i].EntityID == "" {
			return nil, fmt.Errorf("event %d: entity id must not be empty", i)
		}
		if evs[i].Trajectory != nil {
			if err := validateTrajectory(evs[i].Trajectory); err != nil {
				return nil, fmt.Errorf("event %d trajectory: %w", i, err)
			}
			cp := &Trajectory{Waypoints: make([]Waypoint, len(evs[i].Trajectory.Waypoints))}
			copy(cp.Waypoints, evs[i].Trajectory.Waypoints)
			evs[i].Trajectory = cp
		}
	}
	// Stable: declaration order is the tiebreak for equal timestamps.
	sort.SliceStable(evs, func(a, b int) bool {
		if evs[a].Time != evs[b].Time {
			return evs[a].Time < evs[b].Time
		}
		return evs[a].Index < evs[b].Index
	})

	trajs := make(map[string]*Trajectory, len(trajectories))
	for id, tr := range trajectories {
		if tr == nil {
			continue
		}
		if err := validateTrajectory(tr); err != nil {
			return nil, fmt.Errorf("trajectory for %q: %w", id, err)
		}
		cp := &Trajectory{Waypoints: make([]Waypoint, len(tr.Waypoints))}
		copy(cp.Waypoints, tr.Waypoints)
		trajs[CanonicalID(id)] = cp
	}

	return &Scenario{
		Header:       header,
		Entities:     ents,
		Events:       evs,
		Trajectories: trajs,
	}, nil
}

// Entity returns the declared entity with the given id, or nil.
func (s *Scenario) Entity(id string) *Entity {
	id = CanonicalID(id)
	for i := range s.Entities {
		if s.Entities[i].ID == id {
			return &s.Entities[i]
		}
	}
	return nil
}

// validateTrajectory rejects decreasing waypoint times. Duplicate
// timestamps are allowed; the dynamics analyzer skips the degenerate
// samples.
func validateTrajectory(tr *Trajectory) error {
	for i := 1; i < len(tr.Waypoints); i++ {
		if tr.Waypoints[i].Time < tr.Waypoints[i-1].Time {
			return fmt.Errorf("waypoint %d: time %g decreases from %g",
				i, tr.Waypoints[i].Time, tr.Waypoints[i-1].Time)
		}
	}
	return nil
}
