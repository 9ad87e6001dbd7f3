package check

import (
	"fmt"

	"github.com/drivelab/oscheck/internal/model"
)

// presenceState tracks where an entity is in its lifecycle.
//
//	Declared -> {Placed, Parked} -> Added -> Removed
//
// Declared is transient: model construction resolves every declared entity
// to Placed (has an initial pose) or Parked (no on-scene placement), so
// the transition table below starts from those two states.
type presenceState int

const (
	statePlaced presenceState = iota
	stateParked
	stateAdded
	stateRemoved
)

func (s presenceState) String() string {
	switch s {
	case statePlaced:
		return "placed"
	case stateParked:
		return "parked"
	case stateAdded:
		return "added"
	case stateRemoved:
		return "removed"
	default:
		return fmt.Sprintf("presenceState(%d)", int(s))
	}
}

// onScene reports whether the entity is currently present in the scene.
func (s presenceState) onScene() bool {
	return s == statePlaced || s == stateAdded
}

// LifecycleChecker validates presence transitions per entity: an entity
// must not be added while present or removed while absent, and every
// storyboard reference must resolve to a declared entity.
//
// Events are processed in the model's canonical order (non-decreasing
// time, declaration order on ties), so the output is deterministic
// regardless of map iteration order. A dangling reference yields exactly
// one MissingDefinition and the event is dropped, so no further lifecycle
// error cascades from the same reference.
type LifecycleChecker struct{}

// Name implements Checker.
func (c *LifecycleChecker) Name() string { return "lifecycle" }

// Check implements Checker.
func (c *LifecycleChecker) Check(s *model.Scenario, _ Config) []Finding {
	states := make(map[string]presenceState, len(s.Entities))
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.InitialPose != nil {
			states[e.ID] = statePlaced
		} else {
			states[e.ID] = stateParked
		}
	}

	var findings []Finding
	for i := range s.Events {
		ev := &s.Events[i]
		state, declared := states[ev.EntityID]
		if !declared {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Category: CategoryMissingDefinition,
				EntityID: ev.EntityID,
				Message: fmt.Sprintf("%s event references undeclared entity %q",
					ev.Kind, ev.EntityID),
				Locator: AtIndex(ev.Index, ev.Time),
			})
			continue
		}

		switch ev.Kind {
		case model.EventAdd:
			if state.onScene() {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Category: CategoryInvalidAddRemove,
					EntityID: ev.EntityID,
					Message: fmt.Sprintf("add of entity %q already present (state %s)",
						ev.EntityID, state),
					Locator: AtIndex(ev.Index, ev.Time),
				})
				continue
			}
			states[ev.EntityID] = stateAdded

		case model.EventRemove:
			if !state.onScene() {
				findings = append(findings, Finding{
					Severity: SeverityError,
					Category: CategoryInvalidAddRemove,
					EntityID: ev.EntityID,
					Message: fmt.Sprintf("remove of entity %q not present (state %s)",
						ev.EntityID, state),
					Locator: AtIndex(ev.Index, ev.Time),
				})
				continue
			}
			states[ev.EntityID] = stateRemoved

		case model.EventTrajectory:
			// Presence-neutral; only the reference resolution above applies.
		}
	}

	// Removed, or still on scene at end-of-scenario, are both fine.
	return findings
}
