package check

import (
	"fmt"

	"github.com/drivelab/oscheck/internal/geom"
	"github.com/drivelab/oscheck/internal/model"
)

// PlacementChecker compares the initial positions of all placed entities
// pairwise. Two entities closer than PositionEpsilon are a duplicate
// placement; entities whose footprints intersect while their centers
// differ by at least epsilon are an overlap. Each unordered pair is
// reported at most once.
//
// The scan is O(n^2) over placed entities. Authored scenarios hold tens of
// entities, so no spatial index is used.
type PlacementChecker struct{}

// Name implements Checker.
func (c *PlacementChecker) Name() string { return "placement" }

// Check implements Checker.
func (c *PlacementChecker) Check(s *model.Scenario, cfg Config) []Finding {
	type placed struct {
		id   string
		pose geom.Pose
		foot geom.Footprint
	}

	// Declaration order; pairs (i, j) with i < j are inherently unordered
	// and never revisited in the other direction.
	var entities []placed
	for i := range s.Entities {
		e := &s.Entities[i]
		if e.InitialPose == nil {
			continue
		}
		entities = append(entities, placed{id: e.ID, pose: *e.InitialPose, foot: e.Footprint})
	}

	var findings []Finding
	for i := 0; i < len(entities); i++ {
		for j := i + 1; j < len(entities); j++ {
			a, b := entities[i], entities[j]
			// Report under the lexicographically smaller id so the pair
			// identity is order-independent.
			if b.id < a.id {
				a, b = b, a
			}

			d := geom.Distance(a.pose, b.pose)
			switch {
			case d < cfg.PositionEpsilon:
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Category: CategoryDuplicatePosition,
					EntityID: a.id,
					Message: fmt.Sprintf("entities %q and %q share initial position (distance %s < epsilon %s)",
						a.id, b.id, formatFloat(d), formatFloat(cfg.PositionEpsilon)),
				})
			case geom.Overlaps(a.foot, a.pose, b.foot, b.pose):
				findings = append(findings, Finding{
					Severity: SeverityWarning,
					Category: CategoryOverlappingPosition,
					EntityID: a.id,
					Message: fmt.Sprintf("initial footprints of %q and %q overlap (center distance %s)",
						a.id, b.id, formatFloat(d)),
				})
			}
		}
	}
	return findings
}
