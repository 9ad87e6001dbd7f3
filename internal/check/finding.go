// Package check implements the consistency and dynamics rule engine: pure
// checkers over an immutable model.Scenario that emit Findings, plus the
// aggregator that merges, deduplicates, and orders them.
package check

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drivelab/oscheck/internal/model"
)

// Severity ranks a finding. Higher values sort first in reports.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the capitalized severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalJSON encodes the severity as its name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(s.String())), nil
}

// Category is the closed set of finding categories. The declaration order
// here is the category sort order within a severity band.
type Category int

const (
	CategorySchemaViolation Category = iota
	CategoryMissingDefinition
	CategoryInvalidAddRemove
	CategoryDuplicatePosition
	CategoryOverlappingPosition
	CategorySpeedThreshold
	CategoryAccelerationThreshold
	CategorySwimAngleThreshold
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySchemaViolation:
		return "SchemaViolation"
	case CategoryMissingDefinition:
		return "MissingDefinition"
	case CategoryInvalidAddRemove:
		return "InvalidAddRemove"
	case CategoryDuplicatePosition:
		return "DuplicatePosition"
	case CategoryOverlappingPosition:
		return "OverlappingPosition"
	case CategorySpeedThreshold:
		return "SpeedThreshold"
	case CategoryAccelerationThreshold:
		return "AccelerationThreshold"
	case CategorySwimAngleThreshold:
		return "SwimAngleThreshold"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// MarshalJSON encodes the category as its name.
func (c Category) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// Categories lists every category in sort order. Report renderers iterate
// this instead of ranging over summary maps so output stays deterministic.
var Categories = []Category{
	CategorySchemaViolation,
	CategoryMissingDefinition,
	CategoryInvalidAddRemove,
	CategoryDuplicatePosition,
	CategoryOverlappingPosition,
	CategorySpeedThreshold,
	CategoryAccelerationThreshold,
	CategorySwimAngleThreshold,
}

// LocatorKind enumerates how a finding is anchored in the scenario.
type LocatorKind int

const (
	// LocatorNone marks findings with no temporal or positional anchor.
	LocatorNone LocatorKind = iota

	// LocatorTime anchors the finding to a single scenario timestamp.
	LocatorTime

	// LocatorTimeRange anchors the finding to a span of breaching samples.
	LocatorTimeRange

	// LocatorIndex anchors the finding to a storyboard declaration index.
	LocatorIndex
)

// Locator anchors a finding to a scenario time, time range, or storyboard
// index. The zero value is LocatorNone.
type Locator struct {
	Kind    LocatorKind `json:"kind"`
	Time    float64     `json:"time,omitempty"`
	EndTime float64     `json:"end_time,omitempty"`
	Index   int         `json:"index,omitempty"`
}

// AtTime returns a locator anchored to one timestamp.
func AtTime(t float64) Locator {
	return Locator{Kind: LocatorTime, Time: t}
}

// AtTimeRange returns a locator spanning [start, end].
func AtTimeRange(start, end float64) Locator {
	if start == end {
		return AtTime(start)
	}
	return Locator{Kind: LocatorTimeRange, Time: start, EndTime: end}
}

// AtIndex returns a locator anchored to a storyboard index. The event time
// is carried alongside for readable messages and ordering.
func AtIndex(index int, t float64) Locator {
	return Locator{Kind: LocatorIndex, Index: index, Time: t}
}

// String renders the locator for messages and text reports.
func (l Locator) String() string {
	switch l.Kind {
	case LocatorTime:
		return fmt.Sprintf("t=%s", formatFloat(l.Time))
	case LocatorTimeRange:
		return fmt.Sprintf("t=%s..%s", formatFloat(l.Time), formatFloat(l.EndTime))
	case LocatorIndex:
		return fmt.Sprintf("event[%d] t=%s", l.Index, formatFloat(l.Time))
	default:
		return ""
	}
}

// Finding is a single reported issue. Findings are immutable value
// objects; identity is structural, so two findings with identical fields
// are the same finding for deduplication purposes.
type Finding struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	EntityID string   `json:"entity_id,omitempty"`
	Message  string   `json:"message"`
	Locator  Locator  `json:"locator"`
}

// Key returns the structural identity of the finding, used by the
// aggregator for deduplication. Entity ids are already canonical in any
// finding produced from a model.Scenario; external findings (schema
// collaborator) are normalized here.
func (f Finding) Key() string {
	var b strings.Builder
	b.WriteString(f.Severity.String())
	b.WriteByte('|')
	b.WriteString(f.Category.String())
	b.WriteByte('|')
	b.WriteString(model.CanonicalID(f.EntityID))
	b.WriteByte('|')
	b.WriteString(f.Message)
	b.WriteByte('|')
	fmt.Fprintf(&b, "%d:%s:%s:%d",
		f.Locator.Kind, formatFloat(f.Locator.Time), formatFloat(f.Locator.EndTime), f.Locator.Index)
	return b.String()
}

// less defines the deterministic report order: severity rank descending,
// then category, entity id, locator, and finally message so the order is
// total over distinct findings.
func less(a, b Finding) bool {
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	if a.EntityID != b.EntityID {
		return a.EntityID < b.EntityID
	}
	if a.Locator.Time != b.Locator.Time {
		return a.Locator.Time < b.Locator.Time
	}
	if a.Locator.Index != b.Locator.Index {
		return a.Locator.Index < b.Locator.Index
	}
	return a.Message < b.Message
}

// formatFloat renders floats with minimal digits for stable messages and
// keys ("10" not "10.000000").
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
