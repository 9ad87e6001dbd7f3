package xosc

import (
	"fmt"

	"github.com/drivelab/oscheck/internal/check"
)

// maxSupportedRevMajor is the newest major OpenSCENARIO revision the
// checker understands. Schemas exist for 1.x only; 2.x files are flagged
// rather than misinterpreted.
const maxSupportedRevMajor = 1

// validateStructure is the lightweight schema gate applied to a parseable
// document. It stands in for full XSD validation, which stays outside the
// core per the collaborator contract: every defect becomes a
// SchemaViolation Error finding mergeable with the rule-engine output.
func validateStructure(doc *document) []check.Finding {
	var findings []check.Finding

	violation := func(msg string) {
		findings = append(findings, check.Finding{
			Severity: check.SeverityError,
			Category: check.CategorySchemaViolation,
			Message:  msg,
		})
	}

	if doc.FileHeader == nil {
		violation("missing FileHeader element")
	} else if doc.FileHeader.RevMajor > maxSupportedRevMajor {
		violation(fmt.Sprintf("unsupported OpenSCENARIO revision %d.%d (schemas available for %d.x only)",
			doc.FileHeader.RevMajor, doc.FileHeader.RevMinor, maxSupportedRevMajor))
	}

	if doc.Entities == nil || len(doc.Entities.Objects) == 0 {
		violation("no ScenarioObject declared under Entities")
	}
	if doc.Storyboard == nil {
		violation("missing Storyboard element")
	}

	for i, obj := range entityObjects(doc) {
		if obj.Name == "" {
			violation(fmt.Sprintf("ScenarioObject %d has no name", i))
		}
		if obj.Vehicle == nil && obj.Pedestrian == nil && obj.MiscObject == nil {
			violation(fmt.Sprintf("ScenarioObject %q declares no entity object", obj.Name))
		}
	}

	return findings
}

func entityObjects(doc *document) []scenarioObject {
	if doc.Entities == nil {
		return nil
	}
	return doc.Entities.Objects
}

// FileFailure wraps an unparseable file into the finding contract so a
// batch run can record the failure without aborting.
func FileFailure(err error) check.Finding {
	return check.Finding{
		Severity: check.SeverityError,
		Category: check.CategorySchemaViolation,
		Message:  fmt.Sprintf("file not analyzable: %v", err),
	}
}
