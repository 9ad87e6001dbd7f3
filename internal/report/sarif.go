package report

import (
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/drivelab/oscheck/internal/check"
)

const toolName = "oscheck"
const toolURI = "https://github.com/drivelab/oscheck"

// WriteSARIF renders the findings as a SARIF 2.1.0 run, one result per
// finding, for consumption by code-review and CI tooling. Rule ids are
// the finding categories; levels map from severities.
func WriteSARIF(w io.Writer, r *FileReport) error {
	rep, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI(toolName, toolURI)

	// Register every category as a rule so consumers can group results
	// even for categories with no findings in this file.
	for _, cat := range check.Categories {
		run.AddRule(cat.String())
	}
	run.AddDistinctArtifact(r.Path)

	for _, f := range r.Findings {
		msg := f.Message
		if loc := f.Locator.String(); loc != "" {
			msg += " (" + loc + ")"
		}
		res := run.CreateResultForRule(f.Category.String()).
			WithLevel(sarifLevel(f.Severity)).
			WithMessage(sarif.NewTextMessage(msg))
		res.AddLocation(
			sarif.NewLocationWithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewSimpleArtifactLocation(r.Path)),
			),
		)
	}

	rep.AddRun(run)
	return rep.PrettyWrite(w)
}

// sarifLevel maps finding severities onto SARIF result levels.
func sarifLevel(s check.Severity) string {
	switch s {
	case check.SeverityError:
		return "error"
	case check.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
