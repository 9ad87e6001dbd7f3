// Package report renders analysis results for humans and downstream
// tooling. Renderers consume the Finding sequence and Summary only; the
// rule engine knows nothing about output formats.
package report

import (
	"fmt"
	"io"

	"github.com/drivelab/oscheck/internal/check"
	"github.com/drivelab/oscheck/internal/model"
)

// FileReport is the render input for a single analyzed file.
type FileReport struct {
	Path     string          `json:"path"`
	Header   model.Header    `json:"header"`
	Analyzed bool            `json:"analyzed"`
	Findings []check.Finding `json:"findings"`
	Summary  check.Summary   `json:"summary"`
}

// BatchRow is one line of the aggregated multi-file report.
type BatchRow struct {
	Path     string `json:"path"`
	Analyzed bool   `json:"analyzed"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Total    int    `json:"total"`
}

// WriteText renders a terminal summary: one line per finding in report
// order, then the per-severity counts.
func WriteText(w io.Writer, r *FileReport) error {
	if _, err := fmt.Fprintf(w, "%s\n", r.Path); err != nil {
		return err
	}
	if !r.Analyzed {
		fmt.Fprintln(w, "  file failed validation, checks skipped")
	}

	for _, f := range r.Findings {
		loc := f.Locator.String()
		if loc != "" {
			loc = " @ " + loc
		}
		entity := f.EntityID
		if entity != "" {
			entity = " [" + entity + "]"
		}
		fmt.Fprintf(w, "  %-7s %s%s%s: %s\n", f.Severity, f.Category, entity, loc, f.Message)
	}

	_, err := fmt.Fprintf(w, "  %d finding(s): %d error(s), %d warning(s)\n",
		r.Summary.Total, r.Summary.Errors(), r.Summary.Warnings())
	return err
}
