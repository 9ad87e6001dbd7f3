package report

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WriteCSV renders a per-file report: a metadata block, then one row per
// finding in report order. The layout mirrors the aggregated reports
// consumed downstream: stable column order, no environment-dependent
// values.
func WriteCSV(w io.Writer, r *FileReport) error {
	cw := csv.NewWriter(w)

	meta := [][]string{
		{"scenario_file", r.Path},
		{"analyzed", strconv.FormatBool(r.Analyzed)},
		{"author", r.Header.Author},
		{"date", r.Header.Date},
		{"revision", strconv.Itoa(r.Header.RevMajor) + "." + strconv.Itoa(r.Header.RevMinor)},
		{},
		{"severity", "category", "entity", "locator", "message"},
	}
	if err := cw.WriteAll(meta); err != nil {
		return err
	}

	for _, f := range r.Findings {
		row := []string{
			f.Severity.String(),
			f.Category.String(),
			f.EntityID,
			f.Locator.String(),
			f.Message,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteBatchCSV renders the aggregated multi-file summary, one row per
// file plus a header row.
func WriteBatchCSV(w io.Writer, rows []BatchRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"scenario_file", "analyzed", "errors", "warnings", "total"}); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.Path,
			strconv.FormatBool(row.Analyzed),
			strconv.Itoa(row.Errors),
			strconv.Itoa(row.Warnings),
			strconv.Itoa(row.Total),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
