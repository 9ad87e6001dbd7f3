package check

import "sort"

// Summary counts findings per severity and per category. It is the rollup
// payload shared by the per-file and the aggregated multi-file report.
type Summary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	ByCategory map[string]int `json:"by_category"`
}

// Errors returns the number of Error findings.
func (s Summary) Errors() int { return s.BySeverity[SeverityError.String()] }

// Warnings returns the number of Warning findings.
func (s Summary) Warnings() int { return s.BySeverity[SeverityWarning.String()] }

// Aggregate merges finding lists from any number of checkers, removes
// structural duplicates, and applies the deterministic report order:
// severity rank descending, then category, entity id, locator, message.
// The result is stable across runs for identical input, which the CSV and
// SARIF renderers rely on for reproducibility.
func Aggregate(lists ...[]Finding) []Finding {
	var merged []Finding
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, f := range list {
			key := f.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, f)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return less(merged[i], merged[j])
	})
	return merged
}

// Summarize computes per-severity and per-category counts for an already
// aggregated finding sequence.
func Summarize(findings []Finding) Summary {
	s := Summary{
		Total:      len(findings),
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, f := range findings {
		s.BySeverity[f.Severity.String()]++
		s.ByCategory[f.Category.String()]++
	}
	return s
}
