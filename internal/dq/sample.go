package dq

import "github.com/ordersight-labs/ordersight/internal/dataset"

const (
	// maxSampleKeys bounds the key preview string in the report.
	maxSampleKeys = 5
	// maxSampleRows bounds the persisted failing-row sample per rule.
	maxSampleRows = 50
)

// sampleKeys renders a short preview of offending keys for the report:
// up to maxSampleKeys distinct combinations of the key columns, each
// rendered "k1,k2" and joined with "; ". Empty when there are no failures.
func sampleKeys(failures *dataset.Table, keyCols []string) string {
	if failures.Len() == 0 {
		return ""
	}
	distinct := failures.DistinctBy(keyCols...).Head(maxSampleKeys)

	var out []byte
	for i := 0; i < distinct.Len(); i++ {
		if i > 0 {
			out = append(out, "; "...)
		}
		row := distinct.Row(i)
		for j, c := range keyCols {
			if j > 0 {
				out = append(out, ',')
			}
			out = append(out, row.Get(c)...)
		}
	}
	return string(out)
}

// sampleEntry is one rule's bounded failing-row sample, already projected
// onto the rule's sample columns.
type sampleEntry struct {
	ruleID string
	rows   *dataset.Table
}

// takeSample projects failures onto the rule's sample columns and caps the
// row count. Rows are raw, not deduplicated.
func takeSample(ruleID string, failures *dataset.Table, cols []string) sampleEntry {
	return sampleEntry{
		ruleID: ruleID,
		rows:   failures.Select(cols...).Head(maxSampleRows),
	}
}

// buildSamples concatenates per-rule samples into one table with a leading
// rule_id column followed by the union of sample columns in first-seen
// order. With no entries the result has no rows and no columns.
func buildSamples(entries []sampleEntry) *dataset.Table {
	if len(entries) == 0 {
		return dataset.New()
	}

	cols := []string{"rule_id"}
	seen := map[string]struct{}{"rule_id": {}}
	for _, e := range entries {
		for _, c := range e.rows.Columns() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			cols = append(cols, c)
		}
	}

	out := dataset.New(cols...)
	for _, e := range entries {
		for i := 0; i < e.rows.Len(); i++ {
			row := dataset.Row{"rule_id": e.ruleID}
			src := e.rows.Row(i)
			for _, c := range e.rows.Columns() {
				row[c] = src.Get(c)
			}
			out.Append(row)
		}
	}
	return out
}
