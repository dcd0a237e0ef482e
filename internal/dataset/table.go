// Package dataset provides the in-memory tabular data model used by the
// ingestion and data-quality layers. Values are kept in their raw string
// form as read from CSV; an empty string is treated as null.
package dataset

import (
	"fmt"
	"strings"
)

// Row maps column names to raw cell values.
type Row map[string]string

// Get returns the raw value for col, or "" when the cell is null/missing.
func (r Row) Get(col string) string {
	return r[col]
}

// IsNull reports whether the cell for col is null. A missing key and an
// empty string are both null, matching how raw CSV input represents
// missing values.
func (r Row) IsNull(col string) bool {
	v, ok := r[col]
	return !ok || strings.TrimSpace(v) == ""
}

// MissingColumnError reports a required column absent from a table.
// This is a schema-contract violation, not a data violation.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("table %q is missing required column %q", e.Table, e.Column)
}

// Table is an ordered collection of rows with named columns.
type Table struct {
	cols []string
	rows []Row
}

// New creates an empty table with the given column order.
func New(cols ...string) *Table {
	return &Table{cols: append([]string(nil), cols...)}
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return t.cols
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns the i-th row.
func (t *Table) Row(i int) Row {
	return t.rows[i]
}

// Append adds a row to the table.
func (t *Table) Append(r Row) {
	t.rows = append(t.rows, r)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.cols {
		if c == name {
			return true
		}
	}
	return false
}

// Require verifies that every named column exists, returning a
// MissingColumnError for the first one absent. The table label is used
// only for error reporting.
func (t *Table) Require(table string, cols ...string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return &MissingColumnError{Table: table, Column: c}
		}
	}
	return nil
}

// Filter returns a new table containing the rows for which keep returns
// true. Rows are shared with the receiver, not copied; callers must not
// mutate them.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := New(t.cols...)
	for _, r := range t.rows {
		if keep(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Select returns a new table projected onto the given columns. Cells are
// copied, so the result is safe to extend independently.
func (t *Table) Select(cols ...string) *Table {
	out := New(cols...)
	for _, r := range t.rows {
		proj := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				proj[c] = v
			}
		}
		out.rows = append(out.rows, proj)
	}
	return out
}

// Head returns a new table with at most n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	out := New(t.cols...)
	out.rows = append(out.rows, t.rows[:n]...)
	return out
}

// DistinctBy returns a new table keeping only the first row for each
// distinct combination of values in the given columns.
func (t *Table) DistinctBy(cols ...string) *Table {
	out := New(t.cols...)
	seen := make(map[string]struct{}, len(t.rows))
	for _, r := range t.rows {
		key := rowKey(r, cols)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.rows = append(out.rows, r)
	}
	return out
}

// rowKey builds a composite lookup key. Cell values are length-prefixed
// so that ("ab","c") and ("a","bc") do not collide.
func rowKey(r Row, cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		v := r[c]
		fmt.Fprintf(&b, "%d:%s|", len(v), v)
	}
	return b.String()
}
