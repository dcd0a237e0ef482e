package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
)

// ReadCSV loads a CSV file into a table. The first record is the header.
// Cell values are kept verbatim; empty cells read back as null.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s has no header row", path)
	}

	t := New(records[0]...)
	for _, rec := range records[1:] {
		row := make(Row, len(t.cols))
		for i, c := range t.cols {
			if i < len(rec) {
				row[c] = rec[i]
			}
		}
		t.Append(row)
	}
	return t, nil
}

// WriteCSV writes the table to path, header first. A table with zero
// columns produces an empty file.
func WriteCSV(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if len(t.Columns()) == 0 {
		return nil
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rec := make([]string, len(t.Columns()))
	for i := 0; i < t.Len(); i++ {
		row := t.Row(i)
		for j, c := range t.Columns() {
			rec[j] = row[c]
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
