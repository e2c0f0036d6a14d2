package dataset

import (
	"time"
)

// Table is one loaded data file or worksheet. Columns and Rows keep the
// source text exactly as read, including non-ASCII headers, so an export
// reproduces the upload byte for byte. Typed access goes through
// ColumnIndex and Floats.
type Table struct {
	// Site is the configured site ID every row of this table belongs to.
	Site string
	// Source names where the table came from: a file name for CSVs, a
	// sheet name for workbook data.
	Source string

	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex locates the column for a field by header alias, or -1.
func (t *Table) ColumnIndex(f Field) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if got, ok := matchField(c); ok && got == f {
			return i
		}
	}
	return -1
}

// HasField reports whether the table carries a column for the field.
func (t *Table) HasField(f Field) bool {
	return t.ColumnIndex(f) >= 0
}

// Floats extracts the numeric values of a field, skipping rows whose cell
// is blank or unparseable. A missing column yields an empty slice.
func (t *Table) Floats(f Field) []float64 {
	idx := t.ColumnIndex(f)
	if idx < 0 {
		return nil
	}
	out := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		if v, ok := ParseNumber(row[idx]); ok {
			out = append(out, v)
		}
	}
	return out
}

// Cell returns the raw cell at (row, field column), empty when absent.
func (t *Table) Cell(row int, f Field) string {
	idx := t.ColumnIndex(f)
	if idx < 0 || row < 0 || row >= len(t.Rows) || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// Point is one (time, value) observation from a measurement series.
type Point struct {
	Time  time.Time `json:"time,omitempty"`
	Value float64   `json:"value"`
}

// Series extracts a field as ordered points. When the table has a
// timestamp column, each point carries its parsed time; rows whose
// timestamp fails to parse keep a zero time. Row order is preserved.
func (t *Table) Series(f Field) []Point {
	idx := t.ColumnIndex(f)
	if idx < 0 {
		return nil
	}
	tsIdx := t.ColumnIndex(FieldTimestamp)
	out := make([]Point, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		v, ok := ParseNumber(row[idx])
		if !ok {
			continue
		}
		p := Point{Value: v}
		if tsIdx >= 0 && tsIdx < len(row) {
			if ts, ok := parseTimeMaybe(row[tsIdx]); ok {
				p.Time = ts
			}
		}
		out = append(out, p)
	}
	return out
}
