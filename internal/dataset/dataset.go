// Package dataset provides the tabular value type shared by the time series
// domain model and the preprocessing engine: an ordered set of named columns
// holding tagged cells, with explicit coercion between numeric, temporal and
// string representations.
package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Dataset is an ordered collection of equally sized named columns. Column
// order is the declaration order of the input, not alphabetical.
type Dataset struct {
	names []string
	cols  map[string][]Value
}

// New creates an empty dataset with the given column order. Blank column
// names are replaced with positional placeholders.
func New(names ...string) *Dataset {
	d := &Dataset{cols: make(map[string][]Value, len(names))}
	for i, name := range names {
		name = normalizeName(name, i)
		d.names = append(d.names, name)
		d.cols[name] = nil
	}
	return d
}

// normalizeName substitutes a positional placeholder for blank headers.
func normalizeName(name string, pos int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("column_%d", pos)
	}
	return name
}

// FromRows builds a dataset from decoded JSON row maps. Go maps drop the
// document's key order, so the layout falls back to the first row's sorted
// keys; callers that recovered the original order from the request body
// should use FromOrderedRows instead.
func FromRows(rows []map[string]any) (*Dataset, error) {
	return FromOrderedRows(rows, nil)
}

// FromOrderedRows builds a dataset from decoded JSON row maps with an
// explicit column order. Columns absent from a given row become missing
// cells. An order that is nil or does not cover the first row's keys falls
// back to the sorted keys.
func FromOrderedRows(rows []map[string]any, columns []string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows provided")
	}

	d := New(orderedNames(rows[0], columns)...)
	for _, row := range rows {
		cells := make([]Value, len(d.names))
		for i, name := range d.names {
			cells[i] = FromNative(row[name])
		}
		d.appendRow(cells)
	}
	return d, nil
}

func orderedNames(first map[string]any, columns []string) []string {
	if len(columns) == len(first) {
		covered := true
		for _, name := range columns {
			if _, ok := first[name]; !ok {
				covered = false
				break
			}
		}
		if covered {
			return columns
		}
	}
	names := make([]string, 0, len(first))
	for name := range first {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Dataset) appendRow(cells []Value) {
	for i, name := range d.names {
		d.cols[name] = append(d.cols[name], cells[i])
	}
}

// Columns returns the column names in declaration order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Column returns the cells of the named column, or nil if it does not exist.
// The returned slice is the dataset's backing storage; callers that mutate
// it must own the dataset.
func (d *Dataset) Column(name string) []Value {
	return d.cols[name]
}

// SetColumn replaces the named column, appending it to the declaration order
// if new. Once any other column holds cells the incoming column must match
// their length; declared-but-unfilled columns may be populated freely.
func (d *Dataset) SetColumn(name string, cells []Value) error {
	if rows, filled := d.filledRowCount(name); filled && len(cells) != rows {
		return fmt.Errorf("column %q has %d cells, dataset has %d rows", name, len(cells), rows)
	}
	if _, ok := d.cols[name]; !ok {
		d.names = append(d.names, name)
	}
	d.cols[name] = cells
	return nil
}

// filledRowCount returns the length of the first populated column other than
// skip, and whether any such column exists.
func (d *Dataset) filledRowCount(skip string) (int, bool) {
	for _, n := range d.names {
		if n == skip {
			continue
		}
		if cells := d.cols[n]; len(cells) > 0 {
			return len(cells), true
		}
	}
	return 0, false
}

// DropColumn removes the named column if present.
func (d *Dataset) DropColumn(name string) {
	if _, ok := d.cols[name]; !ok {
		return
	}
	delete(d.cols, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
}

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int {
	if len(d.names) == 0 {
		return 0
	}
	return len(d.cols[d.names[0]])
}

// Row returns the cells of row i in column order.
func (d *Dataset) Row(i int) []Value {
	cells := make([]Value, len(d.names))
	for j, name := range d.names {
		cells[j] = d.cols[name][i]
	}
	return cells
}

// SelectRows returns a new dataset containing only the rows whose indices
// appear in keep, in the given order.
func (d *Dataset) SelectRows(keep []int) *Dataset {
	out := New(d.names...)
	for _, i := range keep {
		out.appendRow(d.Row(i))
	}
	return out
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := New(d.names...)
	for _, name := range d.names {
		cells := make([]Value, len(d.cols[name]))
		copy(cells, d.cols[name])
		out.cols[name] = cells
	}
	return out
}

// IsNumericColumn reports whether every present cell of the named column is
// numeric. Missing cells do not disqualify a column; a fully missing column
// is not numeric.
func (d *Dataset) IsNumericColumn(name string) bool {
	cells, ok := d.cols[name]
	if !ok {
		return false
	}
	seen := false
	for _, c := range cells {
		switch c.Kind() {
		case KindNumber:
			seen = true
		case KindMissing:
		default:
			return false
		}
	}
	return seen
}

// NumericColumns returns the names of all numeric columns in declaration
// order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, name := range d.names {
		if d.IsNumericColumn(name) {
			out = append(out, name)
		}
	}
	return out
}

// Rows converts the dataset back to JSON-serializable row maps, with
// missing cells as explicit nils.
func (d *Dataset) Rows() []map[string]any {
	out := make([]map[string]any, d.RowCount())
	for i := range out {
		row := make(map[string]any, len(d.names))
		for _, name := range d.names {
			row[name] = d.cols[name][i].Native()
		}
		out[i] = row
	}
	return out
}

// Floats extracts the named column as floats. Missing and non-numeric cells
// are reported through the second return value as false entries.
func (d *Dataset) Floats(name string) ([]float64, []bool) {
	cells := d.cols[name]
	vals := make([]float64, len(cells))
	ok := make([]bool, len(cells))
	for i, c := range cells {
		vals[i], ok[i] = c.Float()
	}
	return vals, ok
}
