// Package table loads tabular datasets from CSV, XLSX, Shapefile, GeoJSON,
// SQLite, and PostgreSQL sources into a column-addressable frame.
package table

import (
	"slices"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is tabular data addressable by column name.
type Table interface {
	// Column returns the stringified cell values of the named column in row
	// order. Missing cells are empty strings. ok is false if no such column exists.
	Column(name string) (values []string, ok bool)
	// Columns returns the column names in source order.
	Columns() []string
	// Len returns the number of data rows.
	Len() int
}

// Frame is an in-memory columnar Table.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]string
	rows  int
}

// NewFrame builds a Frame from a header and row-major records. Short rows are
// padded with empty cells and cells past the header width are dropped. When a
// header name repeats, the first occurrence wins lookups.
func NewFrame(header []string, rows [][]string) *Frame {
	f := &Frame{
		names: make([]string, len(header)),
		index: make(map[string]int, len(header)),
		cols:  make([][]string, len(header)),
		rows:  len(rows),
	}
	copy(f.names, header)
	for i, name := range header {
		if _, dup := f.index[name]; !dup {
			f.index[name] = i
		}
		f.cols[i] = make([]string, len(rows))
	}
	for r, row := range rows {
		for c := range header {
			if c < len(row) {
				f.cols[c][r] = row[c]
			}
		}
	}
	return f
}

// FromColumns builds a Frame from column-major data, ordering columns by names.
// Columns shorter than the longest one are padded with empty cells.
func FromColumns(names []string, data map[string][]string) *Frame {
	n := 0
	for _, name := range names {
		if l := len(data[name]); l > n {
			n = l
		}
	}
	rows := make([][]string, n)
	for r := range rows {
		row := make([]string, len(names))
		for c, name := range names {
			if vals := data[name]; r < len(vals) {
				row[c] = vals[r]
			}
		}
		rows[r] = row
	}
	return NewFrame(names, rows)
}

// FromJSONColumns builds a Frame from decoded JSON column arrays, ordering
// columns by name and rendering each cell with CellString.
func FromJSONColumns(data map[string][]any) (*Frame, error) {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	slices.Sort(names)

	cols := make(map[string][]string, len(data))
	for _, name := range names {
		vals := make([]string, len(data[name]))
		for i, v := range data[name] {
			cell, err := CellString(v)
			if err != nil {
				return nil, eris.Wrapf(err, "table: column %s row %d", name, i)
			}
			vals[i] = cell
		}
		cols[name] = vals
	}
	return FromColumns(names, cols), nil
}

// Column implements Table.
func (f *Frame) Column(name string) ([]string, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Columns implements Table.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Len implements Table.
func (f *Frame) Len() int { return f.rows }

// DefaultNAValues are the cell values treated as missing, in addition to blank cells.
var DefaultNAValues = []string{"NA", "N/A", "NaN", "nan", "null", "NULL", "None", "#N/A"}

// Sampler picks the first non-missing values from a column.
type Sampler struct {
	size int
	na   map[string]struct{}
}

// NewSampler returns a Sampler keeping up to size values. A nil na slice
// selects DefaultNAValues.
func NewSampler(size int, na []string) *Sampler {
	if na == nil {
		na = DefaultNAValues
	}
	s := &Sampler{size: size, na: make(map[string]struct{}, len(na))}
	for _, v := range na {
		s.na[v] = struct{}{}
	}
	return s
}

// Missing reports whether a cell value counts as missing.
func (s *Sampler) Missing(v string) bool {
	t := strings.TrimSpace(v)
	if t == "" {
		return true
	}
	_, ok := s.na[t]
	return ok
}

// Sample returns up to the configured number of non-missing values in row order.
func (s *Sampler) Sample(values []string) []string {
	out := make([]string, 0, s.size)
	for _, v := range values {
		if len(out) >= s.size {
			break
		}
		if s.Missing(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
