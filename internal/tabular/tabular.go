// Package tabular reads delimited datasets by named or positional columns.
// Column positions are resolved once per file from the header row; nothing
// downstream hardcodes positions.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

var ErrMissingColumn = errors.New("required column missing")

// Schema maps required column names to their indices in one concrete file.
type Schema struct {
	indices map[string]int
}

// NewSchema resolves the required column names against a header row. A
// missing column is a structural error for the whole file.
func NewSchema(header []string, required ...string) (*Schema, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, ok := pos[name]; !ok {
			pos[name] = i
		}
	}
	indices := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		indices[name] = i
	}
	return &Schema{indices: indices}, nil
}

// Field returns the named column of row, or "" when the row is too short.
// The name must be one of the required columns the schema resolved.
func (s *Schema) Field(row []string, name string) string {
	i, ok := s.indices[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Reader streams tab-delimited rows restricted to a column subset. Columns
// outside the subset are never materialized for the caller.
type Reader struct {
	cr   *csv.Reader
	cols []int
}

func NewReader(r io.Reader, cols ...int) *Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return &Reader{cr: cr, cols: cols}
}

// Next returns the selected columns of the next row, in subset order.
// Missing trailing fields come back empty. The stream ends with io.EOF.
func (r *Reader) Next() ([]string, error) {
	row, err := r.cr.Read()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(r.cols))
	for j, c := range r.cols {
		if c < len(row) {
			out[j] = row[c]
		}
	}
	return out, nil
}
