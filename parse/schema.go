package parse

import (
	"strings"

	"github.com/pkg/errors"

	"tidbyt.dev/gtfsview/model"
)

// An optional column. Default is handed to the decoder when the
// column is absent or the cell is blank. Aliases are alternative
// header names accepted for the same column.
type Field struct {
	Name    string
	Default string
	Aliases []string
}

// Declares the columns of one table. Decoders address columns by
// their position in Required and Optional, not by position in the
// file.
type Schema struct {
	Table    string
	Required []string
	Optional []Field
}

// Binding maps a Schema's fields onto the columns of one file's
// header row.
type Binding struct {
	schema   Schema
	width    int
	required []int
	optional []int
}

func normalizeHeader(header []string) []string {
	normalized := make([]string, len(header))
	for i, h := range header {
		// Some feeds carry a BOM that survives the stream
		// reader, e.g. when files were concatenated.
		h = strings.TrimPrefix(h, "\ufeff")
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return normalized
}

func indexOf(name string, header []string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

// Resolve binds schema to a header row. Header names are matched
// case insensitively, ignoring surrounding whitespace. A required
// field without a column is an error; a missing optional field is
// not.
func Resolve(schema Schema, header []string) (*Binding, error) {
	normalized := normalizeHeader(header)

	b := &Binding{
		schema:   schema,
		width:    len(header),
		required: make([]int, len(schema.Required)),
		optional: make([]int, len(schema.Optional)),
	}

	for i, name := range schema.Required {
		idx := indexOf(name, normalized)
		if idx < 0 {
			return nil, errors.Wrapf(model.ErrMissingRequiredColumn, "%s: '%s'", schema.Table, name)
		}
		b.required[i] = idx
	}

	for i, field := range schema.Optional {
		idx := indexOf(field.Name, normalized)
		for _, alias := range field.Aliases {
			if idx >= 0 {
				break
			}
			idx = indexOf(alias, normalized)
		}
		b.optional[i] = idx
	}

	return b, nil
}

// Column index of the i:th required field.
func (b *Binding) RequiredColumn(i int) int {
	return b.required[i]
}

// Column index of the i:th optional field, or -1 if absent.
func (b *Binding) OptionalColumn(i int) int {
	return b.optional[i]
}

// Number of columns in the header.
func (b *Binding) Width() int {
	return b.width
}

func (b *Binding) row(line int, cells []string) Row {
	r := Row{
		Line:     line,
		schema:   &b.schema,
		required: make([]string, len(b.required)),
		optional: make([]string, len(b.optional)),
		present:  make([]bool, len(b.optional)),
	}

	for i, idx := range b.required {
		r.required[i] = strings.TrimSpace(cells[idx])
	}

	for i, idx := range b.optional {
		if idx >= 0 {
			if v := strings.TrimSpace(cells[idx]); v != "" {
				r.optional[i] = v
				r.present[i] = true
				continue
			}
		}
		r.optional[i] = b.schema.Optional[i].Default
	}

	return r
}

// The values of one data row, in Schema order.
type Row struct {
	Line int

	schema   *Schema
	required []string
	optional []string
	present  []bool
}

func (r Row) Required(i int) string {
	return r.required[i]
}

// Optional returns the i:th optional value, or its declared default.
func (r Row) Optional(i int) string {
	return r.optional[i]
}

// Has reports whether the i:th optional value was set in the file.
func (r Row) Has(i int) bool {
	return r.present[i]
}

func (r Row) requiredName(i int) string {
	return r.schema.Required[i]
}

func (r Row) optionalName(i int) string {
	return r.schema.Optional[i].Name
}
