package parse

import (
	"encoding/csv"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spkg/bom"

	"tidbyt.dev/gtfsview/model"
)

// Table pairs a Schema with the routine decoding one of its rows
// into a record.
type Table[T any] struct {
	Schema Schema
	Decode func(row Row) (T, error)
}

// Open reads the header row from r and returns an iterator over the
// remaining rows.
func (t Table[T]) Open(r io.Reader) (*Rows[T], error) {
	// LazyCSVReader required (at least) to survive sloppy use of
	// quotes. The BOM reader strips unicode BOMs if present.
	reader := gocsv.LazyCSVReader(bom.NewReader(r))

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Wrapf(model.ErrMalformedRow, "%s: no header row", t.Schema.Table)
	}
	if err != nil {
		return nil, errors.Wrapf(model.ErrMalformedRow, "%s: reading header: %v", t.Schema.Table, err)
	}

	binding, err := Resolve(t.Schema, header)
	if err != nil {
		return nil, err
	}

	return &Rows[T]{
		table:   t,
		reader:  reader,
		binding: binding,
		line:    1,
	}, nil
}

// Collect decodes all rows of r.
func (t Table[T]) Collect(r io.Reader) ([]T, error) {
	rows, err := t.Open(r)
	if err != nil {
		return nil, err
	}

	records := []T{}
	for rows.Next() {
		records = append(records, rows.Record())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Rows is a forward only iterator over the records of a table. Any
// malformed row ends iteration with an error.
type Rows[T any] struct {
	table   Table[T]
	reader  gocsv.CSVReader
	binding *Binding
	line    int
	record  T
	err     error
	done    bool
}

func (r *Rows[T]) Next() bool {
	if r.done {
		return false
	}

	cells, err := r.reader.Read()
	if err == io.EOF {
		r.done = true
		return false
	}
	r.line = r.currentLine(cells, r.line+1)
	if err != nil {
		return r.fail(errors.Wrapf(model.ErrMalformedRow, "%v", err))
	}
	if len(cells) != r.binding.Width() {
		return r.fail(errors.Wrapf(
			model.ErrMalformedRow,
			"found %d columns, header has %d",
			len(cells), r.binding.Width(),
		))
	}

	record, err := r.table.Decode(r.binding.row(r.line, cells))
	if err != nil {
		return r.fail(err)
	}

	r.record = record
	return true
}

// The most recently decoded record.
func (r *Rows[T]) Record() T {
	return r.record
}

func (r *Rows[T]) Err() error {
	return r.err
}

// Line number of the most recently read row. The header is line 1.
func (r *Rows[T]) Line() int {
	return r.line
}

func (r *Rows[T]) Binding() *Binding {
	return r.binding
}

func (r *Rows[T]) fail(err error) bool {
	r.err = errors.Wrapf(err, "%s line %d", r.table.Schema.Table, r.line)
	r.done = true
	return false
}

// Blank lines are skipped by the csv reader, so prefer its own
// position over counting rows.
func (r *Rows[T]) currentLine(cells []string, fallback int) int {
	if cr, ok := r.reader.(*csv.Reader); ok && len(cells) > 0 {
		if line, _ := cr.FieldPos(0); line > 0 {
			return line
		}
	}
	return fallback
}
