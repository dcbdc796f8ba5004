package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
)

// Row is a single record keyed by column name. Missing columns read as "".
type Row map[string]string

// Table is an in-memory tabular batch: an ordered header list plus rows.
// All cell values are strings; numeric and date parsing is left to the
// stages that need it.
type Table struct {
	Headers []string
	Rows    []Row
}

// New creates an empty table with the given column order.
func New(headers ...string) *Table {
	return &Table{Headers: append([]string(nil), headers...)}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.Headers...)
	out.Rows = make([]Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		nr := make(Row, len(row))
		for k, v := range row {
			nr[k] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// HasColumn reports whether the header list contains name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column to the header list if it is not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Headers = append(t.Headers, name)
	}
}

// DropColumns removes the named columns from the headers and every row.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := t.Headers[:0]
	for _, h := range t.Headers {
		if _, ok := drop[h]; !ok {
			kept = append(kept, h)
		}
	}
	t.Headers = kept
	for _, row := range t.Rows {
		for n := range drop {
			delete(row, n)
		}
	}
}

// Append adds a row to the table.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Concat merges tables into a new one. The header list is the union of all
// inputs, preserving first-seen order; rows are appended in input order.
func Concat(tables ...*Table) *Table {
	out := New()
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, h := range t.Headers {
			out.AddColumn(h)
		}
		for _, row := range t.Rows {
			nr := make(Row, len(row))
			for k, v := range row {
				nr[k] = v
			}
			out.Rows = append(out.Rows, nr)
		}
	}
	return out
}

// Read parses CSV data with the given separator into a table. A UTF-8 BOM
// is tolerated and rows may have fewer fields than the header.
func Read(r io.Reader, sep rune) (*Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})
	cr := csv.NewReader(bytes.NewReader(b))
	cr.Comma = sep
	cr.FieldsPerRecord = -1

	headers, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, err
	}

	t := New(headers...)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Write serializes the table as CSV with the given separator. Cells missing
// from a row are written empty.
func (t *Table) Write(w io.Writer, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	if err := cw.Write(t.Headers); err != nil {
		return err
	}
	rec := make([]string, len(t.Headers))
	for _, row := range t.Rows {
		for i, h := range t.Headers {
			rec[i] = row[h]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
