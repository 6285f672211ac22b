package sheets

import (
	"context"
	"errors"
)

var (
	// ErrTableNotFound is returned when reading a table that was never created.
	ErrTableNotFound = errors.New("table not found")
	// ErrUnknownTable is returned when writing to a table without a canonical header.
	ErrUnknownTable = errors.New("unknown table")
)

// Record is one row keyed by header column. Cells are kept as text.
type Record map[string]string

// Table is an ordered sequence of records sharing a header. Header is the
// header as stored, which may be a spelling variant of the canonical one.
type Table struct {
	Name    string
	Header  []string
	Records []Record
}

// Ports for outbound adapters.
type (
	TableReader interface {
		// Table returns every record of the named table in storage order.
		Table(ctx context.Context, name string) (Table, error)
	}

	RowAppender interface {
		// Append adds one record, creating the table with its canonical
		// header when it does not exist yet.
		Append(ctx context.Context, name string, rec Record) error
	}

	TableRewriter interface {
		// ClearAndRewrite empties the table and appends recs one by one.
		// It is not atomic: a failure part way leaves the table truncated.
		ClearAndRewrite(ctx context.Context, name string, recs []Record) error
	}

	Store interface {
		TableReader
		RowAppender
		TableRewriter
	}
)

// Get returns the value of column, tolerating spelling variants such as
// "Categoria" for "Categoría".
func (r Record) Get(column string) string {
	if v, ok := r[column]; ok {
		return v
	}
	want := CanonicalColumn(column)
	for k, v := range r {
		if CanonicalColumn(k) == want {
			return v
		}
	}
	return ""
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	out := Table{Name: t.Name, Header: append([]string(nil), t.Header...)}
	if t.Records != nil {
		out.Records = make([]Record, len(t.Records))
		for i, r := range t.Records {
			out.Records[i] = r.Clone()
		}
	}
	return out
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsNotFound reports whether err means the table does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}
