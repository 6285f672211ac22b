package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"gastos/internal/sheets"
)

type table struct {
	header []string
	rows   [][]string
}

// Store keeps every table in process. Rows are stored as header-ordered
// cells, the way a spreadsheet holds them.
type Store struct {
	mu     sync.Mutex
	tables map[string]*table
}

var _ sheets.Store = (*Store)(nil)

func New() *Store {
	return &Store{tables: map[string]*table{}}
}

// NewFromFile seeds the store from a JSON document mapping table names to
// lists of records:
//
//	{"Presupuestos": [{"Categoría": "General", "Presupuesto": "500"}]}
//
// A missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed map[string][]sheets.Record
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	ctx := context.Background()
	for name, recs := range seed {
		if err := s.ClearAndRewrite(ctx, name, recs); err != nil {
			return nil, fmt.Errorf("seed %s: %w", name, err)
		}
	}
	return s, nil
}

func (s *Store) Table(_ context.Context, name string) (sheets.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return sheets.Table{}, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
	}
	out := sheets.Table{Name: name, Header: append([]string(nil), t.header...)}
	for _, row := range t.rows {
		if sheets.IsBlank(row) {
			continue
		}
		out.Records = append(out.Records, sheets.RecordFrom(t.header, row))
	}
	return out, nil
}

func (s *Store) Append(_ context.Context, name string, rec sheets.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ensure(name)
	if err != nil {
		return err
	}
	t.rows = append(t.rows, sheets.RowValues(t.header, rec))
	return nil
}

// ClearAndRewrite resets the table to its canonical header.
func (s *Store) ClearAndRewrite(_ context.Context, name string, recs []sheets.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.ensure(name)
	if err != nil {
		return err
	}
	t.header, _ = sheets.HeaderFor(name)
	t.rows = nil
	for _, rec := range recs {
		t.rows = append(t.rows, sheets.RowValues(t.header, rec))
	}
	return nil
}

// PutRaw installs a table with an arbitrary header, bypassing the schema.
// It lets tests and seeds reproduce sheets edited by hand, e.g. with a
// "Categoria" column.
func (s *Store) PutRaw(name string, header []string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &table{header: append([]string(nil), header...)}
	for _, r := range rows {
		t.rows = append(t.rows, append([]string(nil), r...))
	}
	s.tables[name] = t
}

func (s *Store) ensure(name string) (*table, error) {
	if t, ok := s.tables[name]; ok {
		return t, nil
	}
	header, err := sheets.HeaderFor(name)
	if err != nil {
		return nil, err
	}
	t := &table{header: header}
	s.tables[name] = t
	return t, nil
}
