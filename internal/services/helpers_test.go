package services

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/core"
	"gastos/internal/sheets"
	"gastos/internal/sheets/memory"
)

var errStoreDown = errors.New("store down")

// flakyStore fails reads of readFail and appends after appendLimit writes.
type flakyStore struct {
	sheets.Store
	readFail    string
	appendLimit int
	appends     int
}

func (f *flakyStore) Table(ctx context.Context, name string) (sheets.Table, error) {
	if name == f.readFail {
		return sheets.Table{}, errStoreDown
	}
	return f.Store.Table(ctx, name)
}

func (f *flakyStore) Append(ctx context.Context, name string, rec sheets.Record) error {
	if f.appendLimit >= 0 && f.appends >= f.appendLimit {
		return errStoreDown
	}
	f.appends++
	return f.Store.Append(ctx, name, rec)
}

func rows(t *testing.T, s sheets.TableReader, name string) []sheets.Record {
	t.Helper()
	tbl, err := s.Table(context.Background(), name)
	if sheets.IsNotFound(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return tbl.Records
}

func date(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newStore() *memory.Store {
	return memory.New()
}
