package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"gastos/internal/sheets"
	"gastos/internal/sheets/memory"
	"gastos/internal/sheets/sheetstest"
)

type countingStore struct {
	sheets.Store
	reads atomic.Int64
}

func (c *countingStore) Table(ctx context.Context, name string) (sheets.Table, error) {
	c.reads.Add(1)
	return c.Store.Table(ctx, name)
}

func newCached(t *testing.T) (*Store, *countingStore) {
	t.Helper()
	inner := &countingStore{Store: memory.New()}
	s, err := New(inner, 0)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	t.Cleanup(s.Close)
	return s, inner
}

func TestCacheContract(t *testing.T) {
	sheetstest.RunStoreContract(t, func(t *testing.T) sheets.Store {
		s, _ := newCached(t)
		return s
	})
}

func TestReadsAreCached(t *testing.T) {
	s, inner := newCached(t)
	ctx := context.Background()
	rec := sheets.Record{"Categoría": "General", "Presupuesto": "100"}
	if err := s.Append(ctx, sheets.TableBudgets, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	for i := 0; i < 3; i++ {
		tbl, err := s.Table(ctx, sheets.TableBudgets)
		if err != nil || len(tbl.Records) != 1 {
			t.Fatalf("read %d: unexpected %+v (err=%v)", i, tbl, err)
		}
	}
	if got := inner.reads.Load(); got != 1 {
		t.Fatalf("expected 1 underlying read, got %d", got)
	}
}

func TestWritesInvalidate(t *testing.T) {
	s, inner := newCached(t)
	ctx := context.Background()
	if err := s.Append(ctx, sheets.TableBudgets, sheets.Record{"Categoría": "Comida", "Presupuesto": "10"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := s.Table(ctx, sheets.TableBudgets); err != nil {
		t.Fatalf("table: %v", err)
	}
	if err := s.ClearAndRewrite(ctx, sheets.TableBudgets, []sheets.Record{
		{"Categoría": "Salud", "Presupuesto": "5"},
		{"Categoría": "General", "Presupuesto": "50"},
	}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	tbl, err := s.Table(ctx, sheets.TableBudgets)
	if err != nil || len(tbl.Records) != 2 {
		t.Fatalf("expected fresh table after rewrite, got %+v (err=%v)", tbl, err)
	}
	if got := inner.reads.Load(); got != 2 {
		t.Fatalf("expected 2 underlying reads, got %d", got)
	}
}

func TestCallersCannotMutateCachedTable(t *testing.T) {
	s, _ := newCached(t)
	ctx := context.Background()
	if err := s.Append(ctx, sheets.TableVariables, sheets.Record{"Fecha": "2024-01-01", "Monto": "1", "Categoría": "Otros"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	first, _ := s.Table(ctx, sheets.TableVariables)
	first.Records[0]["Monto"] = "999"
	second, _ := s.Table(ctx, sheets.TableVariables)
	if second.Records[0]["Monto"] != "1" {
		t.Fatalf("cached table was mutated through a returned copy")
	}
}

func TestMissingTableIsNotCached(t *testing.T) {
	s, inner := newCached(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := s.Table(ctx, sheets.TableTemplates); !errors.Is(err, sheets.ErrTableNotFound) {
			t.Fatalf("expected ErrTableNotFound, got %v", err)
		}
	}
	if got := inner.reads.Load(); got != 2 {
		t.Fatalf("expected every miss to reach the store, got %d reads", got)
	}
}
