// Package sheetstest holds the behaviour every row store must share.
package sheetstest

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

// RunStoreContract exercises a fresh, empty store returned by newStore.
func RunStoreContract(t *testing.T, newStore func(t *testing.T) sheets.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing table", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Table(ctx, sheets.TableVariables); !errors.Is(err, sheets.ErrTableNotFound) {
			t.Fatalf("expected ErrTableNotFound, got %v", err)
		}
	})

	t.Run("append creates table with header", func(t *testing.T) {
		s := newStore(t)
		rec := sheets.Record{"Fecha": "2024-03-15", "Monto": "15.00", "Categoría": "Entretenimiento", "Nota": "Netflix -"}
		if err := s.Append(ctx, sheets.TableRecurrentes, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
		tbl, err := s.Table(ctx, sheets.TableRecurrentes)
		if err != nil {
			t.Fatalf("table: %v", err)
		}
		want, _ := sheets.HeaderFor(sheets.TableRecurrentes)
		if len(tbl.Header) != len(want) {
			t.Fatalf("expected header %v, got %v", want, tbl.Header)
		}
		for i := range want {
			if tbl.Header[i] != want[i] {
				t.Fatalf("expected header %v, got %v", want, tbl.Header)
			}
		}
		if len(tbl.Records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(tbl.Records))
		}
		got := tbl.Records[0]
		if got.Get(sheets.ColFecha) != "2024-03-15" || got.Get(sheets.ColCategoria) != "Entretenimiento" || got.Get(sheets.ColNota) != "Netflix -" {
			t.Fatalf("unexpected record %v", got)
		}
		if !sameAmount(got.Get(sheets.ColMonto), "15") {
			t.Fatalf("unexpected amount %q", got.Get(sheets.ColMonto))
		}
	})

	t.Run("append keeps order", func(t *testing.T) {
		s := newStore(t)
		for _, cat := range []string{"Comida", "Transporte", "Salud"} {
			rec := sheets.Record{"Fecha": "2024-01-01", "Monto": "1", "Categoría": cat, "Nota": ""}
			if err := s.Append(ctx, sheets.TableVariables, rec); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		tbl, err := s.Table(ctx, sheets.TableVariables)
		if err != nil {
			t.Fatalf("table: %v", err)
		}
		if len(tbl.Records) != 3 || tbl.Records[0].Get(sheets.ColCategoria) != "Comida" || tbl.Records[2].Get(sheets.ColCategoria) != "Salud" {
			t.Fatalf("unexpected records %v", tbl.Records)
		}
		// Tables are independent.
		if _, err := s.Table(ctx, sheets.TableRecurrentes); !errors.Is(err, sheets.ErrTableNotFound) {
			t.Fatalf("expected Recurrentes to be missing, got %v", err)
		}
	})

	t.Run("clear and rewrite replaces content", func(t *testing.T) {
		s := newStore(t)
		for _, cat := range []string{"Comida", "Salud"} {
			if err := s.Append(ctx, sheets.TableBudgets, sheets.Record{"Categoría": cat, "Presupuesto": "10"}); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		next := []sheets.Record{
			{"Categoría": "General", "Presupuesto": "100"},
		}
		if err := s.ClearAndRewrite(ctx, sheets.TableBudgets, next); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		tbl, err := s.Table(ctx, sheets.TableBudgets)
		if err != nil {
			t.Fatalf("table: %v", err)
		}
		if len(tbl.Records) != 1 || tbl.Records[0].Get(sheets.ColCategoria) != "General" {
			t.Fatalf("unexpected records %v", tbl.Records)
		}
	})

	t.Run("clear and rewrite with no records keeps header", func(t *testing.T) {
		s := newStore(t)
		if err := s.ClearAndRewrite(ctx, sheets.TableVariables, nil); err != nil {
			t.Fatalf("rewrite: %v", err)
		}
		tbl, err := s.Table(ctx, sheets.TableVariables)
		if err != nil {
			t.Fatalf("expected empty table to exist, got %v", err)
		}
		if len(tbl.Records) != 0 || len(tbl.Header) != 4 {
			t.Fatalf("unexpected table %+v", tbl)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		s := newStore(t)
		if err := s.Append(ctx, "Ingresos", sheets.Record{"x": "y"}); !errors.Is(err, sheets.ErrUnknownTable) {
			t.Fatalf("expected ErrUnknownTable, got %v", err)
		}
		if err := s.ClearAndRewrite(ctx, "Ingresos", nil); !errors.Is(err, sheets.ErrUnknownTable) {
			t.Fatalf("expected ErrUnknownTable, got %v", err)
		}
	})
}

// sameAmount compares amounts numerically; some stores hand back "15" for
// "15.00".
func sameAmount(got, want string) bool {
	g, err1 := core.ParseMoney(got)
	w, err2 := core.ParseMoney(want)
	return err1 == nil && err2 == nil && g.Equal(w)
}
