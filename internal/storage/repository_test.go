package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gastos/internal/sheets"
	"gastos/internal/sheets/sheetstest"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "gastos.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteContract(t *testing.T) {
	sheetstest.RunStoreContract(t, func(t *testing.T) sheets.Store {
		return newTestRepo(t)
	})
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gastos.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	rec := sheets.Record{"Nombre": "Netflix", "Monto": "15", "Categoría": "Entretenimiento", "Frecuencia": "Mensual", "Fecha_Inicio": "2024-01-15", "Nota": ""}
	if err := repo.Append(ctx, sheets.TableTemplates, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	repo.Close()

	// Migrations are idempotent on an existing database.
	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	tbl, err := repo.Table(ctx, sheets.TableTemplates)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if len(tbl.Records) != 1 || tbl.Records[0].Get(sheets.ColNombre) != "Netflix" {
		t.Fatalf("unexpected records %v", tbl.Records)
	}
}

func TestSQLiteHeaderVariant(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	if err := repo.SetHeader(ctx, sheets.TableVariables, []string{"Fecha", "Monto", "Categoria", "Nota"}); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := repo.Append(ctx, sheets.TableVariables, sheets.Record{"Fecha": "2024-01-01", "Monto": "2", "Categoría": "Comida"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	tbl, err := repo.Table(ctx, sheets.TableVariables)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if tbl.Header[2] != "Categoria" || tbl.Records[0]["Categoria"] != "Comida" {
		t.Fatalf("unexpected table %+v", tbl)
	}

	// A rewrite restores the canonical header.
	if err := repo.ClearAndRewrite(ctx, sheets.TableVariables, tbl.Records); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	tbl, _ = repo.Table(ctx, sheets.TableVariables)
	if tbl.Header[2] != sheets.ColCategoria || tbl.Records[0][sheets.ColCategoria] != "Comida" {
		t.Fatalf("expected canonical header after rewrite, got %+v", tbl)
	}
}

func TestSQLiteUnknownTable(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Table(context.Background(), "Ingresos"); !errors.Is(err, sheets.ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
	if err := repo.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
