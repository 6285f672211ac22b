package services

import (
	"context"
	"errors"
	"testing"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

func TestParseEntry(t *testing.T) {
	today := date("2024-03-10")
	tests := []struct {
		name      string
		in        EntryInput
		wantField string
		check     func(t *testing.T, e Entry)
	}{
		{
			name: "variable with defaults",
			in:   EntryInput{Amount: "12,50", Category: " Comida ", Note: "mercado"},
			check: func(t *testing.T, e Entry) {
				if e.Type != core.Variable || e.Date.String() != "2024-03-10" || e.Amount.String() != "12.50" || e.Category != "Comida" {
					t.Fatalf("unexpected entry %+v", e)
				}
			},
		},
		{
			name: "explicit date and free text category",
			in:   EntryInput{Amount: "3", Category: "Mascotas", Date: "2024-02-29"},
			check: func(t *testing.T, e Entry) {
				if e.Date.String() != "2024-02-29" || e.Category != "Mascotas" {
					t.Fatalf("unexpected entry %+v", e)
				}
			},
		},
		{
			name: "first time recurring",
			in:   EntryInput{Amount: "15", Type: "recurrente", Name: " Netflix ", Frequency: "mensual", FirstTime: true},
			check: func(t *testing.T, e Entry) {
				if !e.IsTemplate() || e.Name != "Netflix" || e.Frequency != core.Mensual {
					t.Fatalf("unexpected entry %+v", e)
				}
			},
		},
		{
			name: "repeat recurring needs no name or frequency",
			in:   EntryInput{Amount: "15", Type: "Recurrente"},
			check: func(t *testing.T, e Entry) {
				if e.IsTemplate() || e.Type != core.Recurrente {
					t.Fatalf("unexpected entry %+v", e)
				}
			},
		},
		{name: "zero amount", in: EntryInput{Amount: "0"}, wantField: "monto"},
		{name: "negative amount", in: EntryInput{Amount: "-5"}, wantField: "monto"},
		{name: "garbage amount", in: EntryInput{Amount: "doce"}, wantField: "monto"},
		{name: "empty amount", in: EntryInput{}, wantField: "monto"},
		{name: "bad date", in: EntryInput{Amount: "1", Date: "10/03/2024"}, wantField: "fecha"},
		{name: "bad type", in: EntryInput{Amount: "1", Type: "Mensual"}, wantField: "tipo"},
		{name: "first time without name", in: EntryInput{Amount: "1", Type: "Recurrente", Frequency: "Anual", FirstTime: true}, wantField: "nombre"},
		{name: "first time blank name", in: EntryInput{Amount: "1", Type: "Recurrente", Name: "   ", Frequency: "Anual", FirstTime: true}, wantField: "nombre"},
		{name: "first time bad frequency", in: EntryInput{Amount: "1", Type: "Recurrente", Name: "Gym", Frequency: "Diaria", FirstTime: true}, wantField: "frecuencia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ParseEntry(tt.in, today)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ParseEntry: %v", err)
				}
				tt.check(t, e)
				return
			}
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField || verr.Message == "" {
				t.Fatalf("field = %q (%q), want %q", verr.Field, verr.Message, tt.wantField)
			}
		})
	}
}

func TestValidateEntryRules(t *testing.T) {
	ok := Entry{Amount: core.MustMoney("1"), Date: date("2024-01-01"), Type: core.Variable}
	if err := ValidateEntry(ok); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	zero := ok
	zero.Amount = core.Zero
	if err := ValidateEntry(zero); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	noDate := ok
	noDate.Date = core.Date{}
	if err := ValidateEntry(noDate); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	tpl := ok
	tpl.Type = core.Recurrente
	tpl.FirstTime = true
	tpl.Frequency = core.Semanal
	if err := ValidateEntry(tpl); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestSaveVariable(t *testing.T) {
	store := newStore()
	svc := NewExpenseService(store)
	res, err := svc.Submit(context.Background(), EntryInput{Amount: "42.1", Category: "Transporte", Note: "taxi", Date: "2024-03-02"}, date("2024-03-10"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Table != sheets.TableVariables {
		t.Fatalf("saved to %s", res.Table)
	}

	got := rows(t, store, sheets.TableVariables)
	if len(got) != 1 {
		t.Fatalf("expected one Variables row, got %d", len(got))
	}
	want := sheets.Record{"Fecha": "2024-03-02", "Monto": "42.10", "Categoría": "Transporte", "Nota": "taxi"}
	for k, v := range want {
		if got[0][k] != v {
			t.Fatalf("%s = %q, want %q", k, got[0][k], v)
		}
	}
	if rows(t, store, sheets.TableRecurrentes) != nil || rows(t, store, sheets.TableTemplates) != nil {
		t.Fatal("a variable expense must not touch the recurring tables")
	}
}

func TestSaveRecurring(t *testing.T) {
	ctx := context.Background()
	today := date("2024-03-10")

	t.Run("first time creates a template only", func(t *testing.T) {
		store := newStore()
		_, err := NewExpenseService(store).Submit(ctx, EntryInput{
			Amount: "15", Category: "Entretenimiento", Type: "Recurrente",
			Name: "Netflix", Frequency: "Mensual", FirstTime: true, Date: "2024-01-15",
		}, today)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		tpl := rows(t, store, sheets.TableTemplates)
		if len(tpl) != 1 || tpl[0]["Nombre"] != "Netflix" || tpl[0]["Fecha_Inicio"] != "2024-01-15" || tpl[0]["Frecuencia"] != "Mensual" {
			t.Fatalf("unexpected templates %+v", tpl)
		}
		if rows(t, store, sheets.TableRecurrentes) != nil || rows(t, store, sheets.TableVariables) != nil {
			t.Fatal("no expense row expected on first registration")
		}
	})

	t.Run("repeat creates one occurrence row", func(t *testing.T) {
		store := newStore()
		_, err := NewExpenseService(store).Submit(ctx, EntryInput{
			Amount: "15", Category: "Entretenimiento", Type: "Recurrente", Name: "Netflix",
		}, today)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		rec := rows(t, store, sheets.TableRecurrentes)
		if len(rec) != 1 || rec[0]["Nota"] != "Netflix -" {
			t.Fatalf("unexpected rows %+v", rec)
		}
		if rows(t, store, sheets.TableTemplates) != nil {
			t.Fatal("no template expected on repeat")
		}

		// the generator recognises the manual row even though its day differs
		seedTemplates(t, store, netflix())
		n, err := NewRecurringProcessor(store).GenerateForCurrentPeriod(ctx, today)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if n != 0 {
			t.Fatalf("generated %d, want 0", n)
		}
	})

	t.Run("repeat without name keeps the note", func(t *testing.T) {
		store := newStore()
		_, err := NewExpenseService(store).Submit(ctx, EntryInput{Amount: "8", Type: "Recurrente", Note: "luz"}, today)
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if rec := rows(t, store, sheets.TableRecurrentes); rec[0]["Nota"] != "luz" {
			t.Fatalf("unexpected note %q", rec[0]["Nota"])
		}
	})
}

func TestSaveRejectsInvalidWithoutWriting(t *testing.T) {
	store := newStore()
	_, err := NewExpenseService(store).Submit(context.Background(), EntryInput{Amount: "0", Category: "Comida"}, date("2024-03-10"))
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, name := range sheets.Tables() {
		if rows(t, store, name) != nil {
			t.Fatalf("%s was written", name)
		}
	}
}

func TestSaveSurfacesStoreErrors(t *testing.T) {
	store := &flakyStore{Store: newStore(), appendLimit: 0}
	_, err := NewExpenseService(store).Submit(context.Background(), EntryInput{Amount: "1"}, date("2024-03-10"))
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestListAndRewrite(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewExpenseService(store)

	if _, err := svc.List(ctx, sheets.TableVariables); !sheets.IsNotFound(err) {
		t.Fatalf("expected table not found, got %v", err)
	}
	var verr *core.ValidationError
	if _, err := svc.List(ctx, sheets.TableBudgets); !errors.As(err, &verr) {
		t.Fatalf("budgets are not listable, got %v", err)
	}

	for _, amt := range []string{"1", "2", "3"} {
		if _, err := svc.Submit(ctx, EntryInput{Amount: amt, Category: "Otros"}, date("2024-03-10")); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("malformed row writes nothing", func(t *testing.T) {
		_, err := svc.Rewrite(ctx, sheets.TableVariables, []EditedRow{
			{Date: "2024-03-10", Amount: "1", Category: "Otros"},
			{Date: "2024-03-10", Amount: "cero", Category: "Otros"},
		})
		var verr *core.ValidationError
		if !errors.As(err, &verr) || verr.Field != "fila 2" {
			t.Fatalf("expected row 2 ValidationError, got %v", err)
		}
		if got := rows(t, store, sheets.TableVariables); len(got) != 3 {
			t.Fatalf("table changed: %+v", got)
		}
	})

	t.Run("edit and delete", func(t *testing.T) {
		n, err := svc.Rewrite(ctx, sheets.TableVariables, []EditedRow{
			{Date: "2024-03-10", Amount: "1", Category: "Otros"},
			{Date: "2024-03-10", Amount: "2", Category: "Otros", Delete: true},
			{Date: "2024-03-11 00:00:00", Amount: "30,5", Category: "Salud", Note: "farmacia"},
		})
		if err != nil || n != 2 {
			t.Fatalf("Rewrite = %d, %v", n, err)
		}
		tbl, err := svc.List(ctx, sheets.TableVariables)
		if err != nil || len(tbl.Records) != 2 {
			t.Fatalf("List = %+v, %v", tbl, err)
		}
		last := tbl.Records[1]
		if last["Fecha"] != "2024-03-11" || last["Monto"] != "30.50" || last["Categoría"] != "Salud" {
			t.Fatalf("unexpected row %+v", last)
		}
	})

	t.Run("deleting everything leaves an empty table", func(t *testing.T) {
		if _, err := svc.Rewrite(ctx, sheets.TableVariables, []EditedRow{{Delete: true}}); err != nil {
			t.Fatal(err)
		}
		tbl, err := svc.List(ctx, sheets.TableVariables)
		if err != nil || len(tbl.Records) != 0 {
			t.Fatalf("List = %+v, %v", tbl, err)
		}
	})
}
