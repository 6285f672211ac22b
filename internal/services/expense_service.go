package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

// SaveResult tells the caller where an entry landed.
type SaveResult struct {
	Table  string
	Record sheets.Record
}

// EditedRow is one row of the View panel as submitted.
type EditedRow struct {
	Date     string
	Amount   string
	Category string
	Note     string
	Delete   bool
}

// ExpenseService saves Register panel entries and backs the View panel.
type ExpenseService struct {
	store sheets.Store
}

func NewExpenseService(store sheets.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// Submit parses, validates and saves one form submission.
func (s *ExpenseService) Submit(ctx context.Context, in EntryInput, today core.Date) (SaveResult, error) {
	e, err := ParseEntry(in, today)
	if err != nil {
		return SaveResult{}, err
	}
	return s.Save(ctx, e)
}

// Save writes exactly one row:
//   - Variable: Variables
//   - Recurrente, first time: Plantillas_Recurrentes, starting on the entry date
//   - Recurrente otherwise: Recurrentes, with the name folded into the note
func (s *ExpenseService) Save(ctx context.Context, e Entry) (SaveResult, error) {
	if err := ValidateEntry(e); err != nil {
		return SaveResult{}, err
	}

	var res SaveResult
	switch {
	case e.Type == core.Variable:
		res.Table = sheets.TableVariables
		res.Record = sheets.ExpenseRecord(core.Expense{Date: e.Date, Amount: e.Amount, Category: e.Category, Note: e.Note})
	case e.IsTemplate():
		res.Table = sheets.TableTemplates
		res.Record = sheets.TemplateRecord(core.Template{
			Name:      e.Name,
			Amount:    e.Amount,
			Category:  e.Category,
			Frequency: e.Frequency,
			StartDate: e.Date,
			Note:      e.Note,
		})
	default:
		note := e.Note
		if e.Name != "" {
			note = OccurrenceNote(e.Name, e.Note)
		}
		res.Table = sheets.TableRecurrentes
		res.Record = sheets.ExpenseRecord(core.Expense{Date: e.Date, Amount: e.Amount, Category: e.Category, Note: note})
	}

	if err := s.store.Append(ctx, res.Table, res.Record); err != nil {
		return SaveResult{}, fmt.Errorf("save to %s: %w", res.Table, err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"table", res.Table,
		"date", e.Date.String(),
		"amount", e.Amount.String(),
		"category", e.Category)

	return res, nil
}

// EditableTable reports whether the View panel can show and rewrite name.
func EditableTable(name string) bool {
	return name == sheets.TableVariables || name == sheets.TableRecurrentes
}

// List returns the rows of Variables or Recurrentes. A missing table is
// returned as sheets.ErrTableNotFound for the caller to show.
func (s *ExpenseService) List(ctx context.Context, table string) (sheets.Table, error) {
	if !EditableTable(table) {
		return sheets.Table{}, core.NewValidationError("tabla", fmt.Sprintf("La tabla %q no se puede consultar.", table), nil)
	}
	t, err := s.store.Table(ctx, table)
	if err != nil {
		return sheets.Table{}, err
	}
	return t, nil
}

// ParseEditedRows converts the View panel rows into records, dropping those
// marked for deletion. The first malformed row is reported by its 1-based
// position.
func ParseEditedRows(rows []EditedRow) ([]sheets.Record, error) {
	recs := make([]sheets.Record, 0, len(rows))
	for i, r := range rows {
		if r.Delete {
			continue
		}
		field := fmt.Sprintf("fila %d", i+1)
		d, err := sheets.ParseCellDate(r.Date)
		if err != nil {
			return nil, core.NewValidationError(field, fmt.Sprintf("fecha no válida %q", strings.TrimSpace(r.Date)), err)
		}
		m, err := core.ParseMoney(r.Amount)
		if err == nil {
			err = m.Validate()
		}
		if err != nil {
			return nil, core.NewValidationError(field, fmt.Sprintf("monto no válido %q", strings.TrimSpace(r.Amount)), err)
		}
		recs = append(recs, sheets.ExpenseRecord(core.Expense{
			Date:     d,
			Amount:   m,
			Category: strings.TrimSpace(r.Category),
			Note:     strings.TrimSpace(r.Note),
		}))
	}
	return recs, nil
}

// Rewrite replaces table with rows. Nothing is written when any row is
// malformed. The rewrite itself is not atomic.
func (s *ExpenseService) Rewrite(ctx context.Context, table string, rows []EditedRow) (int, error) {
	if !EditableTable(table) {
		return 0, core.NewValidationError("tabla", fmt.Sprintf("La tabla %q no se puede editar.", table), nil)
	}
	recs, err := ParseEditedRows(rows)
	if err != nil {
		return 0, err
	}
	if err := s.store.ClearAndRewrite(ctx, table, recs); err != nil {
		return 0, fmt.Errorf("rewrite %s: %w", table, err)
	}
	slog.InfoContext(ctx, "Table rewritten", "table", table, "rows", len(recs), "dropped", len(rows)-len(recs))
	return len(recs), nil
}
