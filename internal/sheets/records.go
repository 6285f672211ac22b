package sheets

import (
	"fmt"
	"strings"

	"gastos/internal/core"
)

// ExpenseRecord converts an expense into a Variables/Recurrentes row.
func ExpenseRecord(e core.Expense) Record {
	return Record{
		ColFecha:     e.Date.String(),
		ColMonto:     e.Amount.String(),
		ColCategoria: e.Category,
		ColNota:      e.Note,
	}
}

// ParseExpense reads an expense row. The amount must parse but may be zero;
// callers that save user input validate separately.
func ParseExpense(r Record) (core.Expense, error) {
	d, err := ParseCellDate(r.Get(ColFecha))
	if err != nil {
		return core.Expense{}, err
	}
	m, err := core.ParseMoney(r.Get(ColMonto))
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: %q", err, r.Get(ColMonto))
	}
	return core.Expense{
		Date:     d,
		Amount:   m,
		Category: strings.TrimSpace(r.Get(ColCategoria)),
		Note:     strings.TrimSpace(r.Get(ColNota)),
	}, nil
}

func TemplateRecord(t core.Template) Record {
	return Record{
		ColNombre:      t.Name,
		ColMonto:       t.Amount.String(),
		ColCategoria:   t.Category,
		ColFrecuencia:  string(t.Frequency),
		ColFechaInicio: t.StartDate.String(),
		ColNota:        t.Note,
	}
}

func ParseTemplate(r Record) (core.Template, error) {
	m, err := core.ParseMoney(r.Get(ColMonto))
	if err != nil {
		return core.Template{}, fmt.Errorf("%w: %q", err, r.Get(ColMonto))
	}
	f, err := core.ParseFrequency(r.Get(ColFrecuencia))
	if err != nil {
		return core.Template{}, err
	}
	d, err := ParseCellDate(r.Get(ColFechaInicio))
	if err != nil {
		return core.Template{}, err
	}
	t := core.Template{
		Name:      strings.TrimSpace(r.Get(ColNombre)),
		Amount:    m,
		Category:  strings.TrimSpace(r.Get(ColCategoria)),
		Frequency: f,
		StartDate: d,
		Note:      strings.TrimSpace(r.Get(ColNota)),
	}
	if err := t.Validate(); err != nil {
		return core.Template{}, err
	}
	return t, nil
}

func BudgetRecord(b core.Budget) Record {
	return Record{
		ColCategoria:   b.Category,
		ColPresupuesto: b.Limit.String(),
	}
}

// ParseBudget reads a Presupuestos row. An empty limit counts as zero.
func ParseBudget(r Record) (core.Budget, error) {
	raw := strings.TrimSpace(r.Get(ColPresupuesto))
	limit := core.Zero
	if raw != "" {
		m, err := core.ParseMoney(raw)
		if err != nil {
			return core.Budget{}, fmt.Errorf("%w: %q", err, raw)
		}
		limit = m
	}
	b := core.Budget{Category: strings.TrimSpace(r.Get(ColCategoria)), Limit: limit}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

// ParseCellDate accepts YYYY-MM-DD, optionally followed by a time part as
// written by some spreadsheet exports ("2024-03-15 00:00:00").
func ParseCellDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > 10 && (s[10] == ' ' || s[10] == 'T') {
		s = s[:10]
	}
	return core.ParseDate(s)
}
