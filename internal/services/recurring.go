package services

import (
	"strings"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

// Occurrence is one Recurrentes row derived from a template.
type Occurrence struct {
	Template core.Template
	Expense  core.Expense
	Clamped  bool
}

// OccurrenceNote is the note written on generated rows. The template name
// leads so later runs can recognise the row.
func OccurrenceNote(name, note string) string {
	return strings.TrimSpace(name + " - " + note)
}

type existingRow struct {
	year, month int
	category    string
	amount      core.Money
	note        string
}

// DueOccurrences returns the occurrences due in today's month that are not
// already among existing. It has no side effects.
//
// A row counts as already generated when it shares year, month, category
// and amount with the occurrence and its note contains the template name,
// ignoring case. Existing rows whose date or amount does not parse are
// ignored. Templates with an unsupported frequency are skipped.
func DueOccurrences(templates []core.Template, existing []sheets.Record, today core.Date) []Occurrence {
	seen := make([]existingRow, 0, len(existing))
	for _, r := range existing {
		e, err := sheets.ParseExpense(r)
		if err != nil {
			continue
		}
		seen = append(seen, existingRow{
			year:     e.Date.Year(),
			month:    e.Date.Month(),
			category: e.Category,
			amount:   e.Amount,
			note:     strings.ToLower(e.Note),
		})
	}

	var out []Occurrence
	for _, t := range templates {
		rule, err := GetOccurrenceRule(t.Frequency)
		if err != nil {
			continue
		}
		sched, due := rule.Schedule(t.StartDate, today)
		if !due {
			continue
		}
		exp := core.Expense{
			Date:     sched.Date,
			Amount:   t.Amount,
			Category: t.Category,
			Note:     OccurrenceNote(t.Name, t.Note),
		}
		if alreadyGenerated(seen, t.Name, exp) {
			continue
		}
		out = append(out, Occurrence{Template: t, Expense: exp, Clamped: sched.Clamped})
		// Two identical templates yield one row per month.
		seen = append(seen, existingRow{
			year:     exp.Date.Year(),
			month:    exp.Date.Month(),
			category: exp.Category,
			amount:   exp.Amount,
			note:     strings.ToLower(exp.Note),
		})
	}
	return out
}

func alreadyGenerated(seen []existingRow, name string, e core.Expense) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range seen {
		if r.year == e.Date.Year() &&
			r.month == e.Date.Month() &&
			r.category == e.Category &&
			r.amount.Equal(e.Amount) &&
			strings.Contains(r.note, name) {
			return true
		}
	}
	return false
}
