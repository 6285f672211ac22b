package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/core"
	"gastos/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// RecurringProcessor materialises the recurring occurrences of the current
// month into Recurrentes.
type RecurringProcessor struct {
	store sheets.Store
}

func NewRecurringProcessor(store sheets.Store) *RecurringProcessor {
	return &RecurringProcessor{store: store}
}

// GenerateForCurrentPeriod appends every occurrence due in today's month
// that is not already present and returns how many rows were appended.
//
// A missing template table means no templates and a missing Recurrentes
// table means no existing rows. Any other failure is returned as a
// *core.GenerationWarning; rows appended before the failure stay.
func (p *RecurringProcessor) GenerateForCurrentPeriod(ctx context.Context, today core.Date) (int, error) {
	var templates, existing sheets.Table

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := p.store.Table(gctx, sheets.TableTemplates)
		if err != nil && !sheets.IsNotFound(err) {
			return fmt.Errorf("read templates: %w", err)
		}
		templates = t
		return nil
	})
	g.Go(func() error {
		t, err := p.store.Table(gctx, sheets.TableRecurrentes)
		if err != nil && !sheets.IsNotFound(err) {
			return fmt.Errorf("read recurring rows: %w", err)
		}
		existing = t
		return nil
	})
	if err := g.Wait(); err != nil {
		slog.WarnContext(ctx, "Recurring generation skipped", "error", err)
		return 0, &core.GenerationWarning{Err: err}
	}

	parsed := make([]core.Template, 0, len(templates.Records))
	for i, r := range templates.Records {
		t, err := sheets.ParseTemplate(r)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed template row", "row", i+2, "error", err)
			continue
		}
		parsed = append(parsed, t)
	}

	occurrences := DueOccurrences(parsed, existing.Records, today)

	slog.InfoContext(ctx, "Processing recurring templates",
		"templates", len(parsed),
		"existing", len(existing.Records),
		"due", len(occurrences),
		"period", today.Format("2006-01"))

	generated := 0
	for _, o := range occurrences {
		if o.Clamped {
			slog.WarnContext(ctx, "Yearly occurrence moved to the last day of the month",
				"template", o.Template.Name,
				"start_date", o.Template.StartDate.String(),
				"date", o.Expense.Date.String())
		}
		if err := p.store.Append(ctx, sheets.TableRecurrentes, sheets.ExpenseRecord(o.Expense)); err != nil {
			err = fmt.Errorf("append occurrence of %q: %w", o.Template.Name, err)
			slog.WarnContext(ctx, "Recurring generation interrupted", "error", err, "generated", generated)
			return generated, &core.GenerationWarning{Generated: generated, Err: err}
		}
		generated++
		slog.InfoContext(ctx, "Created expense from recurring template",
			"template", o.Template.Name,
			"date", o.Expense.Date.String(),
			"amount", o.Expense.Amount.String(),
			"frequency", o.Template.Frequency)
	}

	slog.InfoContext(ctx, "Recurring expense processing complete", "generated", generated)
	return generated, nil
}

// IsGenerationWarning reports whether err is a skipped generation run.
func IsGenerationWarning(err error) bool {
	var w *core.GenerationWarning
	return errors.As(err, &w)
}
