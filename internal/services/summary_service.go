package services

import (
	"context"
	"fmt"
	"log/slog"

	"gastos/internal/core"
	"gastos/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// SummaryService loads the expense and budget tables and summarizes them.
type SummaryService struct {
	store sheets.TableReader
}

func NewSummaryService(store sheets.TableReader) *SummaryService {
	return &SummaryService{store: store}
}

// Load reads Variables, Recurrentes and Presupuestos concurrently. Absent
// tables count as empty; budget rows that do not parse are ignored.
func (s *SummaryService) Load(ctx context.Context) (core.Summary, error) {
	names := []string{sheets.TableVariables, sheets.TableRecurrentes, sheets.TableBudgets}
	tables := make([]sheets.Table, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			t, err := readOrEmpty(gctx, s.store, name)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return core.Summary{}, err
	}

	sources := []SourceTable{
		{Type: core.Variable, Table: tables[0]},
		{Type: core.Recurrente, Table: tables[1]},
	}
	budgets := parseBudgets(ctx, tables[2])

	sum, err := Summarize(sources, budgets)
	if err != nil {
		return core.Summary{}, err
	}
	if sum.Skipped > 0 {
		slog.WarnContext(ctx, "Summary skipped unreadable rows", "skipped", sum.Skipped)
	}
	return sum, nil
}

func readOrEmpty(ctx context.Context, store sheets.TableReader, name string) (sheets.Table, error) {
	t, err := store.Table(ctx, name)
	if sheets.IsNotFound(err) {
		return sheets.Table{Name: name}, nil
	}
	if err != nil {
		return sheets.Table{}, fmt.Errorf("read %s: %w", name, err)
	}
	return t, nil
}

func parseBudgets(ctx context.Context, t sheets.Table) []core.Budget {
	budgets := make([]core.Budget, 0, len(t.Records))
	for i, r := range t.Records {
		b, err := sheets.ParseBudget(r)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed budget row", "row", i+2, "error", err)
			continue
		}
		budgets = append(budgets, b)
	}
	return budgets
}
