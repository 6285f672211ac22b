package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

// BudgetService reads and replaces the Presupuestos table.
type BudgetService struct {
	store sheets.Store
}

func NewBudgetService(store sheets.Store) *BudgetService {
	return &BudgetService{store: store}
}

// Load returns the stored budgets. An absent table means none.
func (s *BudgetService) Load(ctx context.Context) ([]core.Budget, error) {
	t, err := readOrEmpty(ctx, s.store, sheets.TableBudgets)
	if err != nil {
		return nil, err
	}
	return parseBudgets(ctx, t), nil
}

// Limits returns the stored budgets keyed by category, General included.
func (s *BudgetService) Limits(ctx context.Context) (map[string]core.Money, error) {
	budgets, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]core.Money, len(budgets))
	for _, b := range budgets {
		if b.IsGeneral() {
			out[core.GeneralBudget] = b.Limit
			continue
		}
		out[b.Category] = b.Limit
	}
	return out, nil
}

// ParseBudgetForm reads the Budgets panel inputs. Empty inputs are zero;
// negative or non-numeric inputs are a *core.ValidationError.
func ParseBudgetForm(perCategory map[string]string, general string) (map[string]core.Money, core.Money, error) {
	limits := make(map[string]core.Money, len(perCategory))
	for cat, raw := range perCategory {
		m, err := parseLimit(raw)
		if err != nil {
			return nil, core.Money{}, core.NewValidationError(cat, "El presupuesto debe ser un número mayor o igual que cero.", err)
		}
		limits[cat] = m
	}
	g, err := parseLimit(general)
	if err != nil {
		return nil, core.Money{}, core.NewValidationError(core.GeneralBudget, "El presupuesto general debe ser un número mayor o igual que cero.", err)
	}
	return limits, g, nil
}

func parseLimit(raw string) (core.Money, error) {
	if strings.TrimSpace(raw) == "" {
		return core.Zero, nil
	}
	return core.ParseMoney(raw)
}

// Save replaces Presupuestos with one row per fixed category, then any
// other category present in perCategory in name order, then General.
func (s *BudgetService) Save(ctx context.Context, perCategory map[string]core.Money, general core.Money) error {
	budgets := make([]core.Budget, 0, len(core.Categories)+len(perCategory)+1)
	for _, cat := range core.Categories {
		limit, ok := perCategory[cat]
		if !ok {
			limit = core.Zero
		}
		budgets = append(budgets, core.Budget{Category: cat, Limit: limit})
	}

	var extra []string
	for cat := range perCategory {
		if !isFixedCategory(cat) && !strings.EqualFold(cat, core.GeneralBudget) {
			extra = append(extra, cat)
		}
	}
	sort.Strings(extra)
	for _, cat := range extra {
		budgets = append(budgets, core.Budget{Category: cat, Limit: perCategory[cat]})
	}
	budgets = append(budgets, core.Budget{Category: core.GeneralBudget, Limit: general})

	recs := make([]sheets.Record, 0, len(budgets))
	for _, b := range budgets {
		if err := b.Validate(); err != nil {
			return core.NewValidationError(b.Category, "El presupuesto debe ser un número mayor o igual que cero.", err)
		}
		recs = append(recs, sheets.BudgetRecord(b))
	}

	if err := s.store.ClearAndRewrite(ctx, sheets.TableBudgets, recs); err != nil {
		return fmt.Errorf("save budgets: %w", err)
	}
	slog.InfoContext(ctx, "Budgets saved", "rows", len(recs), "general", general.String())
	return nil
}

func isFixedCategory(cat string) bool {
	for _, c := range core.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
