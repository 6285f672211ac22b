package services

import (
	"sort"
	"strings"

	"gastos/internal/core"
	"gastos/internal/sheets"
)

// SourceTable is an expense table tagged with the type its rows count as.
type SourceTable struct {
	Type  core.ExpenseType
	Table sheets.Table
}

var requiredSummaryColumns = []string{sheets.ColFecha, sheets.ColMonto, sheets.ColCategoria}

// Summarize aggregates every row of sources and compares the totals with
// budgets.
//
// Column names are matched ignoring case and accents, so "Categoria" is
// read as "Categoría". A source whose header lacks any of Fecha, Monto or
// Categoría aborts the summary with a *core.ColumnMissingError naming the
// missing columns. Sources with an empty header are absent tables and are
// treated as empty. Rows whose date or amount does not parse are counted
// in Skipped and otherwise ignored.
func Summarize(sources []SourceTable, budgets []core.Budget) (core.Summary, error) {
	var missing []string
	for _, src := range sources {
		if len(src.Table.Header) == 0 {
			continue
		}
		for _, col := range sheets.MissingColumns(src.Table.Header, requiredSummaryColumns...) {
			if !containsString(missing, col) {
				missing = append(missing, col)
			}
		}
	}
	if len(missing) > 0 {
		return core.Summary{}, &core.ColumnMissingError{Missing: missing}
	}

	sum := core.Summary{Total: core.Zero}
	byType := map[core.ExpenseType]core.Money{}
	byCategory := map[string]core.Money{}
	byMonth := map[string]core.Money{}
	var typeOrder []core.ExpenseType

	for _, src := range sources {
		if _, ok := byType[src.Type]; !ok {
			byType[src.Type] = core.Zero
			typeOrder = append(typeOrder, src.Type)
		}
		for _, r := range src.Table.Records {
			e, err := sheets.ParseExpense(r)
			if err != nil {
				sum.Skipped++
				continue
			}
			sum.Count++
			sum.Total = sum.Total.Add(e.Amount)
			byType[src.Type] = byType[src.Type].Add(e.Amount)
			byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
			month := e.Date.Format("2006-01")
			byMonth[month] = byMonth[month].Add(e.Amount)
		}
	}

	for _, t := range typeOrder {
		sum.ByType = append(sum.ByType, core.TypeAmount{Type: t, Amount: byType[t]})
	}

	for name, amount := range byCategory {
		sum.ByCategory = append(sum.ByCategory, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(sum.ByCategory, func(i, j int) bool {
		if c := sum.ByCategory[i].Amount.Cmp(sum.ByCategory[j].Amount); c != 0 {
			return c > 0
		}
		return sum.ByCategory[i].Name < sum.ByCategory[j].Name
	})

	for month, amount := range byMonth {
		sum.ByMonth = append(sum.ByMonth, core.MonthAmount{Month: month, Amount: amount})
	}
	sort.Slice(sum.ByMonth, func(i, j int) bool { return sum.ByMonth[i].Month < sum.ByMonth[j].Month })

	sum.Budgets = CompareBudgets(sum.Total, sum.ByCategory, budgets)
	return sum, nil
}

// CompareBudgets computes general budget minus total and, for every
// category with spending, its budget minus its total. Categories without a
// budget row carry HasBudget=false and are never over budget.
func CompareBudgets(total core.Money, byCategory []core.CategoryAmount, budgets []core.Budget) core.BudgetComparison {
	cmp := core.BudgetComparison{}
	limits := map[string]core.Money{}
	for _, b := range budgets {
		if b.IsGeneral() {
			cmp.General = b.Limit
			cmp.HasGeneral = true
			continue
		}
		limits[strings.ToLower(strings.TrimSpace(b.Category))] = b.Limit
	}
	if cmp.HasGeneral {
		cmp.GeneralDiff = cmp.General.Sub(total)
	}

	for _, c := range byCategory {
		cb := core.CategoryBudget{Category: c.Name, Spent: c.Amount}
		if limit, ok := limits[strings.ToLower(c.Name)]; ok {
			cb.Budget = limit
			cb.HasBudget = true
			cb.Diff = limit.Sub(c.Amount)
		}
		cmp.Categories = append(cmp.Categories, cb)
	}
	return cmp
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
