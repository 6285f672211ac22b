package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthAmount is the total of a calendar month, keyed YYYY-MM.
type MonthAmount struct {
	Month  string
	Amount Money
}

// TypeAmount is the total of one expense type.
type TypeAmount struct {
	Type   ExpenseType
	Amount Money
}

// CategoryBudget compares a category total with its budget. HasBudget is
// false when no budget row exists for the category.
type CategoryBudget struct {
	Category  string
	Spent     Money
	Budget    Money
	HasBudget bool
	// Diff is Budget - Spent; meaningful only when HasBudget.
	Diff Money
}

// OverBudget reports whether spending exceeds a defined budget.
func (c CategoryBudget) OverBudget() bool {
	return c.HasBudget && c.Diff.IsNegative()
}

// Overage is the magnitude by which spending exceeds the budget.
func (c CategoryBudget) Overage() Money {
	if !c.OverBudget() {
		return Zero
	}
	return c.Diff.Abs()
}

type BudgetComparison struct {
	General    Money
	HasGeneral bool
	// GeneralDiff is General - Total, signed.
	GeneralDiff Money
	Categories  []CategoryBudget
}

// OverBudget lists the categories whose budget is exceeded.
func (b BudgetComparison) OverBudget() []CategoryBudget {
	var out []CategoryBudget
	for _, c := range b.Categories {
		if c.OverBudget() {
			out = append(out, c)
		}
	}
	return out
}

// Summary aggregates every expense row across Variables and Recurrentes.
type Summary struct {
	Total      Money
	Count      int
	Skipped    int
	ByType     []TypeAmount
	ByCategory []CategoryAmount
	ByMonth    []MonthAmount
	Budgets    BudgetComparison
}
