package http

import (
	"net/http"

	"gastos/internal/core"
	applog "gastos/internal/log"
)

type summaryPage struct {
	layout
	// Summary is nil when the summary could not be produced.
	Summary *core.Summary
	Over    []core.CategoryBudget
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	page := summaryPage{layout: layout{Title: "Resumen", Active: "resumen"}}

	sum, err := s.summaries.Load(r.Context())
	if err != nil {
		status, f := classify(r, err, applog.OpSummary)
		page.Flash = f
		s.render(w, r, status, pageSummary, page)
		return
	}

	page.Summary = &sum
	page.Over = sum.Budgets.OverBudget()
	if sum.Count == 0 {
		page.Flash = &flash{Kind: flashInfo, Message: "Todavía no hay gastos registrados."}
	}
	s.render(w, r, http.StatusOK, pageSummary, page)
}
