package http

import (
	"net/http"
	"sort"

	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/services"
)

type budgetInput struct {
	Category string
	Limit    string
}

type budgetsPage struct {
	layout
	Rows    []budgetInput
	General string
}

// budgetRows lists the fixed categories first, then any other stored
// category in name order.
func budgetRows(limits map[string]string) []budgetInput {
	rows := make([]budgetInput, 0, len(limits)+len(core.Categories))
	seen := make(map[string]bool, len(core.Categories))
	for _, cat := range core.Categories {
		rows = append(rows, budgetInput{Category: cat, Limit: limits[cat]})
		seen[cat] = true
	}
	var extra []string
	for cat := range limits {
		if !seen[cat] && cat != core.GeneralBudget {
			extra = append(extra, cat)
		}
	}
	sort.Strings(extra)
	for _, cat := range extra {
		rows = append(rows, budgetInput{Category: cat, Limit: limits[cat]})
	}
	return rows
}

func budgetsPageFor(limits map[string]string, f *flash) budgetsPage {
	return budgetsPage{
		layout:  layout{Title: "Presupuestos", Active: "presupuestos", Flash: f},
		Rows:    budgetRows(limits),
		General: limits[core.GeneralBudget],
	}
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	s.renderBudgets(w, r, http.StatusOK, nil)
}

func (s *Server) renderBudgets(w http.ResponseWriter, r *http.Request, status int, f *flash) {
	limits, err := s.budgets.Limits(r.Context())
	if err != nil {
		errStatus, ef := classify(r, err, applog.OpRead)
		s.render(w, r, errStatus, pageBudgets, budgetsPageFor(nil, ef))
		return
	}

	text := make(map[string]string, len(limits))
	for cat, m := range limits {
		text[cat] = m.String()
	}
	s.render(w, r, status, pageBudgets, budgetsPageFor(text, f))
}

// handleSaveBudgets replaces every budget with the submitted values.
// Categories and limits arrive as parallel "categoria" and "limite" lists.
func (s *Server) handleSaveBudgets(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error", applog.FieldError, err)
		http.Error(w, "Formato de solicitud no válido", http.StatusBadRequest)
		return
	}

	submitted := make(map[string]string)
	limits := r.PostForm["limite"]
	for i, cat := range r.PostForm["categoria"] {
		cat = sanitizeInput(cat)
		if cat == "" || cat == core.GeneralBudget {
			continue
		}
		submitted[cat] = sanitizeInput(at(limits, i))
	}
	general := sanitizeInput(r.PostForm.Get("general"))

	perCategory, generalLimit, err := services.ParseBudgetForm(submitted, general)
	if err == nil {
		err = s.budgets.Save(r.Context(), perCategory, generalLimit)
	}
	if err != nil {
		status, f := classify(r, err, applog.OpRewrite)
		submitted[core.GeneralBudget] = general
		s.render(w, r, status, pageBudgets, budgetsPageFor(submitted, f))
		return
	}

	s.renderBudgets(w, r, http.StatusOK, &flash{Kind: flashOK, Message: "Presupuestos guardados."})
}
