package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/sheets"
)

type viewPage struct {
	layout
	Table  string
	Tables []string
	Rows   []services.EditedRow
	// Missing is set when the table does not exist yet; the editor is hidden.
	Missing bool
}

func (s *Server) viewPage(table string, rows []services.EditedRow, f *flash) viewPage {
	return viewPage{
		layout: layout{Title: "Ver registros", Active: "ver", Flash: f},
		Table:  table,
		Tables: []string{sheets.TableVariables, sheets.TableRecurrentes},
		Rows:   rows,
	}
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		table = sheets.TableVariables
	}
	s.renderTable(w, r, table, http.StatusOK, nil)
}

// renderTable loads table and shows it in the editor, with f on top when
// the load itself succeeds.
func (s *Server) renderTable(w http.ResponseWriter, r *http.Request, table string, status int, f *flash) {
	t, err := s.expenses.List(r.Context(), table)
	if err != nil {
		errStatus, ef := classify(r, err, applog.OpRead)
		page := s.viewPage(table, nil, ef)
		if sheets.IsNotFound(err) {
			page.Flash.Message = fmt.Sprintf("La tabla %s todavía no existe. Se creará al guardar el primer gasto.", table)
			page.Missing = true
		}
		if !services.EditableTable(table) {
			page.Table = sheets.TableVariables
		}
		s.render(w, r, errStatus, pageView, page)
		return
	}

	rows := make([]services.EditedRow, 0, len(t.Records))
	for _, rec := range t.Records {
		rows = append(rows, services.EditedRow{
			Date:     rec.Get(sheets.ColFecha),
			Amount:   rec.Get(sheets.ColMonto),
			Category: rec.Get(sheets.ColCategoria),
			Note:     rec.Get(sheets.ColNota),
		})
	}
	s.render(w, r, status, pageView, s.viewPage(table, rows, f))
}

// handleRewrite replaces the table with the edited rows. Row fields arrive
// as parallel lists; "eliminar" lists the 0-based indexes to drop.
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error", applog.FieldError, err)
		http.Error(w, "Formato de solicitud no válido", http.StatusBadRequest)
		return
	}

	table := r.PostForm.Get("table")
	rows := editedRowsFromForm(r)

	n, err := s.expenses.Rewrite(r.Context(), table, rows)
	if err != nil {
		status, f := classify(r, err, applog.OpRewrite)
		var verr *core.ValidationError
		if errors.As(err, &verr) && services.EditableTable(table) {
			s.render(w, r, status, pageView, s.viewPage(table, rows, f))
			return
		}
		if !services.EditableTable(table) {
			table = sheets.TableVariables
		}
		s.render(w, r, status, pageView, s.viewPage(table, nil, f))
		return
	}

	s.renderTable(w, r, table, http.StatusOK, &flash{
		Kind:    flashOK,
		Message: fmt.Sprintf("Tabla %s guardada con %d filas.", table, n),
	})
}

func editedRowsFromForm(r *http.Request) []services.EditedRow {
	dates := r.PostForm["fecha"]
	amounts := r.PostForm["monto"]
	categories := r.PostForm["categoria"]
	notes := r.PostForm["nota"]

	drop := make(map[int]bool)
	for _, v := range r.PostForm["eliminar"] {
		if i, err := strconv.Atoi(v); err == nil {
			drop[i] = true
		}
	}

	rows := make([]services.EditedRow, len(dates))
	for i := range dates {
		rows[i] = services.EditedRow{
			Date:     sanitizeInput(dates[i]),
			Amount:   sanitizeInput(at(amounts, i)),
			Category: sanitizeInput(at(categories, i)),
			Note:     sanitizeInput(at(notes, i)),
			Delete:   drop[i],
		}
	}
	return rows
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}
