package http

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/sheets"
)

// Flash kinds, used as CSS classes.
const (
	flashOK    = "ok"
	flashInfo  = "info"
	flashWarn  = "warn"
	flashError = "error"
)

const genericErrorMessage = "Ha ocurrido un error inesperado. Inténtelo de nuevo."

type flash struct {
	Kind    string
	Message string
}

// layout is embedded by every page model; base.html reads these fields.
type layout struct {
	Title  string
	Active string
	Flash  *flash
}

var templateFuncs = template.FuncMap{
	"euros": formatEuros,
	"join":  strings.Join,
}

// render executes page into a buffer first, so a template failure never
// leaves a half-written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	t, ok := s.pages[page]
	if !ok {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template not loaded",
			applog.FieldOperation, applog.OpRender, "page", page)
		http.Error(w, genericErrorMessage, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template render failed",
			applog.FieldOperation, applog.OpRender, "page", page, applog.FieldError, err)
		http.Error(w, genericErrorMessage, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// classify maps a service error onto a status code and a message for the
// user. Unexpected errors are logged here and shown generically.
func classify(r *http.Request, err error, op string) (int, *flash) {
	var verr *core.ValidationError
	var missing *core.ColumnMissingError
	var warn *core.GenerationWarning

	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, &flash{Kind: flashError, Message: validationMessage(verr)}
	case errors.As(err, &missing):
		return http.StatusOK, &flash{Kind: flashError, Message: "Faltan columnas en los datos: " + strings.Join(missing.Missing, ", ") + "."}
	case errors.As(err, &warn):
		msg := "No se pudieron generar los gastos recurrentes en esta ejecución."
		if warn.Generated > 0 {
			msg = fmt.Sprintf("Generación incompleta: se añadieron %d gastos antes del error.", warn.Generated)
		}
		return http.StatusOK, &flash{Kind: flashWarn, Message: msg}
	case sheets.IsNotFound(err):
		return http.StatusOK, &flash{Kind: flashInfo, Message: "La tabla todavía no existe. Se creará al guardar el primer gasto."}
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldOperation, op, applog.FieldError, err)
		return http.StatusInternalServerError, &flash{Kind: flashError, Message: genericErrorMessage}
	}
}

// validationMessage prefixes row and category errors with their subject;
// form field errors already read as full sentences.
func validationMessage(verr *core.ValidationError) string {
	switch verr.Field {
	case "", "monto", "fecha", "tipo", "nombre", "frecuencia", "tabla":
		return verr.Message
	}
	return verr.Error()
}
