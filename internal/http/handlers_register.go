package http

import (
	"fmt"
	"net/http"

	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/services"
)

// registerForm holds the visible inputs of the Register panel as text, so a
// failed save can show back exactly what was typed.
type registerForm struct {
	Amount    string
	Category  string
	Note      string
	Date      string
	Type      string
	Name      string
	Frequency string
	FirstTime bool
}

type registerPage struct {
	layout
	// Gen is the submission generation. It moves forward on every
	// successful save; input ids carry it so browsers drop stale values.
	Gen         int
	Form        registerForm
	Categories  []string
	Types       []core.ExpenseType
	Frequencies []core.Frequency
}

func (s *Server) emptyRegisterForm() registerForm {
	return registerForm{
		Date:      s.today().String(),
		Type:      string(core.Variable),
		Frequency: string(core.Mensual),
	}
}

func (s *Server) registerPage(gen int, form registerForm, f *flash) registerPage {
	return registerPage{
		layout:      layout{Title: "Registrar gasto", Active: "registrar", Flash: f},
		Gen:         gen,
		Form:        form,
		Categories:  core.Categories,
		Types:       []core.ExpenseType{core.Variable, core.Recurrente},
		Frequencies: core.Frequencies,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	gen := parseGen(r.URL.Query().Get("gen"))
	s.render(w, r, http.StatusOK, pageRegister, s.registerPage(gen, s.emptyRegisterForm(), nil))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Parse form error", applog.FieldError, err)
		http.Error(w, "Formato de solicitud no válido", http.StatusBadRequest)
		return
	}

	gen := parseGen(r.PostForm.Get("gen"))
	form := registerForm{
		Amount:    sanitizeInput(r.PostForm.Get("monto")),
		Category:  sanitizeInput(r.PostForm.Get("categoria")),
		Note:      sanitizeInput(r.PostForm.Get("nota")),
		Date:      sanitizeInput(r.PostForm.Get("fecha")),
		Type:      sanitizeInput(r.PostForm.Get("tipo")),
		Name:      sanitizeInput(r.PostForm.Get("nombre")),
		Frequency: sanitizeInput(r.PostForm.Get("frecuencia")),
		FirstTime: isChecked(r.PostForm.Get("primera_vez")),
	}

	res, err := s.expenses.Submit(r.Context(), services.EntryInput{
		Amount:    form.Amount,
		Category:  form.Category,
		Note:      form.Note,
		Date:      form.Date,
		Type:      form.Type,
		Name:      form.Name,
		Frequency: form.Frequency,
		FirstTime: form.FirstTime,
	}, s.today())
	if err != nil {
		status, f := classify(r, err, applog.OpAppend)
		s.render(w, r, status, pageRegister, s.registerPage(gen, form, f))
		return
	}

	s.render(w, r, http.StatusOK, pageRegister, s.registerPage(gen+1, s.emptyRegisterForm(), &flash{
		Kind:    flashOK,
		Message: savedMessage(res.Table),
	}))
}

func savedMessage(table string) string {
	return fmt.Sprintf("Gasto guardado en %s.", table)
}
