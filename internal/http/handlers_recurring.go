package http

import (
	"fmt"
	"net/http"

	applog "gastos/internal/log"
)

// handleGenerate runs the recurring generator for the current month and
// returns to the Register panel with the outcome.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	gen := parseGen(r.FormValue("gen"))

	n, err := s.recurring.GenerateForCurrentPeriod(r.Context(), s.today())
	if err != nil {
		status, f := classify(r, err, applog.OpGenerate)
		s.render(w, r, status, pageRegister, s.registerPage(gen, s.emptyRegisterForm(), f))
		return
	}

	msg := "No hay gastos recurrentes pendientes este mes."
	if n > 0 {
		msg = fmt.Sprintf("Se generaron %d gastos recurrentes.", n)
	}
	s.render(w, r, http.StatusOK, pageRegister, s.registerPage(gen, s.emptyRegisterForm(), &flash{Kind: flashOK, Message: msg}))
}
