package sheets

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Table names inside the spreadsheet.
const (
	TableVariables   = "Variables"
	TableRecurrentes = "Recurrentes"
	TableTemplates   = "Plantillas_Recurrentes"
	TableBudgets     = "Presupuestos"
)

// Column names of the canonical headers.
const (
	ColFecha       = "Fecha"
	ColMonto       = "Monto"
	ColCategoria   = "Categoría"
	ColNota        = "Nota"
	ColNombre      = "Nombre"
	ColFrecuencia  = "Frecuencia"
	ColFechaInicio = "Fecha_Inicio"
	ColPresupuesto = "Presupuesto"
)

var schema = map[string][]string{
	TableVariables:   {ColFecha, ColMonto, ColCategoria, ColNota},
	TableRecurrentes: {ColFecha, ColMonto, ColCategoria, ColNota},
	TableTemplates:   {ColNombre, ColMonto, ColCategoria, ColFrecuencia, ColFechaInicio, ColNota},
	TableBudgets:     {ColCategoria, ColPresupuesto},
}

// Tables lists the known tables in a stable order.
func Tables() []string {
	return []string{TableVariables, TableRecurrentes, TableTemplates, TableBudgets}
}

// HeaderFor returns a copy of the canonical header of the named table.
func HeaderFor(name string) ([]string, error) {
	h, ok := schema[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return append([]string(nil), h...), nil
}

// IsNumericColumn reports whether the column holds amounts.
func IsNumericColumn(col string) bool {
	switch CanonicalColumn(col) {
	case "monto", "presupuesto":
		return true
	}
	return false
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// CanonicalColumn lower-cases a column name and strips diacritics so that
// "Categoria", "categoría" and "Categoría" compare equal.
func CanonicalColumn(col string) string {
	s, _, err := transform.String(foldAccents, strings.TrimSpace(col))
	if err != nil {
		s = strings.TrimSpace(col)
	}
	return strings.ToLower(s)
}

// ResolveColumn finds the stored spelling of col inside header.
func ResolveColumn(header []string, col string) (string, bool) {
	want := CanonicalColumn(col)
	for _, h := range header {
		if CanonicalColumn(h) == want {
			return h, true
		}
	}
	return "", false
}

// MissingColumns returns the entries of required absent from header, in
// the order given.
func MissingColumns(header []string, required ...string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := ResolveColumn(header, col); !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// RowValues lays out rec following header.
func RowValues(header []string, rec Record) []string {
	out := make([]string, len(header))
	for i, col := range header {
		out[i] = rec.Get(col)
	}
	return out
}

// RecordFrom builds a record from a header and a row of cells. Short rows
// are padded with empty cells.
func RecordFrom(header []string, cells []string) Record {
	rec := make(Record, len(header))
	for i, col := range header {
		if i < len(cells) {
			rec[col] = strings.TrimSpace(cells[i])
		} else {
			rec[col] = ""
		}
	}
	return rec
}

// IsBlank reports whether every cell of the row is empty.
func IsBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
