// Package services provides business logic and orchestration services.
package services

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"gastos/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// EntryInput is the raw form submission of the Register panel.
type EntryInput struct {
	Amount    string
	Category  string
	Note      string
	Date      string
	Type      string
	Name      string
	Frequency string
	FirstTime bool
}

// Entry is a parsed, validated form submission.
type Entry struct {
	Amount    core.Money       `validate:"positive_money"`
	Category  string           `validate:"-"`
	Note      string           `validate:"-"`
	Date      core.Date        `validate:"required"`
	Type      core.ExpenseType `validate:"oneof=Variable Recurrente"`
	Name      string           `validate:"required_if=Type Recurrente FirstTime true"`
	Frequency core.Frequency   `validate:"required_if=Type Recurrente FirstTime true"`
	FirstTime bool
}

// IsTemplate reports whether saving the entry creates a recurring template.
func (e Entry) IsTemplate() bool {
	return e.Type == core.Recurrente && e.FirstTime
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func entryValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if m, ok := field.Interface().(core.Money); ok {
				return m.Amount.String()
			}
			return nil
		}, core.Money{})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(core.Date); ok {
				return d.String()
			}
			return nil
		}, core.Date{})
		_ = v.RegisterValidation("positive_money", validatePositiveMoney)
		validate = v
	})
	return validate
}

func validatePositiveMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// Spanish messages shown to the user, by field.
var entryMessages = map[string]struct {
	field   string
	message string
	err     error
}{
	"Amount":    {"monto", "El monto debe ser un número mayor que cero.", core.ErrInvalidAmount},
	"Date":      {"fecha", "La fecha no es válida (use AAAA-MM-DD).", core.ErrInvalidDate},
	"Type":      {"tipo", "El tipo debe ser Variable o Recurrente.", nil},
	"Name":      {"nombre", "El nombre es obligatorio para un gasto recurrente nuevo.", core.ErrEmptyName},
	"Frequency": {"frecuencia", "Seleccione una frecuencia: Mensual, Semanal o Anual.", core.ErrInvalidFrequency},
}

func entryError(field string) *core.ValidationError {
	m, ok := entryMessages[field]
	if !ok {
		return core.NewValidationError(strings.ToLower(field), "Valor no válido.", nil)
	}
	return core.NewValidationError(m.field, m.message, m.err)
}

// ValidateEntry runs the struct rules and returns the first failure as a
// ValidationError.
func ValidateEntry(e Entry) error {
	err := entryValidator().Struct(e)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return entryError(verrs[0].StructField())
	}
	return err
}

// ParseEntry converts a form submission into an Entry. An empty date means
// today and an empty type means Variable. Every failure is a
// *core.ValidationError.
func ParseEntry(in EntryInput, today core.Date) (Entry, error) {
	e := Entry{
		Category:  strings.TrimSpace(in.Category),
		Note:      strings.TrimSpace(in.Note),
		Name:      strings.TrimSpace(in.Name),
		FirstTime: in.FirstTime,
		Date:      today,
		Type:      core.Variable,
	}

	amount, err := core.ParseMoney(in.Amount)
	if err != nil {
		return Entry{}, entryError("Amount")
	}
	e.Amount = amount

	if strings.TrimSpace(in.Date) != "" {
		d, err := core.ParseDate(in.Date)
		if err != nil {
			return Entry{}, entryError("Date")
		}
		e.Date = d
	}

	if strings.TrimSpace(in.Type) != "" {
		t, err := core.ParseExpenseType(in.Type)
		if err != nil {
			return Entry{}, entryError("Type")
		}
		e.Type = t
	}

	if e.IsTemplate() {
		f, err := core.ParseFrequency(in.Frequency)
		if err != nil {
			return Entry{}, entryError("Frequency")
		}
		e.Frequency = f
	}

	if err := ValidateEntry(e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
