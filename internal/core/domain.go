package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the serialization format of every date in the row store.
const DateLayout = "2006-01-02"

const (
	Mensual Frequency = "Mensual"
	Semanal Frequency = "Semanal"
	Anual   Frequency = "Anual"
)

const (
	Variable   ExpenseType = "Variable"
	Recurrente ExpenseType = "Recurrente"
)

// GeneralBudget is the budget category holding the overall monthly ceiling.
const GeneralBudget = "General"

// Categories is the fixed set offered by the form. Free text is accepted too.
var Categories = []string{"Comida", "Transporte", "Entretenimiento", "Salud", "Educación", "Otros"}

// Frequencies lists the supported template frequencies in display order.
var Frequencies = []Frequency{Mensual, Semanal, Anual}

type (
	Frequency   string
	ExpenseType string

	Date struct {
		time.Time
	}

	// Expense is one row of Variables or Recurrentes.
	Expense struct {
		Date     Date
		Amount   Money
		Category string
		Note     string
	}

	// Template defines a recurring expense series. Templates are written once
	// and never updated.
	Template struct {
		Name      string
		Amount    Money
		Category  string
		Frequency Frequency
		StartDate Date
		Note      string
	}

	Budget struct {
		Category string
		Limit    Money
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// FirstOfMonth truncates the date to the first day of its month.
func (d Date) FirstOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

// DaysInMonth returns the number of days of the date's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year(), d.Time.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// ParseFrequency accepts the frequency names case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	s = strings.TrimSpace(s)
	for _, f := range Frequencies {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
}

func (f Frequency) IsValid() bool {
	switch f {
	case Mensual, Semanal, Anual:
		return true
	}
	return false
}

// ParseExpenseType accepts "Variable" or "Recurrente", case-insensitively.
func ParseExpenseType(s string) (ExpenseType, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(Variable)):
		return Variable, nil
	case strings.EqualFold(s, string(Recurrente)):
		return Recurrente, nil
	}
	return "", fmt.Errorf("invalid expense type %q", s)
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return e.Amount.Validate()
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Frequency.IsValid() {
		return ErrInvalidFrequency
	}
	if err := t.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Limit.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// IsGeneral reports whether the budget is the overall ceiling.
func (b Budget) IsGeneral() bool {
	return strings.EqualFold(strings.TrimSpace(b.Category), GeneralBudget)
}
