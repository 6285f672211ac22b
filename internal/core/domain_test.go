package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-03-15 ")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 15 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2024-03-15" {
		t.Fatalf("expected 2024-03-15, got %s", d.String())
	}
	for _, in := range []string{"", "15/03/2024", "2024-02-30", "abc"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	d := NewDate(2023, 2, 17)
	if got := d.FirstOfMonth().String(); got != "2023-02-01" {
		t.Fatalf("first of month: got %s", got)
	}
	if d.DaysInMonth() != 28 {
		t.Fatalf("expected 28 days, got %d", d.DaysInMonth())
	}
	if NewDate(2024, 2, 1).DaysInMonth() != 29 {
		t.Fatalf("expected 29 days in leap february")
	}
	local := time.Date(2024, 5, 9, 23, 30, 0, 0, time.FixedZone("x", -5*3600))
	if got := DateOf(local).String(); got != "2024-05-09" {
		t.Fatalf("DateOf: got %s", got)
	}
}

func TestParseFrequency(t *testing.T) {
	cases := map[string]Frequency{
		"Mensual": Mensual,
		"semanal": Semanal,
		" ANUAL ": Anual,
	}
	for in, want := range cases {
		got, err := ParseFrequency(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseFrequency("Diaria"); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
}

func TestParseExpenseType(t *testing.T) {
	if got, err := ParseExpenseType("recurrente"); err != nil || got != Recurrente {
		t.Fatalf("expected Recurrente, got %s (err=%v)", got, err)
	}
	if _, err := ParseExpenseType("Ingreso"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:     NewDate(2025, 1, 1),
		Amount:   MustMoney("12.50"),
		Category: "Comida",
		Note:     "almuerzo",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Category and note accept anything, including empty.
	free := Expense{Date: NewDate(2025, 1, 1), Amount: MustMoney("1")}
	if err := free.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{Time: time.Time{}}, Amount: MustMoney("1"), Category: "c"}, // zero date
		{Date: NewDate(2025, 1, 1), Amount: Zero, Category: "c"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTemplateValidate(t *testing.T) {
	good := Template{
		Name:      "Netflix",
		Amount:    MustMoney("15"),
		Category:  "Entretenimiento",
		Frequency: Mensual,
		StartDate: NewDate(2024, 1, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	noName := good
	noName.Name = "  "
	if err := noName.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	badFreq := good
	badFreq.Frequency = "Diaria"
	if err := badFreq.Validate(); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
	noStart := good
	noStart.StartDate = Date{}
	if err := noStart.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{Category: "General", Limit: Zero}).Validate(); err != nil {
		t.Fatalf("zero limit should be accepted, got %v", err)
	}
	if err := (Budget{Category: "Comida", Limit: MustMoney("10").Neg()}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := (Budget{Category: "", Limit: Zero}).Validate(); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	if !(Budget{Category: " general "}).IsGeneral() {
		t.Fatalf("expected general budget")
	}
}

func TestErrorTypes(t *testing.T) {
	var err error = NewValidationError("monto", "El monto debe ser mayor que cero", ErrInvalidAmount)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "monto" {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected wrapped ErrInvalidAmount")
	}

	cm := &ColumnMissingError{Missing: []string{"Fecha", "Monto"}}
	if cm.Error() != "missing columns: Fecha, Monto" {
		t.Fatalf("unexpected message %q", cm.Error())
	}

	cause := errors.New("boom")
	gw := &GenerationWarning{Err: cause}
	if !errors.Is(gw, cause) {
		t.Fatalf("expected GenerationWarning to unwrap its cause")
	}
}

func TestCategoryBudget(t *testing.T) {
	over := CategoryBudget{Category: "Comida", HasBudget: true, Diff: MustMoney("5").Neg()}
	if !over.OverBudget() || over.Overage().String() != "5.00" {
		t.Fatalf("expected over budget by 5, got %v %s", over.OverBudget(), over.Overage())
	}
	noBudget := CategoryBudget{Category: "Salud", Spent: MustMoney("50")}
	if noBudget.OverBudget() {
		t.Fatalf("category without budget must not be flagged")
	}
	cmp := BudgetComparison{Categories: []CategoryBudget{over, noBudget}}
	if got := cmp.OverBudget(); len(got) != 1 || got[0].Category != "Comida" {
		t.Fatalf("unexpected over budget list %+v", got)
	}
}
