package services

import (
	"fmt"

	"gastos/internal/core"
)

// MonthlyDayCap is the highest day a Mensual occurrence is placed on, so
// every month has it.
const MonthlyDayCap = 28

// Schedule is the occurrence a rule computed for one month.
type Schedule struct {
	Date core.Date
	// Clamped is set when the template's day does not exist in the target
	// month and the last day was used instead.
	Clamped bool
}

// OccurrenceRule decides whether a template starting on start has an
// occurrence in the month of today, and on which day.
type OccurrenceRule interface {
	Schedule(start, today core.Date) (Schedule, bool)
}

// MonthlyRule is due every month from the start month on, on the start day
// capped at 28.
type MonthlyRule struct{}

func (MonthlyRule) Schedule(start, today core.Date) (Schedule, bool) {
	if !startedBy(start, today) {
		return Schedule{}, false
	}
	return Schedule{Date: core.NewDate(today.Year(), today.Month(), min(start.Day(), MonthlyDayCap))}, true
}

// WeeklyRule is due every month from the start month on, once, on the
// first day of the month falling on the start weekday.
type WeeklyRule struct{}

func (WeeklyRule) Schedule(start, today core.Date) (Schedule, bool) {
	if !startedBy(start, today) {
		return Schedule{}, false
	}
	first := today.FirstOfMonth()
	offset := (int(start.Weekday()) - int(first.Weekday()) + 7) % 7
	return Schedule{Date: core.NewDate(first.Year(), first.Month(), 1+offset)}, true
}

// YearlyRule is due in the start month of every year, on the start day.
// A day missing from the target month (29 February) becomes its last day.
type YearlyRule struct{}

func (YearlyRule) Schedule(start, today core.Date) (Schedule, bool) {
	if start.Month() != today.Month() {
		return Schedule{}, false
	}
	first := today.FirstOfMonth()
	day := start.Day()
	last := first.DaysInMonth()
	if day > last {
		return Schedule{Date: core.NewDate(first.Year(), first.Month(), last), Clamped: true}, true
	}
	return Schedule{Date: core.NewDate(first.Year(), first.Month(), day)}, true
}

// startedBy compares by month: a template is active for the whole month it
// starts in.
func startedBy(start, today core.Date) bool {
	return !start.FirstOfMonth().After(today.FirstOfMonth().Time)
}

var occurrenceRules = map[core.Frequency]OccurrenceRule{
	core.Mensual: MonthlyRule{},
	core.Semanal: WeeklyRule{},
	core.Anual:   YearlyRule{},
}

// GetOccurrenceRule returns the rule for a frequency.
func GetOccurrenceRule(f core.Frequency) (OccurrenceRule, error) {
	rule, ok := occurrenceRules[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, f)
	}
	return rule, nil
}

// RegisterOccurrenceRule adds or replaces the rule for a frequency.
func RegisterOccurrenceRule(f core.Frequency, rule OccurrenceRule) {
	occurrenceRules[f] = rule
}
