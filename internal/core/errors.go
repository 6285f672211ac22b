package core

import (
	"errors"
	"strings"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidFrequency = errors.New("invalid frequency")
)

// ValidationError reports bad user input. The save is blocked and Message is
// shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ColumnMissingError aborts a summary when required columns are absent.
type ColumnMissingError struct {
	Missing []string
}

func (e *ColumnMissingError) Error() string {
	return "missing columns: " + strings.Join(e.Missing, ", ")
}

// GenerationWarning wraps any failure of a recurring generation run. It is
// shown as a non-fatal warning; the run is skipped.
type GenerationWarning struct {
	Generated int
	Err       error
}

func (e *GenerationWarning) Error() string {
	return "recurring generation skipped: " + e.Err.Error()
}

func (e *GenerationWarning) Unwrap() error { return e.Err }
