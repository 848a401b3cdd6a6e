package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Structural validation error codes (E200-E299).
const (
	ErrEmptyID       = "E201" // rule id is empty
	ErrDuplicateID   = "E202" // rule id defined twice
	ErrEmptyKeys     = "E203" // key pattern is empty after cleansing
	ErrIllegalFlag   = "E204" // flag outside the legal vocabulary
	ErrUnknownChild  = "E205" // child references an undefined rule
	ErrChildSpan     = "E206" // child letter span out of parent bounds
	ErrChildOverlap  = "E207" // child key sets overlap or exceed parent keys
	ErrChildCoverage = "E208" // child key union does not cover parent keys
)

// ValidationError describes one integrity violation found at load time.
type ValidationError struct {
	RuleID  string `json:"rule_id"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.RuleID != "" {
		return fmt.Sprintf("[%s] rule %q: %s: %s", e.Code, e.RuleID, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// StructuralError is the fatal error returned when a rule set fails
// integrity validation. It carries every violation found (validation does
// not fail fast) and is never recoverable: a malformed rule set must abort
// startup.
type StructuralError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if len(e.Errors) == 1 {
		return "invalid rule set: " + e.Errors[0].Error()
	}
	lines := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		lines[i] = "  " + ve.Error()
	}
	return fmt.Sprintf("invalid rule set: %d violations:\n%s", len(e.Errors), strings.Join(lines, "\n"))
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
