// Package evalerr implements the Anarchy error taxonomy: the fixed set of
// error kinds a parse or evaluation can fail with, each optionally
// carrying the source span where it occurred.
package evalerr

import (
	"fmt"

	"github.com/Mstrodl/anarchy/internal/token"
)

// Kind identifies which of the five fixed error categories a
// LanguageError belongs to.
type Kind string

const (
	// KindType is raised when an operation receives a value of the wrong
	// variant (a Tuple where a Number was required, or vice versa).
	KindType Kind = "TypeError"
	// KindReference is raised when a variable is read before it has ever
	// been assigned.
	KindReference Kind = "ReferenceError"
	// KindRange is raised when a tuple index falls outside [0, len).
	KindRange Kind = "RangeError"
	// KindArgCount is raised when a call supplies the wrong number of
	// arguments for a builtin or user function.
	KindArgCount Kind = "ArgumentCountMismatch"
	// KindParse is raised for any syntactic failure during parsing.
	KindParse Kind = "ParseError"
)

// LanguageError is the single error type produced anywhere in the
// lexer/parser/evaluator pipeline. Every error carries a Kind and,
// wherever a source location is available, a Span.
type LanguageError struct {
	Kind    Kind
	Message string
	Span    *token.Span
	Err     error
}

// Error implements the error interface, rendering the span when present.
func (e *LanguageError) Error() string {
	if e.Span == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	s := e.Span
	return fmt.Sprintf("%s @ %d:%d to %d:%d: %s",
		e.Kind, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column, e.Message)
}

// Unwrap exposes a wrapped lower-level error, if any, to errors.Is/As.
func (e *LanguageError) Unwrap() error {
	return e.Err
}

// NewTypeError reports that expr evaluated to a value of kind actual when
// expected was required.
func NewTypeError(expected, actual, expr string, span *token.Span) error {
	return &LanguageError{
		Kind:    KindType,
		Message: fmt.Sprintf("expected %s, found %s in %s", expected, actual, expr),
		Span:    span,
	}
}

// NewReferenceError reports a read of a variable with no value yet
// assigned to its slot.
func NewReferenceError(name string, span *token.Span) error {
	return &LanguageError{
		Kind:    KindReference,
		Message: fmt.Sprintf("%q is unset", name),
		Span:    span,
	}
}

// NewRangeError reports a tuple index outside [0, length).
func NewRangeError(index, length int, span *token.Span) error {
	return &LanguageError{
		Kind:    KindRange,
		Message: fmt.Sprintf("index %d out of range for tuple of length %d", index, length),
		Span:    span,
	}
}

// NewArgumentCountMismatch reports a call to name with found arguments
// where expected were required.
func NewArgumentCountMismatch(name string, found, expected int, span *token.Span) error {
	return &LanguageError{
		Kind:    KindArgCount,
		Message: fmt.Sprintf("%s expects %d argument(s), found %d", name, expected, found),
		Span:    span,
	}
}

// NewParseError reports a syntactic failure.
func NewParseError(message string, span *token.Span) error {
	return &LanguageError{
		Kind:    KindParse,
		Message: message,
		Span:    span,
	}
}

// WrapError wraps a lower-level error (such as a lexer error) as an
// internal ParseError, preserving it for errors.Unwrap.
func WrapError(err error, span *token.Span) error {
	return &LanguageError{
		Kind:    KindParse,
		Message: err.Error(),
		Span:    span,
		Err:     err,
	}
}
