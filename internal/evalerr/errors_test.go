package evalerr

import (
	"errors"
	"testing"

	"github.com/Mstrodl/anarchy/internal/token"
)

func TestErrorWithSpan(t *testing.T) {
	span := &token.Span{
		Start: token.Position{Line: 1, Column: 3},
		End:   token.Position{Line: 1, Column: 5},
	}
	err := NewTypeError("Number", "Tuple", "x + y", span)
	want := "TypeError @ 1:3 to 1:5: expected Number, found Tuple in x + y"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorWithoutSpan(t *testing.T) {
	err := NewReferenceError("x", nil)
	want := `ReferenceError: "x" is unset`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRangeErrorMessage(t *testing.T) {
	err := NewRangeError(3, 3, nil)
	want := "RangeError: index 3 out of range for tuple of length 3"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestArgumentCountMismatchMessage(t *testing.T) {
	err := NewArgumentCountMismatch("sq", 2, 1, nil)
	want := "ArgumentCountMismatch: sq expects 1 argument(s), found 2"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapErrorUnwraps(t *testing.T) {
	inner := errors.New("unexpected character")
	wrapped := WrapError(inner, nil)

	var langErr *LanguageError
	if !errors.As(wrapped, &langErr) {
		t.Fatalf("expected *LanguageError, got %T", wrapped)
	}
	if !errors.Is(wrapped, inner) {
		t.Fatalf("expected errors.Is to find the wrapped inner error")
	}
	if langErr.Kind != KindParse {
		t.Errorf("expected KindParse, got %s", langErr.Kind)
	}
}
