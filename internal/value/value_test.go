package value

import (
	"errors"
	"testing"

	"github.com/Mstrodl/anarchy/internal/evalerr"
)

func TestNumberString(t *testing.T) {
	if got := Number(1.5).String(); got != "1.5" {
		t.Errorf("Number(1.5).String() = %q, want 1.5", got)
	}
	if got := Number(0).String(); got != "0" {
		t.Errorf("Number(0).String() = %q, want 0", got)
	}
}

func TestTupleString(t *testing.T) {
	tup := Tuple{Number(1), Number(2), Number(3)}
	if got := tup.String(); got != "(1, 2, 3)" {
		t.Errorf("Tuple.String() = %q, want (1, 2, 3)", got)
	}
}

func TestToNumberSuccess(t *testing.T) {
	n, err := ToNumber(Number(5), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5, got %v", n)
	}
}

func TestToNumberTypeMismatch(t *testing.T) {
	_, err := ToNumber(Tuple{Number(1)}, "myExpr")
	if err == nil {
		t.Fatal("expected a TypeError, got nil")
	}
	var langErr *evalerr.LanguageError
	if !errors.As(err, &langErr) {
		t.Fatalf("expected *evalerr.LanguageError, got %T", err)
	}
	if langErr.Kind != evalerr.KindType {
		t.Errorf("expected KindType, got %s", langErr.Kind)
	}
}

func TestToTupleTypeMismatch(t *testing.T) {
	_, err := ToTuple(Number(1), "myExpr")
	var langErr *evalerr.LanguageError
	if !errors.As(err, &langErr) {
		t.Fatalf("expected *evalerr.LanguageError, got %T", err)
	}
	if langErr.Kind != evalerr.KindType {
		t.Errorf("expected KindType, got %s", langErr.Kind)
	}
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Number(0), false},
		{Number(1), true},
		{Number(-1), true},
	}
	for _, c := range cases {
		got, err := Truthy(c.v, "x")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != c.want {
			t.Errorf("Truthy(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}
