package ast

import (
	"testing"

	"github.com/Mstrodl/anarchy/internal/token"
)

func TestBinaryString(t *testing.T) {
	bin := &Binary{
		Op:    OpAdd,
		Left:  &NumberLiteral{Value: 1},
		Right: &NumberLiteral{Value: 2},
	}
	if got := bin.String(); got != "(1 + 2)" {
		t.Errorf("Binary.String() = %q, want (1 + 2)", got)
	}
}

func TestLogicalString(t *testing.T) {
	l := &Logical{
		Op:    LogicalAnd,
		Left:  &NumberLiteral{Value: 1},
		Right: &NumberLiteral{Value: 0},
	}
	if got := l.String(); got != "(1 and 0)" {
		t.Errorf("Logical.String() = %q, want (1 and 0)", got)
	}
}

func TestTupleLiteralString(t *testing.T) {
	tup := &TupleLiteral{Elements: []Expression{
		&NumberLiteral{Value: 1},
		&NumberLiteral{Value: 2},
	}}
	if got := tup.String(); got != "(1, 2)" {
		t.Errorf("TupleLiteral.String() = %q, want (1, 2)", got)
	}
}

func TestIndexString(t *testing.T) {
	idx := &Index{
		Tuple: &Reference{Name: "t"},
		Idx:   &NumberLiteral{Value: 0},
	}
	if got := idx.String(); got != "t[0]" {
		t.Errorf("Index.String() = %q, want t[0]", got)
	}
}

func TestUnaryString(t *testing.T) {
	u := &Unary{Op: UnaryNeg, Operand: &Reference{Name: "x"}}
	if got := u.String(); got != "(-x)" {
		t.Errorf("Unary.String() = %q, want (-x)", got)
	}
}

func TestProgramSpanFallsBackToZeroValue(t *testing.T) {
	p := &Program{}
	if p.Span() != (token.Span{}) {
		t.Errorf("expected zero-value span for an empty program")
	}
}
