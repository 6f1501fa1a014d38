// Package value implements the tagged runtime value model of the Anarchy
// language: every value is either a Number or a Tuple of values.
package value

import (
	"strconv"
	"strings"

	"github.com/Mstrodl/anarchy/internal/evalerr"
)

// Value is the interface implemented by both runtime value variants.
type Value interface {
	// Type returns the value's kind as a short diagnostic label.
	Type() string
	// String renders the value for diagnostics and host-side printing.
	String() string
}

// Number is a 32-bit float, the only scalar type in the language.
type Number float32

// Type returns "Number".
func (n Number) Type() string { return "Number" }

// String formats the number using Go's shortest round-tripping
// representation.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 32)
}

// Tuple is a fixed-size, heterogeneous sequence of values.
type Tuple []Value

// Type returns "Tuple".
func (t Tuple) Type() string { return "Tuple" }

// String renders the tuple as `(a, b, c)`.
func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, elem := range t {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(elem.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// ToNumber coerces v to a Number, or reports a TypeError naming expr as the
// offending expression.
func ToNumber(v Value, expr string) (Number, error) {
	n, ok := v.(Number)
	if !ok {
		return 0, evalerr.NewTypeError("Number", v.Type(), expr, nil)
	}
	return n, nil
}

// ToTuple coerces v to a Tuple, or reports a TypeError naming expr as the
// offending expression.
func ToTuple(v Value, expr string) (Tuple, error) {
	t, ok := v.(Tuple)
	if !ok {
		return nil, evalerr.NewTypeError("Tuple", v.Type(), expr, nil)
	}
	return t, nil
}

// Truthy defines how a Value is treated in a boolean context (the `if`
// condition, the left operand of `and`/`or`, or the operand of `!`): any
// nonzero Number is true,
// a zero Number is false. Tuples have no boolean meaning.
func Truthy(v Value, expr string) (bool, error) {
	n, err := ToNumber(v, expr)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}
