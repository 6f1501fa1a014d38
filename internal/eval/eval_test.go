package eval

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/Mstrodl/anarchy/internal/evalerr"
	"github.com/Mstrodl/anarchy/internal/parser"
	"github.com/Mstrodl/anarchy/internal/value"
)

// run parses source, executes it against a fresh context seeded with
// inputs, and returns the context for inspecting outputs.
func run(t *testing.T, source string, inputs map[string]value.Value) (*ExecutionContext, error) {
	t.Helper()
	p, err := parser.New(source)
	if err != nil {
		return nil, err
	}
	program, err := p.Parse()
	if err != nil {
		return nil, err
	}
	ctx := NewExecutionContext(p.Symbols())
	for name, v := range inputs {
		ctx.Set(name, v)
	}
	evaluator := New(program)
	if err := evaluator.Run(ctx); err != nil {
		return ctx, err
	}
	return ctx, nil
}

func number(t *testing.T, ctx *ExecutionContext, name string) float32 {
	t.Helper()
	v, err := ctx.Get(name)
	if err != nil {
		t.Fatalf("Get(%q) error: %v", name, err)
	}
	n, ok := v.(value.Number)
	if !ok {
		t.Fatalf("Get(%q) = %v, want a Number", name, v)
	}
	return float32(n)
}

func TestBitwiseMasking(t *testing.T) {
	source := `
r = time & 255;
g = (time + 64) & 255;
b = (time * 2) & 255;
`
	ctx, err := run(t, source, map[string]value.Value{"time": value.Number(300)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 44 {
		t.Errorf("r = %v, want 44", got)
	}
	if got := number(t, ctx, "g"); got != 108 {
		t.Errorf("g = %v, want 108", got)
	}
	if got := number(t, ctx, "b"); got != 88 {
		t.Errorf("b = %v, want 88", got)
	}
}

func TestTupleIndexAndRangeError(t *testing.T) {
	ctx, err := run(t, `t = (1, 2, 3); r = t[1];`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 2 {
		t.Errorf("r = %v, want 2", got)
	}

	_, err = run(t, `t = (1, 2, 3); r = t[3];`, nil)
	if err == nil {
		t.Fatal("expected a RangeError, got nil")
	}
	var langErr *evalerr.LanguageError
	if !errors.As(err, &langErr) || langErr.Kind != evalerr.KindRange {
		t.Fatalf("expected RangeError, got %v", err)
	}
}

func TestIfElseBranching(t *testing.T) {
	source := `
if (x < 50) {
  r = 1;
} else {
  r = 2;
}
`
	ctx, err := run(t, source, map[string]value.Value{"x": value.Number(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 1 {
		t.Errorf("r = %v, want 1 at x=10", got)
	}

	ctx, err = run(t, source, map[string]value.Value{"x": value.Number(80)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 2 {
		t.Errorf("r = %v, want 2 at x=80", got)
	}
}

func TestNestedUserFunctionCalls(t *testing.T) {
	source := `
def sq(n) {
  return n * n;
}
r = sq(sq(2));
`
	ctx, err := run(t, source, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 16 {
		t.Errorf("r = %v, want 16", got)
	}
}

func TestShortCircuitAndOrNot(t *testing.T) {
	ctx, err := run(t, `r = 0 and (1 / 0);`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 0 {
		t.Errorf("0 and ... = %v, want 0", got)
	}

	ctx, err = run(t, `r = 5 or (1 / 0);`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 5 {
		t.Errorf("5 or ... = %v, want 5", got)
	}

	ctx, err = run(t, `r = !0;`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 1 {
		t.Errorf("!0 = %v, want 1", got)
	}
}

func TestPowAndMod(t *testing.T) {
	ctx, err := run(t, `r = 2 ** 10; g = 7 % 3;`, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := number(t, ctx, "r"); got != 1024 {
		t.Errorf("2**10 = %v, want 1024", got)
	}
	if got := number(t, ctx, "g"); got != 1 {
		t.Errorf("7%%3 = %v, want 1", got)
	}
}

func TestUnsetReferenceIsReferenceError(t *testing.T) {
	_, err := run(t, `r = y;`, nil)
	if err == nil {
		t.Fatal("expected a ReferenceError, got nil")
	}
	var langErr *evalerr.LanguageError
	if !errors.As(err, &langErr) || langErr.Kind != evalerr.KindReference {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
}

func TestPixelShaderSnapshot(t *testing.T) {
	source := `
r = time & 255;
g = (time + 64) & 255;
b = (time * 2) & 255;
`
	ctx, err := run(t, source, map[string]value.Value{"time": value.Number(300)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := number(t, ctx, "r")
	g := number(t, ctx, "g")
	b := number(t, ctx, "b")
	actualOutput := fmt.Sprintf("r=%v g=%v b=%v", r, g, b)
	snaps.MatchSnapshot(t, "pixel_shader_output", actualOutput)
}
