package parser

import (
	"errors"
	"testing"

	"github.com/Mstrodl/anarchy/internal/ast"
	"github.com/Mstrodl/anarchy/internal/evalerr"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	p, err := New(source)
	if err != nil {
		t.Fatalf("New(%q) error: %v", source, err)
	}
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", source, err)
	}
	return program
}

func TestParseAssignmentAndBinary(t *testing.T) {
	program := mustParse(t, "r = x + 1;")
	if len(program.TopLevel) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(program.TopLevel))
	}
	assign, ok := program.TopLevel[0].(*ast.Assignment)
	if !ok {
		t.Fatalf("expected *ast.Assignment, got %T", program.TopLevel[0])
	}
	if assign.TargetName != "r" {
		t.Errorf("expected target r, got %s", assign.TargetName)
	}
	bin, ok := assign.Expr.(*ast.Binary)
	if !ok {
		t.Fatalf("expected *ast.Binary, got %T", assign.Expr)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("expected OpAdd, got %v", bin.Op)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	program := mustParse(t, "r = 1 + 2 * 3;")
	assign := program.TopLevel[0].(*ast.Assignment)
	bin := assign.Expr.(*ast.Binary)
	if bin.Op != ast.OpAdd {
		t.Fatalf("expected the top-level operator to be +, got %v", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("expected right operand to be a multiplication, got %#v", bin.Right)
	}
}

func TestPowIsLeftAssociative(t *testing.T) {
	program := mustParse(t, "r = 2 ** 3 ** 2;")
	assign := program.TopLevel[0].(*ast.Assignment)
	bin := assign.Expr.(*ast.Binary)
	if bin.Op != ast.OpPow {
		t.Fatalf("expected top-level **, got %v", bin.Op)
	}
	if _, ok := bin.Right.(*ast.NumberLiteral); !ok {
		t.Fatalf("expected right operand of outer ** to be a literal, got %#v", bin.Right)
	}
	lhs, ok := bin.Left.(*ast.Binary)
	if !ok || lhs.Op != ast.OpPow {
		t.Fatalf("expected left operand to be another **, got %#v", bin.Left)
	}
}

func TestForwardFunctionReference(t *testing.T) {
	program := mustParse(t, `
r = sq(2);
def sq(n) {
  return n * n;
}
`)
	assign := program.TopLevel[0].(*ast.Assignment)
	call, ok := assign.Expr.(*ast.UserCall)
	if !ok {
		t.Fatalf("expected *ast.UserCall, got %T", assign.Expr)
	}
	if call.Name != "sq" {
		t.Errorf("expected call to sq, got %s", call.Name)
	}
	if len(program.Functions) != 1 || program.Functions[0].Name != "sq" {
		t.Fatalf("expected sq to be registered as a function")
	}
}

func TestBuiltinArityMismatch(t *testing.T) {
	_, err := New("r = sin(1, 2);")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	p, _ := New("r = sin(1, 2);")
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected an arity mismatch error, got nil")
	}
	var langErr *evalerr.LanguageError
	if !errors.As(err, &langErr) || langErr.Kind != evalerr.KindArgCount {
		t.Fatalf("expected ArgumentCountMismatch, got %v", err)
	}
}

func TestUnknownFunctionIsReferenceError(t *testing.T) {
	p, err := New("r = mystery(1);")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, err = p.Parse()
	if err == nil {
		t.Fatal("expected a reference error, got nil")
	}
	var langErr *evalerr.LanguageError
	if !errors.As(err, &langErr) || langErr.Kind != evalerr.KindReference {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
}

func TestTupleLiteralVsGroupedExpression(t *testing.T) {
	program := mustParse(t, "r = (1, 2, 3);")
	assign := program.TopLevel[0].(*ast.Assignment)
	tup, ok := assign.Expr.(*ast.TupleLiteral)
	if !ok || len(tup.Elements) != 3 {
		t.Fatalf("expected a 3-element tuple literal, got %#v", assign.Expr)
	}

	program = mustParse(t, "r = (1 + 2);")
	assign = program.TopLevel[0].(*ast.Assignment)
	if _, ok := assign.Expr.(*ast.Binary); !ok {
		t.Fatalf("expected a grouped binary expression, got %#v", assign.Expr)
	}
}

func TestIfElseIfElseChain(t *testing.T) {
	program := mustParse(t, `
if (x < 1) {
  r = 1;
} else if (x < 2) {
  r = 2;
} else {
  r = 3;
}
`)
	ifStmt, ok := program.TopLevel[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", program.TopLevel[0])
	}
	if ifStmt.Else == nil || ifStmt.Else.Kind != ast.ElseIfKind {
		t.Fatalf("expected an else-if branch")
	}
	inner := ifStmt.Else.ElseIf
	if inner.Else == nil || inner.Else.Kind != ast.ElseBlockKind {
		t.Fatalf("expected a final else block")
	}
}

func TestSameNameDistinctScopes(t *testing.T) {
	p, err := New(`
def sq(n) {
  return n * n;
}
n = 5;
r = sq(n);
`)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	program, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	fn := program.Functions[0]
	var topLevelN *ast.Assignment
	for _, stmt := range program.TopLevel {
		if a, ok := stmt.(*ast.Assignment); ok && a.TargetName == "n" {
			topLevelN = a
		}
	}
	if topLevelN == nil {
		t.Fatal("expected a top-level assignment to n")
	}
	if fn.Params[0] == topLevelN.Target {
		t.Fatalf("expected sq's parameter n and the top-level n to use distinct slots")
	}
}
