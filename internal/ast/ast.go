// Package ast defines the Abstract Syntax Tree node types produced by the
// Anarchy parser.
//
// Every expression and statement carries the token.Span it was parsed
// from, so that a runtime error can always be reported against precise
// source coordinates.
package ast

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/Mstrodl/anarchy/internal/symtab"
	"github.com/Mstrodl/anarchy/internal/token"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	// String returns a debug representation of the node.
	String() string
	// Span returns the node's source location.
	Span() token.Span
}

// Expression is any node that produces a Value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action without producing a value.
type Statement interface {
	Node
	statementNode()
}

// Function is a user-defined function: `def name(params) { body }`.
type Function struct {
	ID         int
	Name       string
	Params     []symtab.SlotId
	ParamNames []string
	Body       []Statement
	SrcSpan    token.Span
}

func (f *Function) Span() token.Span { return f.SrcSpan }
func (f *Function) String() string {
	return fmt.Sprintf("def %s(%d params)", f.Name, len(f.Params))
}

// Program is the root node: the parsed function table plus the top-level
// statement block.
type Program struct {
	Functions []*Function
	TopLevel  []Statement
}

func (p *Program) Span() token.Span {
	if len(p.TopLevel) > 0 {
		return p.TopLevel[0].Span()
	}
	return token.Span{}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, fn := range p.Functions {
		out.WriteString(fn.String())
		out.WriteString("\n")
	}
	for _, stmt := range p.TopLevel {
		out.WriteString(stmt.String())
		out.WriteString("\n")
	}
	return out.String()
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

// Assignment is `target = expr;`.
type Assignment struct {
	Target     symtab.SlotId
	TargetName string
	Expr       Expression
	SrcSpan    token.Span
}

func (a *Assignment) statementNode()   {}
func (a *Assignment) Span() token.Span { return a.SrcSpan }
func (a *Assignment) String() string {
	return fmt.Sprintf("%s = %s;", a.TargetName, a.Expr.String())
}

// ElseKind distinguishes the three shapes an `if` tail can take.
type ElseKind int

const (
	ElseNone ElseKind = iota
	ElseIfKind
	ElseBlockKind
)

// ElseBranch is the optional tail of an If statement.
type ElseBranch struct {
	Kind   ElseKind
	ElseIf *If
	Block  []Statement
}

// If is `if (cond) { then } [else ...]`.
type If struct {
	Cond    Expression
	Then    []Statement
	Else    *ElseBranch
	SrcSpan token.Span
}

func (i *If) statementNode()    {}
func (i *If) Span() token.Span  { return i.SrcSpan }
func (i *If) String() string {
	return fmt.Sprintf("if (%s) { ... }", i.Cond.String())
}

// Return is `return expr;`.
type Return struct {
	Expr    Expression
	SrcSpan token.Span
}

func (r *Return) statementNode()   {}
func (r *Return) Span() token.Span { return r.SrcSpan }
func (r *Return) String() string   { return fmt.Sprintf("return %s;", r.Expr.String()) }

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

// NumberLiteral is a decimal float literal.
type NumberLiteral struct {
	Value   float32
	SrcSpan token.Span
}

func (n *NumberLiteral) expressionNode()  {}
func (n *NumberLiteral) Span() token.Span { return n.SrcSpan }
func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(float64(n.Value), 'g', -1, 32)
}

// TupleLiteral is `(e1, e2, ...)`.
type TupleLiteral struct {
	Elements []Expression
	SrcSpan  token.Span
}

func (t *TupleLiteral) expressionNode()  {}
func (t *TupleLiteral) Span() token.Span { return t.SrcSpan }
func (t *TupleLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("(")
	for i, e := range t.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(e.String())
	}
	out.WriteString(")")
	return out.String()
}

// Reference is a variable read, already resolved to a SlotId at parse time.
type Reference struct {
	Slot    symtab.SlotId
	Name    string
	SrcSpan token.Span
}

func (r *Reference) expressionNode()  {}
func (r *Reference) Span() token.Span { return r.SrcSpan }
func (r *Reference) String() string   { return r.Name }

// Index is `tuple[index]`.
type Index struct {
	Tuple   Expression
	Idx     Expression
	SrcSpan token.Span
}

func (i *Index) expressionNode()  {}
func (i *Index) Span() token.Span { return i.SrcSpan }
func (i *Index) String() string {
	return fmt.Sprintf("%s[%s]", i.Tuple.String(), i.Idx.String())
}

// UnaryOp identifies a prefix operator.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
)

func (op UnaryOp) String() string {
	if op == UnaryNot {
		return "!"
	}
	return "-"
}

// Unary is a prefix expression: `-x` or `!x`.
type Unary struct {
	Op      UnaryOp
	Operand Expression
	SrcSpan token.Span
}

func (u *Unary) expressionNode()  {}
func (u *Unary) Span() token.Span { return u.SrcSpan }
func (u *Unary) String() string   { return fmt.Sprintf("(%s%s)", u.Op.String(), u.Operand.String()) }

// BinaryOp identifies an arithmetic, bitwise, or comparison infix operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpEq
	OpNotEq
	OpLess
	OpGreater
	OpLessEq
	OpGreaterEq
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%", OpPow: "**",
	OpBitAnd: "&", OpBitOr: "|", OpBitXor: "^", OpShl: "<<", OpShr: ">>",
	OpEq: "==", OpNotEq: "!=", OpLess: "<", OpGreater: ">", OpLessEq: "<=", OpGreaterEq: ">=",
}

func (op BinaryOp) String() string { return binaryOpSymbols[op] }

// Binary is a non-short-circuiting infix expression.
type Binary struct {
	Op      BinaryOp
	Left    Expression
	Right   Expression
	SrcSpan token.Span
}

func (b *Binary) expressionNode()  {}
func (b *Binary) Span() token.Span { return b.SrcSpan }
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op.String(), b.Right.String())
}

// LogicalOp identifies a short-circuit operator.
type LogicalOp int

const (
	LogicalAnd LogicalOp = iota
	LogicalOr
)

// Logical is `a and b` or `a or b`; the right operand is only evaluated
// when the left does not already determine the result.
type Logical struct {
	Op      LogicalOp
	Left    Expression
	Right   Expression
	SrcSpan token.Span
}

func (l *Logical) expressionNode()  {}
func (l *Logical) Span() token.Span { return l.SrcSpan }
func (l *Logical) String() string {
	op := "and"
	if l.Op == LogicalOr {
		op = "or"
	}
	return fmt.Sprintf("(%s %s %s)", l.Left.String(), op, l.Right.String())
}

// Builtin identifies one of the ten fixed mathematical primitives.
type Builtin int

const (
	BuiltinSin Builtin = iota
	BuiltinCos
	BuiltinTan
	BuiltinAsin
	BuiltinAcos
	BuiltinAtan
	BuiltinAbs
	BuiltinSqrt
	BuiltinLog
	BuiltinLen
)

// BuiltinNames maps builtin names to their Builtin constant; the parser
// consults it directly to recognize call heads before falling back to the
// user-function prototype table.
var BuiltinNames = map[string]Builtin{
	"sin": BuiltinSin, "cos": BuiltinCos, "tan": BuiltinTan,
	"asin": BuiltinAsin, "acos": BuiltinAcos, "atan": BuiltinAtan,
	"abs": BuiltinAbs, "sqrt": BuiltinSqrt, "log": BuiltinLog, "len": BuiltinLen,
}

// BuiltinArity gives the fixed argument count of every builtin; each of
// them takes exactly one argument (for len, the tuple being measured).
var BuiltinArity = map[Builtin]int{
	BuiltinSin: 1, BuiltinCos: 1, BuiltinTan: 1,
	BuiltinAsin: 1, BuiltinAcos: 1, BuiltinAtan: 1,
	BuiltinAbs: 1, BuiltinSqrt: 1, BuiltinLog: 1, BuiltinLen: 1,
}

// BuiltinCall is a call to one of the fixed builtin functions.
type BuiltinCall struct {
	Kind    Builtin
	Name    string
	Args    []Expression
	SrcSpan token.Span
}

func (c *BuiltinCall) expressionNode()  {}
func (c *BuiltinCall) Span() token.Span { return c.SrcSpan }
func (c *BuiltinCall) String() string   { return fmt.Sprintf("%s(...)", c.Name) }

// UserCall is a call to a user-defined function, resolved at parse time to
// an integer function id.
type UserCall struct {
	FunctionID int
	Name       string
	Args       []Expression
	SrcSpan    token.Span
}

func (c *UserCall) expressionNode()  {}
func (c *UserCall) Span() token.Span { return c.SrcSpan }
func (c *UserCall) String() string   { return fmt.Sprintf("%s(...)", c.Name) }
