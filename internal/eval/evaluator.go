package eval

import (
	"fmt"
	"math"

	"github.com/Mstrodl/anarchy/internal/ast"
	"github.com/Mstrodl/anarchy/internal/evalerr"
	"github.com/Mstrodl/anarchy/internal/value"
)

// Evaluator walks a parsed Program against an ExecutionContext. A single
// Evaluator is built once per Program and reused across many
// evaluations (and many ExecutionContexts), since the Program itself
// never changes between pixels.
type Evaluator struct {
	functions map[int]*ast.Function
	topLevel  []ast.Statement
}

// New builds an Evaluator for program.
func New(program *ast.Program) *Evaluator {
	fns := make(map[int]*ast.Function, len(program.Functions))
	for _, fn := range program.Functions {
		fns[fn.ID] = fn
	}
	return &Evaluator{functions: fns, topLevel: program.TopLevel}
}

// Run executes the program's top-level statements against ctx. A host
// calls this once per evaluation, typically after calling ctx.Reset and
// setting fresh inputs.
func (e *Evaluator) Run(ctx *ExecutionContext) error {
	_, _, err := e.execStatements(ctx, e.topLevel)
	return err
}

// execStatements runs stmts in order, stopping early if a return is hit.
// The returned bool reports whether a return occurred; the Value is only
// meaningful when it did.
func (e *Evaluator) execStatements(ctx *ExecutionContext, stmts []ast.Statement) (value.Value, bool, error) {
	for _, stmt := range stmts {
		v, returned, err := e.execStatement(ctx, stmt)
		if err != nil {
			return nil, false, err
		}
		if returned {
			return v, true, nil
		}
	}
	return nil, false, nil
}

func (e *Evaluator) execStatement(ctx *ExecutionContext, stmt ast.Statement) (value.Value, bool, error) {
	switch s := stmt.(type) {
	case *ast.Assignment:
		v, err := e.evalExpr(ctx, s.Expr)
		if err != nil {
			return nil, false, err
		}
		ctx.SetSlot(s.Target, v)
		return nil, false, nil

	case *ast.If:
		cond, err := e.evalExpr(ctx, s.Cond)
		if err != nil {
			return nil, false, err
		}
		truthy, err := value.Truthy(cond, "if condition")
		if err != nil {
			return nil, false, err
		}
		if truthy {
			return e.execStatements(ctx, s.Then)
		}
		return e.execElse(ctx, s.Else)

	case *ast.Return:
		v, err := e.evalExpr(ctx, s.Expr)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil

	default:
		return nil, false, fmt.Errorf("eval: unhandled statement type %T", stmt)
	}
}

func (e *Evaluator) execElse(ctx *ExecutionContext, branch *ast.ElseBranch) (value.Value, bool, error) {
	if branch == nil {
		return nil, false, nil
	}
	switch branch.Kind {
	case ast.ElseIfKind:
		return e.execStatement(ctx, branch.ElseIf)
	case ast.ElseBlockKind:
		return e.execStatements(ctx, branch.Block)
	default:
		return nil, false, nil
	}
}

func (e *Evaluator) evalExpr(ctx *ExecutionContext, expr ast.Expression) (value.Value, error) {
	switch ex := expr.(type) {
	case *ast.NumberLiteral:
		return value.Number(ex.Value), nil

	case *ast.TupleLiteral:
		elems := make(value.Tuple, len(ex.Elements))
		for i, elemExpr := range ex.Elements {
			v, err := e.evalExpr(ctx, elemExpr)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil

	case *ast.Reference:
		span := ex.SrcSpan
		return ctx.GetSlot(ex.Slot, ex.Name, &span)

	case *ast.Index:
		return e.evalIndex(ctx, ex)

	case *ast.Unary:
		return e.evalUnary(ctx, ex)

	case *ast.Binary:
		return e.evalBinary(ctx, ex)

	case *ast.Logical:
		return e.evalLogical(ctx, ex)

	case *ast.BuiltinCall:
		return e.evalBuiltinCall(ctx, ex)

	case *ast.UserCall:
		return e.evalUserCall(ctx, ex)

	default:
		return nil, fmt.Errorf("eval: unhandled expression type %T", expr)
	}
}

func (e *Evaluator) evalIndex(ctx *ExecutionContext, ex *ast.Index) (value.Value, error) {
	tupleVal, err := e.evalExpr(ctx, ex.Tuple)
	if err != nil {
		return nil, err
	}
	tuple, err := value.ToTuple(tupleVal, ex.Tuple.String())
	if err != nil {
		return nil, err
	}
	idxVal, err := e.evalExpr(ctx, ex.Idx)
	if err != nil {
		return nil, err
	}
	idxNum, err := value.ToNumber(idxVal, ex.Idx.String())
	if err != nil {
		return nil, err
	}
	idx := int(idxNum)
	if idx < 0 || idx >= len(tuple) {
		span := ex.SrcSpan
		return nil, evalerr.NewRangeError(idx, len(tuple), &span)
	}
	return tuple[idx], nil
}

func (e *Evaluator) evalUnary(ctx *ExecutionContext, ex *ast.Unary) (value.Value, error) {
	operand, err := e.evalExpr(ctx, ex.Operand)
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case ast.UnaryNeg:
		n, err := value.ToNumber(operand, ex.Operand.String())
		if err != nil {
			return nil, err
		}
		return -n, nil
	case ast.UnaryNot:
		truthy, err := value.Truthy(operand, ex.Operand.String())
		if err != nil {
			return nil, err
		}
		if truthy {
			return value.Number(0), nil
		}
		return value.Number(1), nil
	default:
		return nil, fmt.Errorf("eval: unhandled unary operator %v", ex.Op)
	}
}

func (e *Evaluator) evalLogical(ctx *ExecutionContext, ex *ast.Logical) (value.Value, error) {
	left, err := e.evalExpr(ctx, ex.Left)
	if err != nil {
		return nil, err
	}
	leftTruthy, err := value.Truthy(left, ex.Left.String())
	if err != nil {
		return nil, err
	}
	switch ex.Op {
	case ast.LogicalAnd:
		if !leftTruthy {
			return value.Number(0), nil
		}
	case ast.LogicalOr:
		if leftTruthy {
			return left, nil
		}
	}
	rightVal, err := e.evalExpr(ctx, ex.Right)
	if err != nil {
		return nil, err
	}
	n, err := value.ToNumber(rightVal, ex.Right.String())
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (e *Evaluator) evalBinary(ctx *ExecutionContext, ex *ast.Binary) (value.Value, error) {
	leftVal, err := e.evalExpr(ctx, ex.Left)
	if err != nil {
		return nil, err
	}
	rightVal, err := e.evalExpr(ctx, ex.Right)
	if err != nil {
		return nil, err
	}
	left, err := value.ToNumber(leftVal, ex.Left.String())
	if err != nil {
		return nil, err
	}
	right, err := value.ToNumber(rightVal, ex.Right.String())
	if err != nil {
		return nil, err
	}

	switch ex.Op {
	case ast.OpAdd:
		return left + right, nil
	case ast.OpSub:
		return left - right, nil
	case ast.OpMul:
		return left * right, nil
	case ast.OpDiv:
		return left / right, nil
	case ast.OpMod:
		return value.Number(math.Mod(float64(left), float64(right))), nil
	case ast.OpPow:
		return value.Number(math.Pow(float64(left), float64(right))), nil
	case ast.OpBitAnd:
		return bitwise(left, right, func(a, b uint32) uint32 { return a & b }), nil
	case ast.OpBitOr:
		return bitwise(left, right, func(a, b uint32) uint32 { return a | b }), nil
	case ast.OpBitXor:
		return bitwise(left, right, func(a, b uint32) uint32 { return a ^ b }), nil
	case ast.OpShl:
		return bitwise(left, right, func(a, b uint32) uint32 { return a << (b & 31) }), nil
	case ast.OpShr:
		return bitwise(left, right, func(a, b uint32) uint32 { return a >> (b & 31) }), nil
	case ast.OpEq:
		return boolNumber(left == right), nil
	case ast.OpNotEq:
		return boolNumber(left != right), nil
	case ast.OpLess:
		return boolNumber(left < right), nil
	case ast.OpGreater:
		return boolNumber(left > right), nil
	case ast.OpLessEq:
		return boolNumber(left <= right), nil
	case ast.OpGreaterEq:
		return boolNumber(left >= right), nil
	default:
		return nil, fmt.Errorf("eval: unhandled binary operator %v", ex.Op)
	}
}

func boolNumber(b bool) value.Number {
	if b {
		return 1
	}
	return 0
}

// toU32Saturating converts a Number to the u32 domain bitwise operators
// work in. Anarchy numbers are signed floats; a negative value has no u32
// representation, so it saturates to zero rather than wrapping, matching
// the saturating float-to-integer cast of the language's Rust original.
func toU32Saturating(n value.Number) uint32 {
	f := float64(n)
	if f != f || f <= 0 {
		return 0
	}
	if f >= math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(f)
}

func bitwise(left, right value.Number, op func(a, b uint32) uint32) value.Number {
	result := op(toU32Saturating(left), toU32Saturating(right))
	return value.Number(float32(result))
}

func (e *Evaluator) evalBuiltinCall(ctx *ExecutionContext, ex *ast.BuiltinCall) (value.Value, error) {
	if ex.Kind == ast.BuiltinLen {
		argVal, err := e.evalExpr(ctx, ex.Args[0])
		if err != nil {
			return nil, err
		}
		tuple, err := value.ToTuple(argVal, ex.Args[0].String())
		if err != nil {
			return nil, err
		}
		return value.Number(len(tuple)), nil
	}

	argVal, err := e.evalExpr(ctx, ex.Args[0])
	if err != nil {
		return nil, err
	}
	n, err := value.ToNumber(argVal, ex.Args[0].String())
	if err != nil {
		return nil, err
	}
	x := float64(n)

	var result float64
	switch ex.Kind {
	case ast.BuiltinSin:
		result = math.Sin(x)
	case ast.BuiltinCos:
		result = math.Cos(x)
	case ast.BuiltinTan:
		result = math.Tan(x)
	case ast.BuiltinAsin:
		result = math.Asin(x)
	case ast.BuiltinAcos:
		result = math.Acos(x)
	case ast.BuiltinAtan:
		result = math.Atan(x)
	case ast.BuiltinAbs:
		result = math.Abs(x)
	case ast.BuiltinSqrt:
		result = math.Sqrt(x)
	case ast.BuiltinLog:
		result = math.Log2(x)
	default:
		return nil, fmt.Errorf("eval: unhandled builtin %v", ex.Kind)
	}
	return value.Number(float32(result)), nil
}

func (e *Evaluator) evalUserCall(ctx *ExecutionContext, ex *ast.UserCall) (value.Value, error) {
	fn, ok := e.functions[ex.FunctionID]
	if !ok {
		span := ex.SrcSpan
		return nil, evalerr.NewReferenceError(ex.Name, &span)
	}
	if len(ex.Args) != len(fn.Params) {
		span := ex.SrcSpan
		return nil, evalerr.NewArgumentCountMismatch(ex.Name, len(ex.Args), len(fn.Params), &span)
	}

	args := make([]value.Value, len(ex.Args))
	for i, argExpr := range ex.Args {
		v, err := e.evalExpr(ctx, argExpr)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	// Parameters live in slots keyed by function name, not in a call
	// frame: a recursive call overwrites its own parameters on the way
	// back down. This mirrors the flat-scope evaluator the language was
	// originally built around.
	for i, slot := range fn.Params {
		ctx.SetSlot(slot, args[i])
	}

	result, returned, err := e.execStatements(ctx, fn.Body)
	if err != nil {
		return nil, err
	}
	if !returned {
		return value.Number(0), nil
	}
	return result, nil
}
