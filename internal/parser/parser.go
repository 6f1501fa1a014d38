// Package parser implements the Anarchy parser using Pratt parsing.
//
// Parsing runs in two passes over the same token stream. The first pass
// (scanPrototypes) only looks for `def name(params) { ... }` headers,
// skipping bodies by brace depth, and records each function's name,
// arity, and a sequential function id. The second pass is the real
// recursive-descent parser: it resolves every identifier to a SlotId as
// it is encountered (via the shared symbol table) and resolves every
// call head against either the fixed builtin set or the prototype table
// built in pass one. Running prototypes first is what lets a function
// call another function declared later in the file.
package parser

import (
	"fmt"
	"strconv"

	"github.com/Mstrodl/anarchy/internal/ast"
	"github.com/Mstrodl/anarchy/internal/evalerr"
	"github.com/Mstrodl/anarchy/internal/lexer"
	"github.com/Mstrodl/anarchy/internal/symtab"
	"github.com/Mstrodl/anarchy/internal/token"
)

// Precedence levels for expression operators, lowest to highest.
const (
	_ int = iota
	LOWEST
	OR
	AND
	EQUALITY
	COMPARISON
	BITOR
	BITXOR
	BITAND
	SHIFT
	SUM
	PRODUCT
	POW
	PREFIX
	CALL
	INDEX
)

var precedences = map[token.TokenType]int{
	token.OR:       OR,
	token.AND:      OR,
	token.EQ:       COMPARISON,
	token.NOT_EQ:   COMPARISON,
	token.LESS:     COMPARISON,
	token.GREATER:  COMPARISON,
	token.LESS_EQ:  COMPARISON,
	token.GTR_EQ:   COMPARISON,
	token.PIPE:     BITOR,
	token.CARET:    BITOR,
	token.AMP:      BITOR,
	token.SHL:      BITOR,
	token.SHR:      BITOR,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.POW:      POW,
	token.LPAREN:   CALL,
	token.LBRACK:   INDEX,
}

// Parser turns Anarchy source text into a Program, resolving every
// variable reference to a SlotId along the way.
type Parser struct {
	source  string
	toks    []token.Token
	pos     int
	symbols *symtab.SymbolTable
	protos  *prototypeTable
	scope   symtab.Scope
}

// New tokenizes source in full and returns a Parser ready to run Parse.
func New(source string) (*Parser, error) {
	lx := lexer.New(source)
	var toks []token.Token
	for {
		tok := lx.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if lexErrs := lx.Errors(); len(lexErrs) > 0 {
		first := lexErrs[0]
		span := spanAt(first.Pos)
		return nil, evalerr.NewParseError(first.Message, &span)
	}
	return &Parser{
		source:  source,
		toks:    toks,
		symbols: symtab.New(),
		protos:  newPrototypeTable(),
		scope:   symtab.TopLevel,
	}, nil
}

// Symbols returns the symbol table the parser resolved every reference
// against. A host keeps this alongside the Program to build matching
// ExecutionContexts.
func (p *Parser) Symbols() *symtab.SymbolTable {
	return p.symbols
}

// Parse runs both passes and returns the resulting Program.
func (p *Parser) Parse() (*ast.Program, error) {
	if err := p.scanPrototypes(); err != nil {
		return nil, err
	}
	p.pos = 0
	return p.parseProgram()
}

func spanAt(pos token.Position) token.Span {
	return token.Span{Start: pos, End: pos}
}

// ---------------------------------------------------------------------
// Cursor helpers
// ---------------------------------------------------------------------

func (p *Parser) cur() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) prevPos() token.Position {
	if p.pos == 0 {
		return p.toks[0].Pos
	}
	return p.toks[p.pos-1].Pos
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt token.TokenType) (token.Token, error) {
	if p.cur().Type != tt {
		span := spanAt(p.cur().Pos)
		return token.Token{}, evalerr.NewParseError(
			fmt.Sprintf("expected %s, found %s %q", tt, p.cur().Type, p.cur().Literal), &span)
	}
	return p.advance(), nil
}

func (p *Parser) span(start token.Position) token.Span {
	return token.Span{Start: start, End: p.prevPos()}
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return LOWEST
}

// ---------------------------------------------------------------------
// Pass one: function prototypes
// ---------------------------------------------------------------------

func (p *Parser) scanPrototypes() error {
	for p.cur().Type != token.EOF {
		if p.cur().Type != token.DEF {
			p.advance()
			continue
		}
		if err := p.scanOnePrototype(); err != nil {
			return err
		}
	}
	p.pos = 0
	return nil
}

func (p *Parser) scanOnePrototype() error {
	p.advance() // def
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return err
	}
	arity := 0
	for p.cur().Type != token.RPAREN {
		if arity > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return err
			}
		}
		if _, err := p.expect(token.IDENT); err != nil {
			return err
		}
		arity++
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		switch p.cur().Type {
		case token.EOF:
			span := spanAt(p.cur().Pos)
			return evalerr.NewParseError("unterminated function body", &span)
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		}
		p.advance()
	}
	p.protos.declare(nameTok.Literal, make([]symtab.SlotId, arity), nil)
	return nil
}

// ---------------------------------------------------------------------
// Pass two: the real parse
// ---------------------------------------------------------------------

func (p *Parser) parseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	for p.cur().Type != token.EOF {
		if p.cur().Type == token.DEF {
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			program.Functions = append(program.Functions, fn)
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.TopLevel = append(program.TopLevel, stmt)
	}
	return program, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	start := p.cur().Pos
	p.advance() // def
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	name := nameTok.Literal

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	p.scope = symtab.FunctionScope(name)
	var params []symtab.SlotId
	var paramNames []string
	for p.cur().Type != token.RPAREN {
		if len(params) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		paramTok, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		slot := p.symbols.Resolve(symtab.VariableKey{Name: paramTok.Literal, Scope: p.scope})
		params = append(params, slot)
		paramNames = append(paramNames, paramTok.Literal)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var body []ast.Statement
	for p.cur().Type != token.RBRACE {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	p.scope = symtab.TopLevel

	proto, _ := p.protos.lookup(name)
	id := 0
	if proto != nil {
		id = proto.id
	}

	return &ast.Function{
		ID:         id,
		Name:       name,
		Params:     params,
		ParamNames: paramNames,
		Body:       body,
		SrcSpan:    p.span(start),
	}, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Type {
	case token.IF:
		return p.parseIf()
	case token.RETURN:
		return p.parseReturn()
	case token.IDENT:
		return p.parseAssignment()
	default:
		span := spanAt(p.cur().Pos)
		return nil, evalerr.NewParseError(
			fmt.Sprintf("unexpected token %s %q at start of statement", p.cur().Type, p.cur().Literal), &span)
	}
}

func (p *Parser) parseAssignment() (ast.Statement, error) {
	start := p.cur().Pos
	nameTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	slot := p.symbols.Resolve(symtab.VariableKey{Name: nameTok.Literal, Scope: p.scope})
	return &ast.Assignment{
		Target:     slot,
		TargetName: nameTok.Literal,
		Expr:       expr,
		SrcSpan:    p.span(start),
	}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := p.cur().Pos
	p.advance() // return
	expr, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.Return{Expr: expr, SrcSpan: p.span(start)}, nil
}

func (p *Parser) parseIf() (*ast.If, error) {
	start := p.cur().Pos
	p.advance() // if
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	node := &ast.If{Cond: cond, Then: then}

	if p.cur().Type == token.ELSE {
		p.advance()
		if p.cur().Type == token.IF {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			node.Else = &ast.ElseBranch{Kind: ast.ElseIfKind, ElseIf: elseIf}
		} else {
			block, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			node.Else = &ast.ElseBranch{Kind: ast.ElseBlockKind, Block: block}
		}
	}

	node.SrcSpan = p.span(start)
	return node, nil
}

func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for p.cur().Type != token.RBRACE {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for precedence < p.peekPrecedence() {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parsePrefix() (ast.Expression, error) {
	switch p.cur().Type {
	case token.NUMBER:
		return p.parseNumber()
	case token.MINUS:
		return p.parseUnary(ast.UnaryNeg)
	case token.BANG:
		return p.parseUnary(ast.UnaryNot)
	case token.LPAREN:
		return p.parseParenOrTuple()
	case token.IDENT:
		return p.parseIdentExpr()
	default:
		span := spanAt(p.cur().Pos)
		return nil, evalerr.NewParseError(
			fmt.Sprintf("unexpected token %s %q in expression", p.cur().Type, p.cur().Literal), &span)
	}
}

func (p *Parser) parseNumber() (ast.Expression, error) {
	start := p.cur().Pos
	tok := p.advance()
	f, err := strconv.ParseFloat(tok.Literal, 32)
	if err != nil {
		span := spanAt(tok.Pos)
		return nil, evalerr.NewParseError(fmt.Sprintf("invalid number literal %q", tok.Literal), &span)
	}
	return &ast.NumberLiteral{Value: float32(f), SrcSpan: p.span(start)}, nil
}

func (p *Parser) parseUnary(op ast.UnaryOp) (ast.Expression, error) {
	start := p.cur().Pos
	p.advance()
	operand, err := p.parseExpression(PREFIX)
	if err != nil {
		return nil, err
	}
	return &ast.Unary{Op: op, Operand: operand, SrcSpan: p.span(start)}, nil
}

// parseParenOrTuple parses `(expr)` as a grouped expression, or
// `(e1, e2, ...)` as a tuple literal.
func (p *Parser) parseParenOrTuple() (ast.Expression, error) {
	start := p.cur().Pos
	p.advance() // (
	var elems []ast.Expression
	for p.cur().Type != token.RPAREN {
		if len(elems) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		elem, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return &ast.TupleLiteral{Elements: elems, SrcSpan: p.span(start)}, nil
}

func (p *Parser) parseIdentExpr() (ast.Expression, error) {
	start := p.cur().Pos
	tok := p.advance()
	name := tok.Literal

	if p.cur().Type != token.LPAREN {
		slot := p.symbols.Resolve(symtab.VariableKey{Name: name, Scope: p.scope})
		return &ast.Reference{Slot: slot, Name: name, SrcSpan: p.span(start)}, nil
	}

	args, err := p.parseArgs()
	if err != nil {
		return nil, err
	}

	if kind, ok := ast.BuiltinNames[name]; ok {
		wantArity := ast.BuiltinArity[kind]
		if len(args) != wantArity {
			span := p.span(start)
			return nil, evalerr.NewArgumentCountMismatch(name, len(args), wantArity, &span)
		}
		return &ast.BuiltinCall{Kind: kind, Name: name, Args: args, SrcSpan: p.span(start)}, nil
	}

	proto, ok := p.protos.lookup(name)
	if !ok {
		span := p.span(start)
		return nil, evalerr.NewReferenceError(name, &span)
	}
	if len(args) != proto.arity {
		span := p.span(start)
		return nil, evalerr.NewArgumentCountMismatch(name, len(args), proto.arity, &span)
	}
	return &ast.UserCall{FunctionID: proto.id, Name: name, Args: args, SrcSpan: p.span(start)}, nil
}

func (p *Parser) parseArgs() ([]ast.Expression, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for p.cur().Type != token.RPAREN {
		if len(args) > 0 {
			if _, err := p.expect(token.COMMA); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseInfix(left ast.Expression) (ast.Expression, error) {
	start := left.Span().Start

	switch p.cur().Type {
	case token.AND, token.OR:
		op := ast.LogicalAnd
		if p.cur().Type == token.OR {
			op = ast.LogicalOr
		}
		prec := p.peekPrecedence()
		p.advance()
		right, err := p.parseExpression(prec)
		if err != nil {
			return nil, err
		}
		return &ast.Logical{Op: op, Left: left, Right: right, SrcSpan: p.span(start)}, nil

	case token.LBRACK:
		p.advance()
		idx, err := p.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACK); err != nil {
			return nil, err
		}
		return &ast.Index{Tuple: left, Idx: idx, SrcSpan: p.span(start)}, nil

	default:
		return p.parseBinary(left)
	}
}

var binaryOps = map[token.TokenType]ast.BinaryOp{
	token.PLUS:     ast.OpAdd,
	token.MINUS:    ast.OpSub,
	token.ASTERISK: ast.OpMul,
	token.SLASH:    ast.OpDiv,
	token.PERCENT:  ast.OpMod,
	token.POW:      ast.OpPow,
	token.AMP:      ast.OpBitAnd,
	token.PIPE:     ast.OpBitOr,
	token.CARET:    ast.OpBitXor,
	token.SHL:      ast.OpShl,
	token.SHR:      ast.OpShr,
	token.EQ:       ast.OpEq,
	token.NOT_EQ:   ast.OpNotEq,
	token.LESS:     ast.OpLess,
	token.GREATER:  ast.OpGreater,
	token.LESS_EQ:  ast.OpLessEq,
	token.GTR_EQ:   ast.OpGreaterEq,
}

func (p *Parser) parseBinary(left ast.Expression) (ast.Expression, error) {
	start := left.Span().Start
	tt := p.cur().Type
	op, ok := binaryOps[tt]
	if !ok {
		span := spanAt(p.cur().Pos)
		return nil, evalerr.NewParseError(fmt.Sprintf("unexpected token %s in expression", tt), &span)
	}
	prec := p.peekPrecedence()
	p.advance()

	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.Binary{Op: op, Left: left, Right: right, SrcSpan: p.span(start)}, nil
}
