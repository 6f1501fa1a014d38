// Package anarchy is the public façade over the language core: parse a
// program once, then drive an ExecutionContext through it as many times
// as a host needs (once per pixel, in the canonical use case).
package anarchy

import (
	"github.com/Mstrodl/anarchy/internal/ast"
	"github.com/Mstrodl/anarchy/internal/eval"
	"github.com/Mstrodl/anarchy/internal/parser"
	"github.com/Mstrodl/anarchy/internal/symtab"
	"github.com/Mstrodl/anarchy/internal/value"
)

// Re-export the runtime value types so callers never need to import an
// internal package directly.
type (
	// Value is any Anarchy runtime value.
	Value = value.Value
	// Number is a scalar Anarchy value.
	Number = value.Number
	// Tuple is a sequence Anarchy value.
	Tuple = value.Tuple
)

// SlotId identifies a variable's storage location in an ExecutionContext.
type SlotId = symtab.SlotId

// Layout is an exported snapshot of slot assignments, used to build
// additional ExecutionContexts that agree on SlotId numbering.
type Layout = eval.Layout

// Program is a parsed, immutable Anarchy program, safe to share and
// re-execute across any number of ExecutionContexts.
type Program struct {
	ast       *ast.Program
	symbols   *symtab.SymbolTable
	evaluator *eval.Evaluator
}

// Parse parses source into a Program and its associated symbol table.
// Every identifier and function parameter in source is interned into the
// symbol table as it is encountered.
func Parse(source string) (*Program, error) {
	p, err := parser.New(source)
	if err != nil {
		return nil, err
	}
	astProgram, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return &Program{
		ast:       astProgram,
		symbols:   p.Symbols(),
		evaluator: eval.New(astProgram),
	}, nil
}

// Register interns name as a top-level variable, returning its SlotId.
// It is idempotent: calling it twice with the same name returns the same
// SlotId. Hosts use this to learn the slots for their input/output
// variables (x, y, time, random, r, g, b) before the render loop starts.
func (p *Program) Register(name string) SlotId {
	return p.symbols.Resolve(symtab.VariableKey{Name: name, Scope: symtab.TopLevel})
}

// NewContext creates an ExecutionContext sized for this Program's symbol
// table, with every slot unset.
func (p *Program) NewContext() *ExecutionContext {
	return &ExecutionContext{inner: eval.NewExecutionContext(p.symbols)}
}

// ExportLayout captures the program's current slot assignments so that a
// host can build additional contexts with NewContextWithLayout that agree
// on SlotId numbering.
func (p *Program) ExportLayout(ctx *ExecutionContext) Layout {
	return ctx.inner.ExportLayout()
}

// NewContextWithLayout rebuilds an ExecutionContext (and its own private
// symbol table) from a previously exported Layout.
func NewContextWithLayout(layout Layout) *ExecutionContext {
	return &ExecutionContext{inner: eval.NewWithLayout(layout)}
}

// Execute runs the program's top-level statements against ctx.
func (p *Program) Execute(ctx *ExecutionContext) error {
	return p.evaluator.Run(ctx.inner)
}

// ExecutionContext holds the mutable state one evaluation runs against: a
// slot per variable the Program's symbol table has resolved. A host
// keeps one ExecutionContext per concurrent worker; see the Concurrency
// section of the language's design for why contexts cannot be shared.
type ExecutionContext struct {
	inner *eval.ExecutionContext
}

// Reset clears every slot back to unset, ready for the next evaluation.
func (c *ExecutionContext) Reset() {
	c.inner.Reset()
}

// Set stores v in the top-level variable named name.
func (c *ExecutionContext) Set(name string, v Value) {
	c.inner.Set(name, v)
}

// SetSlot stores v directly in slot.
func (c *ExecutionContext) SetSlot(slot SlotId, v Value) {
	c.inner.SetSlot(slot, v)
}

// Get reads the top-level variable named name, reporting a
// ReferenceError if it was never assigned.
func (c *ExecutionContext) Get(name string) (Value, error) {
	return c.inner.Get(name)
}

// GetUntracked reads slot without reporting an error for an unset slot,
// returning nil instead.
func (c *ExecutionContext) GetUntracked(slot SlotId) Value {
	return c.inner.GetUntracked(slot)
}
