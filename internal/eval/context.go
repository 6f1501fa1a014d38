// Package eval implements the Anarchy tree-walking evaluator: the
// ExecutionContext that stores variable slots, and the Evaluator that
// walks a parsed Program against it.
package eval

import (
	"github.com/Mstrodl/anarchy/internal/evalerr"
	"github.com/Mstrodl/anarchy/internal/symtab"
	"github.com/Mstrodl/anarchy/internal/token"
	"github.com/Mstrodl/anarchy/internal/value"
)

// ExecutionContext holds the mutable state a Program runs against: one
// value.Value slot per VariableKey the SymbolTable has resolved, with an
// unset slot represented by a nil Value. A host typically keeps one
// SymbolTable/Program pair around and creates (or Reset()s) one
// ExecutionContext per evaluation, so that a pixel-shader-style host can
// re-run the same program thousands of times without re-parsing.
type ExecutionContext struct {
	Symbols *symtab.SymbolTable
	Slots   []value.Value
}

// NewExecutionContext creates a context sized to the current state of
// symbols. If more variables are resolved into symbols afterward (as Set
// does for a name the program never uses), Reset picks up the new size;
// Set and SetSlot also grow the slot vector when they need to.
func NewExecutionContext(symbols *symtab.SymbolTable) *ExecutionContext {
	return &ExecutionContext{
		Symbols: symbols,
		Slots:   make([]value.Value, symbols.Len()),
	}
}

// Reset clears every slot back to unset, resizing the slot vector if the
// SymbolTable has grown since the context was created. A host calls this
// once per evaluation (e.g. once per pixel) between setting fresh inputs.
func (c *ExecutionContext) Reset() {
	n := c.Symbols.Len()
	if cap(c.Slots) < n {
		c.Slots = make([]value.Value, n)
		return
	}
	c.Slots = c.Slots[:n]
	for i := range c.Slots {
		c.Slots[i] = nil
	}
}

// Set stores v in the top-level variable named name, resolving it to a
// slot (allocating one if this is the first time name has been used). It
// is the primary way a host seeds inputs such as x, y, time, and random.
func (c *ExecutionContext) Set(name string, v value.Value) {
	slot := c.Symbols.Resolve(symtab.VariableKey{Name: name, Scope: symtab.TopLevel})
	c.ensureCapacity(slot)
	c.Slots[slot] = v
}

// SetSlot stores v directly in slot, growing the slot vector if needed.
func (c *ExecutionContext) SetSlot(slot symtab.SlotId, v value.Value) {
	c.ensureCapacity(slot)
	c.Slots[slot] = v
}

func (c *ExecutionContext) ensureCapacity(slot symtab.SlotId) {
	if int(slot) < len(c.Slots) {
		return
	}
	grown := make([]value.Value, int(slot)+1)
	copy(grown, c.Slots)
	c.Slots = grown
}

// Get reads the top-level variable named name, reporting a
// ReferenceError if it has never been assigned a value. A host uses this
// to read outputs such as r, g, and b after evaluation.
func (c *ExecutionContext) Get(name string) (value.Value, error) {
	slot, ok := c.Symbols.Lookup(symtab.VariableKey{Name: name, Scope: symtab.TopLevel})
	if !ok {
		return nil, evalerr.NewReferenceError(name, nil)
	}
	return c.GetSlot(slot, name, nil)
}

// GetSlot reads slot directly, reporting a ReferenceError tagged with
// span and name if the slot is unset.
func (c *ExecutionContext) GetSlot(slot symtab.SlotId, name string, span *token.Span) (value.Value, error) {
	if int(slot) >= len(c.Slots) || c.Slots[slot] == nil {
		return nil, evalerr.NewReferenceError(name, span)
	}
	return c.Slots[slot], nil
}

// GetUntracked reads slot without reporting an error, returning nil for
// an unset slot. It exists for callers (such as debuggers or snapshot
// tests) that want to inspect state without tripping the language's
// normal reference-error semantics.
func (c *ExecutionContext) GetUntracked(slot symtab.SlotId) value.Value {
	if int(slot) >= len(c.Slots) {
		return nil
	}
	return c.Slots[slot]
}

// Layout is an exported snapshot of a SymbolTable's slot assignments,
// letting a host persist which variable occupies which slot across a
// process restart without re-running the parser.
type Layout struct {
	Keys []symtab.VariableKey
}

// ExportLayout captures the context's current slot assignments.
func (c *ExecutionContext) ExportLayout() Layout {
	keys := make([]symtab.VariableKey, c.Symbols.Len())
	for i := range keys {
		key, _ := c.Symbols.KeyFor(symtab.SlotId(i))
		keys[i] = key
	}
	return Layout{Keys: keys}
}

// NewWithLayout rebuilds a SymbolTable and ExecutionContext from a
// previously exported Layout, restoring identical slot numbering.
func NewWithLayout(layout Layout) *ExecutionContext {
	symbols := symtab.New()
	for _, key := range layout.Keys {
		symbols.Resolve(key)
	}
	return NewExecutionContext(symbols)
}
