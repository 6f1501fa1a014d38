package parser

import "github.com/Mstrodl/anarchy/internal/symtab"

// prototype is what the parser's first pass records about a user-defined
// function before it has parsed any function body: enough to resolve
// calls to it (and check their arity) while parsing the second pass.
type prototype struct {
	id     int
	arity  int
	params []symtab.SlotId
	names  []string
}

// prototypeTable maps a function name to its prototype. Anarchy has no
// overloading and no unit qualification, so unlike a typical function
// registry this is a single flat map.
type prototypeTable struct {
	byName map[string]*prototype
	order  []string
}

func newPrototypeTable() *prototypeTable {
	return &prototypeTable{byName: make(map[string]*prototype)}
}

// declare registers name's prototype, assigning it the next sequential
// function id. Redeclaring a name overwrites its previous prototype but
// keeps the id it was first given; the
// parser is responsible for deciding whether that should be an error.
func (t *prototypeTable) declare(name string, params []symtab.SlotId, paramNames []string) *prototype {
	id := len(t.order)
	if existing, exists := t.byName[name]; exists {
		id = existing.id
	} else {
		t.order = append(t.order, name)
	}
	p := &prototype{
		id:     id,
		arity:  len(params),
		params: params,
		names:  paramNames,
	}
	t.byName[name] = p
	return p
}

func (t *prototypeTable) lookup(name string) (*prototype, bool) {
	p, ok := t.byName[name]
	return p, ok
}
