package checker

import "fmt"

// SymbolKind represents the kind of declaration a name refers to
type SymbolKind int

const (
	SymStateVariable SymbolKind = iota
	SymFunction
	SymModifier
	SymEvent
	SymParam
)

// String returns the string representation of the symbol kind
func (sk SymbolKind) String() string {
	switch sk {
	case SymStateVariable:
		return "state variable"
	case SymFunction:
		return "function"
	case SymModifier:
		return "modifier"
	case SymEvent:
		return "event"
	case SymParam:
		return "parameter"
	default:
		return "unknown"
	}
}

// Symbol represents a declared name
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Line   int
	Column int
}

// Scope is a symbol table for one contract or one signature
type Scope struct {
	parent  *Scope
	symbols map[string]*Symbol
}

// NewScope creates a new scope with an optional parent
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

// Define adds a symbol to the current scope. It returns an error naming
// the earlier declaration if the name is taken in this scope.
func (s *Scope) Define(sym *Symbol) error {
	if prev, exists := s.symbols[sym.Name]; exists {
		return fmt.Errorf("'%s' already declared as %s at %d:%d", sym.Name, prev.Kind, prev.Line, prev.Column)
	}
	s.symbols[sym.Name] = sym
	return nil
}

// Resolve looks up a symbol in the current scope and parent scopes
// Returns nil if the symbol is not found
func (s *Scope) Resolve(name string) *Symbol {
	if sym, ok := s.symbols[name]; ok {
		return sym
	}
	if s.parent != nil {
		return s.parent.Resolve(name)
	}
	return nil
}
