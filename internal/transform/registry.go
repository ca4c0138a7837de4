// Package transform rewrites a parsed Smartra program according to the
// decorators on its contracts and functions.
//
// Every decorator name maps to exactly one transformer in a Registry. A
// transformer runs either once per decorated contract or once per
// decorated function, and synthesizes the state variables and modifiers
// that implement the decorator. Transformers check for existing names
// before inserting anything, so applying a registry twice yields the same
// program as applying it once.
package transform

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lhaig/smartra/internal/ast"
)

// Decorator names understood by the default registry.
const (
	SafeMathDecorator        = "safe_math"
	OnlyOwnerDecorator       = "only_owner"
	ReentrancyGuardDecorator = "reentrancy_guard"
)

// ErrDuplicateDecorator is returned when a decorator name is registered twice.
var ErrDuplicateDecorator = errors.New("decorator already registered")

// Scope tells the pipeline where a decorator may appear.
type Scope int

const (
	ContractScope Scope = iota
	FunctionScope
)

func (s Scope) String() string {
	switch s {
	case ContractScope:
		return "contract"
	case FunctionScope:
		return "function"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Site is the place a transformer is applied to. Function is nil for
// contract-scope transformers.
type Site struct {
	Program  *ast.Program
	Contract *ast.Contract
	Function *ast.Function
}

// Transformer mutates the nodes reachable from a Site. It is always handed
// a private copy of the program, never the caller's tree.
type Transformer interface {
	Transform(site Site)
}

// TransformerFunc is an adapter to use a function as a Transformer.
type TransformerFunc func(site Site)

// Transform implements the Transformer interface.
func (f TransformerFunc) Transform(site Site) {
	f(site)
}

// Entry describes one registered decorator.
type Entry struct {
	Name        string
	Scope       Scope
	Description string
	Transformer Transformer

	rank int
}

// Registry maps decorator names to transformers. Registration order is
// the dispatch order when several decorators sit on the same site.
type Registry struct {
	entries map[string]*Entry
	next    int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Default returns a registry with the built-in decorators, targeting
// DefaultTargetVersion.
func Default() *Registry {
	return Standard(DefaultTargetVersion)
}

// Standard returns a registry with the built-in decorators. targetVersion
// is the version constraint recorded by @safe_math.
func Standard(targetVersion string) *Registry {
	r := NewRegistry()
	for _, e := range []Entry{
		{
			Name:        SafeMathDecorator,
			Scope:       ContractScope,
			Description: "record checked-arithmetic target version " + targetVersion,
			Transformer: NewSafeMath(targetVersion),
		},
		{
			Name:        OnlyOwnerDecorator,
			Scope:       FunctionScope,
			Description: "restrict calls to the contract owner",
			Transformer: OnlyOwner(),
		},
		{
			Name:        ReentrancyGuardDecorator,
			Scope:       FunctionScope,
			Description: "reject reentrant calls with a per-function lock",
			Transformer: ReentrancyGuard(),
		},
	} {
		if err := r.Register(e); err != nil {
			panic(err) // built-in names are distinct
		}
	}
	return r
}

// Register adds a decorator. Empty and already registered names are
// rejected.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" {
		return errors.New("decorator name must not be empty")
	}
	if e.Transformer == nil {
		return fmt.Errorf("decorator %q has no transformer", e.Name)
	}
	if _, ok := r.entries[e.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDecorator, e.Name)
	}
	e.rank = r.next
	r.next++
	r.entries[e.Name] = &e
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Entries returns all registered decorators in dispatch order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rank < out[j].rank })
	return out
}

// Names returns the registered decorator names in dispatch order.
func (r *Registry) Names() []string {
	entries := r.Entries()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Without returns a copy of the registry with the named decorators
// removed. Unknown names are ignored.
func (r *Registry) Without(names ...string) *Registry {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Registry{entries: make(map[string]*Entry, len(r.entries)), next: r.next}
	for name, e := range r.entries {
		if drop[name] {
			continue
		}
		cp := *e
		out.entries[name] = &cp
	}
	return out
}
