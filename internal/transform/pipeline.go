package transform

import (
	"sort"

	"github.com/ethereum/go-ethereum/log"

	"github.com/lhaig/smartra/internal/ast"
)

// StageHook observes the program after each transformer runs. stage names
// the site and decorator, e.g. "Token.mint@only_owner". prog is an
// independent snapshot the hook may keep.
type StageHook func(stage string, prog *ast.Program)

type options struct {
	hook StageHook
}

// Option configures Apply.
type Option func(*options)

// WithStageHook registers a hook called after every transformer.
func WithStageHook(hook StageHook) Option {
	return func(o *options) { o.hook = hook }
}

// Apply runs the registered transformers over a copy of prog and returns
// the copy. prog itself is left untouched.
//
// Contracts are visited in order. Contract-scope decorators run first,
// then function-scope decorators for each function in declaration order.
// Decorators on the same site run in registry order, independent of the
// order they were written in. Unknown decorators and decorators used in
// the wrong scope are logged and skipped.
func (r *Registry) Apply(prog *ast.Program, opts ...Option) *ast.Program {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	out := ast.Clone(prog)
	if out == nil {
		return nil
	}
	for _, c := range out.Contracts {
		if c == nil {
			continue
		}
		r.dispatch(&o, ContractScope, c.Decorators, Site{Program: out, Contract: c}, c.Name)
		for _, fn := range c.Functions {
			if fn == nil {
				continue
			}
			r.dispatch(&o, FunctionScope, fn.Decorators, Site{Program: out, Contract: c, Function: fn}, c.Name+"."+fn.Name)
		}
	}
	return out
}

func (r *Registry) dispatch(o *options, scope Scope, decorators []*ast.Decorator, site Site, where string) {
	var run []*Entry
	seen := make(map[string]bool)
	for _, d := range decorators {
		if d == nil || seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		e, ok := r.entries[d.Name]
		if !ok {
			log.Warn("Skipping unknown decorator", "decorator", d.Name, "site", where)
			continue
		}
		if e.Scope != scope {
			log.Warn("Skipping decorator in wrong scope", "decorator", d.Name, "site", where, "want", e.Scope, "have", scope)
			continue
		}
		run = append(run, e)
	}
	sort.SliceStable(run, func(i, j int) bool { return run[i].rank < run[j].rank })

	for _, e := range run {
		log.Debug("Applying decorator", "decorator", e.Name, "site", where)
		e.Transformer.Transform(site)
		if o.hook != nil {
			o.hook(where+"@"+e.Name, ast.Clone(site.Program))
		}
	}
}
