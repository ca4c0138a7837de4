// Package checker validates the structural invariants of a Smartra program.
// The default pipeline does not enforce them; the checker backs the strict
// compile mode.
package checker

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/diagnostic"
)

// Checker walks a program and records violations
type Checker struct {
	prog *ast.Program
	diag *diagnostic.Diagnostics
}

// Check validates prog and returns its diagnostics. It reports:
//   - duplicate contract, member and parameter names
//   - function modifier names that do not resolve in the contract
//   - malformed mapping and array types
//   - modifier bodies without exactly one placeholder
func Check(prog *ast.Program) *diagnostic.Diagnostics {
	c := &Checker{prog: prog, diag: diagnostic.New()}
	if prog == nil {
		return c.diag
	}

	contracts := mapset.NewSet()
	for _, contract := range prog.Contracts {
		if contract == nil {
			continue
		}
		if !contracts.Add(contract.Name) {
			c.diag.Errorf(contract.Line, contract.Column, "duplicate contract '%s'", contract.Name)
		}
		c.checkContract(contract)
	}
	return c.diag
}

func (c *Checker) checkContract(contract *ast.Contract) {
	scope := NewScope(nil)
	define := func(name string, kind SymbolKind, line, col int) {
		if err := scope.Define(&Symbol{Name: name, Kind: kind, Line: line, Column: col}); err != nil {
			c.diag.Errorf(line, col, "in contract %s: %v", contract.Name, err)
		}
	}

	for _, v := range contract.StateVariables() {
		define(v.Name, SymStateVariable, v.Line, v.Column)
		c.checkType(v.Type, v.Line, v.Column, "state variable '%s'", v.Name)
	}
	for _, e := range contract.Events {
		define(e.Name, SymEvent, e.Line, e.Column)
		c.checkParams(e.Parameters, scope, "event '"+e.Name+"'")
	}

	modifiers := mapset.NewSet()
	for _, m := range contract.Modifiers {
		define(m.Name, SymModifier, m.Line, m.Column)
		modifiers.Add(m.Name)
		c.checkParams(m.Parameters, scope, "modifier '"+m.Name+"'")
		c.checkPlaceholders(m)
	}

	for _, fn := range contract.Functions {
		define(fn.Name, SymFunction, fn.Line, fn.Column)
		c.checkParams(fn.Parameters, scope, "function '"+fn.Name+"'")
		if fn.ReturnType != nil {
			c.checkType(fn.ReturnType, fn.Line, fn.Column, "return type of '%s'", fn.Name)
		}

		attached := mapset.NewSet()
		for _, name := range fn.Modifiers {
			if !attached.Add(name) {
				c.diag.Errorf(fn.Line, fn.Column, "modifier '%s' attached twice to function '%s'", name, fn.Name)
			}
			if !modifiers.Contains(name) {
				c.diag.ErrorWithHint(fn.Line, fn.Column,
					"function '"+fn.Name+"' uses unknown modifier '"+name+"'",
					"declare the modifier in contract "+contract.Name+" or remove it")
			}
		}
	}
}

// checkParams checks parameter names are unique within one signature and
// their types are well formed
func (c *Checker) checkParams(params []*ast.Parameter, parent *Scope, owner string) {
	local := NewScope(parent)
	for _, p := range params {
		if p == nil {
			continue
		}
		if err := local.Define(&Symbol{Name: p.Name, Kind: SymParam, Line: p.Line, Column: p.Column}); err != nil {
			c.diag.Errorf(p.Line, p.Column, "in %s: %v", owner, err)
		}
		c.checkType(p.Type, p.Line, p.Column, "parameter '%s' of %s", p.Name, owner)
	}
}

func (c *Checker) checkType(t *ast.Type, line, col int, format string, args ...interface{}) {
	if err := ast.CheckType(t); err != nil {
		if t != nil && t.Line != 0 {
			line, col = t.Line, t.Column
		}
		args = append(args, err)
		c.diag.Errorf(line, col, "type of "+format+": %v", args...)
	}
}

func (c *Checker) checkPlaceholders(m *ast.Modifier) {
	n := 0
	for _, s := range m.Body {
		if _, ok := s.(*ast.PlaceholderStatement); ok {
			n++
		}
	}
	// an empty body is rendered as a bare placeholder
	if len(m.Body) == 0 {
		return
	}
	if n != 1 {
		c.diag.Errorf(m.Line, m.Column, "modifier '%s' must contain exactly one placeholder, found %d", m.Name, n)
	}
}
