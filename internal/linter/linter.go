package linter

import (
	"strconv"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set"
	"github.com/holiman/uint256"

	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/diagnostic"
	"github.com/lhaig/smartra/internal/transform"
)

// Linter performs style and best-practice checks on a parsed program.
// It reports warnings (never errors) using the diagnostic system.
type Linter struct {
	prog     *ast.Program
	registry *transform.Registry
	diag     *diagnostic.Diagnostics
}

// Lint runs all lint rules on the given program and returns diagnostics.
// Decorators are checked against reg, or the default registry when reg is
// nil. Lint expects the program as written, before transformation.
func Lint(prog *ast.Program, reg *transform.Registry) *diagnostic.Diagnostics {
	if reg == nil {
		reg = transform.Default()
	}
	l := &Linter{
		prog:     prog,
		registry: reg,
		diag:     diagnostic.New(),
	}
	if prog == nil {
		return l.diag
	}

	for _, c := range prog.Contracts {
		if c == nil {
			continue
		}
		l.lintContract(c)
	}
	return l.diag
}

func (l *Linter) lintContract(c *ast.Contract) {
	l.checkPascalCase("contract", c.Name, c.Line, c.Column)
	l.checkDecorators(c.Decorators, transform.ContractScope, "contract '"+c.Name+"'")

	for _, v := range c.StateVariables() {
		l.checkMixedCase("state variable", v.Name, v.Line, v.Column)
		l.checkLiteralRange(v)
	}
	for _, e := range c.Events {
		l.checkPascalCase("event", e.Name, e.Line, e.Column)
	}

	emitted := mapset.NewSet()
	for _, fn := range c.Functions {
		l.checkMixedCase("function", fn.Name, fn.Line, fn.Column)
		l.checkDecorators(fn.Decorators, transform.FunctionScope, "function '"+fn.Name+"'")
		l.checkEmptyFunctionBody(fn)
		l.checkUnusedParams(fn)
		l.checkEmits(c, fn, emitted)
		l.checkSynthesizedNames(c, fn)
	}

	for _, e := range c.Events {
		if !emitted.Contains(e.Name) {
			l.diag.Warningf(e.Line, e.Column, "event '%s' is never emitted", e.Name)
		}
	}
}

// --- Lint rules ---

// checkDecorators warns about decorators the registry does not know and
// decorators placed where their transformer never runs.
func (l *Linter) checkDecorators(ds []*ast.Decorator, scope transform.Scope, where string) {
	for _, d := range ds {
		e, ok := l.registry.Lookup(d.Name)
		if !ok {
			l.diag.WarningWithHint(d.Line, d.Column,
				"unknown decorator @"+d.Name+" on "+where+" is ignored",
				"known decorators: "+strings.Join(l.registry.Names(), ", "))
			continue
		}
		if e.Scope != scope {
			l.diag.Warningf(d.Line, d.Column,
				"decorator @%s applies to a %s, not to %s; it is ignored", d.Name, e.Scope, where)
		}
	}
}

// checkEmptyFunctionBody warns if a function has no statements.
func (l *Linter) checkEmptyFunctionBody(fn *ast.Function) {
	if len(fn.Body) == 0 {
		l.diag.Warningf(fn.Line, fn.Column, "function '%s' has an empty body", fn.Name)
	}
}

// checkUnusedParams warns about parameters that are never read in the body.
func (l *Linter) checkUnusedParams(fn *ast.Function) {
	used := collectUsedNames(fn.Body)
	for _, p := range fn.Parameters {
		if !used.Contains(p.Name) {
			l.diag.Warningf(p.Line, p.Column, "parameter '%s' in '%s' is never used", p.Name, fn.Name)
		}
	}
}

// checkEmits warns about emits of undeclared events or with the wrong
// argument count, and records emitted events.
func (l *Linter) checkEmits(c *ast.Contract, fn *ast.Function, emitted mapset.Set) {
	for _, s := range fn.Body {
		emit, ok := s.(*ast.EmitStatement)
		if !ok {
			continue
		}
		emitted.Add(emit.Event)
		ev := c.Event(emit.Event)
		if ev == nil {
			l.diag.Warningf(emit.Line, emit.Column, "function '%s' emits undeclared event '%s'", fn.Name, emit.Event)
			continue
		}
		if len(emit.Args) != len(ev.Parameters) {
			l.diag.Warningf(emit.Line, emit.Column,
				"event '%s' takes %d arguments, %d given", ev.Name, len(ev.Parameters), len(emit.Args))
		}
	}
}

// checkSynthesizedNames warns when a decorator will reuse a name the
// author declared. Transformers detect existing state and modifiers by
// name only, so an authored declaration silently replaces the generated
// one.
func (l *Linter) checkSynthesizedNames(c *ast.Contract, fn *ast.Function) {
	if fn.HasDecorator(transform.OnlyOwnerDecorator) {
		if v := c.StateVariable(transform.OwnerVariable); v != nil && (v.Type == nil || v.Type.Name != "address") {
			l.diag.WarningWithHint(v.Line, v.Column,
				"state variable '"+v.Name+"' has type "+v.Type.String()+" but @only_owner compares it with the caller",
				"declare it as address")
		}
	}
	if fn.HasDecorator(transform.ReentrancyGuardDecorator) {
		lock := transform.LockVariable(fn.Name)
		if v := c.StateVariable(lock); v != nil {
			l.diag.Warningf(v.Line, v.Column,
				"state variable '%s' is reused as the reentrancy lock of '%s'", lock, fn.Name)
		}
	}
}

// checkLiteralRange warns when an unsigned integer state variable is
// initialized with a literal that does not fit its width.
func (l *Linter) checkLiteralRange(v *ast.StateVariable) {
	lit, ok := v.InitialValue.(*ast.Literal)
	if !ok || lit.Kind != ast.NumberLit || v.Type == nil {
		return
	}
	bits, ok := uintWidth(v.Type.Name)
	if !ok {
		return
	}
	n, err := uint256.FromDecimal(strings.ReplaceAll(lit.Value, "_", ""))
	if err != nil {
		l.diag.Warningf(lit.Line, lit.Column, "literal %s does not fit in %s", lit.Value, v.Type.Name)
		return
	}
	if n.BitLen() > bits {
		l.diag.Warningf(lit.Line, lit.Column, "literal %s does not fit in %s", lit.Value, v.Type.Name)
	}
}

// uintWidth returns the bit width of uint, uint8 ... uint256.
func uintWidth(name string) (int, bool) {
	if name == "uint" {
		return 256, true
	}
	if !strings.HasPrefix(name, "uint") {
		return 0, false
	}
	bits, err := strconv.Atoi(strings.TrimPrefix(name, "uint"))
	if err != nil || bits < 8 || bits > 256 || bits%8 != 0 {
		return 0, false
	}
	return bits, true
}

func (l *Linter) checkPascalCase(kind, name string, line, col int) {
	if !isPascalCase(name) {
		l.diag.Warningf(line, col, "%s '%s' should use PascalCase naming", kind, name)
	}
}

func (l *Linter) checkMixedCase(kind, name string, line, col int) {
	if !isMixedCase(name) {
		l.diag.Warningf(line, col, "%s '%s' should use mixedCase naming", kind, name)
	}
}

// collectUsedNames returns every identifier read in stmts. Dotted names
// contribute their first segment.
func collectUsedNames(stmts []ast.Statement) mapset.Set {
	used := mapset.NewSet()
	var expr func(e ast.Expression)
	expr = func(e ast.Expression) {
		switch n := e.(type) {
		case *ast.Identifier:
			used.Add(strings.SplitN(n.Name, ".", 2)[0])
		case *ast.LValue:
			used.Add(n.Name)
			for _, idx := range n.Indices {
				expr(idx)
			}
		case *ast.BinaryExpression:
			expr(n.Left)
			expr(n.Right)
		case *ast.UnaryExpression:
			expr(n.Operand)
		case *ast.FunctionCall:
			for _, a := range n.Args {
				expr(a)
			}
		}
	}
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.RequireStatement:
			expr(n.Condition)
			expr(n.Message)
		case *ast.AssignmentStatement:
			expr(n.Target)
			expr(n.Value)
		case *ast.EmitStatement:
			for _, a := range n.Args {
				expr(a)
			}
		case *ast.ReturnStatement:
			expr(n.Value)
		}
	}
	return used
}

// isPascalCase returns true if the name starts with an uppercase letter
// and contains no underscores.
func isPascalCase(name string) bool {
	if len(name) == 0 {
		return false
	}
	runes := []rune(name)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	return !strings.ContainsRune(name, '_')
}

// isMixedCase returns true if the name starts with a lowercase letter,
// after any leading underscores, and has no further underscores. Names
// generated for decorators are exempt.
func isMixedCase(name string) bool {
	if strings.HasPrefix(name, "_reentrancyLock_") {
		return true
	}
	trimmed := strings.TrimLeft(name, "_")
	if len(trimmed) == 0 {
		return false
	}
	runes := []rune(trimmed)
	if !unicode.IsLower(runes[0]) {
		return false
	}
	return !strings.ContainsRune(trimmed, '_')
}
