package codegen

import (
	"fmt"
	"strings"

	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/transform"
)

// License is the SPDX identifier written at the top of every output.
const License = "MIT"

// Generate renders a transformed program as Solidity source. It never
// fails: node kinds it does not know are rendered as comments so partial
// trees stay inspectable. The program is not modified.
func Generate(prog *ast.Program) string {
	g := &generator{}

	version := transform.DefaultTargetVersion
	if prog != nil && prog.Meta(ast.MetaTargetVersion) != "" {
		version = prog.Meta(ast.MetaTargetVersion)
	}

	g.emitLine("// SPDX-License-Identifier: " + License)
	g.emitLinef("pragma solidity %s;", version)
	g.emitLine("")

	if prog == nil {
		return g.sb.String()
	}
	first := true
	for _, c := range prog.Contracts {
		if c == nil {
			continue
		}
		if !first {
			g.emitLine("")
		}
		first = false
		g.generateContract(c)
	}
	return g.sb.String()
}

// GenerateContract renders a single contract block without the file header.
func GenerateContract(c *ast.Contract) string {
	g := &generator{}
	g.generateContract(c)
	return g.sb.String()
}

type generator struct {
	sb     strings.Builder
	indent int
}

func (g *generator) emitLinef(format string, args ...any) {
	g.emitLine(fmt.Sprintf(format, args...))
}

func (g *generator) emitLine(s string) {
	if s == "" {
		g.sb.WriteString("\n")
	} else {
		g.sb.WriteString(g.indentStr())
		g.sb.WriteString(s)
		g.sb.WriteString("\n")
	}
}

func (g *generator) incIndent() {
	g.indent++
}

func (g *generator) decIndent() {
	g.indent--
}

func (g *generator) indentStr() string {
	return strings.Repeat("    ", g.indent)
}

// section starts a commented block inside a contract
func (g *generator) section(title string) {
	g.emitLine("")
	g.emitLine("// " + title)
}

// generateContract emits state, events, modifiers, constructor and
// functions, in that order
func (g *generator) generateContract(c *ast.Contract) {
	g.emitLinef("contract %s {", c.Name)
	g.incIndent()

	ctor := NeedsConstructor(c)

	if vars := c.StateVariables(); len(vars) > 0 {
		g.section("State variables")
		for _, v := range vars {
			if v == nil {
				continue
			}
			g.generateStateVariable(v, ctor && v.Name == transform.OwnerVariable)
		}
	}

	if len(c.Events) > 0 {
		g.section("Events")
		for _, e := range c.Events {
			if e == nil {
				continue
			}
			g.emitLinef("event %s(%s);", e.Name, params(e.Parameters))
		}
	}

	if len(c.Modifiers) > 0 {
		g.section("Modifiers")
		for _, m := range c.Modifiers {
			if m == nil {
				continue
			}
			g.generateModifier(m)
		}
	}

	if ctor {
		g.section("Constructor")
		g.emitLine("constructor() {")
		g.incIndent()
		g.emitLinef("%s = %s;", transform.OwnerVariable, ast.CallerIdentity)
		g.decIndent()
		g.emitLine("}")
	}

	if len(c.Functions) > 0 {
		g.section("Functions")
		for _, f := range c.Functions {
			if f == nil {
				continue
			}
			g.generateFunction(f)
		}
	}

	g.decIndent()
	g.emitLine("}")
}

// NeedsConstructor reports whether c gets a synthesized constructor: it
// declares an owner that is either uninitialized or initialized to the
// caller.
func NeedsConstructor(c *ast.Contract) bool {
	v := c.StateVariable(transform.OwnerVariable)
	if v == nil {
		return false
	}
	return v.InitialValue == nil || isCaller(v.InitialValue)
}

func isCaller(e ast.Expression) bool {
	id, ok := e.(*ast.Identifier)
	return ok && id.Name == ast.CallerIdentity
}

// generateStateVariable emits one declaration. The owner initializer is
// dropped when the constructor assigns it.
func (g *generator) generateStateVariable(v *ast.StateVariable, assignedInConstructor bool) {
	decl := Type(v.Type) + " " + v.Name
	if v.InitialValue != nil && !assignedInConstructor {
		decl += " = " + Expression(v.InitialValue)
	}
	g.emitLine(decl + ";")
}

func (g *generator) generateModifier(m *ast.Modifier) {
	g.emitLinef("modifier %s(%s) {", m.Name, params(m.Parameters))
	g.incIndent()
	if len(m.Body) == 0 {
		g.emitLine("_;")
	}
	for _, s := range m.Body {
		g.emitLine(Statement(s))
	}
	g.decIndent()
	g.emitLine("}")
}

// generateFunction emits a public function followed by a blank line
func (g *generator) generateFunction(f *ast.Function) {
	var sig strings.Builder
	sig.WriteString(fmt.Sprintf("function %s(%s) public", f.Name, params(f.Parameters)))
	for _, m := range f.Modifiers {
		sig.WriteString(" " + m)
	}
	if f.ReturnType != nil {
		sig.WriteString(" returns (" + Type(f.ReturnType) + ")")
	}
	sig.WriteString(" {")

	g.emitLine(sig.String())
	g.incIndent()
	for _, s := range f.Body {
		g.emitLine(Statement(s))
	}
	g.decIndent()
	g.emitLine("}")
	g.emitLine("")
}

func params(ps []*ast.Parameter) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		if p == nil {
			continue
		}
		parts = append(parts, Type(p.Type)+" "+p.Name)
	}
	return strings.Join(parts, ", ")
}

// Statement renders one statement on a single line.
func Statement(s ast.Statement) string {
	switch n := s.(type) {
	case *ast.RequireStatement:
		if n.Message != nil {
			return fmt.Sprintf("require(%s, %s);", Expression(n.Condition), Expression(n.Message))
		}
		return fmt.Sprintf("require(%s);", Expression(n.Condition))
	case *ast.AssignmentStatement:
		return fmt.Sprintf("%s %s %s;", Expression(n.Target), n.Operator, Expression(n.Value))
	case *ast.EmitStatement:
		return fmt.Sprintf("emit %s(%s);", n.Event, args(n.Args))
	case *ast.ReturnStatement:
		if n.Value == nil {
			return "return;"
		}
		return fmt.Sprintf("return %s;", Expression(n.Value))
	case *ast.PlaceholderStatement:
		return "_;"
	default:
		return unsupported("statement", s)
	}
}

// Expression renders an expression. A nil expression renders as "".
func Expression(e ast.Expression) string {
	switch n := e.(type) {
	case nil:
		return ""
	case *ast.Identifier:
		return n.Name
	case *ast.Literal:
		return n.Value
	case *ast.LValue:
		var sb strings.Builder
		sb.WriteString(n.Name)
		for _, idx := range n.Indices {
			sb.WriteString("[" + Expression(idx) + "]")
		}
		return sb.String()
	case *ast.BinaryExpression:
		return operand(n.Left, n.Operator, false) + " " + n.Operator + " " + operand(n.Right, n.Operator, true)
	case *ast.UnaryExpression:
		// A unary operand is wrapped too: -(-a) must not read as --a.
		switch n.Operand.(type) {
		case *ast.BinaryExpression, *ast.UnaryExpression:
			return n.Operator + "(" + Expression(n.Operand) + ")"
		}
		return n.Operator + Expression(n.Operand)
	case *ast.FunctionCall:
		return n.Name + "(" + args(n.Args) + ")"
	default:
		return unsupported("expression", e)
	}
}

func args(es []ast.Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = Expression(e)
	}
	return strings.Join(parts, ", ")
}

// Binary operator binding strength, loosest first.
var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, ">": 4, "<=": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "%": 6,
}

// operand renders a binary child, adding parentheses when the child would
// otherwise regroup. Operators are left-associative, so an equal-strength
// child needs them only on the right. Unknown operators always get them.
func operand(e ast.Expression, parentOp string, right bool) string {
	child, ok := e.(*ast.BinaryExpression)
	if !ok {
		return Expression(e)
	}
	pp, pok := precedence[parentOp]
	cp, cok := precedence[child.Operator]
	if !pok || !cok || cp < pp || (right && cp == pp) {
		return "(" + Expression(e) + ")"
	}
	return Expression(e)
}

// Type renders a type reference. A missing type renders as "unknown".
func Type(t *ast.Type) string {
	if t == nil {
		return "unknown"
	}
	switch t.Name {
	case ast.MappingType:
		return fmt.Sprintf("mapping(%s => %s)", Type(t.Key), Type(t.Value))
	case ast.ArrayType:
		return Type(t.Value) + "[]"
	default:
		return t.Name
	}
}

func unsupported(family string, node interface{}) string {
	return fmt.Sprintf("/* Unsupported %s type: %s */", family, ast.KindName(node))
}
