// Package formatter prints a Smartra program back as canonical source.
//
// Format works on programs as written. Modifiers, modifier attachments and
// placeholders only exist after transformation and have no source syntax,
// so they are left out. Comments are not preserved.
package formatter

import (
	"fmt"
	"strings"

	"github.com/lhaig/smartra/internal/ast"
)

// Format takes an AST Program and returns canonical Smartra source code.
func Format(prog *ast.Program) string {
	f := &formatter{}
	if prog != nil {
		f.formatProgram(prog)
	}
	return f.sb.String()
}

type formatter struct {
	sb     strings.Builder
	indent int
}

// --- helpers (same pattern as codegen.go) ---

func (f *formatter) emitLine(s string) {
	if s == "" {
		f.sb.WriteString("\n")
	} else {
		f.sb.WriteString(f.indentStr())
		f.sb.WriteString(s)
		f.sb.WriteString("\n")
	}
}

func (f *formatter) emitLinef(format string, args ...any) {
	f.sb.WriteString(f.indentStr())
	f.sb.WriteString(fmt.Sprintf(format, args...))
	f.sb.WriteString("\n")
}

func (f *formatter) incIndent() { f.indent++ }
func (f *formatter) decIndent() { f.indent-- }

func (f *formatter) indentStr() string {
	return strings.Repeat("    ", f.indent)
}

func (f *formatter) blankLine() {
	f.sb.WriteString("\n")
}

// --- program-level ---

func (f *formatter) formatProgram(prog *ast.Program) {
	first := true
	for _, c := range prog.Contracts {
		if c == nil {
			continue
		}
		if !first {
			f.blankLine()
		}
		first = false
		f.formatContract(c)
	}
}

// formatContract prints contract decorators first, then the state block,
// events and functions, each group separated by a blank line.
func (f *formatter) formatContract(c *ast.Contract) {
	f.formatDecorators(c.Decorators)
	f.emitLinef("contract %s:", c.Name)
	f.incIndent()
	defer f.decIndent()

	needGap := false
	gap := func() {
		if needGap {
			f.blankLine()
		}
		needGap = true
	}

	if vars := c.StateVariables(); len(vars) > 0 {
		gap()
		f.emitLine("state:")
		f.incIndent()
		for _, v := range vars {
			if v.InitialValue != nil {
				f.emitLinef("%s: %s = %s", v.Name, formatType(v.Type), formatExpr(v.InitialValue))
			} else {
				f.emitLinef("%s: %s", v.Name, formatType(v.Type))
			}
		}
		f.decIndent()
	}

	if len(c.Events) > 0 {
		gap()
		for _, e := range c.Events {
			f.emitLinef("event %s(%s)", e.Name, formatParams(e.Parameters))
		}
	}

	for _, fn := range c.Functions {
		gap()
		f.formatFunction(fn)
	}
}

func (f *formatter) formatDecorators(ds []*ast.Decorator) {
	for _, d := range ds {
		f.emitLinef("@%s", d.Name)
	}
}

func (f *formatter) formatFunction(fn *ast.Function) {
	f.formatDecorators(fn.Decorators)
	if fn.ReturnType != nil {
		f.emitLinef("function %s(%s) -> %s:", fn.Name, formatParams(fn.Parameters), formatType(fn.ReturnType))
	} else {
		f.emitLinef("function %s(%s):", fn.Name, formatParams(fn.Parameters))
	}
	f.incIndent()
	for _, s := range fn.Body {
		f.formatStmt(s)
	}
	f.decIndent()
}

// --- statements ---

func (f *formatter) formatStmt(s ast.Statement) {
	switch stmt := s.(type) {
	case *ast.RequireStatement:
		if stmt.Message != nil {
			f.emitLinef("require(%s, %s)", formatExpr(stmt.Condition), formatExpr(stmt.Message))
		} else {
			f.emitLinef("require(%s)", formatExpr(stmt.Condition))
		}
	case *ast.AssignmentStatement:
		f.emitLinef("%s %s %s", formatExpr(stmt.Target), stmt.Operator, formatExpr(stmt.Value))
	case *ast.EmitStatement:
		f.emitLinef("emit %s(%s)", stmt.Event, formatArgs(stmt.Args))
	case *ast.ReturnStatement:
		if stmt.Value != nil {
			f.emitLinef("return %s", formatExpr(stmt.Value))
		} else {
			f.emitLine("return")
		}
	}
}

// --- expressions ---

func formatExpr(e ast.Expression) string {
	return formatExprPrec(e, 0)
}

// formatExprPrec formats an expression, wrapping in parens if needed based on parent precedence.
func formatExprPrec(e ast.Expression, parentPrec int) string {
	switch expr := e.(type) {
	case *ast.BinaryExpression:
		prec := precedence(expr.Operator)
		left := formatExprPrec(expr.Left, prec)
		right := formatExprPrec(expr.Right, prec+1) // +1 for left-associativity
		result := fmt.Sprintf("%s %s %s", left, expr.Operator, right)
		if prec < parentPrec {
			return "(" + result + ")"
		}
		return result

	case *ast.UnaryExpression:
		if _, ok := expr.Operand.(*ast.UnaryExpression); ok {
			// -(-a) must not print as --a
			return expr.Operator + "(" + formatExpr(expr.Operand) + ")"
		}
		return expr.Operator + formatExprPrec(expr.Operand, unaryPrec)

	case *ast.FunctionCall:
		return fmt.Sprintf("%s(%s)", expr.Name, formatArgs(expr.Args))

	case *ast.LValue:
		var sb strings.Builder
		sb.WriteString(expr.Name)
		for _, idx := range expr.Indices {
			sb.WriteString("[" + formatExpr(idx) + "]")
		}
		return sb.String()

	case *ast.Identifier:
		return expr.Name

	case *ast.Literal:
		return expr.Value

	default:
		return ""
	}
}

func formatArgs(args []ast.Expression) string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = formatExpr(a)
	}
	return strings.Join(out, ", ")
}

func formatParams(params []*ast.Parameter) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.Name + ": " + formatType(p.Type)
	}
	return strings.Join(out, ", ")
}

// formatType prints a type in source syntax. Smartra and ast share the
// same spelling, including mapping(K => V) and T[].
func formatType(t *ast.Type) string {
	return t.String()
}

// --- operator precedence ---

// Precedence levels (higher binds tighter):
//
//	1: ||
//	2: &&
//	3: == !=
//	4: < > <= >=
//	5: + -
//	6: * / %
func precedence(op string) int {
	switch op {
	case "||":
		return 1
	case "&&":
		return 2
	case "==", "!=":
		return 3
	case "<", ">", "<=", ">=":
		return 4
	case "+", "-":
		return 5
	case "*", "/", "%":
		return 6
	default:
		// unknown operators bind loosest so they are wrapped when nested
		return 0
	}
}

const unaryPrec = 9
