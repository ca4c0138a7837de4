package ast

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

// dumpConfig keeps dumps stable across runs so they can be diffed.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump returns a field-by-field dump of node, including positions.
func Dump(node Node) string {
	return dumpConfig.Sdump(node)
}

// KindName returns the bare Go type name of a node, e.g. "EmitStatement".
func KindName(v interface{}) string {
	if v == nil {
		return "<nil>"
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *Program:
		sb.WriteString(prefix + "Program\n")
		if len(n.Metadata) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Metadata:\n", prefix))
			for _, k := range sortedKeys(n.Metadata) {
				sb.WriteString(fmt.Sprintf("%s    %s = %s\n", prefix, k, n.Metadata[k]))
			}
		}
		for _, c := range n.Contracts {
			printNode(sb, c, indent+1)
		}

	case *Contract:
		sb.WriteString(fmt.Sprintf("%sContract: %s%s\n", prefix, n.Name, decoratorSuffix(n.Decorators)))
		if vars := n.StateVariables(); len(vars) > 0 {
			sb.WriteString(fmt.Sprintf("%s  State:\n", prefix))
			for _, v := range vars {
				printNode(sb, v, indent+2)
			}
		}
		if len(n.Events) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Events:\n", prefix))
			for _, e := range n.Events {
				printNode(sb, e, indent+2)
			}
		}
		if len(n.Modifiers) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Modifiers:\n", prefix))
			for _, m := range n.Modifiers {
				printNode(sb, m, indent+2)
			}
		}
		for _, f := range n.Functions {
			printNode(sb, f, indent+1)
		}

	case *StateVariable:
		if n.InitialValue != nil {
			sb.WriteString(fmt.Sprintf("%s%s: %s = %s\n", prefix, n.Name, n.Type, exprText(n.InitialValue)))
		} else {
			sb.WriteString(fmt.Sprintf("%s%s: %s\n", prefix, n.Name, n.Type))
		}

	case *Event:
		sb.WriteString(fmt.Sprintf("%s%s(%s)\n", prefix, n.Name, paramText(n.Parameters)))

	case *Modifier:
		sb.WriteString(fmt.Sprintf("%sModifier: %s(%s)\n", prefix, n.Name, paramText(n.Parameters)))
		for _, s := range n.Body {
			printStmt(sb, s, indent+1)
		}

	case *Function:
		sb.WriteString(fmt.Sprintf("%sFunction: %s%s\n", prefix, n.Name, decoratorSuffix(n.Decorators)))
		if len(n.Parameters) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Params: %s\n", prefix, paramText(n.Parameters)))
		} else {
			sb.WriteString(fmt.Sprintf("%s  Params: none\n", prefix))
		}
		if n.ReturnType != nil {
			sb.WriteString(fmt.Sprintf("%s  Returns: %s\n", prefix, n.ReturnType))
		}
		if len(n.Modifiers) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Modifiers: %s\n", prefix, strings.Join(n.Modifiers, ", ")))
		}
		if len(n.Body) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
			for _, s := range n.Body {
				printStmt(sb, s, indent+2)
			}
		}

	case Statement:
		printStmt(sb, n, indent)

	case Expression:
		sb.WriteString(prefix + exprText(n) + "\n")

	default:
		sb.WriteString(fmt.Sprintf("%s<%s>\n", prefix, KindName(node)))
	}
}

func printStmt(sb *strings.Builder, s Statement, indent int) {
	prefix := strings.Repeat("  ", indent)
	switch n := s.(type) {
	case *RequireStatement:
		if n.Message != nil {
			sb.WriteString(fmt.Sprintf("%sRequire: %s, %s\n", prefix, exprText(n.Condition), exprText(n.Message)))
		} else {
			sb.WriteString(fmt.Sprintf("%sRequire: %s\n", prefix, exprText(n.Condition)))
		}
	case *AssignmentStatement:
		sb.WriteString(fmt.Sprintf("%sAssign: %s %s %s\n", prefix, exprText(n.Target), n.Operator, exprText(n.Value)))
	case *EmitStatement:
		sb.WriteString(fmt.Sprintf("%sEmit: %s(%s)\n", prefix, n.Event, argText(n.Args)))
	case *ReturnStatement:
		if n.Value != nil {
			sb.WriteString(fmt.Sprintf("%sReturn: %s\n", prefix, exprText(n.Value)))
		} else {
			sb.WriteString(prefix + "Return\n")
		}
	case *PlaceholderStatement:
		sb.WriteString(prefix + "Placeholder\n")
	default:
		sb.WriteString(fmt.Sprintf("%s<%s>\n", prefix, KindName(s)))
	}
}

// exprText renders an expression in source form for the tree printer
func exprText(e Expression) string {
	switch n := e.(type) {
	case nil:
		return ""
	case *Identifier:
		return n.Name
	case *Literal:
		return n.Value
	case *LValue:
		var sb strings.Builder
		sb.WriteString(n.Name)
		for _, idx := range n.Indices {
			sb.WriteString("[" + exprText(idx) + "]")
		}
		return sb.String()
	case *BinaryExpression:
		return "(" + exprText(n.Left) + " " + n.Operator + " " + exprText(n.Right) + ")"
	case *UnaryExpression:
		return n.Operator + exprText(n.Operand)
	case *FunctionCall:
		return n.Name + "(" + argText(n.Args) + ")"
	default:
		return "<" + KindName(e) + ">"
	}
}

func argText(args []Expression) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = exprText(a)
	}
	return strings.Join(parts, ", ")
}

func paramText(params []*Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return strings.Join(parts, ", ")
}

func decoratorSuffix(ds []*Decorator) string {
	if len(ds) == 0 {
		return ""
	}
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = "@" + d.Name
	}
	return " (" + strings.Join(names, " ") + ")"
}

func sortedKeys(m Metadata) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// insertion sort, metadata maps hold a handful of keys
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
