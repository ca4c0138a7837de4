package ast

// Clone returns a deep copy of prog. Mutating the copy never affects the
// original, which lets a caller keep the pre-transformation tree around.
// Statement or expression values outside the closed node family are
// shared, not copied.
func Clone(prog *Program) *Program {
	if prog == nil {
		return nil
	}
	out := &Program{}
	if prog.Contracts != nil {
		out.Contracts = make([]*Contract, len(prog.Contracts))
		for i, c := range prog.Contracts {
			out.Contracts[i] = CloneContract(c)
		}
	}
	if prog.Metadata != nil {
		out.Metadata = make(Metadata, len(prog.Metadata))
		for k, v := range prog.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// CloneContract returns a deep copy of c.
func CloneContract(c *Contract) *Contract {
	if c == nil {
		return nil
	}
	out := *c
	out.Decorators = cloneDecorators(c.Decorators)
	if c.State != nil {
		state := *c.State
		if c.State.Variables != nil {
			state.Variables = make([]*StateVariable, len(c.State.Variables))
			for i, v := range c.State.Variables {
				state.Variables[i] = cloneStateVariable(v)
			}
		}
		out.State = &state
	}
	if c.Modifiers != nil {
		out.Modifiers = make([]*Modifier, len(c.Modifiers))
		for i, m := range c.Modifiers {
			out.Modifiers[i] = cloneModifier(m)
		}
	}
	if c.Functions != nil {
		out.Functions = make([]*Function, len(c.Functions))
		for i, f := range c.Functions {
			out.Functions[i] = cloneFunction(f)
		}
	}
	if c.Events != nil {
		out.Events = make([]*Event, len(c.Events))
		for i, e := range c.Events {
			if e == nil {
				continue
			}
			ev := *e
			ev.Parameters = cloneParameters(e.Parameters)
			out.Events[i] = &ev
		}
	}
	return &out
}

func cloneDecorators(ds []*Decorator) []*Decorator {
	if ds == nil {
		return nil
	}
	out := make([]*Decorator, len(ds))
	for i, d := range ds {
		if d != nil {
			dc := *d
			out[i] = &dc
		}
	}
	return out
}

func cloneStateVariable(v *StateVariable) *StateVariable {
	if v == nil {
		return nil
	}
	out := *v
	out.Type = CloneType(v.Type)
	out.InitialValue = CloneExpression(v.InitialValue)
	return &out
}

func cloneFunction(f *Function) *Function {
	if f == nil {
		return nil
	}
	out := *f
	out.Parameters = cloneParameters(f.Parameters)
	out.ReturnType = CloneType(f.ReturnType)
	out.Decorators = cloneDecorators(f.Decorators)
	if f.Modifiers != nil {
		out.Modifiers = append([]string(nil), f.Modifiers...)
	}
	out.Body = CloneStatements(f.Body)
	return &out
}

func cloneModifier(m *Modifier) *Modifier {
	if m == nil {
		return nil
	}
	out := *m
	out.Parameters = cloneParameters(m.Parameters)
	out.Body = CloneStatements(m.Body)
	return &out
}

func cloneParameters(ps []*Parameter) []*Parameter {
	if ps == nil {
		return nil
	}
	out := make([]*Parameter, len(ps))
	for i, p := range ps {
		if p != nil {
			pc := *p
			pc.Type = CloneType(p.Type)
			out[i] = &pc
		}
	}
	return out
}

// CloneType returns a deep copy of t.
func CloneType(t *Type) *Type {
	if t == nil {
		return nil
	}
	out := *t
	out.Key = CloneType(t.Key)
	out.Value = CloneType(t.Value)
	return &out
}

// CloneStatements returns a deep copy of a statement list.
func CloneStatements(stmts []Statement) []Statement {
	if stmts == nil {
		return nil
	}
	out := make([]Statement, len(stmts))
	for i, s := range stmts {
		out[i] = CloneStatement(s)
	}
	return out
}

// CloneStatement returns a deep copy of s.
func CloneStatement(s Statement) Statement {
	switch n := s.(type) {
	case *RequireStatement:
		out := *n
		out.Condition = CloneExpression(n.Condition)
		out.Message = CloneExpression(n.Message)
		return &out
	case *AssignmentStatement:
		out := *n
		out.Target = CloneExpression(n.Target)
		out.Value = CloneExpression(n.Value)
		return &out
	case *EmitStatement:
		out := *n
		out.Args = cloneExpressions(n.Args)
		return &out
	case *ReturnStatement:
		out := *n
		out.Value = CloneExpression(n.Value)
		return &out
	case *PlaceholderStatement:
		out := *n
		return &out
	default:
		return s
	}
}

// CloneExpression returns a deep copy of e.
func CloneExpression(e Expression) Expression {
	switch n := e.(type) {
	case *Identifier:
		out := *n
		return &out
	case *LValue:
		out := *n
		out.Indices = cloneExpressions(n.Indices)
		return &out
	case *BinaryExpression:
		out := *n
		out.Left = CloneExpression(n.Left)
		out.Right = CloneExpression(n.Right)
		return &out
	case *UnaryExpression:
		out := *n
		out.Operand = CloneExpression(n.Operand)
		return &out
	case *FunctionCall:
		out := *n
		out.Args = cloneExpressions(n.Args)
		return &out
	case *Literal:
		out := *n
		return &out
	default:
		return e
	}
}

func cloneExpressions(es []Expression) []Expression {
	if es == nil {
		return nil
	}
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = CloneExpression(e)
	}
	return out
}
