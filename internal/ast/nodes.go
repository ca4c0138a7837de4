package ast

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Statement nodes
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes
type Expression interface {
	Node
	exprNode()
}

// Well-known metadata keys set by transformers and read by the generator.
const (
	MetaUsesSafeMath            = "usesSafeMath"
	MetaTargetVersion           = "targetVersion"
	MetaSafeMathLibraryRequired = "safeMathLibraryRequired"
)

// CallerIdentity is the target runtime's name for the invoking account.
const CallerIdentity = "msg.sender"

// Metadata carries hints attached to a program during transformation.
type Metadata map[string]string

// Program represents an entire Smartra compilation unit
type Program struct {
	Contracts []*Contract
	Metadata  Metadata
}

func (p *Program) Pos() (int, int) {
	if len(p.Contracts) > 0 {
		return p.Contracts[0].Pos()
	}
	return 0, 0
}

// Meta returns the metadata value for key, or "" when unset.
func (p *Program) Meta(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}

// SetMeta records a metadata value, allocating the map on first use.
func (p *Program) SetMeta(key, value string) {
	if p.Metadata == nil {
		p.Metadata = make(Metadata)
	}
	p.Metadata[key] = value
}

// Contract returns the contract with the given name, or nil.
func (p *Program) Contract(name string) *Contract {
	for _, c := range p.Contracts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Decorator represents a @name annotation on a contract or function
type Decorator struct {
	Name   string
	Line   int
	Column int
}

func (d *Decorator) Pos() (int, int) { return d.Line, d.Column }

// Contract represents a contract declaration
type Contract struct {
	Name       string
	Decorators []*Decorator
	State      *StateDeclaration
	Modifiers  []*Modifier // populated by transformers
	Functions  []*Function
	Events     []*Event
	Line       int
	Column     int
}

func (c *Contract) Pos() (int, int) { return c.Line, c.Column }

// HasDecorator reports whether the contract carries the named decorator.
func (c *Contract) HasDecorator(name string) bool {
	return hasDecorator(c.Decorators, name)
}

// StateVariables returns the declared state variables, or nil when the
// contract has no state block.
func (c *Contract) StateVariables() []*StateVariable {
	if c.State == nil {
		return nil
	}
	return c.State.Variables
}

// StateVariable looks up a state variable by name.
func (c *Contract) StateVariable(name string) *StateVariable {
	for _, v := range c.StateVariables() {
		if v.Name == name {
			return v
		}
	}
	return nil
}

// Modifier looks up a modifier by name.
func (c *Contract) Modifier(name string) *Modifier {
	for _, m := range c.Modifiers {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Function looks up a function by name.
func (c *Contract) Function(name string) *Function {
	for _, f := range c.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Event looks up an event by name.
func (c *Contract) Event(name string) *Event {
	for _, e := range c.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// StateDeclaration represents the state: block of a contract
type StateDeclaration struct {
	Variables []*StateVariable
	Line      int
	Column    int
}

func (s *StateDeclaration) Pos() (int, int) { return s.Line, s.Column }

// StateVariable represents one contract storage variable
type StateVariable struct {
	Name         string
	Type         *Type
	InitialValue Expression // nil when absent
	Line         int
	Column       int
}

func (v *StateVariable) Pos() (int, int) { return v.Line, v.Column }

// Function represents a contract function
type Function struct {
	Name       string
	Parameters []*Parameter
	ReturnType *Type // nil when the function returns nothing
	Decorators []*Decorator
	Modifiers  []string // names of contract modifiers, in application order
	Body       []Statement
	Line       int
	Column     int
}

func (f *Function) Pos() (int, int) { return f.Line, f.Column }

// HasDecorator reports whether the function carries the named decorator.
func (f *Function) HasDecorator(name string) bool {
	return hasDecorator(f.Decorators, name)
}

// HasModifier reports whether the modifier name is already attached.
func (f *Function) HasModifier(name string) bool {
	for _, m := range f.Modifiers {
		if m == name {
			return true
		}
	}
	return false
}

// Modifier represents a reusable guard wrapped around function bodies.
// Its body holds exactly one PlaceholderStatement.
type Modifier struct {
	Name       string
	Parameters []*Parameter
	Body       []Statement
	Line       int
	Column     int
}

func (m *Modifier) Pos() (int, int) { return m.Line, m.Column }

// Parameter represents a typed name in a function, event or modifier signature
type Parameter struct {
	Name   string
	Type   *Type
	Line   int
	Column int
}

func (p *Parameter) Pos() (int, int) { return p.Line, p.Column }

// Event represents an event declaration
type Event struct {
	Name       string
	Parameters []*Parameter
	Line       int
	Column     int
}

func (e *Event) Pos() (int, int) { return e.Line, e.Column }

// RequireStatement represents require(condition[, message])
type RequireStatement struct {
	Condition Expression
	Message   Expression // nil when absent
	Line      int
	Column    int
}

func (r *RequireStatement) Pos() (int, int) { return r.Line, r.Column }
func (r *RequireStatement) stmtNode()       {}

// AssignmentStatement represents target <op> value, op being = += -= *= /=
type AssignmentStatement struct {
	Target   Expression // *Identifier or *LValue
	Operator string
	Value    Expression
	Line     int
	Column   int
}

func (a *AssignmentStatement) Pos() (int, int) { return a.Line, a.Column }
func (a *AssignmentStatement) stmtNode()       {}

// EmitStatement represents emit Event(args...)
type EmitStatement struct {
	Event  string
	Args   []Expression
	Line   int
	Column int
}

func (e *EmitStatement) Pos() (int, int) { return e.Line, e.Column }
func (e *EmitStatement) stmtNode()       {}

// ReturnStatement represents return [value]
type ReturnStatement struct {
	Value  Expression // nil for a bare return
	Line   int
	Column int
}

func (r *ReturnStatement) Pos() (int, int) { return r.Line, r.Column }
func (r *ReturnStatement) stmtNode()       {}

// PlaceholderStatement marks where a modifier splices the guarded body
type PlaceholderStatement struct {
	Line   int
	Column int
}

func (p *PlaceholderStatement) Pos() (int, int) { return p.Line, p.Column }
func (p *PlaceholderStatement) stmtNode()       {}

// Identifier represents a (possibly dotted) name such as msg.sender
type Identifier struct {
	Name   string
	Line   int
	Column int
}

func (i *Identifier) Pos() (int, int) { return i.Line, i.Column }
func (i *Identifier) exprNode()       {}

// LValue represents an assignable name with zero or more index expressions
type LValue struct {
	Name    string
	Indices []Expression
	Line    int
	Column  int
}

func (l *LValue) Pos() (int, int) { return l.Line, l.Column }
func (l *LValue) exprNode()       {}

// BinaryExpression represents left <op> right
type BinaryExpression struct {
	Left     Expression
	Operator string
	Right    Expression
	Line     int
	Column   int
}

func (b *BinaryExpression) Pos() (int, int) { return b.Line, b.Column }
func (b *BinaryExpression) exprNode()       {}

// UnaryExpression represents <op>operand
type UnaryExpression struct {
	Operator string
	Operand  Expression
	Line     int
	Column   int
}

func (u *UnaryExpression) Pos() (int, int) { return u.Line, u.Column }
func (u *UnaryExpression) exprNode()       {}

// FunctionCall represents name(args...)
type FunctionCall struct {
	Name   string
	Args   []Expression
	Line   int
	Column int
}

func (f *FunctionCall) Pos() (int, int) { return f.Line, f.Column }
func (f *FunctionCall) exprNode()       {}

// LiteralKind tags the value class of a Literal
type LiteralKind int

const (
	NumberLit LiteralKind = iota
	StringLit
	BoolLit
	AddressLit
)

func (k LiteralKind) String() string {
	switch k {
	case NumberLit:
		return "number"
	case StringLit:
		return "string"
	case BoolLit:
		return "boolean"
	case AddressLit:
		return "address"
	default:
		return "unknown"
	}
}

// Literal represents a constant. Value is the source text, so string
// literals keep their quotes.
type Literal struct {
	Value  string
	Kind   LiteralKind
	Line   int
	Column int
}

func (l *Literal) Pos() (int, int) { return l.Line, l.Column }
func (l *Literal) exprNode()       {}

func hasDecorator(decorators []*Decorator, name string) bool {
	for _, d := range decorators {
		if d.Name == name {
			return true
		}
	}
	return false
}
