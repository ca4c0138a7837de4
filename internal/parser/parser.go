package parser

import (
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/lhaig/smartra/internal/ast"
	"github.com/lhaig/smartra/internal/diagnostic"
	"github.com/lhaig/smartra/internal/lexer"
)

// New creates a new parser
func New(source string) *Parser {
	l := lexer.New(source)
	tokens := l.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		diags:  diagnostic.New(),
		source: source,
	}
}

// ParseSource parses a complete Smartra source text. On failure it returns
// the first problem as an *Error.
func ParseSource(source string) (*ast.Program, error) {
	p := New(source)
	prog := p.Parse()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a Program AST. Decorators that appear
// before a contract header belong to that contract.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	var pending []*ast.Decorator

	for !p.check(lexer.EOF) {
		switch p.current().Type {
		case lexer.NEWLINE:
			p.advance()
		case lexer.AT:
			pending = append(pending, p.parseDecoratorRun()...)
		case lexer.CONTRACT:
			c, next := p.parseContract(pending)
			prog.Contracts = append(prog.Contracts, c)
			pending = next
		default:
			if len(pending) > 0 {
				p.danglingDecorator(pending[0])
				pending = nil
			}
			p.errorf(p.current(), "unexpected %s at top level", describe(p.current()))
			startPos := p.pos
			p.synchronize()
			if p.pos == startPos {
				p.advance() // ensure forward progress to avoid infinite loop
			}
		}
	}
	if len(pending) > 0 {
		p.danglingDecorator(pending[0])
	}
	return prog
}

func (p *Parser) danglingDecorator(d *ast.Decorator) {
	p.diags.Add(diagnostic.Diagnostic{
		Severity: diagnostic.Error,
		Message:  "decorator @" + d.Name + " is not followed by a contract or function",
		Line:     d.Line,
		Column:   d.Column,
		Fragment: strings.TrimSpace(diagnostic.SourceLine(p.source, d.Line)),
	})
}

// parseDecoratorRun parses consecutive @name lines
func (p *Parser) parseDecoratorRun() []*ast.Decorator {
	var out []*ast.Decorator
	for p.check(lexer.AT) {
		at := p.advance()
		name, ok := p.expect(lexer.IDENT)
		if !ok {
			p.synchronize()
			continue
		}
		out = append(out, &ast.Decorator{Name: name.Literal, Line: at.Line, Column: at.Column})
		p.endLine("decorator")
		for p.match(lexer.NEWLINE) {
		}
	}
	return out
}

// appendDecorators adds ds to list, dropping names already present
func (p *Parser) appendDecorators(list []*ast.Decorator, ds []*ast.Decorator, owner string) []*ast.Decorator {
	for _, d := range ds {
		dup := false
		for _, have := range list {
			if have.Name == d.Name {
				dup = true
				break
			}
		}
		if dup {
			p.diags.Warningf(d.Line, d.Column, "duplicate decorator @%s on %s ignored", d.Name, owner)
			log.Debug("Dropping duplicate decorator", "decorator", d.Name, "on", owner)
			continue
		}
		list = append(list, d)
	}
	return list
}

// parseContract parses: contract <Name>: followed by its members. It returns
// decorators that were found at the end of the body and belong to the next
// contract.
func (p *Parser) parseContract(decorators []*ast.Decorator) (*ast.Contract, []*ast.Decorator) {
	tok := p.advance() // contract
	c := &ast.Contract{Line: tok.Line, Column: tok.Column}
	if name, ok := p.expect(lexer.IDENT); ok {
		c.Name = name.Literal
	}
	p.match(lexer.COLON)
	if !p.endLine("contract header") {
		p.synchronize()
	}
	c.Decorators = p.appendDecorators(nil, decorators, "contract "+c.Name)

	for !p.check(lexer.EOF) && !p.check(lexer.CONTRACT) {
		switch p.current().Type {
		case lexer.NEWLINE:
			p.advance()
		case lexer.AT:
			run := p.parseDecoratorRun()
			switch p.current().Type {
			case lexer.FUNCTION:
				fn := p.parseFunction()
				fn.Decorators = p.appendDecorators(nil, run, "function "+fn.Name)
				c.Functions = append(c.Functions, fn)
			case lexer.CONTRACT:
				return c, run
			default:
				c.Decorators = p.appendDecorators(c.Decorators, run, "contract "+c.Name)
			}
		case lexer.STATE:
			p.parseState(c)
		case lexer.EVENT:
			if ev := p.parseEvent(); ev != nil {
				c.Events = append(c.Events, ev)
			}
		case lexer.FUNCTION:
			c.Functions = append(c.Functions, p.parseFunction())
		default:
			p.errorf(p.current(), "unexpected %s in contract %s", describe(p.current()), c.Name)
			startPos := p.pos
			p.synchronize()
			if p.pos == startPos {
				p.advance()
			}
		}
	}
	return c, nil
}

// parseState parses a state: block of name: type [= expr] lines
func (p *Parser) parseState(c *ast.Contract) {
	tok := p.advance() // state
	if _, ok := p.expect(lexer.COLON); !ok {
		p.synchronize()
		return
	}
	if !p.endLine("state:") {
		p.synchronize()
	}
	if c.State == nil {
		c.State = &ast.StateDeclaration{Line: tok.Line, Column: tok.Column}
	}

	for p.check(lexer.IDENT) && p.peek().Type == lexer.COLON {
		name := p.advance()
		p.advance() // :
		v := &ast.StateVariable{Name: name.Literal, Line: name.Line, Column: name.Column}
		v.Type = p.parseType()
		if v.Type == nil {
			p.synchronize()
			continue
		}
		if p.match(lexer.ASSIGN) {
			v.InitialValue = p.parseExpression()
		}
		if !p.endLine("state variable") {
			p.synchronize()
		}
		c.State.Variables = append(c.State.Variables, v)
	}
}

// parseEvent parses: event <Name>(<params>)
func (p *Parser) parseEvent() *ast.Event {
	tok := p.advance() // event
	name, ok := p.expect(lexer.IDENT)
	if !ok {
		p.synchronize()
		return nil
	}
	ev := &ast.Event{Name: name.Literal, Line: tok.Line, Column: tok.Column}
	ev.Parameters = p.parseParamList()
	if !p.endLine("event declaration") {
		p.synchronize()
	}
	return ev
}

// parseFunction parses: function <name>(<params>) [-> <type>]: followed by
// one statement per line
func (p *Parser) parseFunction() *ast.Function {
	tok := p.advance() // function
	fn := &ast.Function{Line: tok.Line, Column: tok.Column}
	name, ok := p.expect(lexer.IDENT)
	if !ok {
		p.synchronize()
		return fn
	}
	fn.Name = name.Literal
	fn.Parameters = p.parseParamList()
	if p.match(lexer.ARROW) {
		fn.ReturnType = p.parseType()
	}
	if _, ok := p.expect(lexer.COLON); ok {
		if !p.endLine("function header") {
			p.synchronize()
		}
	} else {
		p.synchronize()
	}

	for !syncTokens[p.current().Type] {
		if p.match(lexer.NEWLINE) {
			continue
		}
		if stmt := p.parseStatement(); stmt != nil {
			fn.Body = append(fn.Body, stmt)
		}
	}
	return fn
}

// parseParamList parses (name: type, ...)
func (p *Parser) parseParamList() []*ast.Parameter {
	if _, ok := p.expect(lexer.LPAREN); !ok {
		return nil
	}
	var params []*ast.Parameter
	for !p.check(lexer.RPAREN) && !p.check(lexer.EOF) {
		name, ok := p.expect(lexer.IDENT)
		if !ok {
			break
		}
		if _, ok := p.expect(lexer.COLON); !ok {
			break
		}
		typ := p.parseType()
		if typ == nil {
			break
		}
		params = append(params, &ast.Parameter{Name: name.Literal, Type: typ, Line: name.Line, Column: name.Column})
		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

// parseType parses a scalar name, mapping(K => V) or T[]
func (p *Parser) parseType() *ast.Type {
	tok := p.current()
	var typ *ast.Type

	switch tok.Type {
	case lexer.MAPPING:
		p.advance()
		if _, ok := p.expect(lexer.LPAREN); !ok {
			return nil
		}
		key := p.parseType()
		if key == nil {
			return nil
		}
		if _, ok := p.expect(lexer.FAT_ARROW); !ok {
			return nil
		}
		value := p.parseType()
		if value == nil {
			return nil
		}
		if _, ok := p.expect(lexer.RPAREN); !ok {
			return nil
		}
		m, err := ast.MappingOf(key, value)
		if err != nil {
			p.errorf(tok, "%v", err)
			return nil
		}
		typ = m
	case lexer.IDENT:
		p.advance()
		typ = ast.Scalar(tok.Literal)
	default:
		p.errorf(tok, "expected type, got %s", describe(tok))
		return nil
	}
	typ.Line, typ.Column = tok.Line, tok.Column

	for p.check(lexer.LBRACKET) && p.peek().Type == lexer.RBRACKET {
		p.advance()
		p.advance()
		arr, err := ast.ArrayOf(typ)
		if err != nil {
			p.errorf(tok, "%v", err)
			return nil
		}
		arr.Line, arr.Column = tok.Line, tok.Column
		typ = arr
	}
	return typ
}

// parseStatement parses one line of a function body
func (p *Parser) parseStatement() ast.Statement {
	var stmt ast.Statement
	switch p.current().Type {
	case lexer.REQUIRE:
		stmt = p.parseRequire()
	case lexer.EMIT:
		stmt = p.parseEmit()
	case lexer.RETURN:
		stmt = p.parseReturn()
	case lexer.IDENT:
		stmt = p.parseAssignment()
	default:
		p.errorf(p.current(), "unexpected %s in function body", describe(p.current()))
	}
	if stmt == nil || !p.endLine("statement") {
		startPos := p.pos
		p.synchronize()
		if p.pos == startPos && !syncTokens[p.current().Type] {
			p.advance()
		}
	}
	return stmt
}

// parseRequire parses: require(<cond>[, <message>])
func (p *Parser) parseRequire() ast.Statement {
	tok := p.advance()
	if _, ok := p.expect(lexer.LPAREN); !ok {
		return nil
	}
	stmt := &ast.RequireStatement{Line: tok.Line, Column: tok.Column}
	stmt.Condition = p.parseExpression()
	if p.match(lexer.COMMA) {
		stmt.Message = p.parseExpression()
	}
	if _, ok := p.expect(lexer.RPAREN); !ok {
		return nil
	}
	return stmt
}

// parseEmit parses: emit <Event>(<args>)
func (p *Parser) parseEmit() ast.Statement {
	tok := p.advance()
	name, ok := p.expect(lexer.IDENT)
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.LPAREN); !ok {
		return nil
	}
	args, ok := p.parseArgList()
	if !ok {
		return nil
	}
	return &ast.EmitStatement{Event: name.Literal, Args: args, Line: tok.Line, Column: tok.Column}
}

// parseReturn parses: return [<expr>]
func (p *Parser) parseReturn() ast.Statement {
	tok := p.advance()
	stmt := &ast.ReturnStatement{Line: tok.Line, Column: tok.Column}
	if !p.atLineEnd() {
		stmt.Value = p.parseExpression()
	}
	return stmt
}

// parseAssignment parses: <target> <op> <expr>
func (p *Parser) parseAssignment() ast.Statement {
	tok := p.current()
	target := p.parsePostfix()
	switch target.(type) {
	case *ast.Identifier, *ast.LValue:
	default:
		p.errorf(tok, "invalid assignment target")
		return nil
	}
	op := p.current()
	if !op.Type.IsAssignment() {
		p.errorf(op, "expected assignment operator, got %s", describe(op))
		return nil
	}
	p.advance()
	return &ast.AssignmentStatement{
		Target:   target,
		Operator: op.Literal,
		Value:    p.parseExpression(),
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// Expression parsing - precedence climbing

// Precedence levels (lowest to highest):
// 1. ||           (left-associative)
// 2. &&           (left-associative)
// 3. == !=        (left-associative)
// 4. < > <= >=    (left-associative)
// 5. + -          (left-associative)
// 6. * / %        (left-associative)
// 7. unary (- !)

const (
	precNone       = 0
	precOr         = 1
	precAnd        = 2
	precEquality   = 3
	precComparison = 4
	precAdditive   = 5
	precMulti      = 6
)

func tokenPrecedence(tt lexer.TokenType) int {
	switch tt {
	case lexer.OR:
		return precOr
	case lexer.AND:
		return precAnd
	case lexer.EQ, lexer.NEQ:
		return precEquality
	case lexer.LT, lexer.GT, lexer.LEQ, lexer.GEQ:
		return precComparison
	case lexer.PLUS, lexer.MINUS:
		return precAdditive
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return precMulti
	default:
		return precNone
	}
}

func (p *Parser) parseExpression() ast.Expression {
	return p.parsePrecedence(precOr)
}

func (p *Parser) parsePrecedence(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		prec := tokenPrecedence(p.current().Type)
		if prec == precNone || prec < minPrec {
			break
		}
		op := p.advance()
		right := p.parsePrecedence(prec + 1)
		left = &ast.BinaryExpression{
			Left:     left,
			Operator: op.Literal,
			Right:    right,
			Line:     op.Line,
			Column:   op.Column,
		}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.check(lexer.MINUS) || p.check(lexer.NOT) {
		op := p.advance()
		return &ast.UnaryExpression{
			Operator: op.Literal,
			Operand:  p.parseUnary(),
			Line:     op.Line,
			Column:   op.Column,
		}
	}
	return p.parsePostfix()
}

// parsePostfix parses names with their call or index suffixes. Dotted
// names such as msg.sender form a single identifier.
func (p *Parser) parsePostfix() ast.Expression {
	if !p.check(lexer.IDENT) {
		return p.parsePrimary()
	}
	tok := p.advance()
	name := tok.Literal
	for p.check(lexer.DOT) && p.peek().Type == lexer.IDENT {
		p.advance()
		name += "." + p.advance().Literal
	}

	switch p.current().Type {
	case lexer.LPAREN:
		if name == "address" && p.peek().Type == lexer.INT_LIT {
			return p.parseAddressLiteral(tok)
		}
		p.advance()
		args, _ := p.parseArgList()
		return &ast.FunctionCall{Name: name, Args: args, Line: tok.Line, Column: tok.Column}
	case lexer.LBRACKET:
		lv := &ast.LValue{Name: name, Line: tok.Line, Column: tok.Column}
		for p.match(lexer.LBRACKET) {
			lv.Indices = append(lv.Indices, p.parseExpression())
			if _, ok := p.expect(lexer.RBRACKET); !ok {
				break
			}
		}
		return lv
	default:
		return &ast.Identifier{Name: name, Line: tok.Line, Column: tok.Column}
	}
}

// parseAddressLiteral parses address(<int>) as an address literal
func (p *Parser) parseAddressLiteral(tok lexer.Token) ast.Expression {
	p.advance() // (
	num := p.advance()
	p.expect(lexer.RPAREN)
	return &ast.Literal{
		Value:  "address(" + num.Literal + ")",
		Kind:   ast.AddressLit,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()
	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		return &ast.Literal{Value: tok.Literal, Kind: ast.NumberLit, Line: tok.Line, Column: tok.Column}
	case lexer.STRING_LIT:
		p.advance()
		return &ast.Literal{Value: tok.Literal, Kind: ast.StringLit, Line: tok.Line, Column: tok.Column}
	case lexer.TRUE, lexer.FALSE:
		p.advance()
		return &ast.Literal{Value: tok.Literal, Kind: ast.BoolLit, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr
	default:
		p.errorf(tok, "expected expression, got %s", describe(tok))
		return &ast.Identifier{Name: "", Line: tok.Line, Column: tok.Column}
	}
}

// parseArgList parses comma-separated arguments up to and including ')'
func (p *Parser) parseArgList() ([]ast.Expression, bool) {
	var args []ast.Expression
	if p.match(lexer.RPAREN) {
		return args, true
	}
	for {
		args = append(args, p.parseExpression())
		if !p.match(lexer.COMMA) {
			break
		}
	}
	_, ok := p.expect(lexer.RPAREN)
	return args, ok
}
