package parser

import (
	"fmt"
	"strings"

	"github.com/lhaig/smartra/internal/diagnostic"
	"github.com/lhaig/smartra/internal/lexer"
)

// Error is a front-end failure. Fragment holds the offending source line
// when it can be recovered.
type Error struct {
	Line     int
	Column   int
	Message  string
	Fragment string
}

func (e *Error) Error() string {
	if e.Fragment == "" {
		return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error at %d:%d: %s (near %q)", e.Line, e.Column, e.Message, e.Fragment)
}

// syncTokens are tokens the parser can synchronize to after an error
var syncTokens = map[lexer.TokenType]bool{
	lexer.CONTRACT: true,
	lexer.FUNCTION: true,
	lexer.EVENT:    true,
	lexer.STATE:    true,
	lexer.AT:       true,
	lexer.EOF:      true,
}

// Parser holds the parser state
type Parser struct {
	tokens []lexer.Token
	pos    int
	diags  *diagnostic.Diagnostics
	source string // raw source for error fragments
}

// current returns the current token
func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos]
}

// peek returns the next token without consuming
func (p *Parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return lexer.Token{Type: lexer.EOF}
	}
	return p.tokens[p.pos+1]
}

// advance moves to the next token and returns the consumed token
func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches the expected type,
// otherwise reports an error. The second result is false on mismatch.
func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, bool) {
	tok := p.current()
	if tok.Type != tt {
		p.errorf(tok, "expected %s, got %s", tt, describe(tok))
		return tok, false
	}
	return p.advance(), true
}

// check returns true if the current token is of the given type
func (p *Parser) check(tt lexer.TokenType) bool {
	return p.current().Type == tt
}

// match consumes the current token if it matches, returns true if consumed
func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

// atLineEnd reports whether the current token ends a logical line
func (p *Parser) atLineEnd() bool {
	return p.check(lexer.NEWLINE) || p.check(lexer.EOF)
}

// endLine consumes the NEWLINE that terminates a declaration or statement
func (p *Parser) endLine(what string) bool {
	if p.match(lexer.NEWLINE) || p.check(lexer.EOF) {
		return true
	}
	p.errorf(p.current(), "unexpected %s after %s", describe(p.current()), what)
	return false
}

// synchronize skips the rest of the current line, stopping early at a
// declaration keyword.
func (p *Parser) synchronize() {
	for !p.check(lexer.EOF) {
		if p.match(lexer.NEWLINE) {
			return
		}
		if syncTokens[p.current().Type] {
			return
		}
		p.advance()
	}
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...interface{}) {
	p.diags.Add(diagnostic.Diagnostic{
		Severity: diagnostic.Error,
		Message:  fmt.Sprintf(format, args...),
		Line:     tok.Line,
		Column:   tok.Column,
		Fragment: strings.TrimSpace(diagnostic.SourceLine(p.source, tok.Line)),
	})
}

// Err returns the first error-level diagnostic as an *Error, or nil.
func (p *Parser) Err() error {
	errs := p.diags.Errors()
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return &Error{
		Line:     first.Line,
		Column:   first.Column,
		Message:  first.Message,
		Fragment: first.Fragment,
	}
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.EOF:
		return "end of file"
	case lexer.NEWLINE:
		return "end of line"
	case lexer.ILLEGAL:
		return fmt.Sprintf("illegal token %q", tok.Literal)
	case lexer.IDENT, lexer.INT_LIT, lexer.STRING_LIT:
		return fmt.Sprintf("%s %s", tok.Type, tok.Literal)
	default:
		return fmt.Sprintf("'%s'", tok.Literal)
	}
}
