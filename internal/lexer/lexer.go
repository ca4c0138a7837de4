package lexer

// Lexer scans Smartra source code and produces tokens. Smartra is line
// oriented, so line breaks outside parentheses and brackets are reported
// as NEWLINE tokens. Runs of blank lines collapse into one NEWLINE.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
	depth        int  // open ( and [ count
	last         TokenType
}

// New creates a new Lexer instance
func New(input string) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0,
		last:   NEWLINE,
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances the position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0 // ASCII code for NUL
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar returns the next character without advancing the position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace skips blanks. Line breaks are only skipped inside
// parentheses or brackets, or when they would repeat a NEWLINE.
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\n' && (l.depth > 0 || l.last == NEWLINE):
			l.newline()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipSingleLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar() // consume '/'
			l.readChar() // consume '*'
			l.skipMultiLineComment()
		default:
			return
		}
	}
}

func (l *Lexer) newline() {
	l.readChar()
	l.line++
	l.column = 1
}

// skipSingleLineComment skips a single-line comment (//), leaving the
// line break in place
func (l *Lexer) skipSingleLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipMultiLineComment skips a multi-line comment (/* */)
func (l *Lexer) skipMultiLineComment() {
	for {
		if l.ch == 0 {
			break
		}
		if l.ch == '\n' {
			l.newline()
			continue
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // consume '*'
			l.readChar() // consume '/'
			break
		}
		l.readChar()
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an integer literal. Underscore separators are allowed
// between digits and kept in the literal.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) || (l.ch == '_' && isDigit(l.peekChar())) {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readString reads a string literal. The returned literal keeps its quotes
// and escapes verbatim since it is emitted as-is.
func (l *Lexer) readString() (string, bool) {
	position := l.position
	for {
		l.readChar()
		if l.ch == 0 || l.ch == '\n' {
			return "", false
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 || l.ch == '\n' {
				return "", false
			}
			continue
		}
		if l.ch == '"' {
			break
		}
	}
	return l.input[position : l.position+1], true
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	tok := l.scan()
	l.last = tok.Type
	return tok
}

func (l *Lexer) scan() Token {
	l.skipWhitespace()

	line, col := l.line, l.column
	single := func(t TokenType) Token {
		return Token{Type: t, Literal: string(l.ch), Line: line, Column: col}
	}
	double := func(t TokenType) Token {
		ch := l.ch
		l.readChar()
		return Token{Type: t, Literal: string(ch) + string(l.ch), Line: line, Column: col}
	}

	var tok Token
	switch l.ch {
	case '\n':
		tok = Token{Type: NEWLINE, Literal: "\\n", Line: line, Column: col}
		l.newline()
		return tok
	case '=':
		switch l.peekChar() {
		case '=':
			tok = double(EQ)
		case '>':
			tok = double(FAT_ARROW)
		default:
			tok = single(ASSIGN)
		}
	case '!':
		if l.peekChar() == '=' {
			tok = double(NEQ)
		} else {
			tok = single(NOT)
		}
	case '<':
		if l.peekChar() == '=' {
			tok = double(LEQ)
		} else {
			tok = single(LT)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = double(GEQ)
		} else {
			tok = single(GT)
		}
	case '+':
		if l.peekChar() == '=' {
			tok = double(PLUS_ASSIGN)
		} else {
			tok = single(PLUS)
		}
	case '-':
		switch l.peekChar() {
		case '=':
			tok = double(MINUS_ASSIGN)
		case '>':
			tok = double(ARROW)
		default:
			tok = single(MINUS)
		}
	case '*':
		if l.peekChar() == '=' {
			tok = double(STAR_ASSIGN)
		} else {
			tok = single(STAR)
		}
	case '/':
		if l.peekChar() == '=' {
			tok = double(SLASH_ASSIGN)
		} else {
			tok = single(SLASH)
		}
	case '%':
		tok = single(PERCENT)
	case '&':
		if l.peekChar() == '&' {
			tok = double(AND)
		} else {
			tok = single(ILLEGAL)
		}
	case '|':
		if l.peekChar() == '|' {
			tok = double(OR)
		} else {
			tok = single(ILLEGAL)
		}
	case '(':
		l.depth++
		tok = single(LPAREN)
	case ')':
		if l.depth > 0 {
			l.depth--
		}
		tok = single(RPAREN)
	case '[':
		l.depth++
		tok = single(LBRACKET)
	case ']':
		if l.depth > 0 {
			l.depth--
		}
		tok = single(RBRACKET)
	case ',':
		tok = single(COMMA)
	case ':':
		tok = single(COLON)
	case '.':
		tok = single(DOT)
	case '@':
		tok = single(AT)
	case '"':
		str, ok := l.readString()
		if !ok {
			tok = Token{Type: ILLEGAL, Literal: "unterminated string", Line: line, Column: col}
		} else {
			tok = Token{Type: STRING_LIT, Literal: str, Line: line, Column: col}
		}
	case 0:
		return Token{Type: EOF, Literal: "", Line: line, Column: col}
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return Token{Type: LookupIdent(ident), Literal: ident, Line: line, Column: col}
		} else if isDigit(l.ch) {
			return Token{Type: INT_LIT, Literal: l.readNumber(), Line: line, Column: col}
		}
		tok = single(ILLEGAL)
	}

	l.readChar()
	return tok
}

// Tokenize returns all tokens from the input
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			break
		}
	}
	return tokens
}

// Helper functions

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
