package lexer

import (
	"testing"
)

func TestNextToken_Operators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "arithmetic operators",
			input:    "+ - * / %",
			expected: []TokenType{PLUS, MINUS, STAR, SLASH, PERCENT, EOF},
		},
		{
			name:     "comparison operators",
			input:    "== != < > <= >=",
			expected: []TokenType{EQ, NEQ, LT, GT, LEQ, GEQ, EOF},
		},
		{
			name:     "assignment operators",
			input:    "= += -= *= /=",
			expected: []TokenType{ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN, EOF},
		},
		{
			name:     "logical operators",
			input:    "&& || !",
			expected: []TokenType{AND, OR, NOT, EOF},
		},
		{
			name:     "arrows",
			input:    "-> =>",
			expected: []TokenType{ARROW, FAT_ARROW, EOF},
		},
		{
			name:     "lone ampersand",
			input:    "&",
			expected: []TokenType{ILLEGAL, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			for i, expectedType := range tt.expected {
				tok := l.NextToken()
				if tok.Type != expectedType {
					t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
						i, expectedType, tok.Type)
				}
			}
		})
	}
}

func TestNextToken_Delimiters(t *testing.T) {
	input := "( ) [ ] , : . @"
	expected := []TokenType{
		LPAREN, RPAREN, LBRACKET, RBRACKET, COMMA, COLON, DOT, AT, EOF,
	}

	l := New(input)
	for i, expectedType := range expected {
		tok := l.NextToken()
		if tok.Type != expectedType {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q",
				i, expectedType, tok.Type)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"contract", CONTRACT},
		{"state", STATE},
		{"function", FUNCTION},
		{"event", EVENT},
		{"require", REQUIRE},
		{"emit", EMIT},
		{"return", RETURN},
		{"true", TRUE},
		{"false", FALSE},
		{"mapping", MAPPING},
		{"owner", IDENT},
		{"uint256", IDENT},
		{"_reentrancyLock_transfer", IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tok := New(tt.keyword).NextToken()
			if tok.Type != tt.expected {
				t.Errorf("wrong type. expected=%q, got=%q", tt.expected, tok.Type)
			}
			if tok.Literal != tt.keyword {
				t.Errorf("wrong literal. expected=%q, got=%q", tt.keyword, tok.Literal)
			}
		})
	}
}

func TestNextToken_Literals(t *testing.T) {
	tests := []struct {
		input   string
		typ     TokenType
		literal string
	}{
		{"1000000", INT_LIT, "1000000"},
		{"1_000_000", INT_LIT, "1_000_000"},
		{`"Insufficient balance"`, STRING_LIT, `"Insufficient balance"`},
		{`"say \"hi\""`, STRING_LIT, `"say \"hi\""`},
		{`"unterminated`, ILLEGAL, "unterminated string"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.typ {
				t.Fatalf("wrong type. expected=%q, got=%q", tt.typ, tok.Type)
			}
			if tok.Literal != tt.literal {
				t.Errorf("wrong literal. expected=%q, got=%q", tt.literal, tok.Literal)
			}
		})
	}
}

func TestNewlines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []TokenType
	}{
		{
			name:     "leading blank lines are dropped",
			input:    "\n\n\nstate:",
			expected: []TokenType{STATE, COLON, EOF},
		},
		{
			name:     "blank lines collapse",
			input:    "a\n\n\nb",
			expected: []TokenType{IDENT, NEWLINE, IDENT, EOF},
		},
		{
			name:     "newlines inside parentheses are ignored",
			input:    "emit Transfer(a,\n  b)\n",
			expected: []TokenType{EMIT, IDENT, LPAREN, IDENT, COMMA, IDENT, RPAREN, NEWLINE, EOF},
		},
		{
			name:     "newlines inside brackets are ignored",
			input:    "x[\n1\n]",
			expected: []TokenType{IDENT, LBRACKET, INT_LIT, RBRACKET, EOF},
		},
		{
			name:     "comment lines do not produce extra newlines",
			input:    "a\n// note\n\nb",
			expected: []TokenType{IDENT, NEWLINE, IDENT, EOF},
		},
		{
			name:     "trailing comment",
			input:    "a // note\nb",
			expected: []TokenType{IDENT, NEWLINE, IDENT, EOF},
		},
		{
			name:     "block comment spanning lines",
			input:    "a /* one\ntwo */ b",
			expected: []TokenType{IDENT, IDENT, EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := New(tt.input).Tokenize()
			if len(tokens) != len(tt.expected) {
				t.Fatalf("expected %d tokens, got %d: %v", len(tt.expected), len(tokens), tokens)
			}
			for i, tok := range tokens {
				if tok.Type != tt.expected[i] {
					t.Errorf("token[%d] - wrong type. expected=%q, got=%q", i, tt.expected[i], tok.Type)
				}
			}
		})
	}
}

func TestTokenPositions(t *testing.T) {
	input := "contract Token:\n    @safe_math\n"
	tokens := New(input).Tokenize()

	expected := []struct {
		typ       TokenType
		line, col int
	}{
		{CONTRACT, 1, 1},
		{IDENT, 1, 10},
		{COLON, 1, 15},
		{NEWLINE, 1, 16},
		{AT, 2, 5},
		{IDENT, 2, 6},
		{NEWLINE, 2, 15},
		{EOF, 3, 1},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, want := range expected {
		got := tokens[i]
		if got.Type != want.typ || got.Line != want.line || got.Column != want.col {
			t.Errorf("token[%d] = %s at %d:%d, want %s at %d:%d",
				i, got.Type, got.Line, got.Column, want.typ, want.line, want.col)
		}
	}
}

func TestTokenizeContract(t *testing.T) {
	input := `contract Token:
    state:
        balances: mapping(address => uint256)

    function mint(to: address) -> bool:
        balances[to] += 1
`
	expected := []TokenType{
		CONTRACT, IDENT, COLON, NEWLINE,
		STATE, COLON, NEWLINE,
		IDENT, COLON, MAPPING, LPAREN, IDENT, FAT_ARROW, IDENT, RPAREN, NEWLINE,
		FUNCTION, IDENT, LPAREN, IDENT, COLON, IDENT, RPAREN, ARROW, IDENT, COLON, NEWLINE,
		IDENT, LBRACKET, IDENT, RBRACKET, PLUS_ASSIGN, INT_LIT, NEWLINE,
		EOF,
	}

	tokens := New(input).Tokenize()
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, tok := range tokens {
		if tok.Type != expected[i] {
			t.Errorf("token[%d] - wrong type. expected=%q, got=%q (%q)", i, expected[i], tok.Type, tok.Literal)
		}
	}
}

func TestTokenTypeString(t *testing.T) {
	if got := PLUS_ASSIGN.String(); got != "+=" {
		t.Errorf("PLUS_ASSIGN.String() = %q", got)
	}
	if got := TokenType(999).String(); got != "TokenType(999)" {
		t.Errorf("unknown token string = %q", got)
	}
	if !MINUS_ASSIGN.IsAssignment() || EQ.IsAssignment() {
		t.Error("IsAssignment misclassifies operators")
	}
}
