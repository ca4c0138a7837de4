package lexer

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF
	NEWLINE

	// Literals
	IDENT      // x, balances, msg
	INT_LIT    // 123
	STRING_LIT // "hello"

	// Keywords
	CONTRACT
	STATE
	FUNCTION
	EVENT
	REQUIRE
	EMIT
	RETURN
	TRUE
	FALSE
	MAPPING

	// Operators
	PLUS         // +
	MINUS        // -
	STAR         // *
	SLASH        // /
	PERCENT      // %
	EQ           // ==
	NEQ          // !=
	LT           // <
	GT           // >
	LEQ          // <=
	GEQ          // >=
	ASSIGN       // =
	PLUS_ASSIGN  // +=
	MINUS_ASSIGN // -=
	STAR_ASSIGN  // *=
	SLASH_ASSIGN // /=
	AND          // &&
	OR           // ||
	NOT          // !
	ARROW        // ->
	FAT_ARROW    // =>

	// Delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	COLON    // :
	DOT      // .
	AT       // @
)

// Token represents a lexical token
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case IDENT:
		return "IDENT"
	case INT_LIT:
		return "INT_LIT"
	case STRING_LIT:
		return "STRING_LIT"
	case CONTRACT:
		return "CONTRACT"
	case STATE:
		return "STATE"
	case FUNCTION:
		return "FUNCTION"
	case EVENT:
		return "EVENT"
	case REQUIRE:
		return "REQUIRE"
	case EMIT:
		return "EMIT"
	case RETURN:
		return "RETURN"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case MAPPING:
		return "MAPPING"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	case EQ:
		return "=="
	case NEQ:
		return "!="
	case LT:
		return "<"
	case GT:
		return ">"
	case LEQ:
		return "<="
	case GEQ:
		return ">="
	case ASSIGN:
		return "="
	case PLUS_ASSIGN:
		return "+="
	case MINUS_ASSIGN:
		return "-="
	case STAR_ASSIGN:
		return "*="
	case SLASH_ASSIGN:
		return "/="
	case AND:
		return "&&"
	case OR:
		return "||"
	case NOT:
		return "!"
	case ARROW:
		return "->"
	case FAT_ARROW:
		return "=>"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACKET:
		return "["
	case RBRACKET:
		return "]"
	case COMMA:
		return ","
	case COLON:
		return ":"
	case DOT:
		return "."
	case AT:
		return "@"
	default:
		return fmt.Sprintf("TokenType(%d)", t)
	}
}

// IsAssignment reports whether t is one of the assignment operators
func (t TokenType) IsAssignment() bool {
	switch t {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN:
		return true
	}
	return false
}

// keywords maps keyword strings to their token types
var keywords = map[string]TokenType{
	"contract": CONTRACT,
	"state":    STATE,
	"function": FUNCTION,
	"event":    EVENT,
	"require":  REQUIRE,
	"emit":     EMIT,
	"return":   RETURN,
	"true":     TRUE,
	"false":    FALSE,
	"mapping":  MAPPING,
}

// LookupIdent checks if an identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsKeyword reports whether name is reserved
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}
