package lang

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	TokenComment TokenType = iota + 1
	TokenKeyword
	TokenInlinePart
	TokenString
	TokenNumber
	TokenConnector
	TokenIdentifier
	TokenDot
	TokenComma
	TokenColon
	TokenSemicolon
	TokenBraceOpen
	TokenBraceClose
	TokenParenOpen
	TokenParenClose
	TokenBracketOpen
	TokenBracketClose
	TokenWhitespace
)

var tokenNames = map[TokenType]string{
	TokenComment:      "COMMENT",
	TokenKeyword:      "KEYWORD",
	TokenInlinePart:   "INLINE_PART",
	TokenString:       "STRING",
	TokenNumber:       "NUMBER",
	TokenConnector:    "CONNECTOR",
	TokenIdentifier:   "IDENTIFIER",
	TokenDot:          "DOT",
	TokenComma:        "COMMA",
	TokenColon:        "COLON",
	TokenSemicolon:    "SEMICOLON",
	TokenBraceOpen:    "BRACE_OP",
	TokenBraceClose:   "BRACE_CL",
	TokenParenOpen:    "PAREN_OP",
	TokenParenClose:   "PAREN_CL",
	TokenBracketOpen:  "BRACKET_OP",
	TokenBracketClose: "BRACKET_CL",
	TokenWhitespace:   "WHITESPACE",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one lexeme of a schematic document.
// Groups holds the named sub-captures, e.g. "value" and "unit" for numbers
// or "type" for inline parts.
type Token struct {
	Type   TokenType
	Value  string
	Groups map[string]string
	Offset int
	Length int
	Line   int
}

// Group returns a named sub-capture or "".
func (t *Token) Group(name string) string {
	if t == nil || t.Groups == nil {
		return ""
	}
	return t.Groups[name]
}

func (t *Token) String() string {
	return fmt.Sprintf("%d %s %d:%d '%s'", t.Line, t.Type, t.Offset, t.Length, t.Value)
}
