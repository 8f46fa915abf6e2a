package lang

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// SchematicLexer defines the lexical structure of schematic documents.
// Rules are tried in order at the cursor and the first match wins, so
// numbers shadow identifiers that start with a value ("10k"). Keywords are
// lexed as identifiers and told apart by the Tokenizer.
var SchematicLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments
	{Name: "BlockComment", Pattern: `/\*(?s:.*?)\*/`},
	{Name: "LineComment", Pattern: `//[^\n]*`},

	// Inline passives, e.g. [R:10k]
	{Name: "InlinePart", Pattern: `\[[RCL]:\d+(?:\.\d+)?[pnµmdDkMGT]?\]`},

	// Literals
	{Name: "String", Pattern: `"[^"]+"`},
	{Name: "Number", Pattern: `\b\d+(?:\.\d+)?(?:µ|[pnmdDkMGT]\b|\b)`},

	{Name: "Connector", Pattern: `--`},

	// Identifiers with optional range suffixes, e.g. D[0..7] or A[0,2]_N
	{Name: "Identifier", Pattern: `[\p{L}\p{N}_\-+]+(?:\[[\d,.]+\][\p{L}\p{N}_\-+]*)*`},

	// Punctuation
	{Name: "Dot", Pattern: `\.`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "BraceOpen", Pattern: `\{`},
	{Name: "BraceClose", Pattern: `\}`},
	{Name: "ParenOpen", Pattern: `\(`},
	{Name: "ParenClose", Pattern: `\)`},
	{Name: "BracketOpen", Pattern: `\[`},
	{Name: "BracketClose", Pattern: `\]`},

	{Name: "Whitespace", Pattern: `\s+`},
})

type ruleInfo struct {
	typ         TokenType
	significant bool
}

// ruleTypes maps lexer rule names onto token types. Comments and whitespace
// are not significant and never reach the parser.
var ruleTypes = map[string]ruleInfo{
	"BlockComment": {TokenComment, false},
	"LineComment":  {TokenComment, false},
	"InlinePart":   {TokenInlinePart, true},
	"String":       {TokenString, true},
	"Number":       {TokenNumber, true},
	"Connector":    {TokenConnector, true},
	"Identifier":   {TokenIdentifier, true},
	"Dot":          {TokenDot, true},
	"Comma":        {TokenComma, true},
	"Colon":        {TokenColon, true},
	"Semicolon":    {TokenSemicolon, true},
	"BraceOpen":    {TokenBraceOpen, true},
	"BraceClose":   {TokenBraceClose, true},
	"ParenOpen":    {TokenParenOpen, true},
	"ParenClose":   {TokenParenClose, true},
	"BracketOpen":  {TokenBracketOpen, true},
	"BracketClose": {TokenBracketClose, true},
	"Whitespace":   {TokenWhitespace, false},
}

// keywords are matched case-insensitively against whole identifiers.
var keywords = map[string]bool{
	"device":    true,
	"schematic": true,
	"signal":    true,
	"import":    true,
	"bus":       true,
}

// captures recovers the named sub-matches of a token.
var captures = map[TokenType]*regexp.Regexp{
	TokenKeyword:    regexp.MustCompile(`^(?P<id>.+)$`),
	TokenInlinePart: regexp.MustCompile(`^\[(?P<type>[RCL]):(?P<value>\d+(?:\.\d+)?)(?P<unit>[pnµmdDkMGT]?)\]$`),
	TokenString:     regexp.MustCompile(`^"(?P<value>[^"]+)"$`),
	TokenNumber:     regexp.MustCompile(`^(?P<value>(?P<magnitude>\d+(?:\.\d+)?)(?P<unit>[pnµmdDkMGT]?))$`),
	TokenIdentifier: regexp.MustCompile(`^(?P<value>.+)$`),
}

var lexerTypes = func() map[lexer.TokenType]ruleInfo {
	out := make(map[lexer.TokenType]ruleInfo)
	for name, sym := range SchematicLexer.Symbols() {
		if info, ok := ruleTypes[name]; ok {
			out[sym] = info
		}
	}
	return out
}()

// Tokenizer yields the significant tokens of a document one at a time.
// It never fails on bad input: when no rule matches, the stream ends and
// the failure is kept in Err for diagnostics.
type Tokenizer struct {
	lex      lexer.Lexer
	done     bool
	err      error
	errLine  int
	lastLine int
}

// NewTokenizer prepares a tokenizer over r. Only read errors are reported.
func NewTokenizer(r io.Reader) (*Tokenizer, error) {
	lex, err := SchematicLexer.Lex("", r)
	if err != nil {
		return nil, fmt.Errorf("lang: read source: %w", err)
	}
	return &Tokenizer{lex: lex, lastLine: 1}, nil
}

// Next returns the next significant token, or nil at end of input.
func (t *Tokenizer) Next() *Token {
	for !t.done {
		lt, err := t.lex.Next()
		if err != nil {
			t.fail(err)
			return nil
		}
		if lt.EOF() {
			t.done = true
			return nil
		}
		info, ok := lexerTypes[lt.Type]
		if !ok {
			t.fail(fmt.Errorf("lang: unknown lexer symbol %d", lt.Type))
			return nil
		}
		if !info.significant {
			continue
		}
		typ := info.typ
		if typ == TokenIdentifier && keywords[strings.ToLower(lt.Value)] {
			typ = TokenKeyword
		}
		tok := &Token{
			Type:   typ,
			Value:  lt.Value,
			Offset: lt.Pos.Offset,
			Length: len(lt.Value),
			Line:   lt.Pos.Line,
		}
		if re, ok := captures[typ]; ok {
			tok.Groups = namedGroups(re, lt.Value)
		}
		t.lastLine = tok.Line
		return tok
	}
	return nil
}

// Err returns the lexer failure that ended the stream early, if any.
func (t *Tokenizer) Err() error { return t.err }

// ErrLine is the line of the input that no rule could match.
func (t *Tokenizer) ErrLine() int { return t.errLine }

func (t *Tokenizer) fail(err error) {
	t.done = true
	t.err = err
	t.errLine = t.lastLine
	if pe, ok := err.(interface{ Position() lexer.Position }); ok && pe.Position().Line > 0 {
		t.errLine = pe.Position().Line
	}
}

// Tokenize returns all significant tokens of r.
func Tokenize(r io.Reader) ([]*Token, error) {
	t, err := NewTokenizer(r)
	if err != nil {
		return nil, err
	}
	var out []*Token
	for tok := t.Next(); tok != nil; tok = t.Next() {
		out = append(out, tok)
	}
	return out, nil
}

func namedGroups(re *regexp.Regexp, s string) map[string]string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	groups := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups
}
