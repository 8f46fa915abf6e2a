package lang

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/OpenTraceLab/coresch/pkg/bus"
	"github.com/OpenTraceLab/coresch/pkg/model"
)

// Document is the result of parsing one schematic source.
type Document struct {
	Imports    [][]string
	Schematics []*model.Schematic
}

// Schematic returns the schematic declared under name, or nil.
func (d *Document) Schematic(name string) *model.Schematic {
	for _, s := range d.Schematics {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Parser is a recursive-descent parser for schematic documents. It keeps a
// single token of lookahead and remembers the last consumed token for error
// reporting. A Parser is not safe for concurrent use.
type Parser struct {
	imports ImportResolver
	symbols SymbolResolver

	tok   *Tokenizer
	ahead *Token
	last  *Token

	// scope holds the components made visible by imports and by the
	// schematics already completed in the current document.
	scope map[string]model.Component
	// inline counts anonymous inline parts per letter in the current schematic.
	inline map[string]int
}

// NewParser returns a parser using the given collaborators. Either may be
// nil, in which case every request through it fails as not found.
func NewParser(imports ImportResolver, symbols SymbolResolver) *Parser {
	return &Parser{imports: imports, symbols: symbols}
}

// Parse reads a whole document from r. On error no partial document is
// returned.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	tok, err := NewTokenizer(r)
	if err != nil {
		return nil, err
	}
	p.tok = tok
	p.ahead, p.last = nil, nil
	p.scope = make(map[string]model.Component)
	defer func() { p.tok = nil }()

	return p.parseDocument()
}

// ParseString parses a document held in memory.
func (p *Parser) ParseString(src string) (*Document, error) {
	return p.Parse(strings.NewReader(src))
}

// ParseFile parses the document stored at path.
func (p *Parser) ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lang: open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func (p *Parser) peek() *Token {
	if p.ahead == nil {
		p.ahead = p.tok.Next()
	}
	return p.ahead
}

func (p *Parser) next() *Token {
	tok := p.peek()
	p.ahead = nil
	if tok != nil {
		p.last = tok
	}
	return tok
}

func (p *Parser) expect(types ...TokenType) (*Token, error) {
	tok := p.next()
	if tok == nil {
		return nil, p.endOfInput(describe(types))
	}
	if !slices.Contains(types, tok.Type) {
		return nil, p.errorf(tok, ErrUnexpectedToken, "expected %s, got %s %q", describe(types), tok.Type, tok.Value)
	}
	return tok, nil
}

// keyword consumes a keyword and returns it lower-cased.
func (p *Parser) keyword(options ...string) (string, error) {
	tok, err := p.expect(TokenKeyword)
	if err != nil {
		return "", err
	}
	kw := strings.ToLower(tok.Value)
	if !slices.Contains(options, kw) {
		return "", p.errorf(tok, ErrUnexpectedToken, "expected keyword %s, got %q", strings.Join(options, " or "), tok.Value)
	}
	return kw, nil
}

// skip consumes the next token if it has the given type.
func (p *Parser) skip(typ TokenType) bool {
	if tok := p.peek(); tok != nil && tok.Type == typ {
		p.next()
		return true
	}
	return false
}

func (p *Parser) errorf(tok *Token, cause error, format string, args ...any) error {
	if tok == nil {
		tok = p.last
	}
	e := &SyntaxError{Token: tok, Msg: fmt.Sprintf(format, args...), Err: cause}
	if tok != nil {
		e.Line = tok.Line
	}
	return e
}

// endOfInput reports a missing token. When the stream ended because the
// tokenizer could not match the input, the unmatched line is cited instead.
func (p *Parser) endOfInput(expected string) error {
	if err := p.tok.Err(); err != nil {
		return &SyntaxError{
			Line: p.tok.ErrLine(),
			Msg:  "unrecognized input",
			Err:  fmt.Errorf("%w: %v", ErrInvalidInput, err),
		}
	}
	if expected == "" {
		return p.errorf(nil, ErrUnexpectedEOF, "unexpected end of input")
	}
	return p.errorf(nil, ErrUnexpectedEOF, "unexpected end of input, expected %s", expected)
}

func describe(types []TokenType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, " or ")
}

func (p *Parser) parseDocument() (*Document, error) {
	doc := &Document{}
	for {
		if p.peek() == nil {
			if p.tok.Err() != nil {
				return nil, p.endOfInput("")
			}
			return doc, nil
		}
		kw, err := p.keyword("import", "schematic")
		if err != nil {
			return nil, err
		}
		switch kw {
		case "import":
			path, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			doc.Imports = append(doc.Imports, path)
		case "schematic":
			s, err := p.parseSchematic(doc)
			if err != nil {
				return nil, err
			}
			doc.Schematics = append(doc.Schematics, s)
			p.scope[s.Name()] = s
		}
	}
}

// parseSymbol reads IDENT ('.' IDENT)* and returns the segments together
// with the first token.
func (p *Parser) parseSymbol() ([]string, *Token, error) {
	first, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, nil, err
	}
	path := []string{first.Value}
	for p.skip(TokenDot) {
		tok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, nil, err
		}
		path = append(path, tok.Value)
	}
	return path, first, nil
}

func (p *Parser) parseImport() ([]string, error) {
	path, first, err := p.parseSymbol()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	var comps []model.Component
	if p.imports == nil {
		err = NotFound(path)
	} else {
		comps, err = p.imports.ResolveImport(path)
	}
	if err != nil {
		return nil, p.resolutionError(first, path, "could not resolve import", err)
	}
	// Later imports shadow earlier ones.
	for _, c := range comps {
		p.scope[c.Name()] = c
	}
	return path, nil
}

// resolve finds the component for a device type. Single-segment names are
// looked up in the document scope first.
func (p *Parser) resolve(path []string, tok *Token) (model.Component, error) {
	if len(path) == 1 {
		if c, ok := p.scope[path[0]]; ok {
			return c, nil
		}
	}

	var (
		c   model.Component
		err error
	)
	if p.symbols == nil {
		err = NotFound(path)
	} else {
		c, err = p.symbols.ResolveSymbol(path)
		if err == nil && c == nil {
			err = NotFound(path)
		}
	}
	if err != nil {
		return nil, p.resolutionError(tok, path, "could not resolve symbol", err)
	}
	return c, nil
}

func (p *Parser) resolutionError(tok *Token, path []string, msg string, err error) error {
	name := JoinPath(path)
	if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrAmbiguous) {
		err = fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	e := p.errorf(tok, err, "%s %s: %v", msg, name, err).(*SyntaxError)
	e.Path = name
	return e
}

func (p *Parser) parseSchematic(doc *Document) (*model.Schematic, error) {
	name, err := p.expect(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if doc.Schematic(name.Value) != nil {
		return nil, p.errorf(name, ErrDuplicate, "schematic %s declared twice", name.Value)
	}
	if _, err := p.expect(TokenBraceOpen); err != nil {
		return nil, err
	}

	s := model.NewSchematic(name.Value)
	p.inline = make(map[string]int)
	for {
		tok := p.peek()
		if tok == nil {
			return nil, p.endOfInput(TokenBraceClose.String())
		}
		if tok.Type == TokenBraceClose {
			p.next()
			return s, nil
		}
		if tok.Type != TokenKeyword {
			if err := p.parseConnector(s); err != nil {
				return nil, err
			}
			continue
		}

		kw, err := p.keyword("device", "signal", "bus")
		if err != nil {
			return nil, err
		}
		switch kw {
		case "device":
			err = p.parseDevice(s)
		case "signal":
			err = p.parseSignals(s)
		case "bus":
			err = p.parseBus(s)
		}
		if err != nil {
			return nil, err
		}
	}
}

// parseNames reads IDENT (',' IDENT)* followed by end.
func (p *Parser) parseNames(end TokenType) ([]*Token, error) {
	var names []*Token
	for {
		tok, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		names = append(names, tok)
		sep, err := p.expect(TokenComma, end)
		if err != nil {
			return nil, err
		}
		if sep.Type == end {
			return names, nil
		}
	}
}

func (p *Parser) expand(tok *Token) ([]string, error) {
	names, err := bus.Expand(tok.Value)
	if err != nil {
		return nil, p.errorf(tok, err, "invalid range in %s: %v", tok.Value, err)
	}
	return names, nil
}

func (p *Parser) parseDevice(s *model.Schematic) error {
	names, err := p.parseNames(TokenColon)
	if err != nil {
		return err
	}
	path, first, err := p.parseSymbol()
	if err != nil {
		return err
	}
	comp, err := p.resolve(path, first)
	if err != nil {
		return err
	}

	var attrs []model.Attribute
	open, err := p.expect(TokenSemicolon, TokenBraceOpen)
	if err != nil {
		return err
	}
	if open.Type == TokenBraceOpen {
		if attrs, err = p.parseAttributes(); err != nil {
			return err
		}
		p.skip(TokenSemicolon)
	}

	for _, tok := range names {
		expanded, err := p.expand(tok)
		if err != nil {
			return err
		}
		for _, name := range expanded {
			inst, err := s.AddInstance(name, comp)
			if err != nil {
				return p.errorf(tok, err, "device %s: %v", name, err)
			}
			for _, a := range attrs {
				if err := inst.AddAttribute(a); err != nil {
					return p.errorf(tok, err, "device %s: %v", name, err)
				}
			}
		}
	}
	return nil
}

// parseAttributes reads attribute declarations up to and including the
// closing brace.
func (p *Parser) parseAttributes() ([]model.Attribute, error) {
	var attrs []model.Attribute
	seen := make(map[string]bool)
	for !p.skip(TokenBraceClose) {
		name, err := p.expect(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if seen[name.Value] {
			return nil, p.errorf(name, model.ErrDuplicateAttribute, "attribute %s given twice", name.Value)
		}
		seen[name.Value] = true

		if _, err := p.expect(TokenParenOpen); err != nil {
			return nil, err
		}
		attr := model.Attribute{Name: name.Value}
		for {
			v, err := p.expect(TokenIdentifier, TokenString, TokenNumber)
			if err != nil {
				return nil, err
			}
			attr.Values = append(attr.Values, v.Group("value"))
			sep, err := p.expect(TokenComma, TokenParenClose)
			if err != nil {
				return nil, err
			}
			if sep.Type == TokenParenClose {
				break
			}
		}
		if _, err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *Parser) parseSignals(s *model.Schematic) error {
	names, err := p.parseNames(TokenSemicolon)
	if err != nil {
		return err
	}
	return p.declareSignals(s, names)
}

// parseBus declares the signals of one or more buses. Every bus name must
// carry a range specifier.
func (p *Parser) parseBus(s *model.Schematic) error {
	names, err := p.parseNames(TokenSemicolon)
	if err != nil {
		return err
	}
	for _, tok := range names {
		if !bus.HasSpecifier(tok.Value) {
			return p.errorf(tok, bus.ErrSpecifier, "bus %s has no range specifier", tok.Value)
		}
	}
	return p.declareSignals(s, names)
}

func (p *Parser) declareSignals(s *model.Schematic, names []*Token) error {
	for _, tok := range names {
		expanded, err := p.expand(tok)
		if err != nil {
			return err
		}
		for _, name := range expanded {
			if _, err := s.AddSignal(name); err != nil {
				return p.errorf(tok, err, "signal %s: %v", name, err)
			}
		}
	}
	return nil
}
