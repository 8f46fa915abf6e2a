package devicedef

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// bsdlLexer covers the subset of BSDL needed for pin maps: the entity
// header, generics, ports, use clauses, constants and attributes.
var bsdlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},

	{Name: "KwEntity", Pattern: `(?i)\bENTITY\b`},
	{Name: "KwIs", Pattern: `(?i)\bIS\b`},
	{Name: "KwEnd", Pattern: `(?i)\bEND\b`},
	{Name: "KwGeneric", Pattern: `(?i)\bGENERIC\b`},
	{Name: "KwPort", Pattern: `(?i)\bPORT\b`},
	{Name: "KwUse", Pattern: `(?i)\bUSE\b`},
	{Name: "KwAll", Pattern: `(?i)\bALL\b`},
	{Name: "KwAttribute", Pattern: `(?i)\bATTRIBUTE\b`},
	{Name: "KwOf", Pattern: `(?i)\bOF\b`},
	{Name: "KwConstant", Pattern: `(?i)\bCONSTANT\b`},

	// Port modes
	{Name: "KwInout", Pattern: `(?i)\bINOUT\b`},
	{Name: "KwIn", Pattern: `(?i)\bIN\b`},
	{Name: "KwOut", Pattern: `(?i)\bOUT\b`},
	{Name: "KwBuffer", Pattern: `(?i)\bBUFFER\b`},
	{Name: "KwLinkage", Pattern: `(?i)\bLINKAGE\b`},

	// Types
	{Name: "KwBitVector", Pattern: `(?i)\bBIT_VECTOR\b`},
	{Name: "KwBit", Pattern: `(?i)\bBIT\b`},

	{Name: "Assign", Pattern: `:=`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Semicolon", Pattern: `;`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Concat", Pattern: `&`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},

	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Real", Pattern: `[-+]?[0-9]+\.[0-9]+([eE][-+]?[0-9]+)?`},
	{Name: "Integer", Pattern: `[-+]?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z][a-zA-Z0-9_]*`},
	{Name: "Asterisk", Pattern: `\*`},
})

type bsdlFile struct {
	Entity *bsdlEntity `@@`
}

type bsdlEntity struct {
	Name    string        `KwEntity @Ident KwIs`
	Generic *bsdlGenerics `@@?`
	Ports   *bsdlPorts    `@@?`
	Decls   []*bsdlDecl   `@@*`
	EndName string        `KwEnd KwEntity? @Ident? Semicolon`
}

type bsdlGenerics struct {
	Generics []*bsdlGeneric `KwGeneric LParen ( @@ ( Semicolon @@ )* )? RParen Semicolon`
}

type bsdlGeneric struct {
	Name    string    `@Ident Colon Ident`
	Default *bsdlExpr `( Assign @@ )?`
}

type bsdlPorts struct {
	Ports []*bsdlPort `KwPort LParen ( @@ ( Semicolon @@ )* Semicolon? )? RParen Semicolon`
}

// bsdlPort declares one or more ports sharing a mode and type.
type bsdlPort struct {
	Names []string   `@Ident ( Comma @Ident )*`
	Mode  string     `Colon @( KwInout | KwIn | KwOut | KwBuffer | KwLinkage )`
	Type  string     `@( KwBitVector | KwBit )`
	Range *bsdlRange `@@?`
}

type bsdlRange struct {
	Start     int    `LParen @Integer`
	Direction string `@Ident`
	End       int    `@Integer RParen`
}

type bsdlDecl struct {
	Use       *bsdlUse       `  @@`
	Constant  *bsdlConstant  `| @@`
	Attribute *bsdlAttribute `| @@`
}

type bsdlUse struct {
	Package string `KwUse @Ident Dot ( Ident | KwAll ) Semicolon`
}

type bsdlConstant struct {
	Name  string    `KwConstant @Ident`
	Type  string    `Colon @Ident`
	Value *bsdlExpr `Assign @@ Semicolon`
}

type bsdlAttribute struct {
	Name  string    `KwAttribute @Ident`
	Of    string    `KwOf @Ident`
	Class string    `Colon @( Ident | KwEntity | KwConstant )`
	Value *bsdlExpr `KwIs @@ Semicolon`
}

type bsdlExpr struct {
	Terms []*bsdlTerm `@@ ( Concat @@ )*`
}

type bsdlTerm struct {
	String  *string     `  @String`
	Real    *float64    `| @Real`
	Integer *int        `| @Integer`
	Ident   *string     `| @( Ident | Asterisk )`
	Tuple   []*bsdlExpr `| LParen @@ ( Comma @@ )* RParen`
}

// text concatenates the string terms of an expression.
func (e *bsdlExpr) text() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	for _, t := range e.Terms {
		if t.String != nil {
			b.WriteString(strings.Trim(*t.String, `"`))
		}
	}
	return b.String()
}

var bsdlParser = participle.MustBuild[bsdlFile](
	participle.Lexer(bsdlLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
)

// ReadBSDL parses a BSDL description and converts its ports and pin maps
// into a definition.
//
// Every port becomes a function; bit_vector ports become one function per
// element (D0, D1, ...) except linkage vectors, which keep their name and
// claim all their locations. Each PIN_MAP_STRING constant becomes a package
// named after the constant with any PKG_ prefix removed. All bindings are
// exclusive.
func ReadBSDL(r io.Reader) (*Definition, error) {
	file, err := bsdlParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("devicedef: parse bsdl: %w", err)
	}
	return file.Entity.definition()
}

// ReadBSDLFile parses the BSDL file at path.
func ReadBSDLFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("devicedef: %w", err)
	}
	defer f.Close()

	def, err := ReadBSDL(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// port is a flattened port declaration.
type port struct {
	name     string
	linkage  bool
	elements []string
}

func (e *bsdlEntity) ports() ([]*port, map[string]*port) {
	var list []*port
	byName := make(map[string]*port)
	if e.Ports == nil {
		return list, byName
	}
	for _, decl := range e.Ports.Ports {
		for _, name := range decl.Names {
			p := &port{name: name, linkage: strings.EqualFold(decl.Mode, "linkage")}
			if decl.Range != nil && !p.linkage {
				for _, i := range decl.Range.indices() {
					p.elements = append(p.elements, name+strconv.Itoa(i))
				}
			} else {
				p.elements = []string{name}
			}
			list = append(list, p)
			byName[strings.ToUpper(name)] = p
		}
	}
	return list, byName
}

func (r *bsdlRange) indices() []int {
	var out []int
	if strings.EqualFold(r.Direction, "downto") {
		for i := r.Start; i >= r.End; i-- {
			out = append(out, i)
		}
		return out
	}
	for i := r.Start; i <= r.End; i++ {
		out = append(out, i)
	}
	return out
}

func (e *bsdlEntity) definition() (*Definition, error) {
	list, byName := e.ports()
	def := &Definition{Name: e.Name}
	for _, p := range list {
		def.Functions = append(def.Functions, p.elements...)
	}

	for _, d := range e.Decls {
		c := d.Constant
		if c == nil || !strings.EqualFold(c.Type, "PIN_MAP_STRING") {
			continue
		}
		pd := PackageDefinition{ID: strings.TrimPrefix(strings.ToUpper(c.Name), "PKG_")}
		for _, entry := range splitPinMap(c.Value.text()) {
			p, ok := byName[strings.ToUpper(entry.port)]
			if !ok {
				return nil, fmt.Errorf("devicedef: %s: pin map %s names unknown port %s", e.Name, c.Name, entry.port)
			}
			if len(p.elements) == 1 {
				pd.Pins = append(pd.Pins, PinDefinition{Function: p.name, Locations: entry.locations, Mode: ModeAll})
				continue
			}
			if len(entry.locations) != len(p.elements) {
				return nil, fmt.Errorf("devicedef: %s: pin map %s gives %d locations for %d elements of %s",
					e.Name, c.Name, len(entry.locations), len(p.elements), p.name)
			}
			for i, fn := range p.elements {
				pd.Pins = append(pd.Pins, PinDefinition{Function: fn, Locations: entry.locations[i : i+1], Mode: ModeAll})
			}
		}
		def.Packages = append(def.Packages, pd)
	}
	return def, nil
}

type pinMapEntry struct {
	port      string
	locations []string
}

var pinMapEntryRegexp = regexp.MustCompile(`(\w+)\s*:\s*(\([^)]*\)|[^,]+)`)

// splitPinMap reads "PORT : loc, VEC : (l1, l2), ..." entries in order.
func splitPinMap(s string) []pinMapEntry {
	var out []pinMapEntry
	for _, m := range pinMapEntryRegexp.FindAllStringSubmatch(s, -1) {
		locs := SplitLocations(strings.Trim(strings.TrimSpace(m[2]), "()"))
		out = append(out, pinMapEntry{port: m[1], locations: locs})
	}
	return out
}
