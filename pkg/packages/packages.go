// Package packages turns package identifiers such as "DIP-28", "TQFP-32" or
// "CABGA-256" into concrete pin lists.
package packages

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/coresch/pkg/model"
)

var (
	ErrNoGenerator = errors.New("no generator for package")
	ErrNotSquare   = errors.New("ball count is not a square")
)

// Generator builds the pin list of the packages it recognizes.
type Generator interface {
	Match(id string) bool
	Generate(id string) (*model.Package, error)
}

// Registry tries its generators in registration order; the first match wins.
type Registry struct {
	generators []Generator
}

// NewRegistry returns a registry holding gens in order.
func NewRegistry(gens ...Generator) *Registry {
	return &Registry{generators: append([]Generator(nil), gens...)}
}

// Default returns the built-in registry: DIP/DIL, TQFP, MLF, BGA and the
// generic count-suffixed fallback, in that order.
func Default() *Registry {
	return NewRegistry(DIP, TQFP, MLF, BGA, Generic)
}

// Register appends g after the existing generators.
func (r *Registry) Register(g Generator) {
	r.generators = append(r.generators, g)
}

// Match reports whether any generator recognizes id.
func (r *Registry) Match(id string) bool {
	for _, g := range r.generators {
		if g.Match(id) {
			return true
		}
	}
	return false
}

// Generate builds the package for id with the first matching generator.
func (r *Registry) Generate(id string) (*model.Package, error) {
	for _, g := range r.generators {
		if g.Match(id) {
			return g.Generate(id)
		}
	}
	return nil, fmt.Errorf("packages: %w: %s", ErrNoGenerator, id)
}

// Counted matches identifiers ending in a pin count and numbers the pins
// 1..n.
type Counted struct {
	pattern *regexp.Regexp
	// name renders the package name from the id and count.
	name func(id string, count int) string
}

// NewCounted returns a generator for ids matched by pattern, whose first
// submatch is the pin count. An empty prefix keeps the upper-cased id as the
// package name; otherwise the name is "<prefix>-<n>".
func NewCounted(pattern, prefix string) *Counted {
	g := &Counted{pattern: regexp.MustCompile(pattern)}
	if prefix == "" {
		g.name = func(id string, _ int) string { return strings.ToUpper(id) }
	} else {
		g.name = func(_ string, n int) string { return fmt.Sprintf("%s-%d", prefix, n) }
	}
	return g
}

func (g *Counted) Match(id string) bool { return g.pattern.MatchString(id) }

func (g *Counted) Generate(id string) (*model.Package, error) {
	n, err := count(g.pattern, id)
	if err != nil {
		return nil, err
	}
	return model.NewNumberedPackage(g.name(id, n), n), nil
}

var (
	DIP     = NewCounted(`(?i)^DI[PL]-?(\d+)`, "DIP")
	TQFP    = NewCounted(`(?i)^TQFP-?(\d+)$`, "TQFP")
	MLF     = NewCounted(`(?i)^MLF-?(\d+)$`, "MLF")
	Generic = NewCounted(`(?i)^.*?(\d+)$`, "")
	BGA     = &Grid{pattern: regexp.MustCompile(`(?i)^.*?BGA-?(\d+)$`)}
)

func count(re *regexp.Regexp, id string) (int, error) {
	m := re.FindStringSubmatch(id)
	if m == nil {
		return 0, fmt.Errorf("packages: %s does not match %s", id, re)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("packages: invalid pin count in %s", id)
	}
	return n, nil
}
