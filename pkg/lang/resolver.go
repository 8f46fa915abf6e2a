package lang

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/coresch/pkg/model"
)

// ImportResolver loads the components made visible by an import statement.
// Implementations return an error wrapping ErrNotFound for unknown paths.
type ImportResolver interface {
	ResolveImport(path []string) ([]model.Component, error)
}

// SymbolResolver resolves a device type that is not satisfied by the
// imported names. Implementations return an error wrapping ErrNotFound or
// ErrAmbiguous.
type SymbolResolver interface {
	ResolveSymbol(path []string) (model.Component, error)
}

// ImportFunc adapts a function to ImportResolver.
type ImportFunc func(path []string) ([]model.Component, error)

func (f ImportFunc) ResolveImport(path []string) ([]model.Component, error) { return f(path) }

// SymbolFunc adapts a function to SymbolResolver.
type SymbolFunc func(path []string) (model.Component, error)

func (f SymbolFunc) ResolveSymbol(path []string) (model.Component, error) { return f(path) }

// JoinPath renders a dotted path.
func JoinPath(path []string) string { return strings.Join(path, ".") }

// NotFound builds the conventional resolver error for a missing path.
func NotFound(path []string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, JoinPath(path))
}
