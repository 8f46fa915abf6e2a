// Package library holds loaded components grouped by import path and
// serves them to the schematic parser.
package library

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/OpenTraceLab/coresch/pkg/devicedef"
	"github.com/OpenTraceLab/coresch/pkg/lang"
	"github.com/OpenTraceLab/coresch/pkg/model"
	"github.com/OpenTraceLab/coresch/pkg/packages"
)

// Memory is an in-memory component library. It implements both
// lang.ImportResolver and lang.SymbolResolver and is safe for concurrent
// lookups.
type Memory struct {
	mu       sync.RWMutex
	imports  map[string][]model.Component
	packages devicedef.PackageSource
	logger   *slog.Logger
}

var (
	_ lang.ImportResolver = (*Memory)(nil)
	_ lang.SymbolResolver = (*Memory)(nil)
)

// NewMemory creates an empty library using the default package generators.
func NewMemory() *Memory {
	return &Memory{
		imports:  make(map[string][]model.Component),
		packages: packages.Default(),
	}
}

// SetLogger sets the logger used while loading.
func (m *Memory) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetPackages replaces the package generators used for device definitions.
func (m *Memory) SetPackages(src devicedef.PackageSource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.packages = src
}

// Add registers components under a dotted import path. A component whose
// name is already registered under that path replaces the earlier one.
func (m *Memory) Add(path string, comps ...model.Component) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.imports[path]
	for _, c := range comps {
		replaced := false
		for i, old := range list {
			if old.Name() == c.Name() {
				list[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, c)
		}
	}
	m.imports[path] = list
}

// Paths returns the registered import paths in sorted order.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.imports))
	for p := range m.imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Components returns the components registered under path.
func (m *Memory) Components(path string) []model.Component {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.Component(nil), m.imports[path]...)
}

// ResolveImport implements lang.ImportResolver.
func (m *Memory) ResolveImport(path []string) ([]model.Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	comps, ok := m.imports[lang.JoinPath(path)]
	if !ok {
		return nil, lang.NotFound(path)
	}
	return append([]model.Component(nil), comps...), nil
}

// ResolveSymbol implements lang.SymbolResolver. A qualified path
// "<import path>.<name>" names a component of that import path. A bare name
// must be unique across the library; built-in primitives are the fallback.
func (m *Memory) ResolveSymbol(path []string) (model.Component, error) {
	if len(path) == 0 {
		return nil, lang.NotFound(path)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(path) > 1 {
		name := path[len(path)-1]
		for _, c := range m.imports[lang.JoinPath(path[:len(path)-1])] {
			if c.Name() == name {
				return c, nil
			}
		}
		return nil, lang.NotFound(path)
	}

	var (
		found []model.Component
		where []string
	)
	for p, comps := range m.imports {
		for _, c := range comps {
			if c.Name() == path[0] {
				found = append(found, c)
				where = append(where, p)
			}
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		if p := model.LookupPrimitive(path[0]); p != nil {
			return p, nil
		}
		return nil, lang.NotFound(path)
	}
	sort.Strings(where)
	return nil, fmt.Errorf("%w: %s is defined in %s", lang.ErrAmbiguous, path[0], strings.Join(where, ", "))
}

func (m *Memory) debug(msg string, args ...any) {
	m.mu.RLock()
	logger := m.logger
	m.mu.RUnlock()
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// LoadDir walks root and registers every device definition and schematic
// document it finds. Each directory is an import path relative to root
// ("std/passives" becomes "std.passives"); files directly in root use the
// base name of root. Definitions are loaded before schematic documents so
// that schematics may use the devices next to them.
func (m *Memory) LoadDir(root string) error {
	var defs, schematics []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		switch {
		case devicedef.IsDefinitionFile(path):
			defs = append(defs, path)
		case strings.EqualFold(filepath.Ext(path), ".sch"):
			schematics = append(schematics, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("library: walk %s: %w", root, err)
	}

	for _, path := range defs {
		if err := m.loadDefinitions(root, path); err != nil {
			return err
		}
	}
	for _, path := range schematics {
		if err := m.loadSchematics(root, path); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) loadDefinitions(root, path string) error {
	defs, err := devicedef.ReadFile(path)
	if err != nil {
		return fmt.Errorf("library: %w", err)
	}
	m.mu.RLock()
	gen := m.packages
	m.mu.RUnlock()

	importPath := ImportPath(root, path)
	for _, def := range defs {
		dev, err := devicedef.Build(def, gen)
		if err != nil {
			return fmt.Errorf("library: %s: %w", path, err)
		}
		m.Add(importPath, dev)
		m.debug("loaded device", "import", importPath, "device", dev.Name(), "packages", dev.PackageIDs(), "file", path)
	}
	return nil
}

func (m *Memory) loadSchematics(root, path string) error {
	doc, err := lang.NewParser(m, m).ParseFile(path)
	if err != nil {
		return fmt.Errorf("library: %w", err)
	}
	importPath := ImportPath(root, path)
	for _, s := range doc.Schematics {
		m.Add(importPath, s)
		m.debug("loaded schematic", "import", importPath, "schematic", s.Name(), "file", path)
	}
	return nil
}

// ImportPath returns the dotted import path of the directory holding file,
// relative to root.
func ImportPath(root, file string) string {
	rel, err := filepath.Rel(root, filepath.Dir(file))
	if err != nil || rel == "." {
		return filepath.Base(filepath.Clean(root))
	}
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", ".")
}
