// Package devicedef loads device pin-binding tables from YAML and BSDL
// sources and builds them into model devices.
package devicedef

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/coresch/pkg/model"
	"github.com/OpenTraceLab/coresch/pkg/packages"
)

var (
	ErrUnknownLocation = errors.New("unknown pin location")
	ErrBindMode        = errors.New("invalid bind mode")
	ErrFormat          = errors.New("unsupported definition format")
)

// BindMode says how a function claims its locations.
type BindMode string

const (
	// ModeAny binds the function to each location, allowing other functions
	// to share the pin.
	ModeAny BindMode = "any"
	// ModeAll binds the function exclusively to every location.
	ModeAll BindMode = "all"
)

// ParseBindMode accepts "any" or "all" in any case. An empty string is
// ModeAny.
func ParseBindMode(s string) (BindMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return ModeAny, nil
	case "all":
		return ModeAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBindMode, s)
}

// Definition describes one device.
type Definition struct {
	Name string
	// Functions lists functions that exist regardless of pin bindings.
	Functions []string
	Packages  []PackageDefinition
}

// PackageDefinition is the pin table of one package variant.
type PackageDefinition struct {
	ID   string
	Pins []PinDefinition
}

// PinDefinition binds a function to one or more physical locations.
type PinDefinition struct {
	Function  string
	Locations []string
	Mode      BindMode
}

// PackageSource produces the pin list for a package id.
type PackageSource interface {
	Generate(id string) (*model.Package, error)
}

// Build turns a definition into a device. Package shapes come from gen; when
// gen is nil or does not know an id, the package is made of the locations
// the definition uses, in order of first appearance.
func Build(def *Definition, gen PackageSource) (*model.Device, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("devicedef: device without a name")
	}
	dev := model.NewDevice(def.Name)

	declare := func(fn string) error {
		if fn == "" {
			return fmt.Errorf("devicedef: %s: empty function name", def.Name)
		}
		if dev.HasFunction(fn) {
			return nil
		}
		_, err := dev.AddFunction(fn)
		return err
	}
	for _, fn := range def.Functions {
		if err := declare(fn); err != nil {
			return nil, err
		}
	}
	for _, pd := range def.Packages {
		for _, pin := range pd.Pins {
			if err := declare(pin.Function); err != nil {
				return nil, err
			}
		}
	}

	for _, pd := range def.Packages {
		cfg, err := configure(def.Name, pd, gen)
		if err != nil {
			return nil, err
		}
		if err := dev.AddConfiguration(pd.ID, cfg); err != nil {
			return nil, fmt.Errorf("devicedef: %s: %w", def.Name, err)
		}
	}
	return dev, nil
}

func configure(device string, pd PackageDefinition, gen PackageSource) (*model.DeviceConfiguration, error) {
	pkg, err := shape(pd, gen)
	if err != nil {
		return nil, fmt.Errorf("devicedef: %s/%s: %w", device, pd.ID, err)
	}
	cfg := model.NewDeviceConfiguration(pkg)
	for _, pin := range pd.Pins {
		if len(pin.Locations) == 0 {
			return nil, fmt.Errorf("devicedef: %s/%s: function %s has no location", device, pd.ID, pin.Function)
		}
		mode, err := ParseBindMode(string(pin.Mode))
		if err != nil {
			return nil, fmt.Errorf("devicedef: %s/%s: %s: %w", device, pd.ID, pin.Function, err)
		}
		for _, loc := range pin.Locations {
			if pkg.Pin(loc) == nil {
				return nil, fmt.Errorf("devicedef: %s/%s: %s: %w: %s", device, pd.ID, pin.Function, ErrUnknownLocation, loc)
			}
			if err := cfg.Bind(loc, pin.Function, mode == ModeAll); err != nil {
				return nil, fmt.Errorf("devicedef: %s/%s: %w", device, pd.ID, err)
			}
		}
	}
	return cfg, nil
}

func shape(pd PackageDefinition, gen PackageSource) (*model.Package, error) {
	if gen != nil {
		pkg, err := gen.Generate(pd.ID)
		if err == nil {
			return pkg, nil
		}
		if !errors.Is(err, packages.ErrNoGenerator) {
			return nil, err
		}
	}
	var locs []string
	seen := make(map[string]bool)
	for _, pin := range pd.Pins {
		for _, loc := range pin.Locations {
			if !seen[loc] {
				seen[loc] = true
				locs = append(locs, loc)
			}
		}
	}
	return model.NewPackage(strings.ToUpper(pd.ID), locs)
}

// SplitLocations splits a comma separated location list.
func SplitLocations(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ReadFile loads the definitions stored at path, choosing the format by
// extension: .yaml/.yml, .bsd/.bsdl/.bsm or .xml.
func ReadFile(path string) ([]*Definition, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAMLFile(path)
	case ".bsd", ".bsdl", ".bsm":
		def, err := ReadBSDLFile(path)
		if err != nil {
			return nil, err
		}
		return []*Definition{def}, nil
	case ".xml":
		def, err := ReadXMLFile(path)
		if err != nil {
			return nil, err
		}
		return []*Definition{def}, nil
	}
	return nil, fmt.Errorf("devicedef: %s: %w", path, ErrFormat)
}

// IsDefinitionFile reports whether ReadFile understands path.
func IsDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".bsd", ".bsdl", ".bsm", ".xml":
		return true
	}
	return false
}
