package devicedef

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlDevice struct {
	Device    string        `yaml:"device"`
	Functions []string      `yaml:"functions,omitempty"`
	Packages  []yamlPackage `yaml:"packages"`
}

type yamlPackage struct {
	ID   string    `yaml:"id"`
	Pins []yamlPin `yaml:"pins"`
}

type yamlPin struct {
	Function string   `yaml:"function"`
	Loc      string   `yaml:"loc"`
	Mode     BindMode `yaml:"mode,omitempty"`
}

// UnmarshalYAML validates the mode while decoding.
func (m *BindMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	mode, err := ParseBindMode(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = mode
	return nil
}

// ReadYAML decodes every device document in r. Unknown keys are rejected.
//
//	device: atmega8
//	packages:
//	  - id: DIP-28
//	    pins:
//	      - { function: VCC, loc: "7", mode: all }
//	      - { function: GND, loc: "8, 22", mode: all }
func ReadYAML(r io.Reader) ([]*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var defs []*Definition
	for {
		var doc yamlDevice
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("devicedef: decode yaml: %w", err)
		}
		defs = append(defs, doc.definition())
	}
	return defs, nil
}

// ReadYAMLFile decodes the device documents stored at path.
func ReadYAMLFile(path string) ([]*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("devicedef: %w", err)
	}
	defer f.Close()

	defs, err := ReadYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

func (d *yamlDevice) definition() *Definition {
	def := &Definition{Name: d.Device, Functions: d.Functions}
	for _, p := range d.Packages {
		pd := PackageDefinition{ID: p.ID}
		for _, pin := range p.Pins {
			mode := pin.Mode
			if mode == "" {
				mode = ModeAny
			}
			pd.Pins = append(pd.Pins, PinDefinition{
				Function:  pin.Function,
				Locations: SplitLocations(pin.Loc),
				Mode:      mode,
			})
		}
		def.Packages = append(def.Packages, pd)
	}
	return def
}
