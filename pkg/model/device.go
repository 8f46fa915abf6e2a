package model

import (
	"fmt"
	"strings"
)

// Device is a component with one binding table per package variant.
type Device struct {
	FunctionSet
	name     string
	configs  map[string]*DeviceConfiguration
	packages []string
}

func NewDevice(name string) *Device {
	d := &Device{name: name, configs: make(map[string]*DeviceConfiguration)}
	d.init(d)
	return d
}

func (d *Device) Name() string { return d.name }
func (d *Device) Kind() Kind   { return KindDevice }

// AddConfiguration registers cfg under the package id. Ids compare
// case-insensitively.
func (d *Device) AddConfiguration(id string, cfg *DeviceConfiguration) error {
	key := strings.ToUpper(id)
	if _, exists := d.configs[key]; exists {
		return fmt.Errorf("%w: %s package %s", ErrDuplicatePackage, d.name, id)
	}
	d.configs[key] = cfg
	d.packages = append(d.packages, id)
	return nil
}

// Configuration looks up a package variant case-insensitively.
func (d *Device) Configuration(id string) (*DeviceConfiguration, bool) {
	cfg, ok := d.configs[strings.ToUpper(id)]
	return cfg, ok
}

// PackageIDs returns the package ids in registration order.
func (d *Device) PackageIDs() []string { return append([]string(nil), d.packages...) }

func (d *Device) String() string { return d.name }
