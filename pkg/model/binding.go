package model

import (
	"fmt"
	"strings"
)

// Binding associates one pin of a package with the function names it can
// carry. Once a binding is exclusive, any further bind is a conflict.
type Binding struct {
	pin       *Pin
	functions []string
	exclusive bool
}

// Bind adds a function to the pin.
func (b *Binding) Bind(function string, exclusive bool) error {
	if b.exclusive || (exclusive && len(b.functions) > 0) {
		return fmt.Errorf("%w: cannot bind %s to %s: pin already bound to %s",
			ErrBindingConflict, function, b.pin, strings.Join(b.functions, ","))
	}
	b.exclusive = exclusive
	b.functions = append(b.functions, function)
	return nil
}

func (b *Binding) Pin() *Pin { return b.pin }

// Functions returns the bound function names in bind order.
func (b *Binding) Functions() []string { return append([]string(nil), b.functions...) }

// Carries reports whether function is bound to this pin.
func (b *Binding) Carries(function string) bool {
	for _, fn := range b.functions {
		if fn == function {
			return true
		}
	}
	return false
}

func (b *Binding) IsExclusive() bool { return b.exclusive }

func (b *Binding) String() string {
	return fmt.Sprintf("%s => (%s)", b.pin, strings.Join(b.functions, ","))
}

// DeviceConfiguration is the pin-to-function table of a device in one
// package variant. A binding exists for every pin of the package.
type DeviceConfiguration struct {
	pkg      *Package
	bindings []*Binding
	byPin    map[string]*Binding
}

// NewDeviceConfiguration creates an empty binding for every pin of pkg.
func NewDeviceConfiguration(pkg *Package) *DeviceConfiguration {
	cfg := &DeviceConfiguration{
		pkg:      pkg,
		bindings: make([]*Binding, 0, pkg.PinCount()),
		byPin:    make(map[string]*Binding, pkg.PinCount()),
	}
	for _, pin := range pkg.pins {
		b := &Binding{pin: pin}
		cfg.bindings = append(cfg.bindings, b)
		cfg.byPin[pin.name] = b
	}
	return cfg
}

func (c *DeviceConfiguration) Package() *Package { return c.pkg }

// Bindings returns the bindings in package pin order.
func (c *DeviceConfiguration) Bindings() []*Binding {
	return append([]*Binding(nil), c.bindings...)
}

// Binding returns the binding of the named pin or nil.
func (c *DeviceConfiguration) Binding(pin string) *Binding { return c.byPin[pin] }

// Bind binds function to the named pin.
func (c *DeviceConfiguration) Bind(pin, function string, exclusive bool) error {
	b := c.byPin[pin]
	if b == nil {
		return fmt.Errorf("%w: %s has no pin %q", ErrUnknownPin, c.pkg.name, pin)
	}
	return b.Bind(function, exclusive)
}

// PinsOf returns the bindings carrying function, in pin order.
func (c *DeviceConfiguration) PinsOf(function string) []*Binding {
	var out []*Binding
	for _, b := range c.bindings {
		if b.Carries(function) {
			out = append(out, b)
		}
	}
	return out
}
