package model

import (
	"fmt"
	"strconv"
)

// Package is a physical housing with a fixed, ordered pin list.
type Package struct {
	name   string
	pins   []*Pin
	byName map[string]*Pin
}

// Pin is a named physical contact of exactly one package.
type Pin struct {
	pkg  *Package
	name string
}

// NewPackage creates a package from an ordered list of pin names.
func NewPackage(name string, pinNames []string) (*Package, error) {
	p := &Package{
		name:   name,
		pins:   make([]*Pin, 0, len(pinNames)),
		byName: make(map[string]*Pin, len(pinNames)),
	}
	for _, pn := range pinNames {
		if _, exists := p.byName[pn]; exists {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicatePin, name, pn)
		}
		pin := &Pin{pkg: p, name: pn}
		p.pins = append(p.pins, pin)
		p.byName[pn] = pin
	}
	return p, nil
}

// NewNumberedPackage creates a package with pins named "1" through count.
func NewNumberedPackage(name string, count int) *Package {
	names := make([]string, count)
	for i := range names {
		names[i] = strconv.Itoa(i + 1)
	}
	p, _ := NewPackage(name, names)
	return p
}

func (p *Package) Name() string { return p.name }

// Pins returns a copy of the pin list.
func (p *Package) Pins() []*Pin { return append([]*Pin(nil), p.pins...) }

func (p *Package) PinCount() int { return len(p.pins) }

// Pin looks up a pin by name.
func (p *Package) Pin(name string) *Pin { return p.byName[name] }

func (p *Package) String() string { return p.name }

func (p *Pin) Package() *Package { return p.pkg }
func (p *Pin) Name() string      { return p.name }
func (p *Pin) String() string    { return p.pkg.name + "." + p.name }
