package model

import "fmt"

// Primitive is a library part with a fixed function list, e.g. a resistor.
type Primitive struct {
	FunctionSet
	name   string
	prefix string
}

// NewPrimitive creates a primitive component with the given functions.
// prefix is the reference designator letter used for anonymous instances.
func NewPrimitive(name, prefix string, functions ...string) (*Primitive, error) {
	p := &Primitive{name: name, prefix: prefix}
	p.init(p)
	for _, fn := range functions {
		if _, err := p.AddFunction(fn); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func mustPrimitive(name, prefix string, functions ...string) *Primitive {
	p, err := NewPrimitive(name, prefix, functions...)
	if err != nil {
		panic(fmt.Sprintf("model: builtin %s: %v", name, err))
	}
	return p
}

func (p *Primitive) Name() string { return p.name }
func (p *Primitive) Kind() Kind   { return KindPrimitive }

// Prefix is the reference designator letter, e.g. "R".
func (p *Primitive) Prefix() string { return p.prefix }

func (p *Primitive) String() string { return p.name }

// Built-in primitives. Two-terminal passives expose A and B.
var (
	Resistor  = mustPrimitive("Resistor", "R", "A", "B")
	Capacitor = mustPrimitive("Capacitor", "C", "A", "B")
	Inductor  = mustPrimitive("Inductor", "L", "A", "B")
	Battery   = mustPrimitive("Battery", "BAT", "Plus", "Minus")
)

// Primitives returns the built-in primitive library in registration order.
func Primitives() []*Primitive {
	return []*Primitive{Resistor, Capacitor, Inductor, Battery}
}

// LookupPrimitive finds a built-in primitive by name or designator prefix.
func LookupPrimitive(name string) *Primitive {
	for _, p := range Primitives() {
		if p.name == name || p.prefix == name {
			return p
		}
	}
	return nil
}

// InlinePrimitive maps an inline part letter (R, C or L) to its primitive.
func InlinePrimitive(letter string) *Primitive {
	switch letter {
	case "R":
		return Resistor
	case "C":
		return Capacitor
	case "L":
		return Inductor
	default:
		return nil
	}
}
