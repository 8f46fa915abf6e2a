package model

import (
	"fmt"
	"strings"
)

// Attribute is a named, ordered list of values attached to an instance.
type Attribute struct {
	Name   string
	Values []string
}

// First returns the first value or "".
func (a *Attribute) First() string {
	if a == nil || len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}

func (a *Attribute) String() string {
	return fmt.Sprintf("%s = %s", a.Name, strings.Join(a.Values, ", "))
}

// ComponentInstance is a named use of a component inside a schematic.
type ComponentInstance struct {
	name      string
	schematic *Schematic
	component Component
	functions []*Function
	byName    map[string]*Function
	attrs     []*Attribute
}

func newInstance(s *Schematic, name string, c Component) *ComponentInstance {
	inst := &ComponentInstance{
		name:      name,
		schematic: s,
		component: c,
		byName:    make(map[string]*Function),
	}
	for _, f := range c.Functions() {
		fi := f.instantiate(inst)
		inst.functions = append(inst.functions, fi)
		inst.byName[fi.name] = fi
	}
	return inst
}

func (ci *ComponentInstance) Name() string          { return ci.name }
func (ci *ComponentInstance) Schematic() *Schematic { return ci.schematic }
func (ci *ComponentInstance) Component() Component  { return ci.component }

// Functions returns the instance functions in type declaration order.
func (ci *ComponentInstance) Functions() []*Function {
	return append([]*Function(nil), ci.functions...)
}

// Function looks up an instance function by name.
func (ci *ComponentInstance) Function(name string) *Function { return ci.byName[name] }

// AddAttribute attaches a copy of a to the instance.
func (ci *ComponentInstance) AddAttribute(a Attribute) error {
	if ci.Attribute(a.Name) != nil {
		return fmt.Errorf("%w: %s on %s", ErrDuplicateAttribute, a.Name, ci.name)
	}
	ci.attrs = append(ci.attrs, &Attribute{Name: a.Name, Values: append([]string(nil), a.Values...)})
	return nil
}

// Attribute looks up an attribute by name.
func (ci *ComponentInstance) Attribute(name string) *Attribute {
	for _, a := range ci.attrs {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Attributes returns the attributes in declaration order.
func (ci *ComponentInstance) Attributes() []*Attribute {
	return append([]*Attribute(nil), ci.attrs...)
}

func (ci *ComponentInstance) String() string {
	return fmt.Sprintf("%s : %s", ci.name, ci.component.Name())
}
