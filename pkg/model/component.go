// Package model holds the electrical and physical circuit model: component
// types and their functions, schematics with instances and signals, and the
// package/pin/binding tables used to place functions on physical pins.
package model

import (
	"fmt"
	"strings"
)

// Kind tags the variant of a Component.
type Kind int

const (
	KindPrimitive Kind = iota
	KindDevice
	KindSchematic
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindDevice:
		return "device"
	case KindSchematic:
		return "schematic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Component is anything that can be instantiated inside a schematic.
type Component interface {
	Name() string
	Kind() Kind
	// Functions returns the type-level functions in declaration order.
	Functions() []*Function
	// Function returns the named type-level function or nil.
	Function(name string) *Function
}

// FunctionSet is the ordered, uniquely named function list shared by all
// component variants.
type FunctionSet struct {
	owner     Component
	functions []*Function
	byName    map[string]*Function
}

func (fs *FunctionSet) init(owner Component) {
	fs.owner = owner
	fs.byName = make(map[string]*Function)
}

// AddFunction declares a new type-level function.
func (fs *FunctionSet) AddFunction(name string) (*Function, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("model: empty function name on %s", fs.owner.Name())
	}
	if _, exists := fs.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateFunction, fs.owner.Name(), name)
	}
	f := newTypeFunction(fs.owner, name)
	fs.functions = append(fs.functions, f)
	fs.byName[name] = f
	return f, nil
}

// Functions returns a copy of the function list.
func (fs *FunctionSet) Functions() []*Function {
	return append([]*Function(nil), fs.functions...)
}

// Function looks up a function by name.
func (fs *FunctionSet) Function(name string) *Function {
	return fs.byName[name]
}

// HasFunction reports whether name is declared.
func (fs *FunctionSet) HasFunction(name string) bool {
	_, ok := fs.byName[name]
	return ok
}
