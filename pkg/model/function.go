package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Function is a named electrical terminal. Type-level functions belong to a
// Component; instance-level functions belong to a ComponentInstance and are
// the only ones that can be attached to signals.
type Function struct {
	id        uuid.UUID
	name      string
	component Component
	instance  *ComponentInstance
	decl      *Function
}

func newTypeFunction(c Component, name string) *Function {
	return &Function{id: uuid.New(), name: name, component: c}
}

// instantiate creates the instance-level copy of a type function.
func (f *Function) instantiate(inst *ComponentInstance) *Function {
	return &Function{
		id:        uuid.New(),
		name:      f.name,
		component: f.component,
		instance:  inst,
		decl:      f,
	}
}

// ID is the stable identifier used by the attachment tables.
func (f *Function) ID() uuid.UUID { return f.id }

func (f *Function) Name() string { return f.name }

// Component returns the component type declaring this function.
func (f *Function) Component() Component { return f.component }

// Instance returns the owning instance, nil for type-level functions.
func (f *Function) Instance() *ComponentInstance { return f.instance }

// Declaration returns the type-level function an instance function was
// created from, or f itself for type-level functions.
func (f *Function) Declaration() *Function {
	if f.decl == nil {
		return f
	}
	return f.decl
}

// IsInstanced reports whether f belongs to a component instance.
func (f *Function) IsInstanced() bool { return f.instance != nil }

// Schematic returns the schematic containing the owning instance.
func (f *Function) Schematic() *Schematic {
	if f.instance == nil {
		return nil
	}
	return f.instance.schematic
}

// Signals returns the signals this instance function is attached to.
func (f *Function) Signals() []*Signal {
	s := f.Schematic()
	if s == nil {
		return nil
	}
	return s.links.signalsOf(f)
}

// IsConnected reports whether at least one signal is attached.
func (f *Function) IsConnected() bool {
	return len(f.Signals()) > 0
}

func (f *Function) String() string {
	if f.instance != nil {
		return fmt.Sprintf("%s.%s", f.instance.name, f.name)
	}
	return fmt.Sprintf("%s.%s", f.component.Name(), f.name)
}
