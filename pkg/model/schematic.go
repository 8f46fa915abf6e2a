package model

import (
	"fmt"
	"strings"
)

// Schematic is a component built from instances and signals. Its functions
// are its named signals, so a finished schematic can be instantiated inside
// another one.
type Schematic struct {
	FunctionSet
	name       string
	instances  []*ComponentInstance
	byInstance map[string]*ComponentInstance
	signals    []*Signal
	bySignal   map[string]*Signal
	links      *attachments
}

func NewSchematic(name string) *Schematic {
	s := &Schematic{
		name:       name,
		byInstance: make(map[string]*ComponentInstance),
		bySignal:   make(map[string]*Signal),
		links:      newAttachments(),
	}
	s.init(s)
	return s
}

func (s *Schematic) Name() string { return s.name }
func (s *Schematic) Kind() Kind   { return KindSchematic }

// AddInstance instantiates component under a schematic-unique name.
func (s *Schematic) AddInstance(name string, component Component) (*ComponentInstance, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("model: empty instance name in %s", s.name)
	}
	if component == nil {
		return nil, fmt.Errorf("model: instance %s has no component", name)
	}
	if _, exists := s.byInstance[name]; exists {
		return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateInstance, name, s.name)
	}
	inst := newInstance(s, name, component)
	s.instances = append(s.instances, inst)
	s.byInstance[name] = inst
	return inst, nil
}

// AddSignal declares a named signal. The name also becomes a function of
// the schematic.
func (s *Schematic) AddSignal(name string) (*Signal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("model: empty signal name in %s", s.name)
	}
	if _, exists := s.bySignal[name]; exists {
		return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateSignal, name, s.name)
	}
	if _, err := s.AddFunction(name); err != nil {
		return nil, err
	}
	sig := newSignal(s, name)
	s.signals = append(s.signals, sig)
	s.bySignal[name] = sig
	return sig, nil
}

// AddAnonymousSignal creates an unnamed signal.
func (s *Schematic) AddAnonymousSignal() *Signal {
	sig := newSignal(s, "")
	s.signals = append(s.signals, sig)
	return sig
}

// Signal looks up a named signal.
func (s *Schematic) Signal(name string) *Signal { return s.bySignal[name] }

// Instance looks up an instance by name.
func (s *Schematic) Instance(name string) *ComponentInstance { return s.byInstance[name] }

// Signals returns all signals, named and anonymous, in creation order.
func (s *Schematic) Signals() []*Signal { return append([]*Signal(nil), s.signals...) }

// Instances returns all instances in creation order.
func (s *Schematic) Instances() []*ComponentInstance {
	return append([]*ComponentInstance(nil), s.instances...)
}

func (s *Schematic) String() string { return s.name }
