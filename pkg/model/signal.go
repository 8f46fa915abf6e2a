package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Signal is a named or anonymous set of connected instance functions.
type Signal struct {
	id        uuid.UUID
	name      string
	schematic *Schematic
}

func newSignal(s *Schematic, name string) *Signal {
	return &Signal{id: uuid.New(), name: name, schematic: s}
}

func (s *Signal) ID() uuid.UUID         { return s.id }
func (s *Signal) Name() string          { return s.name }
func (s *Signal) Schematic() *Schematic { return s.schematic }
func (s *Signal) IsAnonymous() bool     { return s.name == "" }

// Attach connects an instance function of the same schematic. Attaching
// twice is a no-op.
func (s *Signal) Attach(f *Function) error {
	if err := s.check(f); err != nil {
		return err
	}
	s.schematic.links.attach(s, f)
	return nil
}

// Detach disconnects f from the signal.
func (s *Signal) Detach(f *Function) error {
	if err := s.check(f); err != nil {
		return err
	}
	s.schematic.links.detach(s, f)
	return nil
}

// Attachments returns the attached functions in attach order.
func (s *Signal) Attachments() []*Function {
	return s.schematic.links.functionsOf(s)
}

func (s *Signal) check(f *Function) error {
	if f == nil {
		return fmt.Errorf("model: nil function")
	}
	if !f.IsInstanced() {
		return fmt.Errorf("%w: %s", ErrAbstractFunction, f)
	}
	if f.Schematic() != s.schematic {
		return fmt.Errorf("%w: %s is not in %s", ErrForeignFunction, f, s.schematic.name)
	}
	return nil
}

func (s *Signal) String() string {
	if s.name == "" {
		return "<anonymous signal>"
	}
	return s.name
}

// attachments keeps both directions of the signal/function relation as two
// tables keyed by id. attach and detach always update both.
type attachments struct {
	functions map[uuid.UUID][]*Function // signal id -> functions
	signals   map[uuid.UUID][]*Signal   // function id -> signals
}

func newAttachments() *attachments {
	return &attachments{
		functions: make(map[uuid.UUID][]*Function),
		signals:   make(map[uuid.UUID][]*Signal),
	}
}

func (a *attachments) attach(s *Signal, f *Function) {
	for _, existing := range a.functions[s.id] {
		if existing == f {
			return
		}
	}
	a.functions[s.id] = append(a.functions[s.id], f)
	a.signals[f.id] = append(a.signals[f.id], s)
}

func (a *attachments) detach(s *Signal, f *Function) {
	a.functions[s.id] = removeFunction(a.functions[s.id], f)
	a.signals[f.id] = removeSignal(a.signals[f.id], s)
}

func (a *attachments) functionsOf(s *Signal) []*Function {
	return append([]*Function(nil), a.functions[s.id]...)
}

func (a *attachments) signalsOf(f *Function) []*Signal {
	return append([]*Signal(nil), a.signals[f.id]...)
}

func removeFunction(list []*Function, f *Function) []*Function {
	out := list[:0]
	for _, x := range list {
		if x != f {
			out = append(out, x)
		}
	}
	return out
}

func removeSignal(list []*Signal, s *Signal) []*Signal {
	out := list[:0]
	for _, x := range list {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}
