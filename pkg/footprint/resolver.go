// Package footprint maps the connected functions of device instances onto
// the physical pins of their selected packages.
//
// Every pin whose binding carries at least one connected function becomes an
// attachment with a candidate set. Attachments with a single candidate are
// committed and their function is withdrawn from the other attachments of
// the same part, until nothing changes. What remains with several candidates
// is reported, not guessed.
package footprint

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/OpenTraceLab/coresch/pkg/model"
)

var (
	ErrUnmappedPin    = errors.New("unmapped pin")
	ErrUnknownPackage = errors.New("unknown package")
)

// FootprintError reports a fatal resolution failure.
type FootprintError struct {
	Instance string
	Pin      string
	Package  string
	Err      error
}

func (e *FootprintError) Error() string {
	var b strings.Builder
	b.WriteString("footprint: ")
	b.WriteString(e.Instance)
	if e.Pin != "" {
		fmt.Fprintf(&b, " pin %s", e.Pin)
	}
	if e.Package != "" {
		fmt.Fprintf(&b, " (%s)", e.Package)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *FootprintError) Unwrap() error { return e.Err }

// Attachment is one physical pin of one part.
type Attachment struct {
	Instance *model.ComponentInstance
	Pin      *model.Pin
}

func (a Attachment) String() string {
	return a.Instance.Name() + "." + a.Pin.Name()
}

// Assignment is a committed pin.
type Assignment struct {
	Attachment
	Function *model.Function
}

// Ambiguity is a pin left with more than one candidate.
type Ambiguity struct {
	Attachment
	Candidates []*model.Function
}

// Configurations selects one device configuration per instance.
type Configurations map[*model.ComponentInstance]*model.DeviceConfiguration

// Result is the outcome of a resolution.
type Result struct {
	// Assignments in commit order.
	Assignments []Assignment
	Unresolved  []Ambiguity
	// Unplaced lists connected functions that no pin of their part carries.
	Unplaced []*model.Function

	byAttachment map[Attachment]*model.Function
}

// Lookup returns the function committed to a pin.
func (r *Result) Lookup(a Attachment) (*model.Function, bool) {
	fn, ok := r.byAttachment[a]
	return fn, ok
}

// PinsOf returns the pins committed to fn, in commit order.
func (r *Result) PinsOf(fn *model.Function) []*model.Pin {
	var pins []*model.Pin
	for _, as := range r.Assignments {
		if as.Function == fn {
			pins = append(pins, as.Pin)
		}
	}
	return pins
}

// Complete reports whether every attachment was committed.
func (r *Result) Complete() bool {
	return len(r.Unresolved) == 0
}

// SelectConfigurations picks the configuration named by the "package"
// attribute of every device instance. Lookup ignores case. Primitive and
// schematic instances carry no bindings and are skipped.
func SelectConfigurations(s *model.Schematic) (Configurations, error) {
	configs := make(Configurations)
	for _, inst := range s.Instances() {
		dev, ok := inst.Component().(*model.Device)
		if !ok {
			continue
		}
		id := inst.Attribute("package").First()
		if id == "" {
			return nil, &FootprintError{Instance: inst.Name(), Err: fmt.Errorf("%w: no package attribute", ErrUnknownPackage)}
		}
		cfg, ok := dev.Configuration(id)
		if !ok {
			return nil, &FootprintError{Instance: inst.Name(), Package: id, Err: fmt.Errorf("%w: %s has %s", ErrUnknownPackage, dev.Name(), strings.Join(dev.PackageIDs(), ", "))}
		}
		configs[inst] = cfg
	}
	return configs, nil
}

// ResolveSchematic selects configurations and resolves s.
func ResolveSchematic(s *model.Schematic) (*Result, error) {
	configs, err := SelectConfigurations(s)
	if err != nil {
		return nil, err
	}
	return Resolve(s, configs)
}

// candidate is the working state of one attachment.
type candidate struct {
	Attachment
	functions []*model.Function
	exclusive bool
	committed bool
}

// Resolve runs the fixed-point reduction over the instances of s that have
// a configuration. It never modifies s or configs.
func Resolve(s *model.Schematic, configs Configurations) (*Result, error) {
	var cands []*candidate
	for _, inst := range s.Instances() {
		cfg, ok := configs[inst]
		if !ok {
			continue
		}
		for _, b := range cfg.Bindings() {
			c := &candidate{Attachment: Attachment{Instance: inst, Pin: b.Pin()}, exclusive: b.IsExclusive()}
			for _, name := range b.Functions() {
				fn := inst.Function(name)
				if fn == nil || !fn.IsConnected() {
					continue
				}
				c.functions = append(c.functions, fn)
			}
			if len(c.functions) > 0 {
				cands = append(cands, c)
			}
		}
	}

	res := &Result{byAttachment: make(map[Attachment]*model.Function)}
	for changed := true; changed; {
		changed = false
		for _, c := range cands {
			if c.committed {
				continue
			}
			switch len(c.functions) {
			case 0:
				return nil, &FootprintError{
					Instance: c.Instance.Name(),
					Pin:      c.Pin.Name(),
					Package:  c.Pin.Package().Name(),
					Err:      ErrUnmappedPin,
				}
			case 1:
				fn := c.functions[0]
				c.committed = true
				changed = true
				res.Assignments = append(res.Assignments, Assignment{Attachment: c.Attachment, Function: fn})
				res.byAttachment[c.Attachment] = fn
				withdraw(cands, c, fn)
			}
		}
	}

	placed := make(map[*model.Function]bool)
	for _, as := range res.Assignments {
		placed[as.Function] = true
	}
	for _, c := range cands {
		if c.committed {
			continue
		}
		res.Unresolved = append(res.Unresolved, Ambiguity{Attachment: c.Attachment, Candidates: slices.Clone(c.functions)})
		for _, fn := range c.functions {
			placed[fn] = true
		}
	}
	for _, inst := range s.Instances() {
		if _, ok := configs[inst]; !ok {
			continue
		}
		for _, fn := range inst.Functions() {
			if fn.IsConnected() && !placed[fn] {
				res.Unplaced = append(res.Unplaced, fn)
			}
		}
	}
	return res, nil
}

// withdraw removes fn from every open shared attachment of the same part.
// Exclusive attachments keep their function: an "all" binding places it on
// every listed pin.
func withdraw(cands []*candidate, from *candidate, fn *model.Function) {
	for _, c := range cands {
		if c == from || c.committed || c.exclusive || c.Instance != from.Instance {
			continue
		}
		c.functions = slices.DeleteFunc(c.functions, func(f *model.Function) bool { return f == fn })
	}
}
