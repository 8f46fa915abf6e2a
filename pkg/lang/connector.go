package lang

import (
	"fmt"
	"slices"

	"github.com/OpenTraceLab/coresch/pkg/bus"
	"github.com/OpenTraceLab/coresch/pkg/model"
)

// socket is one position of a connector statement before lane expansion.
type socket struct {
	tok *Token

	// part is set for inline parts such as [R:10k].
	part  *model.Primitive
	value string

	// paths holds the expanded connection paths of a named socket.
	paths [][]string
}

func (s *socket) width() int {
	if s.part != nil {
		return 1
	}
	return len(s.paths)
}

// path returns the path used by the given lane.
func (s *socket) path(lane int) []string {
	if len(s.paths) == 1 {
		return s.paths[0]
	}
	return s.paths[lane]
}

// terminal is one side of a single connection: either a signal or an
// instance function.
type terminal struct {
	signal   *model.Signal
	function *model.Function
}

// endpoint is a resolved socket. Inline parts expose A to the left and B to
// the right.
type endpoint struct {
	terminal
	part *model.ComponentInstance
}

func (e endpoint) left() terminal {
	if e.part != nil {
		return terminal{function: e.part.Function("A")}
	}
	return e.terminal
}

func (e endpoint) right() terminal {
	if e.part != nil {
		return terminal{function: e.part.Function("B")}
	}
	return e.terminal
}

// parseConnector handles socket (CONNECTOR socket)* ';'.
func (p *Parser) parseConnector(s *model.Schematic) error {
	var sockets []*socket
	for {
		sk, err := p.parseSocket()
		if err != nil {
			return err
		}
		sockets = append(sockets, sk)
		sep, err := p.expect(TokenConnector, TokenSemicolon)
		if err != nil {
			return err
		}
		if sep.Type == TokenSemicolon {
			break
		}
	}

	for i, sk := range sockets {
		if sk.part != nil && (i == 0 || i == len(sockets)-1) {
			return p.errorf(sk.tok, ErrInlinePlacement, "inline part %s must sit between two connection points", sk.tok.Value)
		}
	}

	lanes, err := p.laneCount(sockets)
	if err != nil {
		return err
	}
	for lane := 0; lane < lanes; lane++ {
		if err := p.wire(s, sockets, lane); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseSocket() (*socket, error) {
	tok, err := p.expect(TokenIdentifier, TokenInlinePart)
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenInlinePart {
		return &socket{
			tok:   tok,
			part:  model.InlinePrimitive(tok.Group("type")),
			value: tok.Group("value") + tok.Group("unit"),
		}, nil
	}

	segments := []*Token{tok}
	for p.skip(TokenDot) {
		seg, err := p.expect(TokenIdentifier, TokenNumber)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	// Each segment expands on its own; the path set is their cross product.
	paths := [][]string{nil}
	for _, seg := range segments {
		names, err := bus.Expand(seg.Value)
		if err != nil {
			return nil, p.errorf(seg, err, "invalid range in %s: %v", seg.Value, err)
		}
		if len(names) > bus.MaxWidth/len(paths) {
			return nil, p.errorf(seg, bus.ErrSpecifier, "%s expands to more than %d connection points", tok.Value, bus.MaxWidth)
		}
		next := make([][]string, 0, len(paths)*len(names))
		for _, prefix := range paths {
			for _, name := range names {
				next = append(next, append(slices.Clip(prefix), name))
			}
		}
		paths = next
	}
	return &socket{tok: tok, paths: paths}, nil
}

// laneCount returns the widest socket. Every socket must be that wide or a
// single connection point.
func (p *Parser) laneCount(sockets []*socket) (int, error) {
	n := 1
	for _, sk := range sockets {
		n = max(n, sk.width())
	}
	for _, sk := range sockets {
		if w := sk.width(); w != 1 && w != n {
			return 0, p.errorf(sk.tok, ErrCountMismatch, "%s expands to %d connection points, expected 1 or %d", sk.tok.Value, w, n)
		}
	}
	return n, nil
}

func (p *Parser) wire(s *model.Schematic, sockets []*socket, lane int) error {
	ends := make([]endpoint, len(sockets))
	for i, sk := range sockets {
		if sk.part != nil {
			inst, err := p.placeInline(s, sk)
			if err != nil {
				return err
			}
			ends[i] = endpoint{part: inst}
			continue
		}
		t, err := p.lookup(s, sk.tok, sk.path(lane))
		if err != nil {
			return err
		}
		ends[i] = endpoint{terminal: t}
	}

	for i := 0; i+1 < len(ends); i++ {
		if err := p.connect(s, sockets[i+1].tok, ends[i].right(), ends[i+1].left()); err != nil {
			return err
		}
	}
	return nil
}

// lookup resolves a connection path: one segment names a signal, two name
// an instance function.
func (p *Parser) lookup(s *model.Schematic, tok *Token, path []string) (terminal, error) {
	switch len(path) {
	case 1:
		sig := s.Signal(path[0])
		if sig == nil {
			return terminal{}, p.errorf(tok, ErrUnknownSignal, "unknown signal %s", path[0])
		}
		return terminal{signal: sig}, nil
	case 2:
		inst := s.Instance(path[0])
		if inst == nil {
			return terminal{}, p.errorf(tok, ErrUnknownInstance, "unknown device %s", path[0])
		}
		fn := inst.Function(path[1])
		if fn == nil {
			return terminal{}, p.errorf(tok, ErrUnknownFunction, "device %s (%s) has no function %s", path[0], inst.Component().Name(), path[1])
		}
		return terminal{function: fn}, nil
	default:
		return terminal{}, p.errorf(tok, ErrInvalidPath, "invalid connection point %s", JoinPath(path))
	}
}

// placeInline instantiates an inline part under the next free $<letter><n>
// name and records its value.
func (p *Parser) placeInline(s *model.Schematic, sk *socket) (*model.ComponentInstance, error) {
	letter := sk.tok.Group("type")
	var name string
	for {
		p.inline[letter]++
		name = fmt.Sprintf("$%s%d", letter, p.inline[letter])
		if s.Instance(name) == nil {
			break
		}
	}
	inst, err := s.AddInstance(name, sk.part)
	if err != nil {
		return nil, p.errorf(sk.tok, err, "inline part %s: %v", sk.tok.Value, err)
	}
	if err := inst.AddAttribute(model.Attribute{Name: "value", Values: []string{sk.value}}); err != nil {
		return nil, p.errorf(sk.tok, err, "inline part %s: %v", sk.tok.Value, err)
	}
	return inst, nil
}

// connect joins two terminals. The function side attaches to the signal
// side; two bare functions get a fresh anonymous signal.
func (p *Parser) connect(s *model.Schematic, tok *Token, a, b terminal) error {
	if a.signal != nil && b.signal != nil {
		return p.errorf(tok, ErrSignalToSignal, "cannot connect signal %s to signal %s", a.signal, b.signal)
	}
	sig := a.signal
	if sig == nil {
		sig = b.signal
	}
	if sig == nil {
		sig = s.AddAnonymousSignal()
	}
	for _, t := range []terminal{a, b} {
		if t.function == nil {
			continue
		}
		if err := sig.Attach(t.function); err != nil {
			return p.errorf(tok, err, "attach %s: %v", t.function, err)
		}
	}
	return nil
}
