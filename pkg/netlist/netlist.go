// Package netlist flattens a parsed schematic into electrical nets.
//
// Signals that share an instance function are the same net. Nets are found
// with a union-find over signal ids and exported as JSON or as a KiCad
// netlist.
package netlist

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/coresch/pkg/footprint"
	"github.com/OpenTraceLab/coresch/pkg/model"
)

// Node is one instance function on a net.
type Node struct {
	Ref      string   `json:"ref"`
	Function string   `json:"function"`
	Pins     []string `json:"pins,omitempty"`
}

// Net is a set of connected functions.
type Net struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Nodes []Node `json:"nodes"`
}

// Component is one placed part.
type Component struct {
	Ref       string `json:"ref"`
	Value     string `json:"value"`
	Footprint string `json:"footprint,omitempty"`
}

// Netlist is the flattened connectivity of one schematic.
type Netlist struct {
	Design     string       `json:"design"`
	Components []*Component `json:"components"`
	Nets       []*Net       `json:"nets"`
}

// unionFind groups signals by id.
type unionFind struct {
	parent map[uuid.UUID]uuid.UUID
	rank   map[uuid.UUID]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[uuid.UUID]uuid.UUID),
		rank:   make(map[uuid.UUID]int),
	}
}

func (u *unionFind) add(id uuid.UUID) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

func (u *unionFind) find(id uuid.UUID) uuid.UUID {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	// Path compression
	for id != root {
		next := u.parent[id]
		u.parent[id] = root
		id = next
	}
	return root
}

func (u *unionFind) union(a, b uuid.UUID) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

// Build computes the nets of s. Pin numbers come from res, which may be nil;
// nodes without a committed pin carry no pins.
func Build(s *model.Schematic, res *footprint.Result) *Netlist {
	uf := newUnionFind()
	signals := s.Signals()
	for _, sig := range signals {
		uf.add(sig.ID())
	}
	for _, inst := range s.Instances() {
		for _, fn := range inst.Functions() {
			sigs := fn.Signals()
			for i := 1; i < len(sigs); i++ {
				uf.union(sigs[0].ID(), sigs[i].ID())
			}
		}
	}

	// Classes keep the declaration order of their first signal.
	var roots []uuid.UUID
	classes := make(map[uuid.UUID][]*model.Signal)
	for _, sig := range signals {
		root := uf.find(sig.ID())
		if _, ok := classes[root]; !ok {
			roots = append(roots, root)
		}
		classes[root] = append(classes[root], sig)
	}

	nl := &Netlist{Design: s.Name()}
	for _, root := range roots {
		net := &Net{ID: len(nl.Nets) + 1}
		seen := make(map[*model.Function]bool)
		for _, sig := range classes[root] {
			if net.Name == "" && !sig.IsAnonymous() {
				net.Name = sig.Name()
			}
			for _, fn := range sig.Attachments() {
				if seen[fn] {
					continue
				}
				seen[fn] = true
				net.Nodes = append(net.Nodes, node(fn, res))
			}
		}
		if len(net.Nodes) == 0 {
			continue
		}
		if net.Name == "" {
			net.Name = fmt.Sprintf("Net-%d", net.ID)
		}
		sort.Slice(net.Nodes, func(i, j int) bool {
			if net.Nodes[i].Ref != net.Nodes[j].Ref {
				return net.Nodes[i].Ref < net.Nodes[j].Ref
			}
			return net.Nodes[i].Function < net.Nodes[j].Function
		})
		nl.Nets = append(nl.Nets, net)
	}

	for _, inst := range s.Instances() {
		value := inst.Attribute("value").First()
		if value == "" {
			value = inst.Component().Name()
		}
		nl.Components = append(nl.Components, &Component{
			Ref:       inst.Name(),
			Value:     value,
			Footprint: inst.Attribute("package").First(),
		})
	}
	return nl
}

func node(fn *model.Function, res *footprint.Result) Node {
	n := Node{Ref: fn.Instance().Name(), Function: fn.Name()}
	if res != nil {
		for _, pin := range res.PinsOf(fn) {
			n.Pins = append(n.Pins, pin.Name())
		}
	}
	return n
}

// Net returns the net with the given name, or nil.
func (nl *Netlist) Net(name string) *Net {
	for _, n := range nl.Nets {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// ExportJSON renders the netlist as indented JSON.
func (nl *Netlist) ExportJSON() ([]byte, error) {
	output := struct {
		Version  string `json:"version"`
		NetCount int    `json:"net_count"`
		*Netlist
	}{
		Version:  "1.0",
		NetCount: len(nl.Nets),
		Netlist:  nl,
	}
	return json.MarshalIndent(output, "", "  ")
}

// ExportKiCad renders the netlist in KiCad's s-expression netlist format.
// Functions without a committed pin are exported under their function name.
func (nl *Netlist) ExportKiCad() string {
	var b strings.Builder
	b.WriteString("(export (version D)\n")
	b.WriteString("  (design\n")
	fmt.Fprintf(&b, "    (source %s)\n", atom(nl.Design))
	b.WriteString("    (tool coresch))\n")

	b.WriteString("  (components\n")
	for _, c := range nl.Components {
		fmt.Fprintf(&b, "    (comp (ref %s) (value %s)", atom(c.Ref), atom(c.Value))
		if c.Footprint != "" {
			fmt.Fprintf(&b, " (footprint %s)", atom(c.Footprint))
		}
		b.WriteString(")\n")
	}
	b.WriteString("  )\n")

	b.WriteString("  (nets\n")
	for _, net := range nl.Nets {
		fmt.Fprintf(&b, "    (net (code %d) (name %s)\n", net.ID, atom(net.Name))
		for _, n := range net.Nodes {
			pins := n.Pins
			if len(pins) == 0 {
				pins = []string{n.Function}
			}
			for _, pin := range pins {
				fmt.Fprintf(&b, "      (node (ref %s) (pin %s))\n", atom(n.Ref), atom(pin))
			}
		}
		b.WriteString("    )\n")
	}
	b.WriteString("  )\n")
	b.WriteString(")\n")
	return b.String()
}

var bareAtom = regexp.MustCompile(`^(?:[A-Za-z_$][A-Za-z0-9_$+\-.]*|[0-9]+)$`)

// atom quotes s unless it is a plain symbol or integer.
func atom(s string) string {
	if bareAtom.MatchString(s) {
		return s
	}
	return strconv.Quote(s)
}
