package netlist

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/chewxy/sexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/coresch/pkg/footprint"
	"github.com/OpenTraceLab/coresch/pkg/lang"
	"github.com/OpenTraceLab/coresch/pkg/model"
)

const design = `schematic top {
	signal VCC, GND, LED, LED2;
	device U1: chip { package(PKG); }
	device D1: R;
	VCC -- U1.VCC;
	GND -- U1.GND;
	LED -- U1.OUT;
	LED2 -- U1.OUT;
	LED -- [R:330] -- GND;
	D1.A -- U1.IN;
	D1.B -- VCC;
}
`

func chip(t *testing.T) *model.Device {
	t.Helper()
	dev := model.NewDevice("chip")
	cfg := model.NewDeviceConfiguration(model.NewNumberedPackage("PKG", 4))
	for i, fn := range []string{"VCC", "GND", "OUT", "IN"} {
		_, err := dev.AddFunction(fn)
		require.NoError(t, err)
		require.NoError(t, cfg.Bind(string(rune('1'+i)), fn, false))
	}
	require.NoError(t, dev.AddConfiguration("PKG", cfg))
	return dev
}

func compile(t *testing.T) (*model.Schematic, *footprint.Result) {
	t.Helper()
	dev := chip(t)
	symbols := lang.SymbolFunc(func(path []string) (model.Component, error) {
		if len(path) == 1 && path[0] == "chip" {
			return dev, nil
		}
		if p := model.LookupPrimitive(lang.JoinPath(path)); p != nil {
			return p, nil
		}
		return nil, lang.NotFound(path)
	})
	doc, err := lang.NewParser(nil, symbols).ParseString(design)
	require.NoError(t, err)
	s := doc.Schematic("top")
	require.NotNil(t, s)

	res, err := footprint.ResolveSchematic(s)
	require.NoError(t, err)
	require.True(t, res.Complete())
	return s, res
}

func TestBuildMergesSharedFunctions(t *testing.T) {
	s, res := compile(t)
	nl := Build(s, res)

	names := make([]string, 0, len(nl.Nets))
	for _, n := range nl.Nets {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"VCC", "GND", "LED", "Net-4"}, names)

	led := nl.Net("LED")
	require.NotNil(t, led)
	assert.Equal(t, []Node{
		{Ref: "$R1", Function: "A"},
		{Ref: "U1", Function: "OUT", Pins: []string{"3"}},
	}, led.Nodes)
	assert.Nil(t, nl.Net("LED2"))

	anon := nl.Net("Net-4")
	require.NotNil(t, anon)
	assert.Equal(t, []Node{
		{Ref: "D1", Function: "A"},
		{Ref: "U1", Function: "IN", Pins: []string{"4"}},
	}, anon.Nodes)
}

func TestBuildComponents(t *testing.T) {
	s, res := compile(t)
	nl := Build(s, res)

	require.Len(t, nl.Components, 3)
	assert.Equal(t, Component{Ref: "U1", Value: "chip", Footprint: "PKG"}, *nl.Components[0])
	assert.Equal(t, Component{Ref: "D1", Value: "Resistor"}, *nl.Components[1])
	assert.Equal(t, Component{Ref: "$R1", Value: "330"}, *nl.Components[2])
}

func TestBuildWithoutFootprint(t *testing.T) {
	s, _ := compile(t)
	nl := Build(s, nil)
	for _, net := range nl.Nets {
		for _, n := range net.Nodes {
			assert.Empty(t, n.Pins, "%s.%s", n.Ref, n.Function)
		}
	}
}

func TestBuildSkipsEmptySignals(t *testing.T) {
	s := model.NewSchematic("empty")
	_, err := s.AddSignal("NC")
	require.NoError(t, err)
	assert.Empty(t, Build(s, nil).Nets)
}

func TestExportJSON(t *testing.T) {
	s, res := compile(t)
	data, err := Build(s, res).ExportJSON()
	require.NoError(t, err)

	var out struct {
		Version  string `json:"version"`
		NetCount int    `json:"net_count"`
		Design   string `json:"design"`
		Nets     []Net  `json:"nets"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "1.0", out.Version)
	assert.Equal(t, 4, out.NetCount)
	assert.Equal(t, "top", out.Design)
	assert.Len(t, out.Nets, 4)
}

func TestExportKiCad(t *testing.T) {
	s, res := compile(t)
	out := Build(s, res).ExportKiCad()

	assert.True(t, strings.HasPrefix(out, "(export (version D)"))
	assert.Contains(t, out, "(comp (ref U1) (value chip) (footprint PKG))")
	assert.Contains(t, out, "(net (code 3) (name LED)")
	assert.Contains(t, out, "(node (ref U1) (pin 3))")
	assert.Contains(t, out, "(node (ref $R1) (pin A))")

	exprs, err := sexp.ParseString(out)
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	assert.False(t, exprs[0].IsLeaf())
	assert.Positive(t, exprs[0].LeafCount())
}

func TestAtomQuoting(t *testing.T) {
	tests := map[string]string{
		"VCC":       "VCC",
		"Net-4":     "Net-4",
		"12":        "12",
		"$R1":       "$R1",
		"4.7k":      `"4.7k"`,
		"two words": `"two words"`,
		"":          `""`,
	}
	for in, want := range tests {
		assert.Equal(t, want, atom(in), in)
	}
}
