package footprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/coresch/pkg/model"
)

type bind struct {
	pin       string
	function  string
	exclusive bool
}

// chip builds a device with one numbered package "PKG-n" bound as given.
func chip(t *testing.T, pins int, functions []string, binds []bind) *model.Device {
	t.Helper()
	dev := model.NewDevice("chip")
	for _, f := range functions {
		_, err := dev.AddFunction(f)
		require.NoError(t, err)
	}
	pkg := model.NewNumberedPackage("PKG", pins)
	cfg := model.NewDeviceConfiguration(pkg)
	for _, b := range binds {
		require.NoError(t, cfg.Bind(b.pin, b.function, b.exclusive))
	}
	require.NoError(t, dev.AddConfiguration("pkg", cfg))
	return dev
}

// place instantiates dev as U1 and connects the named functions to their
// own signals.
func place(t *testing.T, dev *model.Device, connected ...string) (*model.Schematic, *model.ComponentInstance) {
	t.Helper()
	s := model.NewSchematic("top")
	u1, err := s.AddInstance("U1", dev)
	require.NoError(t, err)
	require.NoError(t, u1.AddAttribute(model.Attribute{Name: "package", Values: []string{"PKG"}}))
	for _, name := range connected {
		sig, err := s.AddSignal("N_" + name)
		require.NoError(t, err)
		require.NoError(t, sig.Attach(u1.Function(name)))
	}
	return s, u1
}

func pinOf(u *model.ComponentInstance, cfg *model.DeviceConfiguration, name string) Attachment {
	return Attachment{Instance: u, Pin: cfg.Package().Pin(name)}
}

func TestSingletonCascade(t *testing.T) {
	dev := chip(t, 3, []string{"A", "B", "C"}, []bind{
		{"1", "A", false},
		{"2", "B", false},
		{"3", "A", false},
		{"3", "C", false},
	})
	s, u1 := place(t, dev, "A", "B", "C")

	res, err := ResolveSchematic(s)
	require.NoError(t, err)
	assert.Len(t, res.Assignments, 3)
	assert.Empty(t, res.Unresolved)
	assert.True(t, res.Complete())

	cfg, _ := dev.Configuration("pkg")
	for pin, want := range map[string]string{"1": "A", "2": "B", "3": "C"} {
		fn, ok := res.Lookup(pinOf(u1, cfg, pin))
		require.True(t, ok, "pin %s", pin)
		assert.Equal(t, want, fn.Name(), "pin %s", pin)
		assert.Same(t, u1.Function(want), fn)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	dev := chip(t, 3, []string{"A", "B", "C"}, []bind{
		{"1", "A", false}, {"2", "B", false}, {"3", "A", false}, {"3", "C", false},
	})
	s, _ := place(t, dev, "A", "B", "C")

	first, err := ResolveSchematic(s)
	require.NoError(t, err)
	second, err := ResolveSchematic(s)
	require.NoError(t, err)
	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Unresolved, second.Unresolved)
}

func TestUnusedFunctionsAreIgnored(t *testing.T) {
	dev := chip(t, 2, []string{"A", "B"}, []bind{{"1", "A", false}, {"2", "B", false}})
	s, _ := place(t, dev, "A")

	res, err := ResolveSchematic(s)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, "1", res.Assignments[0].Pin.Name())
}

func TestExclusiveFunctionOnSeveralPins(t *testing.T) {
	dev := chip(t, 8, []string{"GND", "PB0", "MOSI"}, []bind{
		{"4", "GND", true},
		{"8", "GND", true},
		{"5", "PB0", false},
		{"5", "MOSI", false},
	})
	s, u1 := place(t, dev, "GND", "MOSI")

	res, err := ResolveSchematic(s)
	require.NoError(t, err)
	assert.Len(t, res.PinsOf(u1.Function("GND")), 2)
	require.Len(t, res.PinsOf(u1.Function("MOSI")), 1)
	assert.True(t, res.Complete())
}

func TestUnmappedPin(t *testing.T) {
	dev := chip(t, 2, []string{"A"}, []bind{{"1", "A", false}, {"2", "A", false}})
	s, _ := place(t, dev, "A")

	res, err := ResolveSchematic(s)
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrUnmappedPin)

	var fe *FootprintError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "U1", fe.Instance)
	assert.Equal(t, "2", fe.Pin)
	assert.Equal(t, "footprint: U1 pin 2 (PKG): unmapped pin", fe.Error())
}

func TestAmbiguityIsReported(t *testing.T) {
	dev := chip(t, 3, []string{"A", "B", "C"}, []bind{
		{"1", "A", false}, {"1", "B", false},
		{"2", "A", false}, {"2", "B", false},
		{"3", "C", false},
	})
	s, u1 := place(t, dev, "A", "B", "C")

	res, err := ResolveSchematic(s)
	require.NoError(t, err)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, u1.Function("C"), res.Assignments[0].Function)
	require.Len(t, res.Unresolved, 2)
	assert.Equal(t, []*model.Function{u1.Function("A"), u1.Function("B")}, res.Unresolved[0].Candidates)
	assert.False(t, res.Complete())
	assert.Empty(t, res.Unplaced)
}

func TestUnplacedFunctions(t *testing.T) {
	dev := chip(t, 1, []string{"A", "NC"}, []bind{{"1", "A", false}})
	s, u1 := place(t, dev, "A", "NC")

	res, err := ResolveSchematic(s)
	require.NoError(t, err)
	assert.Equal(t, []*model.Function{u1.Function("NC")}, res.Unplaced)
}

func TestSelectConfigurations(t *testing.T) {
	dev := chip(t, 1, []string{"A"}, nil)
	s := model.NewSchematic("top")
	u1, _ := s.AddInstance("U1", dev)
	_, _ = s.AddInstance("R1", model.Resistor)

	_, err := SelectConfigurations(s)
	assert.ErrorIs(t, err, ErrUnknownPackage)

	require.NoError(t, u1.AddAttribute(model.Attribute{Name: "package", Values: []string{"Pkg"}}))
	configs, err := SelectConfigurations(s)
	require.NoError(t, err)
	assert.Len(t, configs, 1)

	s2 := model.NewSchematic("other")
	u2, _ := s2.AddInstance("U2", dev)
	require.NoError(t, u2.AddAttribute(model.Attribute{Name: "package", Values: []string{"QFN-99"}}))
	_, err = ResolveSchematic(s2)
	var fe *FootprintError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrUnknownPackage)
	assert.Equal(t, "QFN-99", fe.Package)
}
