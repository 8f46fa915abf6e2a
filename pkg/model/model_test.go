package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingExclusivity(t *testing.T) {
	pkg := NewNumberedPackage("DIP-8", 8)
	cfg := NewDeviceConfiguration(pkg)

	b := cfg.Binding("1")
	require.NotNil(t, b)
	require.NoError(t, b.Bind("PB0", true))
	assert.ErrorIs(t, b.Bind("PB1", true), ErrBindingConflict)
	assert.ErrorIs(t, b.Bind("PB1", false), ErrBindingConflict, "exclusive pins accept no further binds")

	shared := cfg.Binding("2")
	for _, fn := range []string{"PB1", "MOSI", "OC2"} {
		require.NoError(t, shared.Bind(fn, false))
	}
	assert.Equal(t, []string{"PB1", "MOSI", "OC2"}, shared.Functions())
	assert.ErrorIs(t, shared.Bind("VCC", true), ErrBindingConflict)

	assert.ErrorIs(t, cfg.Bind("99", "X", false), ErrUnknownPin)
	assert.Len(t, cfg.PinsOf("MOSI"), 1)
}

func TestPackagePinsAreImmutable(t *testing.T) {
	pkg, err := NewPackage("SOT-23", []string{"1", "2", "3"})
	require.NoError(t, err)

	pins := pkg.Pins()
	pins[0] = nil
	assert.NotNil(t, pkg.Pins()[0])
	assert.Equal(t, "SOT-23.1", pkg.Pin("1").String())

	_, err = NewPackage("BAD", []string{"1", "1"})
	assert.ErrorIs(t, err, ErrDuplicatePin)
}

func TestDeviceConfigurationLookupIgnoresCase(t *testing.T) {
	dev := NewDevice("atmega8")
	cfg := NewDeviceConfiguration(NewNumberedPackage("DIP-28", 28))
	require.NoError(t, dev.AddConfiguration("DIP-28", cfg))

	got, ok := dev.Configuration("dip-28")
	require.True(t, ok)
	assert.Same(t, cfg, got)
	assert.ErrorIs(t, dev.AddConfiguration("Dip-28", cfg), ErrDuplicatePackage)
	assert.Equal(t, []string{"DIP-28"}, dev.PackageIDs())
}

func TestFunctionNamesUnique(t *testing.T) {
	dev := NewDevice("x")
	_, err := dev.AddFunction("VCC")
	require.NoError(t, err)
	_, err = dev.AddFunction("VCC")
	assert.ErrorIs(t, err, ErrDuplicateFunction)
}

func TestInstanceFunctions(t *testing.T) {
	s := NewSchematic("main")
	r1, err := s.AddInstance("R1", Resistor)
	require.NoError(t, err)

	_, err = s.AddInstance("R1", Capacitor)
	assert.ErrorIs(t, err, ErrDuplicateInstance)

	a := r1.Function("A")
	require.NotNil(t, a)
	assert.True(t, a.IsInstanced())
	assert.Same(t, Resistor.Function("A"), a.Declaration())
	assert.Same(t, s, a.Schematic())
	assert.Equal(t, "R1.A", a.String())
	assert.False(t, Resistor.Function("A").IsInstanced())
}

func TestSignalAttachment(t *testing.T) {
	s := NewSchematic("main")
	r1, _ := s.AddInstance("R1", Resistor)
	vcc, err := s.AddSignal("VCC")
	require.NoError(t, err)

	require.NoError(t, vcc.Attach(r1.Function("A")))
	require.NoError(t, vcc.Attach(r1.Function("A")))
	assert.Len(t, vcc.Attachments(), 1)
	assert.Equal(t, []*Signal{vcc}, r1.Function("A").Signals())
	assert.True(t, r1.Function("A").IsConnected())
	assert.False(t, r1.Function("B").IsConnected())

	assert.ErrorIs(t, vcc.Attach(Resistor.Function("B")), ErrAbstractFunction)

	other := NewSchematic("other")
	r2, _ := other.AddInstance("R2", Resistor)
	assert.ErrorIs(t, vcc.Attach(r2.Function("A")), ErrForeignFunction)

	require.NoError(t, vcc.Detach(r1.Function("A")))
	assert.Empty(t, vcc.Attachments())
	assert.Empty(t, r1.Function("A").Signals())
}

func TestSchematicAsComponent(t *testing.T) {
	sub := NewSchematic("divider")
	_, err := sub.AddSignal("IN")
	require.NoError(t, err)
	_, err = sub.AddSignal("OUT")
	require.NoError(t, err)
	sub.AddAnonymousSignal()

	_, err = sub.AddSignal("IN")
	assert.ErrorIs(t, err, ErrDuplicateSignal)

	names := []string{}
	for _, f := range sub.Functions() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"IN", "OUT"}, names)
	assert.Len(t, sub.Signals(), 3)

	top := NewSchematic("top")
	inst, err := top.AddInstance("D1", sub)
	require.NoError(t, err)
	assert.Equal(t, KindSchematic, inst.Component().Kind())
	assert.NotNil(t, inst.Function("OUT"))
}

func TestAttributes(t *testing.T) {
	s := NewSchematic("main")
	u1, _ := s.AddInstance("U1", NewDevice("mcu"))
	require.NoError(t, u1.AddAttribute(Attribute{Name: "package", Values: []string{"DIP-28"}}))
	assert.ErrorIs(t, u1.AddAttribute(Attribute{Name: "package"}), ErrDuplicateAttribute)
	assert.Equal(t, "DIP-28", u1.Attribute("package").First())
	assert.Equal(t, "", u1.Attribute("missing").First())
}

func TestPrimitiveLookup(t *testing.T) {
	assert.Same(t, Resistor, LookupPrimitive("R"))
	assert.Same(t, Capacitor, LookupPrimitive("Capacitor"))
	assert.Same(t, Inductor, InlinePrimitive("L"))
	assert.Nil(t, InlinePrimitive("X"))
	assert.Equal(t, "primitive", Battery.Kind().String())
}
