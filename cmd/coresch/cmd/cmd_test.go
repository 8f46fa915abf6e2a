package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/coresch/pkg/lang"
	"github.com/OpenTraceLab/coresch/pkg/netlist"
)

var (
	design  = filepath.Join("testdata", "blink.sch")
	libRoot = filepath.Join("testdata", "lib")
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithLog(t, io.Discard, args...)
}

func executeWithLog(t *testing.T, log io.Writer, args ...string) (string, error) {
	t.Helper()
	verbose, configFile, libPaths, logLevel = false, "", nil, ""
	schematicName, netlistFormat, netlistOutput = "", "json", ""
	// Bound flags stay changed between runs otherwise.
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(log)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCompile(t *testing.T) {
	out, err := execute(t, "compile", design, "--lib", libRoot)
	require.NoError(t, err)

	assert.Contains(t, out, "Schematic: blink")
	assert.Contains(t, out, "U1: attiny13 (device)")
	assert.Contains(t, out, "P1: pullup (schematic)")
	assert.Contains(t, out, "package = DIP-8")
	assert.Contains(t, out, "RST: U1.RESET, P1.OUT")
}

func TestCompileUnknownImport(t *testing.T) {
	_, err := execute(t, "compile", design)
	require.Error(t, err)
	assert.ErrorIs(t, err, lang.ErrNotFound)
}

func TestFootprint(t *testing.T) {
	out, err := execute(t, "footprint", design, "--lib", libRoot)
	require.NoError(t, err)

	assert.Contains(t, out, "Assignments: 4")
	assert.Regexp(t, `U1\.5\s+PB0`, out)
	assert.Regexp(t, `U1\.1\s+RESET`, out)
	assert.NotContains(t, out, "Ambiguous")
}

func TestNetlistJSON(t *testing.T) {
	out, err := execute(t, "netlist", design, "--lib", libRoot)
	require.NoError(t, err)

	var nl netlist.Netlist
	require.NoError(t, json.Unmarshal([]byte(out), &nl))
	assert.Equal(t, "blink", nl.Design)
	require.Len(t, nl.Nets, 4)

	rst := nl.Net("RST")
	require.NotNil(t, rst)
	assert.Equal(t, []netlist.Node{
		{Ref: "P1", Function: "OUT"},
		{Ref: "U1", Function: "RESET", Pins: []string{"1"}},
	}, rst.Nodes)
}

func TestNetlistKiCadToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blink.net")
	out, err := execute(t, "netlist", design, "--lib", libRoot, "--format", "kicad", "-o", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "(export (version D)"))
	assert.Contains(t, string(data), "(node (ref U1) (pin 5))")
}

func TestNetlistUnknownFormat(t *testing.T) {
	_, err := execute(t, "netlist", design, "--lib", libRoot, "--format", "spice")
	assert.ErrorContains(t, err, "unknown format")
}

func TestUnknownSchematic(t *testing.T) {
	_, err := execute(t, "footprint", design, "--lib", libRoot, "--schematic", "nope")
	assert.ErrorContains(t, err, "no schematic nope")
}

func TestLogLevelFlag(t *testing.T) {
	var log bytes.Buffer
	_, err := executeWithLog(t, &log, "compile", design, "--lib", libRoot, "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, log.String(), "library ready")

	log.Reset()
	_, err = executeWithLog(t, &log, "compile", design, "--lib", libRoot)
	require.NoError(t, err)
	assert.NotContains(t, log.String(), "library ready")
}

func TestInvalidLogLevelFlag(t *testing.T) {
	_, err := execute(t, "compile", design, "--lib", libRoot, "--log-level", "bogus")
	assert.ErrorContains(t, err, "log_level")
}
