package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/coresch/pkg/netlist"
)

var (
	netlistFormat string
	netlistOutput string
)

var netlistCmd = &cobra.Command{
	Use:   "netlist <file>",
	Short: "Export the nets of a schematic",
	Long: `Resolve a schematic and export its nets with the package pins of every
connected function.

Formats:
  json   indented JSON
  kicad  KiCad s-expression netlist

Examples:
  coresch netlist board.sch --lib parts
  coresch netlist board.sch --format kicad -o board.net`,
	Args: cobra.ExactArgs(1),
	RunE: runNetlist,
}

func init() {
	rootCmd.AddCommand(netlistCmd)
	netlistCmd.Flags().StringVarP(&schematicName, "schematic", "s", "",
		"schematic to export (default: last in file)")
	netlistCmd.Flags().StringVarP(&netlistFormat, "format", "f", "json",
		"output format (json, kicad)")
	netlistCmd.Flags().StringVarP(&netlistOutput, "output", "o", "",
		"write to file instead of stdout")
}

func runNetlist(cmd *cobra.Command, args []string) error {
	s, res, err := resolve(args[0])
	if err != nil {
		return err
	}
	if !res.Complete() {
		logger.Warn("footprint incomplete, ambiguous pins are left out", "ambiguous", len(res.Unresolved))
	}
	nl := netlist.Build(s, res)

	var data []byte
	switch netlistFormat {
	case "json":
		data, err = nl.ExportJSON()
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		data = append(data, '\n')
	case "kicad":
		data = []byte(nl.ExportKiCad())
	default:
		return fmt.Errorf("unknown format %q (use json or kicad)", netlistFormat)
	}

	if netlistOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(netlistOutput, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", netlistOutput, err)
	}
	logger.Info("netlist written", "file", netlistOutput, "nets", len(nl.Nets))
	return nil
}
