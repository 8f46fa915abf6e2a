package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/coresch/pkg/footprint"
	"github.com/OpenTraceLab/coresch/pkg/model"
)

var footprintCmd = &cobra.Command{
	Use:   "footprint <file>",
	Short: "Assign connected device functions to package pins",
	Long: `Resolve the pin assignment of every device instance in a schematic. The
package of each device is taken from its "package" attribute.

Pins that keep more than one candidate function are listed as ambiguous;
connected functions that no pin carries are listed as unplaced.

Examples:
  coresch footprint board.sch --lib parts
  coresch footprint board.sch --schematic power`,
	Args: cobra.ExactArgs(1),
	RunE: runFootprint,
}

func init() {
	rootCmd.AddCommand(footprintCmd)
	footprintCmd.Flags().StringVarP(&schematicName, "schematic", "s", "",
		"schematic to resolve (default: last in file)")
}

// resolve parses path and resolves the footprint of the selected schematic.
func resolve(path string) (*model.Schematic, *footprint.Result, error) {
	doc, err := parseDocument(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := pickSchematic(doc, schematicName)
	if err != nil {
		return nil, nil, err
	}
	res, err := footprint.ResolveSchematic(s)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("footprint resolved", "schematic", s.Name(),
		"assigned", len(res.Assignments), "ambiguous", len(res.Unresolved), "unplaced", len(res.Unplaced))
	return s, res, nil
}

func runFootprint(cmd *cobra.Command, args []string) error {
	s, res, err := resolve(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Schematic: %s\n", s.Name())
	fmt.Fprintf(out, "Assignments: %d\n", len(res.Assignments))
	for _, as := range res.Assignments {
		fmt.Fprintf(out, "  %-12s %s\n", as.Attachment, as.Function.Name())
	}

	if len(res.Unresolved) > 0 {
		fmt.Fprintf(out, "Ambiguous: %d\n", len(res.Unresolved))
		for _, amb := range res.Unresolved {
			var names []string
			for _, fn := range amb.Candidates {
				names = append(names, fn.Name())
			}
			fmt.Fprintf(out, "  %-12s %s\n", amb.Attachment, strings.Join(names, " | "))
		}
	}
	if len(res.Unplaced) > 0 {
		fmt.Fprintf(out, "Unplaced: %d\n", len(res.Unplaced))
		for _, fn := range res.Unplaced {
			fmt.Fprintf(out, "  %s\n", fn)
		}
	}
	return nil
}
