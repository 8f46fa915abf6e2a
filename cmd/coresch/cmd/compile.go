package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/coresch/pkg/lang"
	"github.com/OpenTraceLab/coresch/pkg/model"
)

var schematicName string

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Parse a schematic document and show its contents",
	Long: `Parse a schematic document against the loaded libraries and print every
schematic it defines: instances, their attributes and the signals with the
functions attached to them.

Examples:
  coresch compile board.sch --lib parts
  coresch compile board.sch --schematic power`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&schematicName, "schematic", "s", "",
		"only show this schematic")
}

// parseDocument parses path with the loaded library as resolver.
func parseDocument(path string) (*lang.Document, error) {
	logger.Debug("parsing", "file", path)
	doc, err := lang.NewParser(lib, lib).ParseFile(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("parsed", "file", path, "schematics", len(doc.Schematics))
	return doc, nil
}

// pickSchematic returns the named schematic, or the last one in doc.
func pickSchematic(doc *lang.Document, name string) (*model.Schematic, error) {
	if name != "" {
		if s := doc.Schematic(name); s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("no schematic %s", name)
	}
	if len(doc.Schematics) == 0 {
		return nil, fmt.Errorf("document defines no schematic")
	}
	return doc.Schematics[len(doc.Schematics)-1], nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	doc, err := parseDocument(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if schematicName != "" {
		s, err := pickSchematic(doc, schematicName)
		if err != nil {
			return err
		}
		showSchematic(out, s)
		return nil
	}
	for _, s := range doc.Schematics {
		showSchematic(out, s)
	}
	return nil
}

func showSchematic(w io.Writer, s *model.Schematic) {
	fmt.Fprintf(w, "Schematic: %s\n", s.Name())

	instances := s.Instances()
	fmt.Fprintf(w, "Instances: %d\n", len(instances))
	for _, inst := range instances {
		fmt.Fprintf(w, "  %s: %s (%s)\n", inst.Name(), inst.Component().Name(), inst.Component().Kind())
		for _, a := range inst.Attributes() {
			fmt.Fprintf(w, "    %s\n", a)
		}
	}

	signals := s.Signals()
	fmt.Fprintf(w, "Signals: %d\n", len(signals))
	for _, sig := range signals {
		var names []string
		for _, fn := range sig.Attachments() {
			names = append(names, fn.Instance().Name()+"."+fn.Name())
		}
		fmt.Fprintf(w, "  %s: %s\n", sig, strings.Join(names, ", "))
	}
	fmt.Fprintln(w)
}
