package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/coresch/internal/config"
	"github.com/OpenTraceLab/coresch/pkg/library"
)

var (
	// Global flags
	verbose    bool
	configFile string
	libPaths   []string
	logLevel   string

	logger *slog.Logger
	lib    *library.Memory
)

var rootCmd = &cobra.Command{
	Use:   "coresch",
	Short: "coresch - schematic description compiler",
	Long: `coresch compiles textual schematic descriptions into connected designs,
assigns device functions to package pins and exports netlists.

Examples:
  coresch compile board.sch --lib parts       # Check a design
  coresch footprint board.sch --lib parts     # Show pin assignments
  coresch netlist board.sch --format kicad    # Export a KiCad netlist`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./coresch.yaml)")
	rootCmd.PersistentFlags().StringSliceVarP(&libPaths, "lib", "L", nil, "component library directories")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// setup loads the configuration, installs the logger and loads every
// library directory.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = newLogger(cmd.ErrOrStderr(), level)

	lib = library.NewMemory()
	lib.SetLogger(logger)
	for _, dir := range cfg.LibraryPaths {
		logger.Debug("loading library", "dir", dir)
		if err := lib.LoadDir(dir); err != nil {
			return err
		}
	}
	logger.Debug("library ready", "imports", lib.Paths())
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
