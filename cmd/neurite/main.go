package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagFormat string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "neurite",
	Short:         "Deterministic repair of neuronal morphology skeletons",
	Long:          "Neurite repairs traced neuronal morphologies (SWC files): it labels branches, removes within-soma and duplicate samples, resamples sections, and reconnects detached arbors, recording every change in a SQLite catalog.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "catalog path (default: .neurite/catalog.db relative to the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")

	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(eventsCmd)
}

// resolveDBPath returns the catalog path from the --db flag or the default.
func resolveDBPath() string {
	if flagDB != "" {
		return flagDB
	}
	return filepath.Join(".neurite", "catalog.db")
}
