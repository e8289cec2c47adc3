package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/configurator/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vehicle",
	Short: "Vehicle configurator - trees, solutions and their audit trail",
	Long: `Vehicle is the command line of the vehicle configurator.

A tree document lists the marks of a vehicle line, the options of each
mark and the model every option leads to. A solutions document holds
priced selections made against one tree. The command:
  - Validates tree and solutions documents
  - Resolves and enumerates selections
  - Builds, lists, exports and checks solutions
  - Archives solution events and queries the archive

Settings come from the --config file and VEHICLE_* environment variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code of its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
