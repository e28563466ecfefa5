// Dutctl is a production-test utility for DUT simulators.
//
// It discovers device-under-test simulators on the local network via UDP
// multicast and runs timed electrical tests against them, streaming
// current/voltage telemetry as it arrives.
//
// Usage:
//
//	dutctl [command] [flags]
//
// See 'dutctl --help' for available commands. Set DUTCTL_LOG_LEVEL=debug
// to see every datagram on the wire.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/dutctl/internal/logging"
	"github.com/muurk/dutctl/internal/version"
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dutctl",
	Short: "DUT Production Test Utility",
	Long: `A command-line utility for testing DUT simulators.

Discovers devices on the local network via UDP multicast and runs timed
electrical tests against a selected device, collecting periodic
current/voltage telemetry until the device reports completion.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Silent unless DUTCTL_LOG_LEVEL is set
		return logging.InitializeFromEnv()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dutctl %s (commit: %s)\n", version.Version, version.Commit)
	},
}
