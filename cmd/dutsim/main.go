// Dutsim runs a DUT simulator for local development and testing.
//
// The simulator answers discovery probes on the multicast group and runs
// test cycles against its unicast command port, emitting telemetry the
// same way real device simulators do:
//
//	dutsim --model M001 --serial SN0123456 --listen 0.0.0.0:6062
//
// Run several with distinct serials and ports to exercise multi-device
// discovery.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/dutctl/internal/config"
	"github.com/muurk/dutctl/internal/logging"
	"github.com/muurk/dutctl/internal/simulator"
	"github.com/muurk/dutctl/internal/version"
)

var (
	modelFlag     string
	serialFlag    string
	listenFlag    string
	multicastFlag string
	seedFlag      int64
)

func main() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "dutsim",
	Short:   "DUT Simulator",
	Long:    `Simulates a device under test for dutctl development and testing.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitializeFromEnv()
	},
	RunE: runSimulator,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	settings, err := config.Load()
	if err != nil {
		settings = config.Defaults()
	}
	multicastDefault := fmt.Sprintf("%s:%d", settings.Multicast.Group, settings.Multicast.Port)

	rootCmd.Flags().StringVar(&modelFlag, "model", "M001", "Device model reported in discovery")
	rootCmd.Flags().StringVar(&serialFlag, "serial", "SN0123456", "Device serial reported in discovery")
	rootCmd.Flags().StringVar(&listenFlag, "listen", "0.0.0.0:6062", "Command socket ADDRESS:PORT")
	rootCmd.Flags().StringVar(&multicastFlag, "multicast", multicastDefault,
		"Discovery group ADDRESS:PORT to join (empty to disable)")
	rootCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Telemetry noise seed (0 for random)")
}

func runSimulator(cmd *cobra.Command, args []string) error {
	host, port, err := splitEndpoint(listenFlag)
	if err != nil {
		return err
	}

	sim := simulator.New(simulator.Config{
		Model:  modelFlag,
		Serial: serialFlag,
		Seed:   seedFlag,
	})
	if err := sim.Start(host, port); err != nil {
		return err
	}
	defer sim.Close()

	if multicastFlag != "" {
		group, groupPort, err := splitEndpoint(multicastFlag)
		if err != nil {
			return err
		}
		if err := sim.JoinGroup(group, groupPort); err != nil {
			return err
		}
		fmt.Printf("Listening for discovery probes on %s\n", multicastFlag)
	}

	fmt.Printf("Simulating %s %s on %s\n", modelFlag, serialFlag, sim.Addr())

	// Run until interrupted
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	fmt.Println("Shutting down")
	return nil
}

func splitEndpoint(s string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: use ADDRESS:PORT", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port number %q: expected an integer", portStr)
	}
	return host, port, nil
}
