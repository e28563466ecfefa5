package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/muurk/dutctl/internal/config"
	"github.com/muurk/dutctl/internal/discovery"
	"github.com/muurk/dutctl/internal/session"
)

// Command flags, defaulted from the settings file
var (
	multicastFlag string
	ttlFlag       int
	timeoutFlag   float64
	durationFlag  int
	rateFlag      int
)

// settings holds the file-backed defaults loaded at startup. A broken or
// missing file falls back to built-in defaults; the error surfaces when
// the user runs 'dutctl config'.
var settings = func() config.Settings {
	s, err := config.Load()
	if err != nil {
		return config.Defaults()
	}
	return s
}()

func init() {
	multicastDefault := fmt.Sprintf("%s:%d", settings.Multicast.Group, settings.Multicast.Port)
	rootCmd.PersistentFlags().StringVar(&multicastFlag, "multicast", multicastDefault,
		"Multicast group ADDRESS:PORT for discovery")
	rootCmd.PersistentFlags().IntVar(&ttlFlag, "ttl", settings.Multicast.TTL,
		"Outbound multicast TTL")
	rootCmd.PersistentFlags().Float64VarP(&timeoutFlag, "timeout", "t", settings.Test.TimeoutSeconds,
		"Seconds to wait for a response")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
}

// parseEndpoint validates an ADDRESS:PORT argument.
func parseEndpoint(s string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: use ADDRESS:PORT, eg. 192.168.0.10:6062", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port number %q: expected an integer", portStr)
	}
	return host, port, nil
}

func timeout() time.Duration {
	return time.Duration(timeoutFlag * float64(time.Second))
}

// discoverCmd finds devices on the network
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find devices on the network via UDP multicast",
	Long: `Broadcast a discovery probe to the multicast group and list every
DUT simulator that responds within the timeout window.`,
	Example: `  # Discover with defaults (224.3.11.15:31115, 1 second window)
  dutctl discover

  # Longer window for slow networks
  dutctl discover --timeout 5`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	group, port, err := parseEndpoint(multicastFlag)
	if err != nil {
		return err
	}

	devices, err := discovery.Discover(discovery.Config{
		Group:   group,
		Port:    port,
		TTL:     ttlFlag,
		Timeout: timeout(),
	})
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	discovery.Sort(devices)

	fmt.Printf("%d devices responded to discovery:\n", len(devices))
	for _, d := range devices {
		fmt.Printf("%-6s %-12s %s:%d\n", d.Model, d.Serial, d.Address, d.Port)
	}
	return nil
}

// testCmd runs a timed test against one device
var testCmd = &cobra.Command{
	Use:   "test ADDRESS:PORT",
	Short: "Run a timed test on the selected device",
	Long: `Send a start-test command to the device and stream its telemetry as
it arrives, printing one line per status report and aggregate statistics
at the end.

A device that goes silent ends the stream after the timeout; partial
results are still reported.`,
	Example: `  # Two-second test, status every 100ms
  dutctl test 192.168.0.10:6062

  # Longer test with a slower report rate
  dutctl test 192.168.0.10:6062 --duration 30 --rate 500`,
	Args: cobra.ExactArgs(1),
	RunE: runTest,
}

func init() {
	testCmd.Flags().IntVarP(&durationFlag, "duration", "d", settings.Test.DurationSeconds,
		"Seconds to run the test for")
	testCmd.Flags().IntVarP(&rateFlag, "rate", "r", settings.Test.RateMillis,
		"Milliseconds between status reports")
}

func runTest(cmd *cobra.Command, args []string) error {
	address, port, err := parseEndpoint(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Start test on %s:%d for %ds, status every %dms\n",
		address, port, durationFlag, rateFlag)

	runner, err := session.Start(address, port, durationFlag, rateFlag, timeout())
	if err != nil {
		return fmt.Errorf("failed to start test: %w", err)
	}
	defer runner.Close()

	var maHistory, mvHistory []float64
	for {
		sample, ok := runner.Next()
		if !ok {
			break
		}
		maHistory = append(maHistory, sample.MA)
		mvHistory = append(mvHistory, sample.MV)
		fmt.Printf("%6.0f milliseconds: %10.2fmA %10.2fmV\n",
			sample.Elapsed*1000, sample.MA, sample.MV)
	}

	switch runner.State() {
	case session.StateTimedOut:
		fmt.Printf("Device went silent after %d samples\n", len(maHistory))
	case session.StateError:
		return fmt.Errorf("test failed: %w", runner.Err())
	}

	if len(maHistory) == 0 {
		fmt.Println("No telemetry received")
		return nil
	}

	mean, max, min := aggregates(maHistory)
	fmt.Printf("Current mean %.2fmA, max %.2fmA, min %.2fmA\n", mean, max, min)
	mean, max, min = aggregates(mvHistory)
	fmt.Printf("Voltage mean %.2fmV, max %.2fmV, min %.2fmV\n", mean, max, min)
	return nil
}

// aggregates returns mean, max, and min - in that order.
func aggregates(values []float64) (float64, float64, float64) {
	sum, max, min := 0.0, values[0], values[0]
	for _, v := range values {
		sum += v
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return sum / float64(len(values)), max, min
}

// stopCmd aborts a running test
var stopCmd = &cobra.Command{
	Use:   "stop ADDRESS:PORT",
	Short: "Stop a running test on the selected device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		address, port, err := parseEndpoint(args[0])
		if err != nil {
			return err
		}
		if err := session.Stop(address, port, timeout()); err != nil {
			return fmt.Errorf("failed to stop test: %w", err)
		}
		fmt.Println("Test stopped")
		return nil
	},
}

// configCmd shows or initialises the settings file
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		current, err := config.Load()
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(current)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n%s", path, data)
		return nil
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(config.Defaults()); err != nil {
				return err
			}
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	})
}
