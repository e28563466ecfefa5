package discovery

import (
	"time"

	"go.uber.org/zap"

	"github.com/muurk/dutctl/internal/logging"
	"github.com/muurk/dutctl/internal/protocol"
	"github.com/muurk/dutctl/internal/udp"
)

// Defaults for the discovery exchange. These are starting values for a
// Config, not process globals: every call carries its own copy, so tests
// and callers can override them per exchange.
const (
	// DefaultGroup is the multicast group DUT simulators listen on.
	DefaultGroup = "224.3.11.15"

	// DefaultPort is the UDP port of the multicast group.
	DefaultPort = 31115

	// DefaultTTL is the outbound multicast TTL: enough to cross one
	// router on a lab network, without leaking further.
	DefaultTTL = 2

	// DefaultTimeout is how long to collect responses.
	DefaultTimeout = 1 * time.Second
)

// Config carries the tunables for one discovery exchange.
type Config struct {
	// Group is the multicast group address to probe.
	Group string

	// Port is the UDP port of the group.
	Port int

	// TTL is the outbound multicast time-to-live.
	TTL int

	// Timeout bounds the response collection window.
	Timeout time.Duration
}

// DefaultConfig returns the standard discovery configuration.
func DefaultConfig() Config {
	return Config{
		Group:   DefaultGroup,
		Port:    DefaultPort,
		TTL:     DefaultTTL,
		Timeout: DefaultTimeout,
	}
}

// Discover probes the multicast group and returns every device that
// answered within the window.
//
// Malformed responses are logged and dropped, never propagated: the
// result is a best-effort list even when one responder sends garbage. No
// responses is an empty list, not an error. The returned list is in
// arrival order with no further guarantee.
func Discover(cfg Config) ([]Device, error) {
	probe := protocol.Probe().Encode()

	datagrams, err := udp.Broadcast(cfg.Group, cfg.Port, probe, cfg.Timeout, cfg.TTL)
	if err != nil {
		return nil, err
	}

	devices := make([]Device, 0, len(datagrams))
	for _, dg := range datagrams {
		device, err := FromDatagram(dg)
		if err != nil {
			logging.Warn("dropping invalid discovery response",
				zap.String("source", dg.String()),
				zap.Error(err),
			)
			continue
		}
		devices = append(devices, device)
	}

	logging.Info("discovery window complete",
		zap.Int("responses", len(datagrams)),
		zap.Int("devices", len(devices)),
		zap.Duration("timeout", cfg.Timeout),
	)
	return devices, nil
}
