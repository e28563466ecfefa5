package udp

import (
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/muurk/dutctl/internal/logging"
)

// Broadcast sends one probe datagram to a multicast group and collects
// every response that arrives within a single bounded window of timeout.
//
// The socket is sender-only: it joins no group, but the outbound
// multicast TTL is set to ttl so the probe can cross that many router
// hops. The window elapsing is the expected way the exchange ends, so it
// returns whatever was collected and a nil error; only socket-level
// faults produce an error.
//
// In tests the group may be any unicast address, which exercises the same
// code path against a local responder.
func Broadcast(group string, port int, payload []byte, timeout time.Duration, ttl int) ([]Datagram, error) {
	dst := &net.UDPAddr{IP: net.ParseIP(group), Port: port}
	if dst.IP == nil {
		return nil, fmt.Errorf("invalid group address %q", group)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("open multicast sender socket: %w", err)
	}
	defer conn.Close()

	if err := ipv4.NewPacketConn(conn).SetMulticastTTL(ttl); err != nil {
		return nil, fmt.Errorf("set multicast TTL %d: %w", ttl, err)
	}

	if _, err := conn.WriteToUDP(payload, dst); err != nil {
		return nil, fmt.Errorf("send probe to %s: %w", dst, err)
	}
	logging.LogDatagram("send", dst.String(), payload)

	// One absolute deadline for the whole collection window, not one per
	// datagram.
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("set collect deadline: %w", err)
	}

	var collected []Datagram
	buf := make([]byte, MaxDatagramSize)
	for {
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if isTimeout(err) {
				logging.Debug("collect window closed",
					zap.Duration("timeout", timeout),
					zap.Int("responses", len(collected)),
				)
				return collected, nil
			}
			return collected, fmt.Errorf("collect responses: %w", err)
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		logging.LogDatagram("recv", raddr.String(), payload)

		collected = append(collected, Datagram{
			Addr:    raddr.IP.String(),
			Port:    raddr.Port,
			Payload: payload,
		})
	}
}
