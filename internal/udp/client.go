package udp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/dutctl/internal/logging"
)

// ErrTimeout is returned by Recv when no datagram arrives within the
// client's timeout. It is expected control flow, not a fault: the test
// session runner reads it as "no further data".
var ErrTimeout = errors.New("receive timed out")

// ErrConnectionRefused is returned when the OS reports that nothing is
// listening on the destination port (ICMP port unreachable). With UDP the
// ICMP reply arrives asynchronously, so the error surfaces on the
// operation after the offending send rather than the send itself.
var ErrConnectionRefused = errors.New("connection refused")

// Client is a connected point-to-point UDP exchange with one device. The
// socket is bound to an ephemeral local port and connected to the peer,
// so only datagrams from that peer are delivered.
//
// A Client belongs to a single session: create it, send the command,
// drain responses with Recv, and Close on every exit path.
type Client struct {
	conn    *net.UDPConn
	timeout time.Duration
	remote  string
}

// Dial creates a client connected to the device at address:port. Every
// subsequent Recv blocks for at most timeout.
func Dial(address string, port int, timeout time.Duration) (*Client, error) {
	remote := net.JoinHostPort(address, strconv.Itoa(port))
	raddr, err := net.ResolveUDPAddr("udp4", remote)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", remote, err)
	}

	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", remote, err)
	}
	logging.Debug("connected UDP socket",
		zap.String("local_addr", conn.LocalAddr().String()),
		zap.String("remote_addr", remote),
	)

	return &Client{conn: conn, timeout: timeout, remote: remote}, nil
}

// ErrClosed is returned by Send and Recv once the client is closed.
var ErrClosed = errors.New("client closed")

// Send transmits one datagram to the connected peer.
func (c *Client) Send(payload []byte) error {
	if c.conn == nil {
		return ErrClosed
	}
	if _, err := c.conn.Write(payload); err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return fmt.Errorf("send to %s: %w", c.remote, ErrConnectionRefused)
		}
		return fmt.Errorf("send to %s: %w", c.remote, err)
	}
	logging.LogDatagram("send", c.remote, payload)
	return nil
}

// Recv blocks for the next datagram from the peer, for at most the
// client's timeout. Returns ErrTimeout when the peer goes silent and
// ErrConnectionRefused when the OS reports no listener on the peer port.
func (c *Client) Recv() ([]byte, error) {
	if c.conn == nil {
		return nil, ErrClosed
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	buf := make([]byte, MaxDatagramSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("recv from %s: %w", c.remote, ErrTimeout)
		}
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, fmt.Errorf("recv from %s: %w", c.remote, ErrConnectionRefused)
		}
		return nil, fmt.Errorf("recv from %s: %w", c.remote, err)
	}

	payload := buf[:n]
	logging.LogDatagram("recv", c.remote, payload)
	return payload, nil
}

// RemoteAddr returns the peer's address as "host:port".
func (c *Client) RemoteAddr() string {
	return c.remote
}

// Close releases the socket. Safe to call more than once.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
