package udp

import "fmt"

// MaxDatagramSize is the largest UDP payload we will read. Device
// messages are far smaller, but the receive buffer covers the theoretical
// maximum so nothing is ever truncated.
const MaxDatagramSize = 65535

// Datagram is one raw unit received from the network, paired with its
// sender. The payload is never inspected below the byte level except by
// the protocol codec.
type Datagram struct {
	// Addr is the sender's IP address.
	Addr string

	// Port is the sender's UDP source port.
	Port int

	// Payload is the raw datagram contents.
	Payload []byte
}

func (d Datagram) String() string {
	return fmt.Sprintf("%d bytes from %s:%d", len(d.Payload), d.Addr, d.Port)
}
