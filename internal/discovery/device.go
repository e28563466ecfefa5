package discovery

import (
	"fmt"
	"sort"

	"github.com/muurk/dutctl/internal/protocol"
	"github.com/muurk/dutctl/internal/udp"
)

// Device represents one DUT simulator that answered a discovery probe.
// It is a comparable value type: two records with the same model and
// serial but different addresses or ports are distinct devices (a port
// clash is worth seeing, not deduplicating).
type Device struct {
	// Address is the IP address the response came from.
	Address string

	// Port is the UDP source port of the response, which is the port the
	// device accepts test commands on.
	Port int

	// Model is the device model identifier, e.g. "M001".
	Model string

	// Serial is the device serial number, e.g. "SN0123457".
	Serial string
}

// Less orders devices by (model, serial) lexicographically, independent
// of address and port.
func (d Device) Less(other Device) bool {
	if d.Model != other.Model {
		return d.Model < other.Model
	}
	return d.Serial < other.Serial
}

// Endpoint returns the device's test endpoint as "host:port".
func (d Device) Endpoint() string {
	return fmt.Sprintf("%s:%d", d.Address, d.Port)
}

func (d Device) String() string {
	return fmt.Sprintf("%s %s at %s:%d", d.Model, d.Serial, d.Address, d.Port)
}

// Sort orders devices by (model, serial) in place. Ordering is a
// presentation concern; Discover itself guarantees none.
func Sort(devices []Device) {
	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Less(devices[j])
	})
}

// FromDatagram parses one discovery response into a Device.
//
// The payload must decode to an ID message carrying MODEL and SERIAL.
// Returns the codec's *ParseError for malformed payloads and a
// *FieldError naming the absent key for incomplete ones.
func FromDatagram(dg udp.Datagram) (Device, error) {
	msg, err := protocol.Decode(dg.Payload)
	if err != nil {
		return Device{}, err
	}

	if protocol.Classify(msg) != protocol.KindDiscovery {
		if msg.Name != protocol.MsgID {
			return Device{}, fmt.Errorf("expected an %s message, got %q", protocol.MsgID, msg.Name)
		}
		for _, key := range []string{protocol.KeyModel, protocol.KeySerial} {
			if !msg.Has(key) {
				return Device{}, &protocol.FieldError{Message: msg.Name, Key: key}
			}
		}
	}

	model, _ := msg.Get(protocol.KeyModel)
	serial, _ := msg.Get(protocol.KeySerial)

	return Device{
		Address: dg.Addr,
		Port:    dg.Port,
		Model:   model,
		Serial:  serial,
	}, nil
}
