package protocol

import "fmt"

// Kind classifies a decoded message by its protocol role. Classification
// happens immediately after Decode so that protocol-shape knowledge lives
// here instead of in scattered field-presence checks at call sites.
type Kind int

const (
	// KindUnrecognized is any message this tool has no handling for.
	KindUnrecognized Kind = iota

	// KindDiscovery is an ID response carrying MODEL and SERIAL.
	KindDiscovery

	// KindTestAck is any TEST message from the device, e.g. RESULT=STARTED.
	KindTestAck

	// KindTestComplete is the STATUS;STATE=IDLE; end-of-test sentinel.
	KindTestComplete

	// KindStatus is a STATUS message carrying telemetry fields.
	KindStatus
)

// Classify maps a decoded message onto its Kind.
//
// An ID message without both MODEL and SERIAL is Unrecognized rather than
// Discovery: a bare "ID;" is our own outbound probe shape, never a valid
// response.
func Classify(m DeviceMessage) Kind {
	switch m.Name {
	case MsgID:
		if m.Has(KeyModel) && m.Has(KeySerial) {
			return KindDiscovery
		}
	case MsgTest:
		return KindTestAck
	case MsgStatus:
		if m.Is(KeyState, StateIdle) {
			return KindTestComplete
		}
		return KindStatus
	}
	return KindUnrecognized
}

func (k Kind) String() string {
	switch k {
	case KindDiscovery:
		return "discovery"
	case KindTestAck:
		return "test-ack"
	case KindTestComplete:
		return "test-complete"
	case KindStatus:
		return "status"
	default:
		return fmt.Sprintf("unrecognized(%d)", int(k))
	}
}
