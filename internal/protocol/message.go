package protocol

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Message name constants
const (
	MsgID     = "ID"
	MsgTest   = "TEST"
	MsgStatus = "STATUS"
)

// Field key constants
const (
	KeyModel    = "MODEL"
	KeySerial   = "SERIAL"
	KeyCmd      = "CMD"
	KeyDuration = "DURATION"
	KeyRate     = "RATE"
	KeyResult   = "RESULT"
	KeyState    = "STATE"
	KeyTime     = "TIME"
	KeyMV       = "MV"
	KeyMA       = "MA"
)

// Well-known field values
const (
	CmdStart      = "START"
	CmdStop       = "STOP"
	ResultStarted = "STARTED"
	ResultStopped = "STOPPED"
	StateIdle     = "IDLE"
)

// Simulators speak ISO-8859-1, not UTF-8. The encoder substitutes
// unmappable runes rather than failing mid-send.
var (
	wireDecoder = charmap.ISO8859_1.NewDecoder()
	wireEncoder = encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
)

// Field is a single KEY=VALUE pair within a DeviceMessage.
type Field struct {
	Key   string
	Value string
}

// DeviceMessage is one message to or from a device: a name plus an ordered
// list of key/value fields. Field order is preserved from the wire so that
// Encode is an exact inverse of Decode. Keys are unique within a message;
// values are raw strings with no numeric interpretation.
type DeviceMessage struct {
	Name   string
	Fields []Field
}

// Message constructs a DeviceMessage from alternating key, value strings.
//
//	protocol.Message("TEST", "CMD", "START", "DURATION", "30")
//
// Panics if the number of key/value arguments is odd; callers pass
// literals, so this is a programming error rather than input validation.
func Message(name string, kv ...string) DeviceMessage {
	if len(kv)%2 != 0 {
		panic("protocol: odd number of key/value arguments")
	}
	fields := make([]Field, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		fields = append(fields, Field{Key: kv[i], Value: kv[i+1]})
	}
	return DeviceMessage{Name: name, Fields: fields}
}

// Decode parses a raw UDP payload into a DeviceMessage.
//
// The payload is interpreted as ISO-8859-1 text with best-effort
// substitution of undecodable bytes, then split on semicolons. The first
// segment is the message name; every remaining non-empty segment must
// contain exactly one '=' separating key from value.
//
// Returns a *ParseError if the name segment is empty or any field segment
// is malformed. The error keeps the offending segment and the full raw
// payload for diagnostics.
func Decode(raw []byte) (DeviceMessage, error) {
	text, err := wireDecoder.Bytes(raw)
	if err != nil {
		// ISO-8859-1 maps every byte, so this only fires on internal
		// transformer failures.
		return DeviceMessage{}, &ParseError{Raw: raw, Segment: string(raw)}
	}

	parts := strings.Split(string(text), ";")
	name := parts[0]

	var fields []Field
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		entry := strings.Split(part, "=")
		if len(entry) != 2 {
			return DeviceMessage{}, &ParseError{Raw: raw, Segment: part}
		}
		fields = append(fields, Field{Key: entry[0], Value: entry[1]})
	}

	if name == "" {
		return DeviceMessage{}, &ParseError{Raw: raw, EmptyName: true}
	}

	return DeviceMessage{Name: name, Fields: fields}, nil
}

// Encode serialises the message to its wire form: every segment, the name
// included, is terminated by a semicolon. Fields are written in their
// stored order, so Decode(Encode(m)) == m for any m produced by Decode.
func (m DeviceMessage) Encode() []byte {
	var b strings.Builder
	b.WriteString(m.Name)
	b.WriteByte(';')
	for _, f := range m.Fields {
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(f.Value)
		b.WriteByte(';')
	}

	out, err := wireEncoder.Bytes([]byte(b.String()))
	if err != nil {
		// ReplaceUnsupported substitutes instead of erroring.
		return []byte(b.String())
	}
	return out
}

// Get returns the value for key and whether it was present.
func (m DeviceMessage) Get(key string) (string, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Has reports whether the message carries the given key.
func (m DeviceMessage) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Is reports whether the message has the given key set to the given value.
func (m DeviceMessage) Is(key, value string) bool {
	v, ok := m.Get(key)
	return ok && v == value
}

// Equal reports structural equality: same name, same fields in the same
// order.
func (m DeviceMessage) Equal(other DeviceMessage) bool {
	if m.Name != other.Name || len(m.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range m.Fields {
		if other.Fields[i] != f {
			return false
		}
	}
	return true
}

// String returns the wire form, which is already human-readable.
func (m DeviceMessage) String() string {
	return string(m.Encode())
}
