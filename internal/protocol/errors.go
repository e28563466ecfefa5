package protocol

import "fmt"

// ParseError reports a malformed wire message: an empty message name, or a
// field segment without exactly one '='. The full raw payload is retained
// so operators can see exactly what the device sent.
type ParseError struct {
	// Raw is the complete payload that failed to decode.
	Raw []byte

	// Segment is the offending field segment, e.g. "MODEL=M001=M002".
	// Empty when the failure was an empty message name.
	Segment string

	// EmptyName is set when the message name segment was empty.
	EmptyName bool
}

func (e *ParseError) Error() string {
	if e.EmptyName {
		return "empty message"
	}
	return fmt.Sprintf("could not parse %q from %q", e.Segment, e.Raw)
}

// FieldError reports a required field that is missing from a message, or
// present but with a value that cannot be converted. The two cases are
// distinguished by Invalid so callers can give precise diagnostics.
type FieldError struct {
	// Message is the name of the message the field belonged to.
	Message string

	// Key is the field key, e.g. "MV".
	Key string

	// Value is the offending value when Invalid is set.
	Value string

	// Invalid is false for a missing field, true for an unconvertible one.
	Invalid bool
}

func (e *FieldError) Error() string {
	if e.Invalid {
		return fmt.Sprintf("invalid %s value %q in %s message", e.Key, e.Value, e.Message)
	}
	return fmt.Sprintf("%s message missing required field %s", e.Message, e.Key)
}
