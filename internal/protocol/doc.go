// Package protocol implements the DUT simulator text protocol.
//
// This package handles decoding, validation, and construction of the
// semicolon-delimited messages exchanged with device-under-test simulators
// over UDP. A message is a name followed by zero or more KEY=VALUE fields,
// every segment terminated by a semicolon:
//
//	ID;MODEL=M001;SERIAL=SN0123457;
//	TEST;CMD=START;DURATION=30;RATE=100;
//	STATUS;TIME=300;MV=4448.9;MA=-11.1;
//
// Payloads are interpreted as ISO-8859-1 text, the encoding the simulators
// have always emitted. No numeric interpretation happens at the codec
// layer; values stay strings until a consumer such as StatusFromMessage
// converts them.
//
// # Message Types
//
//   - ID: discovery. The probe carries no fields; responses carry MODEL
//     and SERIAL.
//   - TEST: test control. Outbound CMD=START|STOP with DURATION (seconds)
//     and RATE (milliseconds); inbound RESULT=STARTED|STOPPED.
//   - STATUS: telemetry during a running test (TIME in ms, MV, MA), or
//     STATE=IDLE as the end-of-test sentinel.
//
// # Classification
//
// Classify maps a decoded message onto an explicit Kind so that callers
// switch on one tag instead of scattering field-presence checks:
//
//	msg, err := protocol.Decode(raw)
//	if err != nil {
//	    return err
//	}
//	switch protocol.Classify(msg) {
//	case protocol.KindStatus:
//	    sample, err := protocol.StatusFromMessage(msg)
//	    ...
//	case protocol.KindTestComplete:
//	    ...
//	}
//
// # Error Handling
//
// The package distinguishes between:
//   - ParseError: malformed wire text (empty name, bad KEY=VALUE segment)
//   - FieldError: a required field is missing, or present but not numeric
//
// Both retain enough of the offending input for diagnostics.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use. DeviceMessage
// values are never mutated after construction.
package protocol
