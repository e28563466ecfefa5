package protocol

import "strconv"

// Command constructors for the messages this tool sends to devices.

// Probe returns the discovery probe sent to the multicast group. It
// carries no fields and encodes to exactly "ID;".
func Probe() DeviceMessage {
	return Message(MsgID)
}

// StartTest returns the command that begins a test cycle running for
// durationSeconds with a status report every rateMillis.
func StartTest(durationSeconds, rateMillis int) DeviceMessage {
	return Message(MsgTest,
		KeyCmd, CmdStart,
		KeyDuration, strconv.Itoa(durationSeconds),
		KeyRate, strconv.Itoa(rateMillis),
	)
}

// StopTest returns the command that aborts a running test cycle.
func StopTest() DeviceMessage {
	return Message(MsgTest, KeyCmd, CmdStop)
}

// DiscoveryResponse returns the reply a device sends to a probe. Used by
// the simulator.
func DiscoveryResponse(model, serial string) DeviceMessage {
	return Message(MsgID, KeyModel, model, KeySerial, serial)
}

// TestAck returns the device's acknowledgment of a test command, e.g.
// RESULT=STARTED. Used by the simulator.
func TestAck(result string) DeviceMessage {
	return Message(MsgTest, KeyResult, result)
}

// StatusReport returns one telemetry report for a running test. Used by
// the simulator. Float formatting uses the shortest representation that
// round-trips, matching what real simulators emit.
func StatusReport(timeMillis int, mv, ma float64) DeviceMessage {
	return Message(MsgStatus,
		KeyTime, strconv.Itoa(timeMillis),
		KeyMV, strconv.FormatFloat(mv, 'f', -1, 64),
		KeyMA, strconv.FormatFloat(ma, 'f', -1, 64),
	)
}

// TestComplete returns the STATE=IDLE sentinel that ends a test cycle.
// Used by the simulator.
func TestComplete() DeviceMessage {
	return Message(MsgStatus, KeyState, StateIdle)
}
