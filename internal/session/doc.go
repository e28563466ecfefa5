// Package session drives one timed electrical test against a single DUT.
//
// A session is a small state machine over a point-to-point UDP exchange:
//
//	IDLE -> STARTING -> RUNNING -> COMPLETE | TIMED_OUT | ERROR
//
// Start sends TEST;CMD=START;DURATION=..;RATE=..; and returns a Runner in
// STARTING. Each call to Next pulls the next inbound datagram and decodes
// it: TEST acknowledgments are consumed internally (RESULT=STARTED moves
// the session to RUNNING), STATUS;STATE=IDLE; ends the stream in
// COMPLETE, and every other STATUS message is converted to a StatusSample
// and yielded in arrival order.
//
//	runner, err := session.Start("192.168.0.10", 6062, 30, 100, time.Second)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close()
//
//	for {
//	    sample, ok := runner.Next()
//	    if !ok {
//	        break
//	    }
//	    fmt.Println(sample)
//	}
//	if runner.State() == session.StateError {
//	    return runner.Err()
//	}
//
// The sample stream is finite and single-pass. A transport timeout ends
// it in TIMED_OUT, which is a normal exit, not a fault: the device went
// silent and the caller decides whether an incomplete run matters. A
// malformed message ends it in ERROR with the fault retained in Err,
// because corruption mid-stream means protocol desync, not one bad actor
// among many responders. The socket is released on every exit path.
package session
