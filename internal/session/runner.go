package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/dutctl/internal/logging"
	"github.com/muurk/dutctl/internal/protocol"
	"github.com/muurk/dutctl/internal/udp"
)

// State is the test session lifecycle state.
type State int

const (
	// StateIdle is a session that has not sent its start command.
	StateIdle State = iota

	// StateStarting means the start command is sent and the session is
	// waiting for the device's acknowledgment.
	StateStarting

	// StateRunning means the device acknowledged and the status stream
	// is active.
	StateRunning

	// StateComplete means the device reported STATE=IDLE: the test ran
	// to the end.
	StateComplete

	// StateTimedOut means the link went silent before completion. This
	// is a normal exit for the stream, not a fault.
	StateTimedOut

	// StateError means the device sent something malformed; the fault is
	// available from Err.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateComplete:
		return "COMPLETE"
	case StateTimedOut:
		return "TIMED_OUT"
	case StateError:
		return "ERROR"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the session has finished.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateTimedOut || s == StateError
}

// Runner is one test session against one device. It is a single-pass
// pull iterator: call Next until it returns false, then inspect State and
// Err. Not safe for concurrent use; run concurrent sessions on separate
// Runners.
type Runner struct {
	client  *udp.Client
	state   State
	err     error
	id      string
	samples int
}

// Start opens a point-to-point exchange with the device at address:port
// and sends the start command for a test of durationSeconds with a status
// report every rateMillis. Each subsequent receive blocks for at most
// timeout.
//
// A send-time failure (including udp.ErrConnectionRefused once the OS has
// seen the ICMP reply) is returned immediately with the socket released.
func Start(address string, port, durationSeconds, rateMillis int, timeout time.Duration) (*Runner, error) {
	client, err := udp.Dial(address, port, timeout)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		client: client,
		state:  StateIdle,
		id:     uuid.NewString()[:8],
	}

	cmd := protocol.StartTest(durationSeconds, rateMillis)
	if err := client.Send(cmd.Encode()); err != nil {
		client.Close()
		return nil, err
	}
	r.state = StateStarting

	logging.Info("test session started",
		zap.String("session", r.id),
		zap.String("device", client.RemoteAddr()),
		zap.Int("duration_s", durationSeconds),
		zap.Int("rate_ms", rateMillis),
		zap.Duration("timeout", timeout),
	)
	return r, nil
}

// Next blocks for the next status sample. It returns false when the
// stream has ended; check State to see how, and Err for the fault when
// the state is ERROR. Samples are yielded strictly in arrival order.
func (r *Runner) Next() (protocol.StatusSample, bool) {
	for !r.state.Terminal() {
		raw, err := r.client.Recv()
		if err != nil {
			if errors.Is(err, udp.ErrTimeout) {
				// The device went silent. Not a fault for the stream
				// itself, so no error is retained.
				r.finish(StateTimedOut)
				logging.Info("test session timed out",
					zap.String("session", r.id),
					zap.Int("samples", r.samples),
				)
				return protocol.StatusSample{}, false
			}
			r.fail(err)
			return protocol.StatusSample{}, false
		}

		msg, err := protocol.Decode(raw)
		if err != nil {
			r.fail(err)
			return protocol.StatusSample{}, false
		}

		switch protocol.Classify(msg) {
		case protocol.KindTestAck:
			// Consumed internally, never yielded
			if r.state == StateStarting && msg.Is(protocol.KeyResult, protocol.ResultStarted) {
				r.state = StateRunning
				logging.Debug("device acknowledged test start", zap.String("session", r.id))
			}

		case protocol.KindTestComplete:
			r.finish(StateComplete)
			logging.Info("test session complete",
				zap.String("session", r.id),
				zap.Int("samples", r.samples),
			)
			return protocol.StatusSample{}, false

		case protocol.KindStatus:
			sample, err := protocol.StatusFromMessage(msg)
			if err != nil {
				r.fail(err)
				return protocol.StatusSample{}, false
			}
			r.state = StateRunning
			r.samples++
			return sample, true

		default:
			// Anything else mid-session means the device and this tool
			// no longer agree on the protocol.
			r.fail(fmt.Errorf("unexpected %s message during test session", msg.Name))
			return protocol.StatusSample{}, false
		}
	}
	return protocol.StatusSample{}, false
}

// State returns the session's current lifecycle state.
func (r *Runner) State() State {
	return r.state
}

// Err returns the fault that ended the session, or nil. Only an ERROR
// exit carries a fault; TIMED_OUT does not.
func (r *Runner) Err() error {
	return r.err
}

// Close releases the session's socket. It is called automatically on
// every terminal transition; callers use it to abandon a session early.
func (r *Runner) Close() error {
	return r.client.Close()
}

func (r *Runner) finish(state State) {
	r.state = state
	r.client.Close()
}

func (r *Runner) fail(err error) {
	r.state = StateError
	r.err = err
	r.client.Close()
	logging.Error("test session failed",
		zap.String("session", r.id),
		zap.Int("samples", r.samples),
		zap.Error(err),
	)
}

// Stop sends TEST;CMD=STOP; to the device and waits for the RESULT=STOPPED
// acknowledgment or the timeout. Telemetry still in flight is drained and
// discarded; a silent device is reported as udp.ErrTimeout.
func Stop(address string, port int, timeout time.Duration) error {
	client, err := udp.Dial(address, port, timeout)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Send(protocol.StopTest().Encode()); err != nil {
		return err
	}

	for {
		raw, err := client.Recv()
		if err != nil {
			return err
		}
		msg, err := protocol.Decode(raw)
		if err != nil {
			return err
		}
		if protocol.Classify(msg) == protocol.KindTestAck {
			return nil
		}
	}
}
