package simulator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/muurk/dutctl/internal/udp"
)

func startSimulator(t *testing.T) (*Simulator, int) {
	t.Helper()

	sim := New(Config{Model: "M001", Serial: "SN0123456", Seed: 1})
	if err := sim.Start("127.0.0.1", 0); err != nil {
		t.Fatalf("simulator start: %v", err)
	}
	t.Cleanup(func() { sim.Close() })
	return sim, sim.Addr().Port
}

func TestSimulator_AnswersProbe(t *testing.T) {
	_, port := startSimulator(t)

	client, err := udp.Dial("127.0.0.1", port, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	if err := client.Send([]byte("ID;")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	raw, err := client.Recv()
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	if got := string(raw); got != "ID;MODEL=M001;SERIAL=SN0123456;" {
		t.Errorf("probe response = %q", got)
	}
}

func TestSimulator_IgnoresGarbage(t *testing.T) {
	_, port := startSimulator(t)

	client, err := udp.Dial("127.0.0.1", port, 150*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	if err := client.Send([]byte(";=;=;")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if _, err := client.Recv(); !errors.Is(err, udp.ErrTimeout) {
		t.Errorf("Recv() after garbage = %v, want silence (ErrTimeout)", err)
	}
}

func TestSimulator_StopAbortsCycle(t *testing.T) {
	_, port := startSimulator(t)

	client, err := udp.Dial("127.0.0.1", port, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	// Long test we intend to cut short
	if err := client.Send([]byte("TEST;CMD=START;DURATION=30;RATE=100;")); err != nil {
		t.Fatalf("Send(start) error = %v", err)
	}
	raw, err := client.Recv()
	if err != nil {
		t.Fatalf("Recv(ack) error = %v", err)
	}
	if got := string(raw); got != "TEST;RESULT=STARTED;" {
		t.Fatalf("start ack = %q", got)
	}

	if err := client.Send([]byte("TEST;CMD=STOP;")); err != nil {
		t.Fatalf("Send(stop) error = %v", err)
	}

	// Telemetry may still be in flight ahead of the stop ack
	for {
		raw, err := client.Recv()
		if err != nil {
			t.Fatalf("Recv() error = %v before stop ack", err)
		}
		if string(raw) == "TEST;RESULT=STOPPED;" {
			break
		}
		if !strings.HasPrefix(string(raw), "STATUS;TIME=") {
			t.Fatalf("unexpected datagram %q while waiting for stop ack", raw)
		}
	}

	// An aborted cycle ends without the IDLE sentinel; allow one in-flight
	// status report, then expect silence.
	for {
		raw, err := client.Recv()
		if errors.Is(err, udp.ErrTimeout) {
			return
		}
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		if string(raw) == "STATUS;STATE=IDLE;" {
			t.Fatal("aborted cycle still sent the IDLE sentinel")
		}
	}
}

func TestSimulator_TelemetryParses(t *testing.T) {
	_, port := startSimulator(t)

	client, err := udp.Dial("127.0.0.1", port, time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	if err := client.Send([]byte("TEST;CMD=START;DURATION=1;RATE=400;")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	// ack, two reports, then the sentinel
	want := []string{
		"TEST;RESULT=STARTED;",
		"STATUS;TIME=400;",
		"STATUS;TIME=800;",
		"STATUS;STATE=IDLE;",
	}
	for i, prefix := range want {
		raw, err := client.Recv()
		if err != nil {
			t.Fatalf("Recv() #%d error = %v", i, err)
		}
		if !strings.HasPrefix(string(raw), prefix) {
			t.Errorf("datagram #%d = %q, want prefix %q", i, raw, prefix)
		}
	}
}
