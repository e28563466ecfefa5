package udp

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"
)

// startResponder runs a loopback UDP listener that answers the first
// datagram it receives with each of the given replies in order. It stands
// in for a DUT simulator at the socket level.
func startResponder(t *testing.T, replies ...[]byte) (string, int) {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to start responder: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, MaxDatagramSize)
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil || n == 0 {
			return
		}
		for _, reply := range replies {
			if _, err := conn.WriteToUDP(reply, raddr); err != nil {
				return
			}
		}
	}()

	addr := conn.LocalAddr().(*net.UDPAddr)
	return "127.0.0.1", addr.Port
}

func TestClient_Exchange(t *testing.T) {
	replies := [][]byte{
		[]byte("TEST;RESULT=STARTED;"),
		[]byte("STATUS;TIME=100;MV=3300.0;MA=12.5;"),
		[]byte("STATUS;STATE=IDLE;"),
	}
	host, port := startResponder(t, replies...)

	client, err := Dial(host, port, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	if err := client.Send([]byte("TEST;CMD=START;DURATION=1;RATE=100;")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	// Responses arrive in send order
	for i, want := range replies {
		got, err := client.Recv()
		if err != nil {
			t.Fatalf("Recv() #%d error = %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("Recv() #%d = %q, want %q", i, got, want)
		}
	}

	// Responder is done, next Recv must end with a timeout
	if _, err := client.Recv(); !errors.Is(err, ErrTimeout) {
		t.Errorf("Recv() after stream end = %v, want ErrTimeout", err)
	}
}

func TestClient_RecvTimeout(t *testing.T) {
	host, port := startResponder(t) // listener that never replies

	client, err := Dial(host, port, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	if err := client.Send([]byte("ID;")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	start := time.Now()
	_, err = client.Recv()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Recv() = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("Recv() returned after %v, before the timeout", elapsed)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	// Grab a port with no listener by opening and closing a socket
	probe, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := probe.LocalAddr().(*net.UDPAddr).Port
	probe.Close()

	client, err := Dial("127.0.0.1", port, time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer client.Close()

	// ICMP port-unreachable surfaces on the operation after the send
	if err := client.Send([]byte("ID;")); err != nil {
		if !errors.Is(err, ErrConnectionRefused) {
			t.Fatalf("Send() error = %v, want ErrConnectionRefused", err)
		}
		return
	}
	if _, err := client.Recv(); !errors.Is(err, ErrConnectionRefused) {
		t.Errorf("Recv() error = %v, want ErrConnectionRefused", err)
	}
}

func TestClient_CloseIdempotent(t *testing.T) {
	host, port := startResponder(t)

	client, err := Dial(host, port, time.Second)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestBroadcast_Collect(t *testing.T) {
	// Two replies stand in for two responding devices. A unicast loopback
	// destination exercises the same send/collect path as a real group.
	replies := [][]byte{
		[]byte("ID;MODEL=M001;SERIAL=SN0123456;"),
		[]byte("ID;MODEL=M002;SERIAL=SN546314;"),
	}
	host, port := startResponder(t, replies...)

	collected, err := Broadcast(host, port, []byte("ID;"), 200*time.Millisecond, 2)
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	if len(collected) != len(replies) {
		t.Fatalf("Broadcast() collected %d datagrams, want %d", len(collected), len(replies))
	}
	for i, d := range collected {
		if !bytes.Equal(d.Payload, replies[i]) {
			t.Errorf("datagram #%d payload = %q, want %q", i, d.Payload, replies[i])
		}
		if d.Addr != "127.0.0.1" {
			t.Errorf("datagram #%d addr = %q, want 127.0.0.1", i, d.Addr)
		}
		if d.Port != port {
			t.Errorf("datagram #%d port = %d, want %d", i, d.Port, port)
		}
	}
}

func TestBroadcast_EmptyWindow(t *testing.T) {
	host, port := startResponder(t) // never replies

	start := time.Now()
	collected, err := Broadcast(host, port, []byte("ID;"), 150*time.Millisecond, 2)
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	// Silence is not an error, just an empty result after the full window
	if len(collected) != 0 {
		t.Errorf("Broadcast() collected %d datagrams, want 0", len(collected))
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("Broadcast() returned after %v, before the window elapsed", elapsed)
	}
}

func TestBroadcast_InvalidGroup(t *testing.T) {
	if _, err := Broadcast("not-an-address", 31115, []byte("ID;"), time.Millisecond, 2); err == nil {
		t.Error("Broadcast() accepted an invalid group address")
	}
}
