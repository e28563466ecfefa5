package protocol

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		want    DeviceMessage
		wantErr bool
	}{
		{
			name: "discovery response",
			raw:  []byte("ID;MODEL=M001;SERIAL=SN0123456;"),
			want: Message("ID", "MODEL", "M001", "SERIAL", "SN0123456"),
		},
		{
			name: "probe with trailing semicolon",
			raw:  []byte("ID;"),
			want: Message("ID"),
		},
		{
			name: "probe without trailing semicolon",
			raw:  []byte("ID"),
			want: Message("ID"),
		},
		{
			name: "start command",
			raw:  []byte("TEST;CMD=START;DURATION=30;RATE=100;"),
			want: Message("TEST", "CMD", "START", "DURATION", "30", "RATE", "100"),
		},
		{
			name: "stop command",
			raw:  []byte("TEST;CMD=STOP;"),
			want: Message("TEST", "CMD", "STOP"),
		},
		{
			name: "status telemetry",
			raw:  []byte("STATUS;TIME=300;MV=4448.9;MA=-11.1;"),
			want: Message("STATUS", "TIME", "300", "MV", "4448.9", "MA", "-11.1"),
		},
		{
			name: "values stay strings",
			raw:  []byte("STATUS;TIME=not-a-number;MV=x;MA=y;"),
			want: Message("STATUS", "TIME", "not-a-number", "MV", "x", "MA", "y"),
		},
		{
			name:    "empty input",
			raw:     []byte(""),
			wantErr: true,
		},
		{
			name:    "empty name with fields",
			raw:     []byte(";MODEL=M001;"),
			wantErr: true,
		},
		{
			name:    "segment with two equals",
			raw:     []byte("ID;MODEL=M001=M002;SERIAL=SN0123456;"),
			wantErr: true,
		},
		{
			name:    "segment with no equals",
			raw:     []byte("ID;MODEL;"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("Decode() error type = %T, want *ParseError", err)
				}
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecode_ParseErrorDetail(t *testing.T) {
	raw := []byte("ID;MODEL=M001=M002;SERIAL=SN0123456;")

	_, err := Decode(raw)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Decode() error = %v, want *ParseError", err)
	}
	if parseErr.Segment != "MODEL=M001=M002" {
		t.Errorf("Segment = %q, want %q", parseErr.Segment, "MODEL=M001=M002")
	}
	if string(parseErr.Raw) != string(raw) {
		t.Errorf("Raw = %q, want original payload", parseErr.Raw)
	}

	want := `could not parse "MODEL=M001=M002" from "ID;MODEL=M001=M002;SERIAL=SN0123456;"`
	if parseErr.Error() != want {
		t.Errorf("Error() = %q, want %q", parseErr.Error(), want)
	}
}

func TestDecode_EmptyMessageError(t *testing.T) {
	_, err := Decode(nil)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Decode() error = %v, want *ParseError", err)
	}
	if !parseErr.EmptyName {
		t.Error("EmptyName = false, want true")
	}
	if parseErr.Error() != "empty message" {
		t.Errorf("Error() = %q, want %q", parseErr.Error(), "empty message")
	}
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		msg  DeviceMessage
		want string
	}{
		{
			name: "no fields gets trailing semicolon",
			msg:  Message("ID"),
			want: "ID;",
		},
		{
			name: "every segment terminated",
			msg:  Message("TEST", "CMD", "START", "DURATION", "30", "RATE", "100"),
			want: "TEST;CMD=START;DURATION=30;RATE=100;",
		},
		{
			name: "field order preserved",
			msg:  Message("STATUS", "MV", "1.0", "MA", "2.0", "TIME", "100"),
			want: "STATUS;MV=1.0;MA=2.0;TIME=100;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(tt.msg.Encode()); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Encode must be the exact left inverse of Decode for anything Decode
// accepts.
func TestRoundTrip(t *testing.T) {
	payloads := []string{
		"ID;",
		"ID;MODEL=M001;SERIAL=SN0123457;",
		"TEST;RESULT=STARTED;",
		"STATUS;TIME=300;MV=4448.9;MA=-11.1;",
		"STATUS;STATE=IDLE;",
		// Latin-1 bytes above 0x7f survive the trip
		"ID;MODEL=M\xdc01;SERIAL=SN1;",
	}

	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			msg, err := Decode([]byte(payload))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			again, err := Decode(msg.Encode())
			if err != nil {
				t.Fatalf("Decode(Encode()) error = %v", err)
			}
			if !again.Equal(msg) {
				t.Errorf("round trip changed message: %v != %v", again, msg)
			}
			if got := string(msg.Encode()); got != payload {
				t.Errorf("Encode() = %q, want original %q", got, payload)
			}
		})
	}
}

func TestDeviceMessage_Get(t *testing.T) {
	msg := Message("STATUS", "TIME", "300", "MV", "4448.9")

	if v, ok := msg.Get("TIME"); !ok || v != "300" {
		t.Errorf("Get(TIME) = %q, %v; want %q, true", v, ok, "300")
	}
	if _, ok := msg.Get("MA"); ok {
		t.Error("Get(MA) reported present on message without MA")
	}
	if !msg.Is("MV", "4448.9") {
		t.Error("Is(MV, 4448.9) = false, want true")
	}
	if msg.Is("MV", "0") {
		t.Error("Is(MV, 0) = true, want false")
	}
}
