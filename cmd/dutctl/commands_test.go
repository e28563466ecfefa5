package main

import "testing"

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{
			name:     "address and port",
			input:    "192.168.0.10:6062",
			wantHost: "192.168.0.10",
			wantPort: 6062,
		},
		{
			name:     "multicast group",
			input:    "224.3.11.15:31115",
			wantHost: "224.3.11.15",
			wantPort: 31115,
		},
		{
			name:    "missing port",
			input:   "192.168.0.10",
			wantErr: true,
		},
		{
			name:    "non-numeric port",
			input:   "192.168.0.10:http",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := parseEndpoint(tt.input)

			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEndpoint(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("parseEndpoint(%q) = %q, %d; want %q, %d",
					tt.input, host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestAggregates(t *testing.T) {
	mean, max, min := aggregates([]float64{-11.1, -11.3, -11.0})

	if got := -11.133333333333333; mean < got-0.0001 || mean > got+0.0001 {
		t.Errorf("mean = %v, want ~%v", mean, got)
	}
	if max != -11.0 {
		t.Errorf("max = %v, want -11.0", max)
	}
	if min != -11.3 {
		t.Errorf("min = %v, want -11.3", min)
	}
}
