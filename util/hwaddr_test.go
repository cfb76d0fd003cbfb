package util

import (
	"net"
	"testing"
)

func TestParseBSSID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"aa:bb:cc:dd:ee:ff", "AA:BB:CC:DD:EE:FF", false},
		{"AA-BB-CC-00-11-22", "AA:BB:CC:00:11:22", false},
		{" 02:00:00:00:00:01 ", "02:00:00:00:00:01", false},
		{"aa:bb:cc", "", true},
		{"00:00:5e:00:53:00:00:01", "", true}, // EUI-64
		{"not-a-mac", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hw, err := ParseBSSID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBSSID(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := FormatBSSID(hw); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatBSSID_Invalid(t *testing.T) {
	for _, hw := range []net.HardwareAddr{nil, {1, 2, 3}} {
		if got := FormatBSSID(hw); got != "00:00:00:00:00:00" {
			t.Errorf("FormatBSSID(%v) = %q, want zero address", hw, got)
		}
	}
}
