package util

import (
	"fmt"
	"net"
	"strings"
)

// BSSIDLen is the length of an 802.11 hardware address in bytes.
const BSSIDLen = 6

// ParseBSSID parses a colon- or dash-separated 6-byte hardware address.
func ParseBSSID(s string) (net.HardwareAddr, error) {
	hw, err := net.ParseMAC(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid BSSID %q: %w", s, err)
	}
	if len(hw) != BSSIDLen {
		return nil, fmt.Errorf("invalid BSSID %q: want %d bytes, got %d", s, BSSIDLen, len(hw))
	}
	return hw, nil
}

// FormatBSSID renders hw as upper-case colon-hex ("AA:BB:CC:DD:EE:FF").
// A nil or short address renders as all zeros.
func FormatBSSID(hw net.HardwareAddr) string {
	if len(hw) != BSSIDLen {
		return "00:00:00:00:00:00"
	}
	return strings.ToUpper(hw.String())
}
