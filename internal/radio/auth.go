package radio

import (
	"fmt"
	"strings"
)

// AuthMode is the authentication mode advertised in a beacon.
type AuthMode int

const (
	AuthOpen AuthMode = iota
	AuthWEP
	AuthWPAPSK
	AuthWPA2PSK
	AuthWPAWPA2PSK
	AuthWPA2Enterprise
	AuthWPA3PSK
	AuthWPA2WPA3PSK
	AuthWAPIPSK
	AuthUnknown
)

var authNames = map[AuthMode]string{
	AuthOpen:           "open",
	AuthWEP:            "wep",
	AuthWPAPSK:         "wpa",
	AuthWPA2PSK:        "wpa2",
	AuthWPAWPA2PSK:     "wpa-wpa2",
	AuthWPA2Enterprise: "wpa2-enterprise",
	AuthWPA3PSK:        "wpa3",
	AuthWPA2WPA3PSK:    "wpa2-wpa3",
	AuthWAPIPSK:        "wapi",
	AuthUnknown:        "unknown",
}

func (a AuthMode) String() string {
	if s, ok := authNames[a]; ok {
		return s
	}
	return "unknown"
}

// ParseAuthMode accepts the lower-case names produced by String.
func ParseAuthMode(s string) (AuthMode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for mode, name := range authNames {
		if name == want {
			return mode, nil
		}
	}
	return AuthUnknown, fmt.Errorf("unknown auth mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a AuthMode) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler, so auth modes can
// be written by name in configuration files.
func (a *AuthMode) UnmarshalText(text []byte) error {
	m, err := ParseAuthMode(string(text))
	if err != nil {
		return err
	}
	*a = m
	return nil
}
