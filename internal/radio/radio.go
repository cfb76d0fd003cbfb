// Package radio abstracts the wireless hardware the console drives.
//
// A Radio scans one channel at a time, associates with an access point,
// and in promiscuous mode delivers every received frame to a
// [FrameHandler].  The handler runs on the radio's own delivery
// goroutine, never on the caller's, and must return quickly.
//
// Reconfiguration (SetChannel, SetPromiscuous, Associate) is issued from
// a single foreground goroutine.  Implementations serialize it against
// in-flight frame delivery: once SetPromiscuous(false, nil) returns, the
// handler is not called again.
package radio

import (
	"context"
	"net"
	"time"
)

// FrameType is the hardware-provided frame category tag.
type FrameType uint8

const (
	FrameManagement FrameType = 0
	FrameControl    FrameType = 1
	FrameData       FrameType = 2
	FrameMisc       FrameType = 3
)

func (t FrameType) String() string {
	switch t {
	case FrameManagement:
		return "management"
	case FrameControl:
		return "control"
	case FrameData:
		return "data"
	case FrameMisc:
		return "misc"
	default:
		return "unknown"
	}
}

// FrameHandler receives one call per captured frame.
type FrameHandler func(FrameType)

// AccessPoint is one beacon/probe response heard during a scan.
type AccessPoint struct {
	SSID    string
	BSSID   net.HardwareAddr
	Channel int
	RSSI    int // dBm
	Auth    AuthMode
}

// Link describes an established station association.
type Link struct {
	SSID    string
	BSSID   net.HardwareAddr
	Channel int
	RSSI    int
	IP      net.IP
	Gateway net.IP
	Netmask net.IPMask
}

// Radio is the hardware boundary.  All methods are called from the
// foreground goroutine.
type Radio interface {
	// Name identifies the backend, e.g. "sim".
	Name() string

	// ScanChannel listens on channel for dwell and returns the access
	// points heard, in the order they were heard.
	ScanChannel(ctx context.Context, channel int, dwell time.Duration) ([]AccessPoint, error)

	// Associate performs one association attempt with the strongest
	// access point advertising ssid, authenticating with psk (the
	// 32-byte pairwise master key; ignored by open networks).
	Associate(ctx context.Context, ssid string, psk []byte) (Link, error)

	// Disassociate tears down the current association, if any.
	Disassociate() error

	// SetChannel retunes the receiver.
	SetChannel(channel int) error

	// SetPromiscuous enables delivery of every received frame to h, with
	// no frame-type filtering, or disables it (h is ignored).
	SetPromiscuous(enable bool, h FrameHandler) error

	// Close releases the hardware.
	Close() error
}
