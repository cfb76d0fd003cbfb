package registry

import (
	"net"

	"radiocon/internal/radio"
)

// NextGenScanThreshold is the RSSI (dBm) a scanned network must exceed
// to be flagged next-gen.  Signal strength says nothing about protocol
// capability; the flag is an approximation kept for compatibility.
const NextGenScanThreshold = -50

// Encryption is the display classification of an auth mode.
type Encryption int

const (
	EncOpen Encryption = iota
	EncWEP
	EncWPA
	EncWPA2
	EncWPAMixed
	EncWPA2Enterprise
	EncWPA3
	EncWPA23Mixed
	EncUnknown
)

func (e Encryption) String() string {
	switch e {
	case EncOpen:
		return "Open"
	case EncWEP:
		return "WEP"
	case EncWPA:
		return "WPA"
	case EncWPA2:
		return "WPA2"
	case EncWPAMixed:
		return "WPA-Mixed"
	case EncWPA2Enterprise:
		return "WPA2-Enterprise"
	case EncWPA3:
		return "WPA3"
	case EncWPA23Mixed:
		return "WPA2-3-Mixed"
	default:
		return "Unknown"
	}
}

// EncryptionFor classifies an advertised auth mode.
func EncryptionFor(a radio.AuthMode) Encryption {
	switch a {
	case radio.AuthOpen:
		return EncOpen
	case radio.AuthWEP:
		return EncWEP
	case radio.AuthWPAPSK:
		return EncWPA
	case radio.AuthWPA2PSK:
		return EncWPA2
	case radio.AuthWPAWPA2PSK:
		return EncWPAMixed
	case radio.AuthWPA2Enterprise:
		return EncWPA2Enterprise
	case radio.AuthWPA3PSK:
		return EncWPA3
	case radio.AuthWPA2WPA3PSK:
		return EncWPA23Mixed
	default:
		return EncUnknown
	}
}

// Record is one discovered network.  Records are immutable once stored.
type Record struct {
	SSID       string
	BSSID      net.HardwareAddr
	Channel    int
	RSSI       int
	Encryption Encryption
	NextGen    bool
	Hidden     bool
}

// NewRecord classifies an access point heard during a scan.
func NewRecord(ap radio.AccessPoint) Record {
	bssid := make(net.HardwareAddr, len(ap.BSSID))
	copy(bssid, ap.BSSID)
	return Record{
		SSID:       ap.SSID,
		BSSID:      bssid,
		Channel:    ap.Channel,
		RSSI:       ap.RSSI,
		Encryption: EncryptionFor(ap.Auth),
		NextGen:    ap.RSSI > NextGenScanThreshold,
		Hidden:     ap.SSID == "",
	}
}
