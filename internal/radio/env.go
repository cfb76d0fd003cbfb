package radio

import (
	"fmt"
	"time"

	"radiocon/util"
)

// NetworkSpec describes one simulated access point.
type NetworkSpec struct {
	SSID       string   `yaml:"ssid"`
	BSSID      string   `yaml:"bssid"`
	Channel    int      `yaml:"channel"`
	RSSI       int      `yaml:"rssi"`
	Auth       AuthMode `yaml:"auth"`
	Passphrase string   `yaml:"passphrase,omitempty"`
	// Jitter is the ± dBm spread applied to RSSI on every observation.
	Jitter int `yaml:"jitter,omitempty"`
}

// FrameMix weights the frame types the simulator emits while capturing.
type FrameMix struct {
	Management int `yaml:"management"`
	Data       int `yaml:"data"`
	Control    int `yaml:"control"`
	Other      int `yaml:"other"`
}

func (m FrameMix) total() int { return m.Management + m.Data + m.Control + m.Other }

// Environment is the radio world the simulator presents.
type Environment struct {
	Networks []NetworkSpec `yaml:"networks"`
	// FrameRate is frames per second delivered while promiscuous.
	FrameRate int      `yaml:"frame_rate"`
	FrameMix  FrameMix `yaml:"frame_mix"`
	// AssocLatency is how long one association attempt takes.
	AssocLatency time.Duration `yaml:"assoc_latency"`
	// AssocLoss is the probability [0,1) that an otherwise valid
	// association attempt fails transiently.
	AssocLoss float64 `yaml:"assoc_loss"`
}

// Validate checks every network spec and the frame parameters.
func (e Environment) Validate() error {
	for i, n := range e.Networks {
		if _, err := util.ParseBSSID(n.BSSID); err != nil {
			return fmt.Errorf("network %d (%q): %w", i, n.SSID, err)
		}
		if !ValidChannel(n.Channel) {
			return fmt.Errorf("network %d (%q): channel %d out of range %d-%d",
				i, n.SSID, n.Channel, MinChannel, MaxChannel)
		}
		if n.RSSI > 0 || n.RSSI < -100 {
			return fmt.Errorf("network %d (%q): rssi %d out of range -100..0", i, n.SSID, n.RSSI)
		}
		if n.Jitter < 0 {
			return fmt.Errorf("network %d (%q): negative jitter", i, n.SSID)
		}
	}
	if e.FrameRate < 0 {
		return fmt.Errorf("frame_rate must not be negative")
	}
	if e.FrameRate > 0 && e.FrameMix.total() <= 0 {
		return fmt.Errorf("frame_mix must have a positive weight when frame_rate > 0")
	}
	if e.AssocLoss < 0 || e.AssocLoss >= 1 {
		return fmt.Errorf("assoc_loss must be in [0,1)")
	}
	return nil
}

// DefaultEnvironment is a small neighbourhood: a mix of auth modes,
// a hidden network, and a weak/strong spread across the band.
func DefaultEnvironment() Environment {
	return Environment{
		Networks: []NetworkSpec{
			{SSID: "HomeNet", BSSID: "A4:2B:B0:11:22:01", Channel: 6, RSSI: -38, Auth: AuthWPA2PSK, Passphrase: "correcthorse", Jitter: 3},
			{SSID: "HomeNet-Guest", BSSID: "A4:2B:B0:11:22:02", Channel: 6, RSSI: -45, Auth: AuthOpen, Jitter: 3},
			{SSID: "Cafe_Free_WiFi", BSSID: "3C:84:6A:40:10:AA", Channel: 1, RSSI: -67, Auth: AuthOpen, Jitter: 5},
			{SSID: "NETGEAR42", BSSID: "C0:FF:D4:9A:0B:13", Channel: 11, RSSI: -58, Auth: AuthWPAWPA2PSK, Passphrase: "purpletree417", Jitter: 4},
			{SSID: "Office-Corp", BSSID: "00:1A:1E:02:33:C0", Channel: 1, RSSI: -72, Auth: AuthWPA2Enterprise, Jitter: 4},
			{SSID: "SmartHome-7F", BSSID: "E8:48:B8:7F:00:7F", Channel: 3, RSSI: -61, Auth: AuthWPA3PSK, Passphrase: "iot-secret-7f", Jitter: 2},
			{SSID: "", BSSID: "F2:9F:C2:00:00:01", Channel: 9, RSSI: -80, Auth: AuthWPA2PSK, Passphrase: "hiddenhidden", Jitter: 3},
			{SSID: "Linksys_Old", BSSID: "00:14:BF:AA:BB:CC", Channel: 6, RSSI: -85, Auth: AuthWEP, Passphrase: "12345", Jitter: 3},
			{SSID: "Neighbour5G-Fallback", BSSID: "70:4F:57:01:02:03", Channel: 13, RSSI: -49, Auth: AuthWPA2WPA3PSK, Passphrase: "shared-key-99", Jitter: 2},
			{SSID: "PrinterDirect", BSSID: "9C:93:4E:10:20:30", Channel: 11, RSSI: -76, Auth: AuthWPAPSK, Passphrase: "printme123", Jitter: 3},
			{SSID: "JP-Channel14", BSSID: "00:0D:0B:14:14:14", Channel: 14, RSSI: -88, Auth: AuthWPA2PSK, Passphrase: "fourteen14", Jitter: 2},
		},
		FrameRate:    200,
		FrameMix:     FrameMix{Management: 35, Data: 55, Control: 8, Other: 2},
		AssocLatency: 150 * time.Millisecond,
		AssocLoss:    0.2,
	}
}
