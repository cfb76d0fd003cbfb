// Package report renders session state as console text.
//
// Every function writes "\n"-terminated lines; the console translates
// line endings when the terminal is in raw mode.
package report

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"radiocon/internal/capture"
	"radiocon/internal/radio"
	"radiocon/internal/session"
	"radiocon/util"
)

// ClearScreen erases the display and homes the cursor.
const ClearScreen = "\033[2J\033[H"

// MonitorLine is the periodic capture status line.
func MonitorLine(ch int, c capture.Snapshot) string {
	return fmt.Sprintf("[MONITOR] Ch %d (%d MHz) | Total: %d | Mgmt: %d | Data: %d | Ctrl: %d",
		ch, radio.FrequencyMHz(ch), c.Total, c.Management, c.Data, c.Control)
}

// Quality labels a signal strength.
func Quality(rssi int) string {
	switch {
	case rssi > -50:
		return "Excellent"
	case rssi > -60:
		return "Good"
	case rssi > -70:
		return "Fair"
	default:
		return "Weak"
	}
}

// LinkDetails renders a live association.
func LinkDetails(w io.Writer, l session.LinkState) {
	fmt.Fprintf(w, "  SSID:      %s\n", l.SSID)
	fmt.Fprintf(w, "  BSSID:     %s\n", util.FormatBSSID(l.BSSID))
	fmt.Fprintf(w, "  Channel:   %d (%d MHz)\n", l.Channel, radio.FrequencyMHz(l.Channel))
	fmt.Fprintf(w, "  Signal:    %d dBm (%s)\n", l.RSSI, Quality(l.RSSI))
	fmt.Fprintf(w, "  IP:        %s\n", ipString(l.IP))
	fmt.Fprintf(w, "  Gateway:   %s\n", ipString(l.Gateway))
	fmt.Fprintf(w, "  Netmask:   %s\n", maskString(l))
	fmt.Fprintf(w, "  Next-gen:  %s\n", yesNo(l.NextGen))
}

// FinalCounters renders the counters reported when a capture stops.
func FinalCounters(w io.Writer, c capture.Snapshot, elapsed time.Duration) {
	fmt.Fprintf(w, "Packet monitoring stopped after %s.\n", elapsed.Truncate(time.Millisecond))
	counters(w, c)
}

func counters(w io.Writer, c capture.Snapshot) {
	fmt.Fprintf(w, "  Total:       %s\n", humanize.Comma(int64(c.Total)))
	fmt.Fprintf(w, "  Management:  %s\n", humanize.Comma(int64(c.Management)))
	fmt.Fprintf(w, "  Data:        %s\n", humanize.Comma(int64(c.Data)))
	fmt.Fprintf(w, "  Control:     %s\n", humanize.Comma(int64(c.Control)))
	fmt.Fprintf(w, "  Other:       %s\n", humanize.Comma(int64(c.Other())))
}

// Status renders the on-demand status summary.
func Status(w io.Writer, s *session.Session, now time.Time) {
	fmt.Fprintln(w, "=== Status ===")
	fmt.Fprintf(w, "Mode:      %s\n", s.Mode())
	fmt.Fprintf(w, "Channel:   %d (%d MHz)\n", s.Channel(), radio.FrequencyMHz(s.Channel()))

	if l, ok := s.Link(); ok {
		fmt.Fprintf(w, "Connected: %s for %s\n", l.SSID, since(l.Since, now))
		LinkDetails(w, l)
	}
	if s.Mode() == session.Monitoring {
		fmt.Fprintf(w, "Capture:   running for %s\n", since(s.MonitoringSince(), now))
		counters(w, s.Counters())
	}

	reg := s.Registry()
	line := fmt.Sprintf("Networks:  %d/%d", reg.Len(), reg.Cap())
	if t := s.LastScan(); !t.IsZero() {
		line += fmt.Sprintf(" (scanned %s)", humanize.RelTime(t, now, "ago", "from now"))
	}
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Uptime:    %s\n", since(s.Started(), now))
	fmt.Fprintf(w, "Radio:     %s\n", s.RadioName())
}

// since renders a coarse elapsed time such as "3 minutes".
func since(t, now time.Time) string {
	return strings.TrimSpace(humanize.RelTime(t, now, "", ""))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func ipString(ip net.IP) string {
	if len(ip) == 0 {
		return "-"
	}
	return ip.String()
}

func maskString(l session.LinkState) string {
	if len(l.Netmask) == 0 {
		return "-"
	}
	ones, _ := l.Netmask.Size()
	return fmt.Sprintf("%s (/%d)", net.IP(l.Netmask), ones)
}
