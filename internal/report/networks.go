package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"radiocon/internal/registry"
	"radiocon/internal/session"
	"radiocon/util"
)

// HiddenSSID is shown in place of an empty SSID.
const HiddenSSID = "<hidden>"

const ssidWidth = 24

// ScanSummary reports the outcome of a scan.
func ScanSummary(w io.Writer, res session.ScanResult) {
	if len(res.Records) == 0 {
		fmt.Fprintln(w, "No networks found.")
		return
	}
	fmt.Fprintf(w, "Found %d network(s):\n", len(res.Records))
	NetworkTable(w, res.Records)
	if res.Truncated {
		fmt.Fprintf(w, "(list truncated at %d entries)\n", len(res.Records))
	}
}

// NetworkTable renders records in registry order.
func NetworkTable(w io.Writer, recs []registry.Record) {
	fmt.Fprintf(w, "%-3s %s %-17s %3s %5s %-9s %-15s %s\n",
		"#", pad("SSID", ssidWidth), "BSSID", "Ch", "RSSI", "Quality", "Encryption", "Next-gen")
	for i, r := range recs {
		fmt.Fprintf(w, "%-3d %s %-17s %3d %5d %-9s %-15s %s\n",
			i+1,
			pad(displaySSID(r), ssidWidth),
			util.FormatBSSID(r.BSSID),
			r.Channel,
			r.RSSI,
			Quality(r.RSSI),
			r.Encryption,
			yesNo(r.NextGen))
	}
}

func displaySSID(r registry.Record) string {
	if r.Hidden || r.SSID == "" {
		return HiddenSSID
	}
	return r.SSID
}

// pad fits s into exactly width terminal cells.
func pad(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "~"), width)
}

// ExportHeader is the CSV column header.
var ExportHeader = []string{"SSID", "BSSID", "Channel", "RSSI", "Encryption", "NextGen", "Hidden"}

// ExportCSV writes the registry as CSV, preceded by a comment naming
// the boot that produced it.
func ExportCSV(w io.Writer, boot uuid.UUID, recs []registry.Record) error {
	if _, err := fmt.Fprintf(w, "# boot %s\n", boot); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			r.SSID,
			util.FormatBSSID(r.BSSID),
			strconv.Itoa(r.Channel),
			strconv.Itoa(r.RSSI),
			r.Encryption.String(),
			strconv.FormatBool(r.NextGen),
			strconv.FormatBool(r.Hidden),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
