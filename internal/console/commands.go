package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	rcerr "radiocon/internal/errors"
	"radiocon/internal/radio"
	"radiocon/internal/report"
	"radiocon/internal/retry"
	"radiocon/internal/session"
)

// Usage lines for commands with required arguments.
const (
	UsageConnect = "Usage: connect <ssid> <password>"
	UsageChannel = "Usage: channel <1-14>"
	UsageMonitor = "Usage: monitor [channel 1-14]"
)

// MsgNoNetworks is printed when the registry is empty.
const MsgNoNetworks = "No networks found. Run 'scan' first."

type command struct {
	name    string
	aliases []string
	args    string
	summary string
	run     func(c *Console, ctx context.Context, args string)
}

// commandTable lists commands in help order.
func commandTable() []*command {
	return []*command{
		{name: "help", aliases: []string{"h", "?"}, summary: "Show this help", run: (*Console).cmdHelp},
		{name: "scan", aliases: []string{"s"}, summary: "Scan channels 1-14 for networks", run: (*Console).cmdScan},
		{name: "connect", aliases: []string{"c"}, args: "<ssid> <password>", summary: "Connect to a network", run: (*Console).cmdConnect},
		{name: "disconnect", aliases: []string{"dc"}, summary: "Disconnect from the network", run: (*Console).cmdDisconnect},
		{name: "monitor", aliases: []string{"m"}, args: "[channel]", summary: "Start packet monitoring", run: (*Console).cmdMonitor},
		{name: "stop", aliases: []string{"x"}, summary: "Stop packet monitoring", run: (*Console).cmdStop},
		{name: "networks", aliases: []string{"n", "list"}, summary: "List networks from the last scan", run: (*Console).cmdNetworks},
		{name: "status", aliases: []string{"st"}, summary: "Show current status", run: (*Console).cmdStatus},
		{name: "channel", aliases: []string{"ch"}, args: "<1-14>", summary: "Set the monitoring channel", run: (*Console).cmdChannel},
		{name: "info", aliases: []string{"i"}, summary: "Show system information", run: (*Console).cmdInfo},
		{name: "export", aliases: []string{"e"}, summary: "Export networks as CSV", run: (*Console).cmdExport},
		{name: "clear", aliases: []string{"cls"}, summary: "Clear the screen", run: (*Console).cmdClear},
		{name: "reset", aliases: []string{"r"}, summary: "Restart the console", run: (*Console).cmdReset},
	}
}

// splitWord splits s at the first run of whitespace.  rest keeps its
// inner spacing.
func splitWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// parseChannel accepts a decimal channel number.  Anything else is
// reported as an invalid channel.
func parseChannel(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || !radio.ValidChannel(n) {
		return 0, rcerr.Invalid("channel", s, session.MsgInvalidChannel)
	}
	return n, nil
}

// ── Handlers ─────────────────────────────────────────────────────────

func (c *Console) cmdHelp(_ context.Context, _ string) {
	c.println("Available commands:")
	for _, cmd := range c.commands {
		names := cmd.name
		if cmd.args != "" {
			names += " " + cmd.args
		}
		alias := ""
		if len(cmd.aliases) > 0 {
			alias = "(" + strings.Join(cmd.aliases, ", ") + ")"
		}
		c.printf("  %-26s %-10s %s\n", names, alias, cmd.summary)
	}
}

func (c *Console) cmdScan(ctx context.Context, _ string) {
	c.printf("Scanning channels %d-%d...\n", radio.MinChannel, radio.MaxChannel)
	res, err := c.sess.Scan(ctx)
	if err != nil {
		c.fail(err)
		return
	}
	report.ScanSummary(c.out, res)
}

func (c *Console) cmdConnect(ctx context.Context, args string) {
	ssid, password := splitWord(args)
	if ssid == "" || password == "" {
		c.println(UsageConnect)
		return
	}

	attempted := false
	c.sess.SetConnectObserver(func(int) {
		if !attempted {
			attempted = true
			c.printf("Connecting to '%s'", ssid)
		}
		c.printf(".")
	})
	link, err := c.sess.Connect(ctx, ssid, password)
	c.sess.SetConnectObserver(nil)
	if attempted {
		c.println("")
	}

	if err != nil {
		if rcerr.IsGuard(err) || rcerr.IsValidation(err) {
			c.fail(err)
			return
		}
		c.printf("Failed to connect to '%s': %s\n", ssid, describeConnectFailure(err))
		return
	}
	c.printf("Connected to '%s'.\n", link.SSID)
	report.LinkDetails(c.out, link)
}

func describeConnectFailure(err error) string {
	var ex *retry.ExhaustedError
	if rcerr.As(err, &ex) {
		return fmt.Sprintf("%v (%d attempts)", ex.Err, ex.Attempts)
	}
	var oe *rcerr.OperationError
	if rcerr.As(err, &oe) {
		return oe.Err.Error()
	}
	return err.Error()
}

func (c *Console) cmdDisconnect(_ context.Context, _ string) {
	prev, err := c.sess.Disconnect()
	if err != nil {
		c.fail(err)
		return
	}
	c.printf("Disconnected from '%s'.\n", prev.SSID)
}

func (c *Console) cmdMonitor(_ context.Context, args string) {
	ch := c.sess.Channel()
	if args != "" {
		word, rest := splitWord(args)
		if rest != "" {
			c.println(UsageMonitor)
			return
		}
		n, err := parseChannel(word)
		if err != nil {
			c.fail(err)
			return
		}
		ch = n
	}

	if err := c.sess.StartMonitoring(ch); err != nil {
		c.fail(err)
		return
	}
	c.printf("Packet monitoring started on channel %d (%d MHz). Type 'stop' to end.\n",
		ch, radio.FrequencyMHz(ch))
	c.monitorLine()
}

func (c *Console) cmdStop(_ context.Context, _ string) {
	since := c.sess.MonitoringSince()
	final, err := c.sess.StopMonitoring()
	if err != nil && rcerr.IsNoop(err) {
		c.fail(err)
		return
	}
	report.FinalCounters(c.out, final, c.now().Sub(since))
	if err != nil {
		c.fail(err)
	}
}

func (c *Console) cmdNetworks(_ context.Context, _ string) {
	recs := c.sess.Registry().Records()
	if len(recs) == 0 {
		c.println(MsgNoNetworks)
		return
	}
	c.printf("%d network(s) from last scan:\n", len(recs))
	report.NetworkTable(c.out, recs)
}

func (c *Console) cmdStatus(_ context.Context, _ string) {
	report.Status(c.out, c.sess, c.now())
}

func (c *Console) cmdChannel(_ context.Context, args string) {
	word, rest := splitWord(args)
	if word == "" || rest != "" {
		c.println(UsageChannel)
		return
	}
	ch, err := parseChannel(word)
	if err != nil {
		c.fail(err)
		return
	}
	if err := c.sess.SetChannel(ch); err != nil {
		c.fail(err)
		return
	}
	if c.sess.Mode() == session.Monitoring {
		c.printf("Channel set to %d (%d MHz). Capture retuned.\n", ch, radio.FrequencyMHz(ch))
	} else {
		c.printf("Channel set to %d (%d MHz). Takes effect on next 'monitor'.\n", ch, radio.FrequencyMHz(ch))
	}
}

func (c *Console) cmdInfo(ctx context.Context, _ string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	report.Info(ctx, c.out, c.opts.Probe, c.identity())
}

func (c *Console) cmdExport(_ context.Context, _ string) {
	recs := c.sess.Registry().Records()
	if len(recs) == 0 {
		c.println(MsgNoNetworks)
		return
	}
	if err := report.ExportCSV(c.out, c.sess.ID(), recs); err != nil {
		c.logger.Error("export: %v", err)
	}
}

func (c *Console) cmdClear(_ context.Context, _ string) {
	c.printf("%s", report.ClearScreen)
}

func (c *Console) cmdReset(_ context.Context, _ string) {
	if c.opts.Restart == nil {
		c.println("Restart is not available on this platform.")
		return
	}
	c.println("Restarting...")
	c.sess.Shutdown()
	if err := c.opts.Restart(); err != nil {
		c.printf("Restart failed: %v\n", err)
	}
}
