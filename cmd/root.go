// Package cmd wires up the CLI flags and runs the radio console.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"radiocon/config"
	"radiocon/internal/console"
	"radiocon/internal/radio"
	"radiocon/internal/report"
	"radiocon/internal/session"
	"radiocon/internal/sysexec"
	"radiocon/internal/transport"
	"radiocon/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X radiocon/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the console on the process's stdio.
func Execute(ctx context.Context, args []string) error {
	return ExecuteIO(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

// ExecuteIO is Execute with explicit streams.  in is put into raw mode
// when it is a terminal.
func ExecuteIO(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("radiocon", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var configPath string
	fs.StringVarP(&configPath, "config", "f", "", "YAML config file (or RADIOCON_CONFIG)")

	// ── radio ────────────────────────────────────────────────────
	var (
		channel  int
		dwell    time.Duration
		attempts int
		backoff  time.Duration
		capacity int
		seed     int64
	)
	fs.IntVar(&channel, "channel", config.DefaultChannel, "Initial channel (1-14)")
	fs.DurationVar(&dwell, "dwell", config.DefaultScanDwell, "Per-channel scan dwell time")
	fs.IntVar(&attempts, "connect-attempts", config.DefaultConnectAttempts, "Association attempts before giving up")
	fs.DurationVar(&backoff, "connect-backoff", config.DefaultConnectBackoff, "Wait between association attempts")
	fs.IntVar(&capacity, "registry-capacity", config.DefaultRegistryCapacity, "Networks kept per scan (1-1000; the standard console keeps 50)")
	fs.Int64Var(&seed, "seed", 0, "Simulator random seed (0 = time-based)")

	// ── console ──────────────────────────────────────────────────
	var interval time.Duration
	fs.DurationVar(&interval, "status-interval", config.DefaultStatusInterval, "Monitor line cadence")

	// ── network console ──────────────────────────────────────────
	var (
		listen      string
		keepOpen    bool
		idleTimeout time.Duration
		telnet      bool
	)
	fs.StringVarP(&listen, "listen", "l", "", "Serve the console on a TCP address instead of stdio")
	fs.BoolVarP(&keepOpen, "keep-open", "k", false, "Accept further clients after one disconnects (with -l)")
	fs.DurationVar(&idleTimeout, "idle-timeout", 0, "Drop a silent network client after this long (0 = never)")
	fs.BoolVar(&telnet, "telnet", true, "Negotiate server echo with telnet clients (--telnet=false for nc)")

	// ── output ───────────────────────────────────────────────────
	var verbose int
	var quiet bool
	fs.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&quiet, "quiet", "q", false, "Suppress log output except errors")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Print the effective configuration and exit")

	fs.Usage = func() { printUsage(fs, errOut) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	if showHelp {
		printUsage(fs, out)
		return nil
	}
	if showVersion {
		fmt.Fprintf(out, "radiocon %s\n", version)
		return nil
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q (use --help for usage)", fs.Arg(0))
	}

	// ── layer configuration: defaults < file < env < flags ───────
	cfg := config.Default()
	if configPath == "" {
		configPath = config.EnvConfigPath()
	}
	if configPath != "" {
		if err := config.LoadFile(configPath, cfg); err != nil {
			return err
		}
		cfg.ConfigPath = configPath
	}
	config.LoadFromEnv(cfg)

	if fs.Changed("channel") {
		cfg.Channel = channel
	}
	if fs.Changed("dwell") {
		cfg.ScanDwell = dwell
	}
	if fs.Changed("connect-attempts") {
		cfg.ConnectAttempts = attempts
	}
	if fs.Changed("connect-backoff") {
		cfg.ConnectBackoff = backoff
	}
	if fs.Changed("registry-capacity") {
		cfg.RegistryCapacity = capacity
	}
	if fs.Changed("seed") {
		cfg.Seed = seed
	}
	if fs.Changed("status-interval") {
		cfg.StatusInterval = interval
	}
	if fs.Changed("listen") {
		cfg.Listen = listen
	}
	if fs.Changed("keep-open") {
		cfg.KeepOpen = keepOpen
	}
	if fs.Changed("idle-timeout") {
		cfg.IdleTimeout = idleTimeout
	}
	if fs.Changed("telnet") {
		cfg.Telnet = telnet
	}
	if fs.Changed("verbose") {
		cfg.Verbose = 1 + verbose
	}
	if quiet {
		cfg.Verbose = 0
	}
	cfg.DryRun = dryRun

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.DryRun {
		return dumpConfig(out, cfg)
	}

	return run(ctx, cfg, in, out, errOut)
}

// run builds the radio, session and console and serves until the input
// ends or ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) error {
	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(errOut)

	sim, err := radio.NewSim(cfg.Env(), cfg.Seed, logger.With("radio"))
	if err != nil {
		return err
	}
	defer sim.Close()

	sess := session.New(sim, session.Options{
		Channel:          cfg.Channel,
		ScanDwell:        cfg.ScanDwell,
		ConnectAttempts:  cfg.ConnectAttempts,
		ConnectBackoff:   cfg.ConnectBackoff,
		RegistryCapacity: cfg.RegistryCapacity,
	}, logger)
	logger.Verbose("session %s on %s radio, %d simulated network(s)",
		sess.ID(), sim.Name(), len(cfg.Env().Networks))

	if cfg.Listen != "" {
		srv := &transport.Server{
			Address:     cfg.Listen,
			KeepOpen:    cfg.KeepOpen,
			IdleTimeout: cfg.IdleTimeout,
			Telnet:      cfg.Telnet,
			Logger:      logger.With("listen"),
			Handler: func(ctx context.Context, rw io.ReadWriter) error {
				opts := consoleOptions(cfg)
				opts.Raw = true
				opts.Restart = func() error { return sysexec.Restart(nil) }
				return console.New(sess, rw, rw, opts, logger).Run(ctx)
			},
		}
		return srv.Run(ctx)
	}

	tty := rawTerminal(in, logger)
	defer tty.restore()

	opts := consoleOptions(cfg)
	opts.Raw = tty.raw
	opts.Restart = func() error {
		err := sysexec.Restart(tty.restore)
		tty.reenter()
		return err
	}
	return console.New(sess, in, out, opts, logger).Run(ctx)
}

func consoleOptions(cfg *config.Config) console.Options {
	return console.Options{
		Prompt:         cfg.Prompt,
		MaxLine:        cfg.MaxLine,
		StatusInterval: cfg.StatusInterval,
		Identity:       report.Identity{Version: version},
	}
}

// terminal tracks raw mode on the input stream.
type terminal struct {
	fd     int
	tty    bool
	state  *term.State
	raw    bool
	logger *util.Logger
}

// rawTerminal switches in to raw mode when it is a terminal so the
// console performs its own echo and line editing.
func rawTerminal(in io.Reader, logger *util.Logger) *terminal {
	t := &terminal{logger: logger}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		t.tty = true
		t.reenter()
	}
	return t
}

// reenter puts the terminal (back) into raw mode.
func (t *terminal) reenter() {
	if !t.tty || t.raw {
		return
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		t.logger.Warn("raw mode unavailable: %v", err)
		return
	}
	t.state = state
	t.raw = true
	t.logger.SetRaw(true)
}

func (t *terminal) restore() error {
	if !t.raw {
		return nil
	}
	t.raw = false
	t.logger.SetRaw(false)
	return term.Restore(t.fd, t.state)
}

func dumpConfig(w io.Writer, cfg *config.Config) error {
	if cfg.Environment == nil {
		env := cfg.Env()
		cfg.Environment = &env
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `radiocon - wireless radio console v%s

Drive a radio through scan, connect and packet-monitor sessions from a
line-oriented console.  Type 'help' at the prompt for commands.

Usage:
  radiocon [options]

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  radiocon                                    Console on this terminal
  radiocon --channel 6 -v                     Start on channel 6, verbose logs
  radiocon -f lab.yaml --seed 7               Simulated lab environment
  radiocon -f lab.yaml --dry-run              Show the effective configuration
  radiocon -l :2323 -k                        Serve the console to telnet clients
  radiocon -l :2323 --telnet=false            Serve the console to nc clients
`)
}
