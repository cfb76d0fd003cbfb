// Package config defines the runtime configuration for radiocon: radio
// tunables, console behaviour and the simulated radio environment.
package config

import (
	"net"
	"time"

	rcerr "radiocon/internal/errors"
	"radiocon/internal/radio"
)

// Config holds every tuneable for one console session.
type Config struct {
	// ── Radio ────────────────────────────────────────────────────────
	Channel          int           `yaml:"channel"`
	ScanDwell        time.Duration `yaml:"scan_dwell"`
	ConnectAttempts  int           `yaml:"connect_attempts"`
	ConnectBackoff   time.Duration `yaml:"connect_backoff"`
	RegistryCapacity int           `yaml:"registry_capacity"`

	// ── Simulator ────────────────────────────────────────────────────
	Seed        int64              `yaml:"seed"` // 0 picks a time-based seed
	Environment *radio.Environment `yaml:"environment"`

	// ── Console ──────────────────────────────────────────────────────
	Prompt         string        `yaml:"prompt"`
	MaxLine        int           `yaml:"max_line"`
	StatusInterval time.Duration `yaml:"status_interval"`

	// ── Network console ──────────────────────────────────────────────
	Listen      string        `yaml:"listen"`    // serve the console on this TCP address
	KeepOpen    bool          `yaml:"keep_open"` // accept further clients after one leaves
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	Telnet      bool          `yaml:"telnet"` // offer server-side echo to telnet clients

	// ── Output ───────────────────────────────────────────────────────
	Verbose int `yaml:"verbose"`

	// ── CLI only ─────────────────────────────────────────────────────
	ConfigPath string `yaml:"-"`
	DryRun     bool   `yaml:"-"`
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Channel:          DefaultChannel,
		ScanDwell:        DefaultScanDwell,
		ConnectAttempts:  DefaultConnectAttempts,
		ConnectBackoff:   DefaultConnectBackoff,
		RegistryCapacity: DefaultRegistryCapacity,
		Prompt:           DefaultPrompt,
		MaxLine:          DefaultMaxLine,
		StatusInterval:   DefaultStatusInterval,
		Telnet:           true,
		Verbose:          1,
	}
}

// Env returns the simulated environment, or the built-in one when the
// configuration does not describe any.
func (c *Config) Env() radio.Environment {
	if c.Environment == nil {
		return radio.DefaultEnvironment()
	}
	return *c.Environment
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks every field against its allowed range.
func (c *Config) Validate() error {
	if !radio.ValidChannel(c.Channel) {
		return &rcerr.ConfigError{
			Field: "channel", Value: c.Channel,
			Message: "out of range 1-14",
			Hint:    "2.4 GHz channels are numbered 1 to 14",
		}
	}
	if c.ScanDwell <= 0 || c.ScanDwell > MaxScanDwell {
		return &rcerr.ConfigError{
			Field: "dwell", Value: c.ScanDwell,
			Message: "must be positive and at most " + MaxScanDwell.String(),
			Hint:    "a full sweep listens on 14 channels; 100-200ms per channel is typical",
		}
	}
	if c.ConnectAttempts < 1 || c.ConnectAttempts > MaxConnectAttempts {
		return &rcerr.ConfigError{
			Field: "connect-attempts", Value: c.ConnectAttempts,
			Message: "must be between 1 and 100",
		}
	}
	if c.ConnectBackoff <= 0 || c.ConnectBackoff > MaxConnectBackoff {
		return &rcerr.ConfigError{
			Field: "connect-backoff", Value: c.ConnectBackoff,
			Message: "must be positive and at most " + MaxConnectBackoff.String(),
		}
	}
	if c.RegistryCapacity < 1 || c.RegistryCapacity > MaxRegistryCapacity {
		return &rcerr.ConfigError{
			Field: "registry-capacity", Value: c.RegistryCapacity,
			Message: "must be between 1 and 1000",
		}
	}
	if c.MaxLine < MinMaxLine || c.MaxLine > MaxMaxLine {
		return &rcerr.ConfigError{
			Field: "max-line", Value: c.MaxLine,
			Message: "must be between 16 and 4096",
		}
	}
	if c.StatusInterval < MinStatusInterval {
		return &rcerr.ConfigError{
			Field: "status-interval", Value: c.StatusInterval,
			Message: "must be at least " + MinStatusInterval.String(),
			Hint:    "the monitor line is printed at this cadence while capturing",
		}
	}
	if c.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Listen); err != nil {
			return &rcerr.ConfigError{
				Field: "listen", Value: c.Listen,
				Message: "invalid address",
				Hint:    "use host:port or :port, e.g. :2323",
			}
		}
	} else if c.KeepOpen {
		return &rcerr.ConfigError{Field: "keep-open", Message: "requires --listen"}
	}
	if c.IdleTimeout < 0 {
		return &rcerr.ConfigError{Field: "idle-timeout", Value: c.IdleTimeout, Message: "must not be negative"}
	}
	if c.Prompt == "" {
		return &rcerr.ConfigError{Field: "prompt", Message: "must not be empty"}
	}
	if c.Environment != nil {
		if err := c.Environment.Validate(); err != nil {
			return &rcerr.ConfigError{
				Field: "environment", Message: err.Error(),
				Hint: "see the environment section of the example config",
			}
		}
	}
	return nil
}
