package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultChannel is the stored channel at boot.
	DefaultChannel = 1

	// DefaultScanDwell is how long a scan listens on each channel.
	DefaultScanDwell = 120 * time.Millisecond

	// DefaultConnectAttempts bounds association retries.
	DefaultConnectAttempts = 20

	// DefaultConnectBackoff is the fixed wait between attempts.
	DefaultConnectBackoff = 500 * time.Millisecond

	// DefaultRegistryCapacity is how many networks a scan keeps.
	DefaultRegistryCapacity = 50

	// DefaultPrompt is re-emitted after every command.
	DefaultPrompt = "radio> "

	// DefaultMaxLine is the input line buffer size.
	DefaultMaxLine = 256

	// DefaultStatusInterval is the monitor line cadence.
	DefaultStatusInterval = 2 * time.Second
)

// Limits enforced by Validate.
const (
	MaxScanDwell        = 5 * time.Second
	MaxConnectAttempts  = 100
	MaxConnectBackoff   = time.Minute
	MaxRegistryCapacity = 1000
	MinMaxLine          = 16
	MaxMaxLine          = 4096
	MinStatusInterval   = 100 * time.Millisecond
)
