package config

// loader.go - configuration loading from a YAML file and environment
// variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables
//   3. Config file (--config or RADIOCON_CONFIG)
//   4. Defaults   (defaults.go)

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ── Config file ──────────────────────────────────────────────────────

// LoadFile overlays the YAML file at path onto cfg.  Keys absent from
// the file keep their current value; unknown keys are an error.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := Decode(bytes.NewReader(data), cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// Decode overlays YAML from r onto cfg.  An empty document is not an
// error.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the RADIOCON_ prefix.  Durations use
// Go syntax ("150ms", "2s").  Values that fail to parse are ignored.

// EnvConfigPath returns RADIOCON_CONFIG.
func EnvConfigPath() string { return os.Getenv("RADIOCON_CONFIG") }

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty,
// parseable env vars override the existing value.  Call it after
// LoadFile and before applying CLI flags.
func LoadFromEnv(cfg *Config) {
	if v := envInt("RADIOCON_CHANNEL"); v > 0 {
		cfg.Channel = v
	}
	if v := envDuration("RADIOCON_SCAN_DWELL"); v > 0 {
		cfg.ScanDwell = v
	}
	if v := envInt("RADIOCON_CONNECT_ATTEMPTS"); v > 0 {
		cfg.ConnectAttempts = v
	}
	if v := envDuration("RADIOCON_CONNECT_BACKOFF"); v > 0 {
		cfg.ConnectBackoff = v
	}
	if v := envInt("RADIOCON_REGISTRY_CAPACITY"); v > 0 {
		cfg.RegistryCapacity = v
	}

	if v := os.Getenv("RADIOCON_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}

	if v := os.Getenv("RADIOCON_PROMPT"); v != "" {
		cfg.Prompt = v
	}
	if v := envInt("RADIOCON_MAX_LINE"); v > 0 {
		cfg.MaxLine = v
	}
	if v := envDuration("RADIOCON_STATUS_INTERVAL"); v > 0 {
		cfg.StatusInterval = v
	}

	if v := os.Getenv("RADIOCON_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if envBool("RADIOCON_KEEP_OPEN") {
		cfg.KeepOpen = true
	}
	if v := envDuration("RADIOCON_IDLE_TIMEOUT"); v > 0 {
		cfg.IdleTimeout = v
	}
	if v, ok := envSwitch("RADIOCON_TELNET"); ok {
		cfg.Telnet = v
	}

	if v := envInt("RADIOCON_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
	if envBool("RADIOCON_QUIET") {
		cfg.Verbose = 0
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

// envSwitch reads an explicit on/off value.  ok is false when key is
// unset or unrecognised.
func envSwitch(key string) (on, ok bool) {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
