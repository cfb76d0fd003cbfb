// Package errors provides the console's error taxonomy.
//
// Every rejected command maps to one of four kinds: a validation error
// (bad argument), a guard violation (mode conflict), an operational
// failure (the radio could not do what was asked) or an informational
// no-op.  The dispatcher renders each kind differently; none of them is
// fatal to the command loop.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel no-ops ──────────────────────────────────────────────────

var (
	ErrNotConnected  = errors.New("Not connected to any network.")
	ErrNotMonitoring = errors.New("Packet monitoring is not active.")
	ErrRadioClosed   = errors.New("radio is closed")
	ErrAuthFailed    = errors.New("authentication failed")
	ErrNoSuchNetwork = errors.New("network not found")
)

// ── Structured error types ───────────────────────────────────────────

// ValidationError rejects malformed input before any state changes.
type ValidationError struct {
	Field   string      // argument name, e.g. "channel"
	Value   interface{} // offending value (nil if missing)
	Message string      // text shown to the operator
}

func (e *ValidationError) Error() string { return e.Message }

// GuardError rejects an operation because the session is in a mode that
// excludes it.  Message names the action the operator must take first.
type GuardError struct {
	Op      string // "scan", "connect", "monitor"
	Mode    string // mode that blocked the operation
	Message string
}

func (e *GuardError) Error() string { return e.Message }

// OperationError reports a radio operation that ran but failed.
type OperationError struct {
	Op        string // "scan", "connect", "tune", "promiscuous"
	Target    string // SSID or channel involved
	Err       error
	Retryable bool
}

func (e *OperationError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *OperationError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Invalid builds a ValidationError.
func Invalid(field string, value interface{}, msg string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: msg}
}

// Guard builds a GuardError.
func Guard(op, mode, msg string) *GuardError {
	return &GuardError{Op: op, Mode: mode, Message: msg}
}

// Wrap builds an OperationError.  Unknown networks and a closed radio
// are never retryable; everything else, authentication failures
// included, is.
func Wrap(op, target string, err error) *OperationError {
	return &OperationError{
		Op:        op,
		Target:    target,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// ── Classification helpers ───────────────────────────────────────────

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsGuard reports whether err is a GuardError.
func IsGuard(err error) bool {
	var ge *GuardError
	return errors.As(err, &ge)
}

// IsNoop reports whether err is one of the informational no-op sentinels.
func IsNoop(err error) bool {
	return errors.Is(err, ErrNotConnected) || errors.Is(err, ErrNotMonitoring)
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Retryable
	}
	return classifyRetryable(err)
}

func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoSuchNetwork) || errors.Is(err, ErrRadioClosed) {
		return false
	}
	return true
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
