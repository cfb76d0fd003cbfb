package session

import (
	"context"
	"fmt"
	"time"

	"radiocon/internal/capture"
	rcerr "radiocon/internal/errors"
	"radiocon/internal/radio"
	"radiocon/internal/registry"
	"radiocon/internal/retry"
)

// Operator-facing rejection messages.
const (
	MsgInvalidChannel      = "Invalid channel. Use 1-14."
	MsgStopBeforeScan      = "Stop packet monitoring before scanning."
	MsgStopBeforeConnect   = "Stop packet monitoring before connecting to WiFi."
	MsgDisconnectBeforeMon = "Disconnect from WiFi before starting packet monitoring."
)

func invalidChannel(ch int) error {
	return rcerr.Invalid("channel", ch, MsgInvalidChannel)
}

// ScanResult summarises one sweep.
type ScanResult struct {
	Records   []registry.Record
	Truncated bool // more networks were heard than the registry holds
	Duration  time.Duration
}

// Scan clears the registry and sweeps every channel, keeping networks
// in the order they are heard until the registry is full.  It is
// rejected while monitoring.  The session returns to the mode it was
// in (Idle, or Connected when scanning from a live link).
func (s *Session) Scan(ctx context.Context) (ScanResult, error) {
	if s.mode == Monitoring {
		return ScanResult{}, rcerr.Guard("scan", s.mode.String(), MsgStopBeforeScan)
	}

	prev := s.mode
	s.mode = Scanning
	defer func() { s.mode = prev }()

	s.registry.Clear()
	start := s.Now()
	var res ScanResult

sweep:
	for _, ch := range radio.Channels() {
		aps, err := s.radio.ScanChannel(ctx, ch, s.opts.ScanDwell)
		if err != nil {
			if ctx.Err() != nil {
				return res, rcerr.Wrap("scan", fmt.Sprintf("ch %d", ch), err)
			}
			s.logger.Warn("scan ch %d: %v", ch, err)
			continue
		}
		for _, ap := range aps {
			if !s.registry.Add(registry.NewRecord(ap)) {
				res.Truncated = true
				break sweep
			}
		}
	}

	res.Records = s.registry.Records()
	s.lastScan = s.Now()
	res.Duration = s.lastScan.Sub(start)
	s.logger.Verbose("scan found %d network(s) in %v (truncated=%v)",
		len(res.Records), res.Duration.Truncate(time.Millisecond), res.Truncated)
	return res, nil
}

// Connect associates with ssid, retrying with a fixed backoff up to the
// configured attempt budget.  It is rejected while monitoring.  An
// existing association is torn down first.  On failure the session is
// Idle with no association retained.
func (s *Session) Connect(ctx context.Context, ssid, password string) (LinkState, error) {
	if s.mode == Monitoring {
		return LinkState{}, rcerr.Guard("connect", s.mode.String(), MsgStopBeforeConnect)
	}
	if ssid == "" {
		return LinkState{}, rcerr.Invalid("ssid", ssid, "SSID must not be empty.")
	}
	if s.mode == Connected {
		s.logger.Verbose("dropping %q before connecting to %q", s.link.SSID, ssid)
		s.teardownLink() //nolint:errcheck
	}

	psk := radio.DerivePSK(password, ssid)
	policy := retry.Fixed(s.opts.ConnectBackoff, s.opts.ConnectAttempts)
	policy.OnRetry = func(attempt int, err error) {
		s.logger.Verbose("connect %q attempt %d/%d: %v", ssid, attempt, s.opts.ConnectAttempts, err)
	}

	var link radio.Link
	err := policy.Do(ctx, func(attempt int) error {
		if s.opts.OnConnectAttempt != nil {
			s.opts.OnConnectAttempt(attempt)
		}
		l, err := s.radio.Associate(ctx, ssid, psk)
		if err != nil {
			if ctx.Err() != nil || !rcerr.IsRetryable(err) {
				return retry.Permanent(err)
			}
			return err
		}
		link = l
		return nil
	})
	if err != nil {
		s.teardownLink() //nolint:errcheck
		return LinkState{}, rcerr.Wrap("connect", ssid, err)
	}

	st := &LinkState{
		Link:    link,
		NextGen: LinkNextGen(link.RSSI, link.Channel),
		Since:   s.Now(),
	}
	s.link = st
	s.mode = Connected
	s.logger.Verbose("connected to %q on ch %d (%d dBm)", link.SSID, link.Channel, link.RSSI)
	return *st, nil
}

// Disconnect drops the association.  When not Connected it returns
// ErrNotConnected and changes nothing.
func (s *Session) Disconnect() (LinkState, error) {
	if s.mode != Connected || s.link == nil {
		return LinkState{}, rcerr.ErrNotConnected
	}
	prev := *s.link
	if err := s.teardownLink(); err != nil {
		return prev, rcerr.Wrap("disconnect", prev.SSID, err)
	}
	return prev, nil
}

// StartMonitoring zeroes the counters and puts the radio into
// promiscuous receive on ch.  It is rejected while Connected, and an
// invalid channel changes nothing.  Starting while already monitoring
// restarts the capture on ch.
func (s *Session) StartMonitoring(ch int) error {
	if s.mode == Connected {
		return rcerr.Guard("monitor", s.mode.String(), MsgDisconnectBeforeMon)
	}
	if !radio.ValidChannel(ch) {
		return invalidChannel(ch)
	}

	if s.mode == Monitoring {
		s.stopCapture() //nolint:errcheck
	}

	s.classifier.Reset()
	if err := s.radio.SetChannel(ch); err != nil {
		s.mode = Idle
		return rcerr.Wrap("tune", fmt.Sprint(ch), err)
	}
	s.classifier.Activate()
	if err := s.radio.SetPromiscuous(true, s.classifier.Handler()); err != nil {
		s.classifier.Deactivate()
		s.mode = Idle
		return rcerr.Wrap("promiscuous", fmt.Sprint(ch), err)
	}

	s.channel = ch
	s.mode = Monitoring
	s.monitorSince = s.Now()
	s.logger.Verbose("monitoring ch %d (%d MHz)", ch, radio.FrequencyMHz(ch))
	return nil
}

// StopMonitoring disables frame delivery and returns the final
// counters, which stay frozen until the next StartMonitoring.  When not
// monitoring it returns ErrNotMonitoring and changes nothing.
func (s *Session) StopMonitoring() (capture.Snapshot, error) {
	if s.mode != Monitoring {
		return capture.Snapshot{}, rcerr.ErrNotMonitoring
	}
	err := s.stopCapture()
	s.mode = Idle
	final := s.classifier.Snapshot()
	if err != nil {
		return final, rcerr.Wrap("promiscuous", fmt.Sprint(s.channel), err)
	}
	return final, nil
}

// SetChannel stores ch.  While monitoring the radio is retuned at once
// and the counters keep running; otherwise ch takes effect on the next
// StartMonitoring.
func (s *Session) SetChannel(ch int) error {
	if !radio.ValidChannel(ch) {
		return invalidChannel(ch)
	}
	s.channel = ch
	if s.mode != Monitoring {
		return nil
	}
	if err := s.radio.SetChannel(ch); err != nil {
		return rcerr.Wrap("tune", fmt.Sprint(ch), err)
	}
	s.logger.Verbose("retuned capture to ch %d", ch)
	return nil
}

// Shutdown stops any capture and drops any association.
func (s *Session) Shutdown() {
	switch s.mode {
	case Monitoring:
		if err := s.stopCapture(); err != nil {
			s.logger.Warn("stop capture: %v", err)
		}
	case Connected:
		if err := s.teardownLink(); err != nil {
			s.logger.Warn("disassociate: %v", err)
		}
	}
	s.mode = Idle
}

// ── internal ─────────────────────────────────────────────────────────

// stopCapture deactivates the classifier before disabling delivery so a
// frame racing the stop is discarded.
func (s *Session) stopCapture() error {
	s.classifier.Deactivate()
	return s.radio.SetPromiscuous(false, nil)
}

func (s *Session) teardownLink() error {
	err := s.radio.Disassociate()
	s.link = nil
	s.mode = Idle
	return err
}
