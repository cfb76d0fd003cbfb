// Package capture classifies frames delivered by the radio in
// promiscuous mode and keeps per-type counts.
//
// [Classifier.Classify] runs on the radio's delivery goroutine.  It is
// bounded, allocation-free and never blocks: one atomic load and at
// most two atomic adds per frame.  Everything else (Reset, Activate,
// Deactivate, Snapshot) belongs to the foreground goroutine.
//
// A nil *Classifier is a valid no-op receiver.
package capture

import (
	"sync/atomic"

	"radiocon/internal/radio"
)

// Classifier counts frames by type while active.
type Classifier struct {
	active     atomic.Bool
	total      atomic.Uint64
	management atomic.Uint64
	data       atomic.Uint64
	control    atomic.Uint64
}

// New returns an inactive classifier with zeroed counters.
func New() *Classifier {
	return &Classifier{}
}

// ── Delivery context ─────────────────────────────────────────────────

// Classify records one frame.  Frames arriving while inactive (for
// example a late delivery racing a stop) are discarded.  total is
// incremented before the per-type counter.
func (c *Classifier) Classify(t radio.FrameType) {
	if c == nil || !c.active.Load() {
		return
	}
	c.total.Add(1)
	switch t {
	case radio.FrameManagement:
		c.management.Add(1)
	case radio.FrameData:
		c.data.Add(1)
	case radio.FrameControl:
		c.control.Add(1)
	}
}

// Handler returns Classify as a radio.FrameHandler.
func (c *Classifier) Handler() radio.FrameHandler {
	return c.Classify
}

// ── Foreground context ───────────────────────────────────────────────

// Reset zeroes all four counters.  Call only while inactive.
func (c *Classifier) Reset() {
	if c == nil {
		return
	}
	c.management.Store(0)
	c.data.Store(0)
	c.control.Store(0)
	c.total.Store(0)
}

// Activate starts counting.
func (c *Classifier) Activate() {
	if c == nil {
		return
	}
	c.active.Store(true)
}

// Deactivate stops counting; counters keep their values.
func (c *Classifier) Deactivate() {
	if c == nil {
		return
	}
	c.active.Store(false)
}

// Active reports whether frames are being counted.
func (c *Classifier) Active() bool {
	if c == nil {
		return false
	}
	return c.active.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	Total      uint64 `json:"total"`
	Management uint64 `json:"management"`
	Data       uint64 `json:"data"`
	Control    uint64 `json:"control"`
}

// Classified is management + data + control.
func (s Snapshot) Classified() uint64 { return s.Management + s.Data + s.Control }

// Other is the number of frames that matched no known type.
func (s Snapshot) Other() uint64 { return s.Total - s.Classified() }

// Snapshot reads the counters.  Per-type counters are loaded before
// total, and Classify increments total first, so every snapshot
// satisfies Classified() <= Total even while frames are arriving.
func (c *Classifier) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	s := Snapshot{
		Management: c.management.Load(),
		Data:       c.data.Load(),
		Control:    c.control.Load(),
	}
	s.Total = c.total.Load()
	return s
}
