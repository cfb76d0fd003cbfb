// Package session owns the radio's operating mode and the rules that
// keep scan, connect and monitor mutually exclusive.
//
// A Session is an explicit context value: the foreground loop creates
// one and passes it to every operation.  All methods must be called from
// that goroutine.  The only state shared with another goroutine is the
// capture classifier, which the radio's delivery goroutine feeds.
package session

import (
	"time"

	"github.com/google/uuid"

	"radiocon/internal/capture"
	"radiocon/internal/radio"
	"radiocon/internal/registry"
	"radiocon/util"
)

// Mode is the session's operating mode.  Exactly one is active.
type Mode int

const (
	Idle Mode = iota
	Scanning
	Connected
	Monitoring
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "Idle"
	case Scanning:
		return "Scanning"
	case Connected:
		return "Connected"
	case Monitoring:
		return "Monitoring"
	default:
		return "Unknown"
	}
}

// Link heuristics: a live link is flagged next-gen when its signal is
// above LinkNextGenRSSI and it sits on LinkNextGenMinChannel or higher.
// Like the scan flag, this approximates capability from signal alone.
const (
	LinkNextGenRSSI       = -40
	LinkNextGenMinChannel = 6
)

// LinkNextGen applies the live-link heuristic.
func LinkNextGen(rssi, channel int) bool {
	return rssi > LinkNextGenRSSI && channel >= LinkNextGenMinChannel
}

// Options tunes a Session.  Zero values select the defaults below.
type Options struct {
	Channel          int           // initial stored channel (default 1)
	ScanDwell        time.Duration // per-channel listen time (default 120ms)
	ConnectAttempts  int           // association attempts (default 20)
	ConnectBackoff   time.Duration // wait between attempts (default 500ms)
	RegistryCapacity int           // default registry.DefaultCapacity

	// OnConnectAttempt, if set, is called before each association
	// attempt with its 1-based number.
	OnConnectAttempt func(attempt int)

	// Now is the session clock (default time.Now).
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if !radio.ValidChannel(o.Channel) {
		o.Channel = radio.MinChannel
	}
	if o.ScanDwell <= 0 {
		o.ScanDwell = 120 * time.Millisecond
	}
	if o.ConnectAttempts <= 0 {
		o.ConnectAttempts = 20
	}
	if o.ConnectBackoff <= 0 {
		o.ConnectBackoff = 500 * time.Millisecond
	}
	if o.RegistryCapacity <= 0 {
		o.RegistryCapacity = registry.DefaultCapacity
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// LinkState is the association held while Connected.
type LinkState struct {
	radio.Link
	NextGen bool
	Since   time.Time
}

// Session is the single process-wide session context.
type Session struct {
	id         uuid.UUID
	radio      radio.Radio
	classifier *capture.Classifier
	registry   *registry.Registry
	logger     *util.Logger
	opts       Options

	mode         Mode
	channel      int
	link         *LinkState
	monitorSince time.Time
	started      time.Time
	lastScan     time.Time
}

// New builds an Idle session around r.
func New(r radio.Radio, opts Options, logger *util.Logger) *Session {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	opts = opts.withDefaults()
	return &Session{
		id:         uuid.New(),
		radio:      r,
		classifier: capture.New(),
		registry:   registry.New(opts.RegistryCapacity),
		logger:     logger.With("session"),
		opts:       opts,
		mode:       Idle,
		channel:    opts.Channel,
		started:    opts.Now(),
	}
}

// ── Accessors ────────────────────────────────────────────────────────

// ID is the per-boot session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Mode returns the current mode.
func (s *Session) Mode() Mode { return s.mode }

// Channel returns the stored channel.
func (s *Session) Channel() int { return s.channel }

// Link returns the current association, if Connected.
func (s *Session) Link() (LinkState, bool) {
	if s.mode != Connected || s.link == nil {
		return LinkState{}, false
	}
	return *s.link, true
}

// Counters returns a snapshot of the frame counters.
func (s *Session) Counters() capture.Snapshot { return s.classifier.Snapshot() }

// Classifier exposes the frame classifier installed into the radio.
func (s *Session) Classifier() *capture.Classifier { return s.classifier }

// Registry returns the network registry.
func (s *Session) Registry() *registry.Registry { return s.registry }

// RadioName returns the backend name.
func (s *Session) RadioName() string { return s.radio.Name() }

// MonitoringSince returns when the current capture began.
func (s *Session) MonitoringSince() time.Time { return s.monitorSince }

// Now reads the session clock.  Every timestamp the session records
// comes from it.
func (s *Session) Now() time.Time { return s.opts.Now() }

// Started returns when the session was created.
func (s *Session) Started() time.Time { return s.started }

// LastScan returns when the registry was last populated (zero if never).
func (s *Session) LastScan() time.Time { return s.lastScan }

// SetConnectObserver installs fn to be called before each association
// attempt, replacing Options.OnConnectAttempt.
func (s *Session) SetConnectObserver(fn func(attempt int)) { s.opts.OnConnectAttempt = fn }
