package radio

import (
	"context"
	"crypto/subtle"
	"fmt"
	"math/rand"
	"net"
	"sync"
	"time"

	rcerr "radiocon/internal/errors"
	"radiocon/util"
)

var _ Radio = (*Sim)(nil)

// deliveryTick is how often the capture goroutine wakes to emit frames.
const deliveryTick = 20 * time.Millisecond

type simAP struct {
	spec  NetworkSpec
	bssid net.HardwareAddr
	psk   []byte
}

// Sim is a Radio backed by a described [Environment].  Frames are
// delivered from a dedicated goroutine at Environment.FrameRate while
// promiscuous mode is enabled.
type Sim struct {
	env    Environment
	aps    []simAP
	seed   int64
	logger *util.Logger

	mu      sync.Mutex
	rng     *rand.Rand
	channel int
	link    *Link
	closed  bool

	handler FrameHandler
	stop    chan struct{}
	done    chan struct{}
}

// NewSim builds a simulator.  seed 0 picks a time-based seed.
func NewSim(env Environment, seed int64, logger *util.Logger) (*Sim, error) {
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("sim environment: %w", err)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if logger == nil {
		logger = util.NewLogger(0)
	}

	aps := make([]simAP, 0, len(env.Networks))
	for _, n := range env.Networks {
		hw, _ := util.ParseBSSID(n.BSSID) // validated above
		ap := simAP{spec: n, bssid: hw}
		if n.Auth != AuthOpen && n.Auth != AuthWPA2Enterprise {
			ap.psk = DerivePSK(n.Passphrase, n.SSID)
		}
		aps = append(aps, ap)
	}

	return &Sim{
		env:     env,
		aps:     aps,
		seed:    seed,
		logger:  logger,
		rng:     rand.New(rand.NewSource(seed)),
		channel: MinChannel,
	}, nil
}

// Name implements Radio.
func (s *Sim) Name() string { return "sim" }

// ScanChannel implements Radio.
func (s *Sim) ScanChannel(ctx context.Context, channel int, dwell time.Duration) ([]AccessPoint, error) {
	if !ValidChannel(channel) {
		return nil, fmt.Errorf("scan: channel %d out of range", channel)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, rcerr.ErrRadioClosed
	}
	s.mu.Unlock()

	if err := sleepCtx(ctx, dwell); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var heard []AccessPoint
	for _, ap := range s.aps {
		if ap.spec.Channel != channel {
			continue
		}
		heard = append(heard, AccessPoint{
			SSID:    ap.spec.SSID,
			BSSID:   ap.bssid,
			Channel: ap.spec.Channel,
			RSSI:    s.observeRSSI(ap.spec),
			Auth:    ap.spec.Auth,
		})
	}
	s.logger.Debug("scan ch %d: %d access point(s)", channel, len(heard))
	return heard, nil
}

// Associate implements Radio.
func (s *Sim) Associate(ctx context.Context, ssid string, psk []byte) (Link, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Link{}, rcerr.ErrRadioClosed
	}
	latency := s.env.AssocLatency
	s.mu.Unlock()

	if err := sleepCtx(ctx, latency); err != nil {
		return Link{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, ap := range s.aps {
		if ap.spec.SSID == "" || ap.spec.SSID != ssid {
			continue
		}
		if idx < 0 || ap.spec.RSSI > s.aps[idx].spec.RSSI {
			idx = i
		}
	}
	if idx < 0 {
		return Link{}, fmt.Errorf("%w: %q", rcerr.ErrNoSuchNetwork, ssid)
	}
	ap := s.aps[idx]

	if s.env.AssocLoss > 0 && s.rng.Float64() < s.env.AssocLoss {
		return Link{}, fmt.Errorf("association with %s timed out", util.FormatBSSID(ap.bssid))
	}

	switch ap.spec.Auth {
	case AuthOpen:
	case AuthWPA2Enterprise:
		// 802.1X needs an identity; a PSK never satisfies it.
		return Link{}, rcerr.ErrAuthFailed
	default:
		if subtle.ConstantTimeCompare(psk, ap.psk) != 1 {
			return Link{}, rcerr.ErrAuthFailed
		}
	}

	link := Link{
		SSID:    ap.spec.SSID,
		BSSID:   ap.bssid,
		Channel: ap.spec.Channel,
		RSSI:    s.observeRSSI(ap.spec),
		IP:      net.IPv4(192, 168, byte(idx+1), 100),
		Gateway: net.IPv4(192, 168, byte(idx+1), 1),
		Netmask: net.CIDRMask(24, 32),
	}
	s.link = &link
	s.channel = link.Channel
	s.logger.Verbose("associated with %q (%s) on ch %d",
		link.SSID, util.FormatBSSID(link.BSSID), link.Channel)
	return link, nil
}

// Disassociate implements Radio.
func (s *Sim) Disassociate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.link != nil {
		s.logger.Verbose("disassociated from %q", s.link.SSID)
	}
	s.link = nil
	return nil
}

// SetChannel implements Radio.
func (s *Sim) SetChannel(channel int) error {
	if !ValidChannel(channel) {
		return fmt.Errorf("tune: channel %d out of range", channel)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return rcerr.ErrRadioClosed
	}
	s.channel = channel
	s.logger.Debug("tuned to ch %d (%d MHz)", channel, FrequencyMHz(channel))
	return nil
}

// Channel returns the channel the receiver is tuned to.
func (s *Sim) Channel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// SetPromiscuous implements Radio.  Disabling waits for the delivery
// goroutine to exit.
func (s *Sim) SetPromiscuous(enable bool, h FrameHandler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopDeliveryLocked()
	if !enable {
		return nil
	}
	if s.closed {
		return rcerr.ErrRadioClosed
	}
	if h == nil {
		return fmt.Errorf("promiscuous: nil frame handler")
	}

	s.handler = h
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go deliver(h, s.env.FrameRate, s.env.FrameMix, s.seed+int64(s.channel), s.stop, s.done)
	s.logger.Debug("promiscuous on, ch %d, %d frames/s", s.channel, s.env.FrameRate)
	return nil
}

// Inject delivers one frame through the installed handler, the way the
// hardware would.  It reports false when promiscuous mode is off.
func (s *Sim) Inject(t FrameType) bool {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h == nil {
		return false
	}
	h(t)
	return true
}

// Close implements Radio.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopDeliveryLocked()
	s.link = nil
	s.closed = true
	return nil
}

// ── internal ─────────────────────────────────────────────────────────

func (s *Sim) stopDeliveryLocked() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done, s.handler = nil, nil, nil
	s.logger.Debug("promiscuous off")
}

func (s *Sim) observeRSSI(n NetworkSpec) int {
	rssi := n.RSSI
	if n.Jitter > 0 {
		rssi += s.rng.Intn(2*n.Jitter+1) - n.Jitter
	}
	if rssi > 0 {
		rssi = 0
	}
	return rssi
}

func deliver(h FrameHandler, rate int, mix FrameMix, seed int64, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if rate <= 0 {
		<-stop
		return
	}

	rng := rand.New(rand.NewSource(seed))
	perTick := float64(rate) * deliveryTick.Seconds()
	owed := 0.0

	t := time.NewTicker(deliveryTick)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			owed += perTick
			for ; owed >= 1; owed-- {
				h(mix.pick(rng))
			}
		}
	}
}

func (m FrameMix) pick(rng *rand.Rand) FrameType {
	n := rng.Intn(m.total())
	switch {
	case n < m.Management:
		return FrameManagement
	case n < m.Management+m.Data:
		return FrameData
	case n < m.Management+m.Data+m.Control:
		return FrameControl
	default:
		return FrameMisc
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
