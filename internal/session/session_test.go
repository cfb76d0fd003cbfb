package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	rcerr "radiocon/internal/errors"
	"radiocon/internal/radio"
	"radiocon/internal/retry"
)

func testEnv() radio.Environment {
	return radio.Environment{
		Networks: []radio.NetworkSpec{
			{SSID: "MyNet", BSSID: "02:00:00:00:00:01", Channel: 6, RSSI: -35, Auth: radio.AuthWPA2PSK, Passphrase: "pw123456"},
			{SSID: "Weak", BSSID: "02:00:00:00:00:02", Channel: 1, RSSI: -80, Auth: radio.AuthOpen},
			{SSID: "", BSSID: "02:00:00:00:00:03", Channel: 11, RSSI: -45, Auth: radio.AuthWPA3PSK, Passphrase: "hidden-pass"},
			{SSID: "LowChan", BSSID: "02:00:00:00:00:04", Channel: 3, RSSI: -30, Auth: radio.AuthOpen},
		},
		FrameMix: radio.FrameMix{Data: 1},
	}
}

func newTestSession(t *testing.T, env radio.Environment) (*Session, *radio.Sim) {
	t.Helper()
	sim, err := radio.NewSim(env, 7, nil)
	if err != nil {
		t.Fatalf("NewSim: %v", err)
	}
	t.Cleanup(func() { sim.Close() })
	s := New(sim, Options{
		ScanDwell:       time.Microsecond,
		ConnectAttempts: 3,
		ConnectBackoff:  time.Millisecond,
	}, nil)
	return s, sim
}

func TestNew_Defaults(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	if s.Mode() != Idle {
		t.Errorf("initial mode = %v, want Idle", s.Mode())
	}
	if s.Channel() != 1 {
		t.Errorf("initial channel = %d, want 1", s.Channel())
	}
	if s.Registry().Cap() != 50 {
		t.Errorf("registry cap = %d, want 50", s.Registry().Cap())
	}
	if _, ok := s.Link(); ok {
		t.Error("no link expected while Idle")
	}
}

// ── Scan ─────────────────────────────────────────────────────────────

func TestScan_PopulatesRegistry(t *testing.T) {
	s, _ := newTestSession(t, testEnv())

	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode() != Idle {
		t.Errorf("mode after scan = %v, want Idle", s.Mode())
	}
	if len(res.Records) != 4 || s.Registry().Len() != 4 {
		t.Fatalf("found %d, registry %d, want 4", len(res.Records), s.Registry().Len())
	}

	// Discovery order follows the channel sweep: 1, 3, 6, 11.
	wantOrder := []string{"Weak", "LowChan", "MyNet", ""}
	for i, rec := range res.Records {
		if rec.SSID != wantOrder[i] {
			t.Errorf("record %d = %q, want %q", i, rec.SSID, wantOrder[i])
		}
	}

	hidden := res.Records[3]
	if !hidden.Hidden || !hidden.NextGen || hidden.Encryption.String() != "WPA3" {
		t.Errorf("hidden record = %+v", hidden)
	}
	if res.Records[0].NextGen {
		t.Error("-80 dBm should not be next-gen")
	}
	if s.LastScan().IsZero() {
		t.Error("LastScan should be set")
	}
}

func TestScan_TruncatesAtCapacity(t *testing.T) {
	env := radio.Environment{}
	for i := 0; i < 80; i++ {
		env.Networks = append(env.Networks, radio.NetworkSpec{
			SSID:    fmt.Sprintf("net-%02d", i),
			BSSID:   fmt.Sprintf("02:00:00:00:01:%02x", i),
			Channel: 1 + i%14,
			RSSI:    -60,
			Auth:    radio.AuthOpen,
		})
	}
	s, _ := newTestSession(t, env)

	res, err := s.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Registry().Len() != 50 {
		t.Errorf("registry size = %d, want 50", s.Registry().Len())
	}
	if !res.Truncated {
		t.Error("expected Truncated")
	}
}

func TestScan_ClearsPreviousResults(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Registry().Len() != 4 {
		t.Errorf("second scan should replace, not append: %d", s.Registry().Len())
	}
}

func TestScan_RejectedWhileMonitoring(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.StartMonitoring(6); err != nil {
		t.Fatal(err)
	}

	_, err := s.Scan(context.Background())
	if !rcerr.IsGuard(err) || err.Error() != MsgStopBeforeScan {
		t.Fatalf("err = %v", err)
	}
	if s.Mode() != Monitoring || s.Registry().Len() != 4 {
		t.Error("rejected scan must not touch mode or registry")
	}
}

func TestScan_WhileConnectedReturnsToConnected(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	if _, err := s.Connect(context.Background(), "MyNet", "pw123456"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Mode() != Connected {
		t.Errorf("mode = %v, want Connected", s.Mode())
	}
}

func TestScan_Cancelled(t *testing.T) {
	sim, _ := radio.NewSim(testEnv(), 1, nil)
	defer sim.Close()
	s := New(sim, Options{ScanDwell: time.Hour}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Scan(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if s.Mode() != Idle {
		t.Errorf("mode = %v, want Idle", s.Mode())
	}
}

// ── Connect / Disconnect ─────────────────────────────────────────────

func TestConnect_Success(t *testing.T) {
	s, _ := newTestSession(t, testEnv())

	link, err := s.Connect(context.Background(), "MyNet", "pw123456")
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode() != Connected {
		t.Fatalf("mode = %v", s.Mode())
	}
	if link.SSID != "MyNet" || link.Channel != 6 {
		t.Errorf("link = %+v", link)
	}
	// -35 dBm on ch 6 satisfies the live-link heuristic.
	if !link.NextGen {
		t.Error("expected NextGen link")
	}
	got, ok := s.Link()
	if !ok || got.SSID != "MyNet" {
		t.Error("Link() should report the association")
	}
}

func TestConnect_ExhaustsAttempts(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	attempts := 0
	s.opts.OnConnectAttempt = func(int) { attempts++ }

	_, err := s.Connect(context.Background(), "MyNet", "wrong-password")
	if err == nil {
		t.Fatal("expected failure")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	var ex *retry.ExhaustedError
	if !errors.As(err, &ex) || ex.Attempts != 3 {
		t.Errorf("expected ExhaustedError after 3 attempts, got %v", err)
	}
	if !errors.Is(err, rcerr.ErrAuthFailed) {
		t.Errorf("expected auth failure cause, got %v", err)
	}
	if s.Mode() != Idle {
		t.Errorf("mode = %v, want Idle", s.Mode())
	}
	if _, ok := s.Link(); ok {
		t.Error("no partial association may be retained")
	}
}

func TestConnect_UnknownNetworkFailsFast(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	attempts := 0
	s.opts.OnConnectAttempt = func(int) { attempts++ }

	_, err := s.Connect(context.Background(), "Nowhere", "x")
	if !errors.Is(err, rcerr.ErrNoSuchNetwork) {
		t.Fatalf("err = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestConnect_RejectedWhileMonitoring(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	if err := s.StartMonitoring(6); err != nil {
		t.Fatal(err)
	}

	_, err := s.Connect(context.Background(), "MyNet", "pw123")
	if err == nil || err.Error() != "Stop packet monitoring before connecting to WiFi." {
		t.Fatalf("err = %v", err)
	}
	if s.Mode() != Monitoring {
		t.Errorf("mode = %v, want Monitoring", s.Mode())
	}
}

func TestConnect_ReplacesExistingLink(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	ctx := context.Background()
	if _, err := s.Connect(ctx, "MyNet", "pw123456"); err != nil {
		t.Fatal(err)
	}
	link, err := s.Connect(ctx, "Weak", "ignored")
	if err != nil {
		t.Fatal(err)
	}
	if link.SSID != "Weak" || link.NextGen {
		t.Errorf("link = %+v", link)
	}
}

func TestDisconnect(t *testing.T) {
	s, _ := newTestSession(t, testEnv())

	if _, err := s.Disconnect(); !errors.Is(err, rcerr.ErrNotConnected) {
		t.Fatalf("disconnect while idle: %v", err)
	}
	if s.Mode() != Idle {
		t.Error("no-op disconnect changed mode")
	}

	if _, err := s.Connect(context.Background(), "MyNet", "pw123456"); err != nil {
		t.Fatal(err)
	}
	prev, err := s.Disconnect()
	if err != nil {
		t.Fatal(err)
	}
	if prev.SSID != "MyNet" || s.Mode() != Idle {
		t.Errorf("prev = %+v, mode = %v", prev, s.Mode())
	}
}

func TestDisconnect_WhileMonitoringIsNoop(t *testing.T) {
	s, sim := newTestSession(t, testEnv())
	if err := s.StartMonitoring(6); err != nil {
		t.Fatal(err)
	}
	sim.Inject(radio.FrameData)

	if _, err := s.Disconnect(); !errors.Is(err, rcerr.ErrNotConnected) {
		t.Fatalf("disconnect while monitoring: %v", err)
	}
	if s.Mode() != Monitoring {
		t.Errorf("mode = %v, want Monitoring", s.Mode())
	}
	if !sim.Inject(radio.FrameManagement) {
		t.Fatal("capture stopped by a no-op disconnect")
	}
	if c := s.Counters(); c.Total != 2 || c.Data != 1 || c.Management != 1 {
		t.Errorf("counters = %+v, want both frames counted", c)
	}
}

// fakeClock is a manually advanced session clock.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestSession_Clock(t *testing.T) {
	sim, err := radio.NewSim(testEnv(), 7, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sim.Close() })
	clk := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := New(sim, Options{ScanDwell: time.Microsecond, Now: clk.Now}, nil)

	if !s.Started().Equal(clk.t) {
		t.Errorf("Started = %v, want %v", s.Started(), clk.t)
	}
	clk.Advance(time.Minute)
	if err := s.StartMonitoring(1); err != nil {
		t.Fatal(err)
	}
	if !s.MonitoringSince().Equal(clk.t) {
		t.Errorf("MonitoringSince = %v, want %v", s.MonitoringSince(), clk.t)
	}
	if got := s.Now().Sub(s.Started()); got != time.Minute {
		t.Errorf("elapsed = %v, want 1m", got)
	}
}

func TestLinkNextGen(t *testing.T) {
	tests := []struct {
		rssi, ch int
		want     bool
	}{
		{-35, 6, true},
		{-39, 14, true},
		{-40, 6, false}, // strictly above -40
		{-35, 5, false},
		{-60, 11, false},
	}
	for _, tt := range tests {
		if got := LinkNextGen(tt.rssi, tt.ch); got != tt.want {
			t.Errorf("LinkNextGen(%d, %d) = %v, want %v", tt.rssi, tt.ch, got, tt.want)
		}
	}
}

// ── Monitoring ───────────────────────────────────────────────────────

func TestStartMonitoring_InvalidChannel(t *testing.T) {
	for _, ch := range []int{-1, 0, 15, 99} {
		t.Run(fmt.Sprint(ch), func(t *testing.T) {
			s, _ := newTestSession(t, testEnv())
			err := s.StartMonitoring(ch)
			if !rcerr.IsValidation(err) || err.Error() != "Invalid channel. Use 1-14." {
				t.Fatalf("err = %v", err)
			}
			if s.Mode() != Idle || s.Channel() != 1 {
				t.Errorf("mode = %v, channel = %d", s.Mode(), s.Channel())
			}
		})
	}
}

func TestStartMonitoring_ResetsCounters(t *testing.T) {
	s, sim := newTestSession(t, testEnv())

	if err := s.StartMonitoring(6); err != nil {
		t.Fatal(err)
	}
	sim.Inject(radio.FrameData)
	if _, err := s.StopMonitoring(); err != nil {
		t.Fatal(err)
	}
	if s.Counters().Total != 1 {
		t.Fatal("counters should be frozen after stop")
	}

	if err := s.StartMonitoring(6); err != nil {
		t.Fatal(err)
	}
	if c := s.Counters(); c.Total != 0 || c.Data != 0 || c.Management != 0 || c.Control != 0 {
		t.Errorf("counters not reset: %+v", c)
	}
	if s.Mode() != Monitoring || s.Channel() != 6 {
		t.Errorf("mode = %v, channel = %d", s.Mode(), s.Channel())
	}
	if sim.Channel() != 6 {
		t.Errorf("radio tuned to %d, want 6", sim.Channel())
	}
}

func TestMonitoring_FrameMix(t *testing.T) {
	s, sim := newTestSession(t, testEnv())
	if err := s.StartMonitoring(6); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 6; i++ {
		sim.Inject(radio.FrameData)
	}
	for i := 0; i < 3; i++ {
		sim.Inject(radio.FrameManagement)
	}
	sim.Inject(radio.FrameMisc)

	c := s.Counters()
	if c.Total != 10 || c.Data != 6 || c.Management != 3 || c.Control != 0 {
		t.Errorf("counters = %+v", c)
	}
}

func TestStartMonitoring_RejectedWhileConnected(t *testing.T) {
	s, _ := newTestSession(t, testEnv())
	if _, err := s.Connect(context.Background(), "MyNet", "pw123456"); err != nil {
		t.Fatal(err)
	}

	err := s.StartMonitoring(6)
	if !rcerr.IsGuard(err) || err.Error() != MsgDisconnectBeforeMon {
		t.Fatalf("err = %v", err)
	}
	if s.Mode() != Connected {
		t.Errorf("mode = %v", s.Mode())
	}
}

func TestStopMonitoring(t *testing.T) {
	s, sim := newTestSession(t, testEnv())

	if _, err := s.StopMonitoring(); !errors.Is(err, rcerr.ErrNotMonitoring) {
		t.Fatalf("stop while idle: %v", err)
	}

	if err := s.StartMonitoring(3); err != nil {
		t.Fatal(err)
	}
	sim.Inject(radio.FrameControl)
	final, err := s.StopMonitoring()
	if err != nil {
		t.Fatal(err)
	}
	if final.Total != 1 || final.Control != 1 {
		t.Errorf("final = %+v", final)
	}
	if s.Mode() != Idle {
		t.Errorf("mode = %v", s.Mode())
	}
	if sim.Inject(radio.FrameData) {
		t.Error("radio should not deliver after stop")
	}
	if s.Counters().Total != 1 {
		t.Error("counters should stay frozen")
	}
}

func TestSetChannel(t *testing.T) {
	s, sim := newTestSession(t, testEnv())

	if err := s.SetChannel(15); !rcerr.IsValidation(err) {
		t.Fatalf("err = %v", err)
	}
	if s.Channel() != 1 {
		t.Error("invalid channel must not be stored")
	}

	// Idle: stored only.
	if err := s.SetChannel(11); err != nil {
		t.Fatal(err)
	}
	if s.Channel() != 11 || sim.Channel() != 1 {
		t.Errorf("stored %d, radio %d", s.Channel(), sim.Channel())
	}

	// Monitor with no explicit channel reuses the stored one.
	if err := s.StartMonitoring(s.Channel()); err != nil {
		t.Fatal(err)
	}
	sim.Inject(radio.FrameData)

	// Monitoring: retune live, counters keep running.
	if err := s.SetChannel(3); err != nil {
		t.Fatal(err)
	}
	if sim.Channel() != 3 || s.Mode() != Monitoring {
		t.Errorf("radio %d, mode %v", sim.Channel(), s.Mode())
	}
	if s.Counters().Total != 1 {
		t.Error("retune must not reset counters")
	}
}

func TestShutdown(t *testing.T) {
	s, sim := newTestSession(t, testEnv())
	if err := s.StartMonitoring(6); err != nil {
		t.Fatal(err)
	}
	s.Shutdown()
	if s.Mode() != Idle || sim.Inject(radio.FrameData) {
		t.Error("shutdown should stop capture")
	}

	if _, err := s.Connect(context.Background(), "MyNet", "pw123456"); err != nil {
		t.Fatal(err)
	}
	s.Shutdown()
	if _, ok := s.Link(); ok || s.Mode() != Idle {
		t.Error("shutdown should drop the link")
	}
}
