package radio

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	rcerr "radiocon/internal/errors"
)

func testEnv() Environment {
	return Environment{
		Networks: []NetworkSpec{
			{SSID: "Alpha", BSSID: "02:00:00:00:00:01", Channel: 6, RSSI: -40, Auth: AuthWPA2PSK, Passphrase: "alphapass"},
			{SSID: "Alpha", BSSID: "02:00:00:00:00:02", Channel: 1, RSSI: -70, Auth: AuthWPA2PSK, Passphrase: "alphapass"},
			{SSID: "Open", BSSID: "02:00:00:00:00:03", Channel: 6, RSSI: -55, Auth: AuthOpen},
			{SSID: "Corp", BSSID: "02:00:00:00:00:04", Channel: 11, RSSI: -60, Auth: AuthWPA2Enterprise},
		},
		FrameMix: FrameMix{Data: 1},
	}
}

func newTestSim(t *testing.T, env Environment) *Sim {
	t.Helper()
	s, err := NewSim(env, 42, nil)
	if err != nil {
		t.Fatalf("NewSim: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSim_InvalidEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
	}{
		{"bad bssid", Environment{Networks: []NetworkSpec{{SSID: "x", BSSID: "zz", Channel: 1, RSSI: -50}}}},
		{"bad channel", Environment{Networks: []NetworkSpec{{SSID: "x", BSSID: "02:00:00:00:00:01", Channel: 15, RSSI: -50}}}},
		{"positive rssi", Environment{Networks: []NetworkSpec{{SSID: "x", BSSID: "02:00:00:00:00:01", Channel: 1, RSSI: 5}}}},
		{"rate without mix", Environment{FrameRate: 10}},
		{"loss of one", Environment{AssocLoss: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSim(tt.env, 1, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDefaultEnvironment_Valid(t *testing.T) {
	if err := DefaultEnvironment().Validate(); err != nil {
		t.Fatalf("default environment invalid: %v", err)
	}
}

func TestSim_ScanChannel(t *testing.T) {
	s := newTestSim(t, testEnv())

	aps, err := s.ScanChannel(context.Background(), 6, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(aps) != 2 {
		t.Fatalf("heard %d APs on ch 6, want 2", len(aps))
	}
	if aps[0].SSID != "Alpha" || aps[1].SSID != "Open" {
		t.Errorf("unexpected order: %q, %q", aps[0].SSID, aps[1].SSID)
	}
	if aps[0].RSSI != -40 {
		t.Errorf("RSSI = %d, want -40 (no jitter)", aps[0].RSSI)
	}

	empty, err := s.ScanChannel(context.Background(), 3, 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("ch 3: got %d APs, err %v", len(empty), err)
	}

	if _, err := s.ScanChannel(context.Background(), 0, 0); err == nil {
		t.Error("expected error for channel 0")
	}
}

func TestSim_ScanDwellHonoursContext(t *testing.T) {
	s := newTestSim(t, testEnv())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.ScanChannel(ctx, 6, time.Hour)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestSim_Associate(t *testing.T) {
	s := newTestSim(t, testEnv())
	ctx := context.Background()

	tests := []struct {
		name    string
		ssid    string
		pass    string
		wantErr error
		wantCh  int
	}{
		{"strongest bssid wins", "Alpha", "alphapass", nil, 6},
		{"open ignores password", "Open", "whatever", nil, 6},
		{"wrong passphrase", "Alpha", "nope", rcerr.ErrAuthFailed, 0},
		{"enterprise unsupported", "Corp", "anything", rcerr.ErrAuthFailed, 0},
		{"unknown ssid", "Nowhere", "x", rcerr.ErrNoSuchNetwork, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := s.Associate(ctx, tt.ssid, DerivePSK(tt.pass, tt.ssid))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if link.Channel != tt.wantCh || link.SSID != tt.ssid {
				t.Errorf("link = %+v", link)
			}
			if link.IP == nil || link.Gateway == nil {
				t.Error("link should carry addressing")
			}
		})
	}
}

func TestSim_AssociateLoss(t *testing.T) {
	env := testEnv()
	env.AssocLoss = 0.999
	s := newTestSim(t, env)

	_, err := s.Associate(context.Background(), "Open", nil)
	if err == nil {
		t.Fatal("expected transient failure")
	}
	if errors.Is(err, rcerr.ErrAuthFailed) || errors.Is(err, rcerr.ErrNoSuchNetwork) {
		t.Errorf("loss should be a transient error, got %v", err)
	}
}

func TestSim_PromiscuousDelivery(t *testing.T) {
	env := testEnv()
	env.FrameRate = 1000
	s := newTestSim(t, env)

	var n atomic.Int64
	if err := s.SetPromiscuous(true, func(FrameType) { n.Add(1) }); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n.Load() == 0 {
		t.Fatal("no frames delivered")
	}

	if err := s.SetPromiscuous(false, nil); err != nil {
		t.Fatal(err)
	}
	after := n.Load()
	time.Sleep(60 * time.Millisecond)
	if n.Load() != after {
		t.Error("frames delivered after promiscuous mode was disabled")
	}
	if s.Inject(FrameData) {
		t.Error("Inject should fail with promiscuous off")
	}
}

func TestSim_Inject(t *testing.T) {
	s := newTestSim(t, testEnv())

	var got []FrameType
	if err := s.SetPromiscuous(true, func(ft FrameType) { got = append(got, ft) }); err != nil {
		t.Fatal(err)
	}
	s.Inject(FrameManagement)
	s.Inject(FrameControl)
	if len(got) != 2 || got[0] != FrameManagement || got[1] != FrameControl {
		t.Errorf("got %v", got)
	}
}

func TestSim_Closed(t *testing.T) {
	s := newTestSim(t, testEnv())
	s.Close()

	if _, err := s.ScanChannel(context.Background(), 1, 0); !errors.Is(err, rcerr.ErrRadioClosed) {
		t.Errorf("scan after close: %v", err)
	}
	if err := s.SetChannel(3); !errors.Is(err, rcerr.ErrRadioClosed) {
		t.Errorf("tune after close: %v", err)
	}
	if err := s.SetPromiscuous(true, func(FrameType) {}); !errors.Is(err, rcerr.ErrRadioClosed) {
		t.Errorf("promiscuous after close: %v", err)
	}
}

func TestFrameMix_Pick(t *testing.T) {
	s := newTestSim(t, testEnv())
	mix := FrameMix{Control: 1}
	for i := 0; i < 20; i++ {
		if ft := mix.pick(s.rng); ft != FrameControl {
			t.Fatalf("pick = %v, want control", ft)
		}
	}
}
