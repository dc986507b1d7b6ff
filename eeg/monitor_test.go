package eeg

import (
	"math"
	"testing"
	"time"
)

func TestMonitorRate(t *testing.T) {
	m := NewMonitor(time.Second)
	base := time.Unix(0, 0)
	st := ChannelState{Channel: Left, WindowStart: base}

	interval := time.Second / 256
	var update *RateUpdate
	for i := 1; i <= 256; i++ {
		st, update = m.Observe(st, false, base.Add(time.Duration(i)*interval))
		if update != nil && i < 256 {
			t.Fatalf("window closed early at packet %d", i)
		}
	}
	if update == nil {
		t.Fatal("expected a rate update after 1s of packets")
	}
	if math.Abs(update.RateHz-256.0) > 256.0*0.01 {
		t.Fatalf("rate %.3f Hz not within 1%% of 256", update.RateHz)
	}
	if update.QualityPct != 0 {
		t.Fatalf("expected 0%% poor, got %.1f", update.QualityPct)
	}
	if st.Packets != 0 || st.PoorPackets != 0 {
		t.Fatal("counters not reset after window close")
	}
}

func TestMonitorQualityPct(t *testing.T) {
	m := NewMonitor(time.Second)
	base := time.Unix(100, 0)
	st := ChannelState{Channel: Right, WindowStart: base}

	var update *RateUpdate
	for i := 1; i <= 100; i++ {
		st, update = m.Observe(st, i%2 == 0, base.Add(time.Duration(i)*10*time.Millisecond))
	}
	if update == nil {
		t.Fatal("expected update at 1s")
	}
	if math.Abs(update.QualityPct-50.0) > 0.5 {
		t.Fatalf("expected ~50%% poor, got %.2f", update.QualityPct)
	}
}

func TestMonitorWindowRestarts(t *testing.T) {
	m := NewMonitor(time.Second)
	base := time.Unix(0, 0)
	st := ChannelState{Channel: Left, WindowStart: base}

	st, update := m.Observe(st, false, base.Add(1500*time.Millisecond))
	if update == nil {
		t.Fatal("expected window close on late packet")
	}
	if update.Window != 1500*time.Millisecond {
		t.Fatalf("window length %v", update.Window)
	}
	if !st.WindowStart.Equal(base.Add(1500 * time.Millisecond)) {
		t.Fatalf("window start not reset: %v", st.WindowStart)
	}
}
