package eeg

import "time"

// RateUpdate reports one channel's throughput over a closed reporting window.
type RateUpdate struct {
	Channel    Channel
	RateHz     float64
	QualityPct float64
	Window     time.Duration
}

// Monitor derives per-channel packet rate and poor-signal percentage over
// non-overlapping reporting windows of at least windowLen.
type Monitor struct {
	windowLen time.Duration
}

const defaultMonitorWindow = time.Second

func NewMonitor(window time.Duration) *Monitor {
	if window <= 0 {
		window = defaultMonitorWindow
	}
	return &Monitor{windowLen: window}
}

// Observe folds one converted sample into st and, when the current window has
// elapsed, closes it: the returned update carries rate and quality for the
// window and the returned state starts a fresh one. Observe is pure; the
// caller owns the state value.
func (m *Monitor) Observe(st ChannelState, poor bool, now time.Time) (ChannelState, *RateUpdate) {
	if st.WindowStart.IsZero() {
		st.WindowStart = now
	}
	st.Packets++
	if poor {
		st.PoorPackets++
	}
	elapsed := now.Sub(st.WindowStart)
	if elapsed < m.windowLen {
		return st, nil
	}
	secs := elapsed.Seconds()
	rate := float64(st.Packets) / secs
	poorRate := float64(st.PoorPackets) / secs
	pct := 0.0
	if rate > 0 {
		pct = poorRate / rate * 100.0
	}
	u := &RateUpdate{
		Channel:    st.Channel,
		RateHz:     rate,
		QualityPct: pct,
		Window:     elapsed,
	}
	st.Packets, st.PoorPackets, st.WindowStart = 0, 0, now
	return st, u
}
