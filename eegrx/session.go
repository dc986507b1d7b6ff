package eegrx

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eegrx/eegrx/classify"
	"github.com/eegrx/eegrx/dsp"
	"github.com/eegrx/eegrx/eeg"
)

// Config collects every session knob with defaults matching the headset's
// native stream.
type Config struct {
	Filter dsp.FilterConfig `json:"filter"`

	// TickInterval between classifier evaluations.
	TickInterval time.Duration `json:"tick_interval"`

	// BufferSeconds of calibrated pairs retained for analysis.
	BufferSeconds int `json:"buffer_seconds"`

	// ConnectRetries and RetryDelay bound transport connection attempts.
	ConnectRetries int           `json:"connect_retries"`
	RetryDelay     time.Duration `json:"retry_delay"`

	// MonitorWindow is the rate-report window length.
	MonitorWindow time.Duration `json:"monitor_window"`
}

func DefaultConfig() Config {
	return Config{
		Filter:         dsp.DefaultFilterConfig(),
		TickInterval:   classify.DefaultTickInterval,
		BufferSeconds:  120,
		ConnectRetries: 5,
		RetryDelay:     5 * time.Second,
		MonitorWindow:  time.Second,
	}
}

// Session runs one connect-to-teardown pipeline: source bytes in, events out.
// Decoding and conversion happen on the delivery path and never block on the
// analysis side; the classifier runs off an independent ticker.
type Session struct {
	cfg  Config
	src  eeg.Source
	sink Sink

	ring *eeg.PairRing
	cls  *classify.Classifier
	mon  *eeg.Monitor

	decoders map[eeg.Channel]*eeg.Decoder
	states   map[eeg.Channel]eeg.ChannelState

	ticking atomic.Bool
}

func NewSession(src eeg.Source, sink Sink, cfg Config) *Session {
	s := &Session{
		cfg:      cfg,
		src:      src,
		sink:     sink,
		ring:     eeg.NewPairRing(cfg.BufferSeconds * cfg.Filter.OriginalRate),
		cls:      classify.NewClassifier(cfg.Filter),
		mon:      eeg.NewMonitor(cfg.MonitorWindow),
		decoders: make(map[eeg.Channel]*eeg.Decoder),
		states:   make(map[eeg.Channel]eeg.ChannelState),
	}
	for _, ch := range eeg.Channels() {
		s.decoders[ch] = &eeg.Decoder{}
		s.states[ch] = eeg.ChannelState{Channel: ch}
	}
	return s
}

// Run connects (with retries), pumps chunks until the source ends or ctx is
// cancelled, and tears down in order: producer, buffers, classifier timer,
// sink resources. It always emits SessionTerminated exactly once.
func (s *Session) Run(ctx context.Context) error {
	if err := s.connect(ctx); err != nil {
		s.terminate("connect retries exhausted", err)
		return err
	}
	s.logf("connected, session started")
	s.cls.Reset()

	tctx, cancelTick := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.tickLoop(tctx)
	}()

	var runErr error
	chunks := s.src.Chunks()
pump:
	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				break pump
			}
			s.ingest(chunk)
		case <-ctx.Done():
			runErr = ctx.Err()
			break pump
		}
	}

	// Teardown: stop producer first so no frames race the buffer reset,
	// then drop buffered state, then the classifier timer, then the sink.
	s.src.Close()
	for _, dec := range s.decoders {
		dec.Reset()
	}
	s.ring.Reset()
	cancelTick()
	wg.Wait()
	s.terminate("session stopped", runErr)
	return runErr
}

func (s *Session) connect(ctx context.Context) error {
	var last error
	for attempt := 1; attempt <= s.cfg.ConnectRetries; attempt++ {
		if err := s.src.Connect(ctx); err != nil {
			last = err
			logrus.WithError(err).WithField("attempt", attempt).Error("transport connect failed")
			s.logf("connect attempt %d/%d failed: %v", attempt, s.cfg.ConnectRetries, err)
			if attempt == s.cfg.ConnectRetries {
				break
			}
			select {
			case <-time.After(s.cfg.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("connect failed after %d attempts: %w", s.cfg.ConnectRetries, last)
}

// ingest appends one delivery to its channel's decode buffer and converts
// every completed frame. Work here is O(buffered bytes) per chunk.
func (s *Session) ingest(chunk eeg.Chunk) {
	now := time.Now()
	dec, ok := s.decoders[chunk.Channel]
	if !ok {
		return
	}
	for _, f := range dec.Append(chunk.Data) {
		switch f.Kind {
		case eeg.KindShortAffect:
			s.ingestShort(chunk.Channel, f, now)
		case eeg.KindLongCognitive:
			s.ingestLong(chunk.Channel, f, now)
		}
	}
}

func (s *Session) ingestShort(ch eeg.Channel, f eeg.Frame, now time.Time) {
	sample, err := eeg.ConvertShort(ch, f, now)
	if err != nil {
		logrus.WithError(err).WithField("channel", ch).Warn("short frame conversion")
	}

	st, update := s.mon.Observe(s.states[ch], sample.Quality != 0, now)
	st.LastQuality = sample.Quality
	s.states[ch] = st

	// Arrival-order pairs; the opposite channel reads zero. Channels stay
	// independent, no cross-channel alignment is attempted.
	switch ch {
	case eeg.Left:
		s.ring.Append(sample.Microvolts, 0)
	case eeg.Right:
		s.ring.Append(0, sample.Microvolts)
	}

	s.sink.Publish(RawSample{sample})
	if update != nil {
		s.sink.Publish(RateUpdate{RateUpdate: *update, Time: now})
		s.logf("%s rate %.2f Hz, poor signal %.1f%%", ch, update.RateHz, update.QualityPct)
	}
}

func (s *Session) ingestLong(ch eeg.Channel, f eeg.Frame, now time.Time) {
	cog, err := eeg.ConvertLong(ch, f, now)
	if err != nil {
		logrus.WithError(err).WithField("channel", ch).Warn("long frame conversion")
	}
	st := s.states[ch]
	st.LastQuality = cog.Quality
	s.states[ch] = st
	s.sink.Publish(CognitiveUpdate{cog})
	s.logf("%s med %d att %d sq %d", ch, cog.Meditation, cog.Attention, cog.Quality)
}

// tickLoop drives the classifier on a fixed period independent of arrival
// rate. A tick still running when the next fires is skipped, never queued.
func (s *Session) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			// The CAS is the explicit re-entrancy guard: a tick that is
			// still executing when the next fires is skipped, not queued.
			if !s.ticking.CompareAndSwap(false, true) {
				logrus.Debug("classifier tick overlapped, skipping")
				continue
			}
			for _, res := range s.cls.Tick(s.ring, time.Now()) {
				s.sink.Publish(Classification{res})
				s.logf("%s D/A %.2f T/A %.2f => %s",
					res.Channel, res.Ratios.DA, res.Ratios.TA, res.State)
			}
			s.ticking.Store(false)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) logf(format string, args ...interface{}) {
	s.sink.Publish(LogLine{Time: time.Now(), Text: fmt.Sprintf(format, args...)})
}

func (s *Session) terminate(reason string, err error) {
	s.sink.Publish(SessionTerminated{Time: time.Now(), Reason: reason, Err: err})
	if c, ok := s.sink.(interface{ Close() error }); ok {
		c.Close()
	}
}
