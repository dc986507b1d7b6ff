package eegrx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/eegrx/eegrx/eeg"
)

func shortFrame(quality byte, raw uint16) []byte {
	return []byte{0xAA, 0xAA, 0x04, 0, 0, quality, byte(raw >> 8), byte(raw)}
}

func longFrame(quality, meditation, attention byte) []byte {
	f := make([]byte, 36)
	f[0], f[1], f[2] = 0xAA, 0xAA, 0x20
	f[4], f[32], f[34] = quality, meditation, attention
	return f
}

func testSessionConfig() Config {
	cfg := DefaultConfig()
	cfg.ConnectRetries = 1
	cfg.RetryDelay = time.Millisecond
	cfg.TickInterval = 10 * time.Millisecond
	cfg.MonitorWindow = 10 * time.Millisecond
	return cfg
}

func collect(t *testing.T, sink *ChanSink) []Event {
	t.Helper()
	var evs []Event
	for ev := range sink.C {
		evs = append(evs, ev)
	}
	return evs
}

func TestSessionDecodesStream(t *testing.T) {
	var stream []byte
	stream = append(stream, []byte{0xDE, 0xAD}...) // leading junk
	for i := 0; i < 50; i++ {
		stream = append(stream, shortFrame(0, uint16(i))...)
	}
	stream = append(stream, longFrame(26, 70, 85)...)

	src := eeg.NewReaderSource(eeg.Left, bytes.NewReader(stream))
	sink := NewChanSink(4096)
	sess := NewSession(src, sink, testSessionConfig())

	done := make(chan []Event, 1)
	go func() { done <- collect(t, sink) }()
	if err := sess.Run(context.Background()); err != nil {
		t.Fatalf("session: %v", err)
	}
	evs := <-done

	var raws, cogs, terms int
	for _, ev := range evs {
		switch e := ev.(type) {
		case RawSample:
			raws++
			if e.Channel != eeg.Left {
				t.Fatalf("sample on wrong channel %v", e.Channel)
			}
		case CognitiveUpdate:
			cogs++
			if e.Meditation != 70 || e.Attention != 85 {
				t.Fatalf("cognitive scores %d/%d", e.Meditation, e.Attention)
			}
		case SessionTerminated:
			terms++
		}
	}
	if raws != 50 {
		t.Fatalf("expected 50 raw samples, got %d", raws)
	}
	if cogs != 1 {
		t.Fatalf("expected 1 cognitive update, got %d", cogs)
	}
	if terms != 1 {
		t.Fatalf("expected exactly one terminal event, got %d", terms)
	}
	if _, ok := evs[len(evs)-1].(SessionTerminated); !ok {
		t.Fatalf("terminal event must come last, got %T", evs[len(evs)-1])
	}
}

type failingSource struct{ attempts int }

func (s *failingSource) Connect(ctx context.Context) error {
	s.attempts++
	return errors.New("no adapter")
}
func (s *failingSource) Chunks() <-chan eeg.Chunk { return nil }
func (s *failingSource) Close() error             { return nil }

func TestSessionConnectRetryExhaustion(t *testing.T) {
	src := &failingSource{}
	sink := NewChanSink(64)
	cfg := testSessionConfig()
	cfg.ConnectRetries = 3

	sess := NewSession(src, sink, cfg)
	done := make(chan []Event, 1)
	go func() { done <- collect(t, sink) }()

	err := sess.Run(context.Background())
	if err == nil {
		t.Fatal("expected terminal error after retry exhaustion")
	}
	if src.attempts != 3 {
		t.Fatalf("expected 3 connect attempts, got %d", src.attempts)
	}

	evs := <-done
	last, ok := evs[len(evs)-1].(SessionTerminated)
	if !ok {
		t.Fatalf("last event %T, want SessionTerminated", evs[len(evs)-1])
	}
	if last.Err == nil {
		t.Fatal("terminal event should carry the transport error")
	}
}

func TestSessionCancel(t *testing.T) {
	// A source that never ends; cancellation must tear the session down.
	pr, pw := io.Pipe()
	defer pw.Close()
	src := eeg.NewReaderSource(eeg.Left, pr)
	sink := NewChanSink(1024)
	sess := NewSession(src, sink, testSessionConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sess.Run(ctx) }()
	go collect(t, sink)

	pw.Write(shortFrame(0, 1))
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on cancel")
	}
}

func TestChanSinkDropsWhenFull(t *testing.T) {
	sink := NewChanSink(1)
	sink.Publish(LogLine{Text: "a"})
	sink.Publish(LogLine{Text: "b"}) // must not block
	if len(sink.C) != 1 {
		t.Fatalf("expected 1 buffered event, got %d", len(sink.C))
	}
}

func TestMultiSinkFanout(t *testing.T) {
	var got []string
	a := FuncSink(func(ev Event) { got = append(got, "a") })
	b := FuncSink(func(ev Event) { got = append(got, "b") })
	MultiSink{a, b}.Publish(LogLine{Text: "x"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("fanout order %v", got)
	}
}
