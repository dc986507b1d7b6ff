// Package eegrx wires the transport, decoder, monitor, ring buffer and
// classifier into a running session and fans events out to consumers.
package eegrx

import (
	"io"
	"time"

	"github.com/eegrx/eegrx/classify"
	"github.com/eegrx/eegrx/eeg"
)

// Event is anything the session emits; presentation and recording layers
// subscribe through a Sink and the core never depends on them.
type Event interface{ eventTime() time.Time }

// RawSample is one calibrated amplitude measurement.
type RawSample struct{ eeg.Sample }

// RateUpdate closes one channel's throughput window.
type RateUpdate struct {
	eeg.RateUpdate
	Time time.Time
}

// CognitiveUpdate carries the 1 Hz meditation/attention scores.
type CognitiveUpdate struct{ eeg.Cognitive }

// Classification is one channel's drowsiness evaluation.
type Classification struct{ classify.Result }

// LogLine is free-form session text for log panes.
type LogLine struct {
	Time time.Time
	Text string
}

// SessionTerminated is the terminal event; nothing follows it.
type SessionTerminated struct {
	Time   time.Time
	Reason string
	Err    error
}

func (e RawSample) eventTime() time.Time         { return e.Sample.Time }
func (e RateUpdate) eventTime() time.Time        { return e.Time }
func (e CognitiveUpdate) eventTime() time.Time   { return e.Cognitive.Time }
func (e Classification) eventTime() time.Time    { return e.Result.Time }
func (e LogLine) eventTime() time.Time           { return e.Time }
func (e SessionTerminated) eventTime() time.Time { return e.Time }

// Sink consumes session events. Publish must not block for long (the session
// calls it on the data-arrival path) and may be called from the decode and
// classifier goroutines concurrently.
type Sink interface {
	Publish(Event)
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) Publish(ev Event) {
	for _, s := range m {
		s.Publish(ev)
	}
}

// Close closes every sink that holds resources.
func (m MultiSink) Close() error {
	var err error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}
	return err
}

// ChanSink bridges events onto a channel. Publish drops events when the
// consumer lags rather than stalling sample arrival.
type ChanSink struct{ C chan Event }

func NewChanSink(depth int) *ChanSink { return &ChanSink{C: make(chan Event, depth)} }

func (s *ChanSink) Publish(ev Event) {
	select {
	case s.C <- ev:
	default:
	}
}

func (s *ChanSink) Close() error {
	close(s.C)
	return nil
}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(Event)

func (f FuncSink) Publish(ev Event) { f(ev) }
