package eeg

import (
	"context"
	"io"
)

// Chunk is one raw delivery from the transport, keyed by channel.
type Chunk struct {
	Channel Channel
	Data    []byte
}

// Source is a byte-oriented per-channel notification transport. Connect may
// be retried by the session; Chunks delivers raw bytes in arrival order and
// is closed when the transport ends.
type Source interface {
	Connect(ctx context.Context) error
	Chunks() <-chan Chunk
	Close() error
}

// chunkSize matches the headset's notification MTU; any size works, frames
// reassemble across chunk boundaries.
const chunkSize = 64

// ReaderSource replays a recorded capture of a single channel's byte stream
// from an io.Reader, e.g. a dump file or stdin.
type ReaderSource struct {
	Channel Channel
	R       io.Reader

	ch     chan Chunk
	cancel context.CancelFunc
}

func NewReaderSource(ch Channel, r io.Reader) *ReaderSource {
	return &ReaderSource{Channel: ch, R: r}
}

func (s *ReaderSource) Connect(ctx context.Context) error {
	cctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.ch = make(chan Chunk, 1)
	go func() {
		defer close(s.ch)
		buf := make([]byte, chunkSize)
		for {
			n, err := s.R.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				select {
				case s.ch <- Chunk{Channel: s.Channel, Data: data}:
				case <-cctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return nil
}

func (s *ReaderSource) Chunks() <-chan Chunk { return s.ch }

func (s *ReaderSource) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if c, ok := s.R.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MergeSources presents several single-channel sources as one. Connect
// connects all or none; the merged chunk channel closes once every underlying
// stream ends.
type MergeSources []Source

func (m MergeSources) Connect(ctx context.Context) error {
	for i, s := range m {
		if err := s.Connect(ctx); err != nil {
			for _, prev := range m[:i] {
				prev.Close()
			}
			return err
		}
	}
	return nil
}

func (m MergeSources) Chunks() <-chan Chunk {
	out := make(chan Chunk, len(m))
	done := make(chan struct{}, len(m))
	for _, s := range m {
		go func(s Source) {
			for c := range s.Chunks() {
				out <- c
			}
			done <- struct{}{}
		}(s)
	}
	go func() {
		for range m {
			<-done
		}
		close(out)
	}()
	return out
}

func (m MergeSources) Close() error {
	var err error
	for _, s := range m {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
