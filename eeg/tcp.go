package eeg

import (
	"context"
	"fmt"
	"net"
)

// TCPSource reads one channel's byte stream from a network bridge, e.g. a
// gateway that forwards the headset's notifications over a socket.
type TCPSource struct {
	Channel Channel
	Addr    string

	conn net.Conn
	rs   *ReaderSource
}

func NewTCPSource(ch Channel, addr string) *TCPSource {
	return &TCPSource{Channel: ch, Addr: addr}
}

func (s *TCPSource) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.Addr, err)
	}
	s.conn = conn
	s.rs = NewReaderSource(s.Channel, conn)
	return s.rs.Connect(ctx)
}

func (s *TCPSource) Chunks() <-chan Chunk { return s.rs.Chunks() }

func (s *TCPSource) Close() error {
	if s.rs != nil {
		s.rs.cancel()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
