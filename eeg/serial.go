package eeg

import (
	"context"
	"fmt"

	"github.com/tarm/serial"
)

// SerialSource reads one channel's byte stream from a headset exposed as a
// serial device (BLE-to-UART bridges present each characteristic as a tty).
type SerialSource struct {
	Channel Channel
	Device  string
	Baud    int

	port *serial.Port
	rs   *ReaderSource
}

func NewSerialSource(ch Channel, device string, baud int) *SerialSource {
	if baud == 0 {
		baud = 57600
	}
	return &SerialSource{Channel: ch, Device: device, Baud: baud}
}

func (s *SerialSource) Connect(ctx context.Context) error {
	port, err := serial.OpenPort(&serial.Config{Name: s.Device, Baud: s.Baud})
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Device, err)
	}
	s.port = port
	s.rs = NewReaderSource(s.Channel, port)
	return s.rs.Connect(ctx)
}

func (s *SerialSource) Chunks() <-chan Chunk { return s.rs.Chunks() }

func (s *SerialSource) Close() error {
	if s.rs != nil {
		s.rs.cancel()
	}
	if s.port != nil {
		return s.port.Close()
	}
	return nil
}
