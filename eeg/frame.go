package eeg

import "bytes"

// Frame sync marker and the type bytes that follow it on the wire.
const (
	syncByte      = 0xAA
	typeShort     = 0x04
	typeLong      = 0x20
	shortFrameLen = 8
	longFrameLen  = 36
)

var syncMarker = []byte{syncByte, syncByte}

type FrameKind int

const (
	KindUnrecognized FrameKind = iota
	KindShortAffect
	KindLongCognitive
)

// Frame is one complete wire frame starting at its sync marker.
type Frame struct {
	Kind FrameKind
	Data []byte
}

// Decoder reassembles frames from an append-only byte stream. Each channel
// owns exactly one Decoder; Append is not safe for concurrent use.
type Decoder struct {
	buf []byte

	// Skipped counts bytes dropped while hunting for a recognizable frame.
	Skipped uint64
}

// Append adds a chunk in delivery order and returns every frame completed by
// it. A partial frame prefix is retained for the next chunk; an unrecognized
// type byte at a sync position drops a single byte and rescans, so the buffer
// strictly shrinks and scanning always terminates.
func (d *Decoder) Append(p []byte) []Frame {
	d.buf = append(d.buf, p...)
	var frames []Frame
	for {
		i := bytes.Index(d.buf, syncMarker)
		if i < 0 {
			// Nothing resembling a frame; keep only a trailing 0xAA that
			// may be the first half of a split sync marker.
			if n := len(d.buf); n > 0 {
				if d.buf[n-1] == syncByte {
					d.Skipped += uint64(n - 1)
					d.buf = d.buf[n-1:]
				} else {
					d.Skipped += uint64(n)
					d.buf = d.buf[:0]
				}
			}
			break
		}
		if len(d.buf) <= i+2 {
			// Sync seen but no type byte yet.
			break
		}
		var total int
		var kind FrameKind
		switch d.buf[i+2] {
		case typeShort:
			total, kind = shortFrameLen, KindShortAffect
		case typeLong:
			total, kind = longFrameLen, KindLongCognitive
		default:
			d.buf = d.buf[i+1:]
			d.Skipped++
			continue
		}
		if len(d.buf) < i+total {
			break
		}
		data := make([]byte, total)
		copy(data, d.buf[i:i+total])
		frames = append(frames, Frame{Kind: kind, Data: data})
		d.buf = d.buf[i+total:]
	}
	return frames
}

// Pending reports how many bytes are buffered waiting for frame completion.
func (d *Decoder) Pending() int { return len(d.buf) }

// Reset discards any buffered partial frame.
func (d *Decoder) Reset() { d.buf, d.Skipped = nil, 0 }
