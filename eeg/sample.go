package eeg

import (
	"errors"
	"strings"
	"time"
)

// Short frames carry one raw amplitude sample; long frames carry the 1 Hz
// cognitive scores. Field offsets index bytes from the sync marker.
const (
	shortQualityOff = 5
	shortHighOff    = 6
	shortLowOff     = 7

	longQualityOff    = 4
	longMeditationOff = 32
	longAttentionOff  = 34
)

// microvoltScale converts the headset's raw 12-bit ADC counts (1.8 V
// reference, gain 2000) to microvolts.
const microvoltScale = (1.8 / 4096) / 2000 * 1000

// QualityUnknown marks samples recovered from malformed frames.
const QualityUnknown = 0xFF

var ErrTruncatedFrame = errors.New("frame shorter than declared length")

// Sample is one calibrated amplitude measurement. Quality 0 is good; any
// other value is degraded.
type Sample struct {
	Channel    Channel
	Microvolts float64
	Quality    byte
	Time       time.Time
}

// Cognitive carries the meditation/attention scores from a long frame.
type Cognitive struct {
	Channel    Channel
	Meditation byte
	Attention  byte
	Quality    byte
	Time       time.Time
}

// ChannelFromSource maps a transport source identifier to a channel. The
// headset embeds a per-channel sub-identifier in its characteristic UUIDs
// ("b0" left ear, "b1" right ear).
func ChannelFromSource(id string) (Channel, bool) {
	switch {
	case strings.Contains(id, "b0"):
		return Left, true
	case strings.Contains(id, "b1"):
		return Right, true
	}
	return 0, false
}

// ConvertShort decodes an 8-byte short frame into a calibrated sample.
// Malformed input yields a zero-value sample with QualityUnknown and an
// error the caller may log; it never panics.
func ConvertShort(ch Channel, f Frame, now time.Time) (Sample, error) {
	if f.Kind != KindShortAffect || len(f.Data) < shortFrameLen {
		return Sample{Channel: ch, Quality: QualityUnknown, Time: now}, ErrTruncatedFrame
	}
	raw := int(f.Data[shortHighOff])<<8 | int(f.Data[shortLowOff])
	if raw >= 32768 {
		raw -= 65536
	}
	return Sample{
		Channel:    ch,
		Microvolts: float64(raw) * microvoltScale,
		Quality:    f.Data[shortQualityOff],
		Time:       now,
	}, nil
}

// ConvertLong decodes a 36-byte long frame into cognitive scores.
func ConvertLong(ch Channel, f Frame, now time.Time) (Cognitive, error) {
	if f.Kind != KindLongCognitive || len(f.Data) < longFrameLen {
		return Cognitive{Channel: ch, Quality: QualityUnknown, Time: now}, ErrTruncatedFrame
	}
	return Cognitive{
		Channel:    ch,
		Meditation: f.Data[longMeditationOff],
		Attention:  f.Data[longAttentionOff],
		Quality:    f.Data[longQualityOff],
		Time:       now,
	}, nil
}
