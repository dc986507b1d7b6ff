package eeg

import "time"

// Channel identifies one electrode of the two-channel headset.
type Channel int

const (
	Left Channel = iota
	Right
	numChannels
)

func (c Channel) String() string {
	switch c {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Channels lists every channel in a fixed order.
func Channels() []Channel { return []Channel{Left, Right} }

// ChannelState carries one channel's rolling counters for the rate monitor.
// It is a value; Monitor.Observe returns the updated copy.
type ChannelState struct {
	Channel     Channel
	Packets     uint64
	PoorPackets uint64
	WindowStart time.Time
	LastQuality byte
}
