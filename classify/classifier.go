// Package classify derives a wakeful/drowsy state from band-power ratios.
package classify

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eegrx/eegrx/dsp"
	"github.com/eegrx/eegrx/eeg"
	"github.com/eegrx/eegrx/spectral"
)

// State is the binary physiological state.
type State int

const (
	Wakeful State = iota
	Drowsy
)

func (s State) String() string {
	if s == Drowsy {
		return "drowsy"
	}
	return "wakeful"
}

// Band is a named EEG frequency band in Hz, [Low, High).
type Band struct {
	Low, High float64
}

var (
	BandDelta = Band{0.5, 4}
	BandTheta = Band{4, 8}
	BandAlpha = Band{8, 13}
	BandBeta  = Band{13, 30}
)

// BandPowerSet holds the four integrated band powers, floored at MinPower.
type BandPowerSet struct {
	Delta, Theta, Alpha, Beta float64
}

// RatioSet holds the drowsiness indicator ratios, each clamped at MaxRatio.
type RatioSet struct {
	DA float64 `json:"d_a"`
	TA float64 `json:"t_a"`
	TB float64 `json:"t_b"`
	AB float64 `json:"a_b"`
}

// ThresholdSet is the per-ratio decision level. Strict constants for every
// session; per-user calibration was deliberately removed upstream and the
// thresholds are not runtime-configurable.
type ThresholdSet struct {
	DA, TA, TB, AB float64
}

// StrictThresholds gates the decision on DA and TA; TB and AB are tracked
// and reported but do not gate.
var StrictThresholds = ThresholdSet{DA: 3.0, TA: 2.3, TB: 1.8, AB: 1.4}

const (
	// MinPower floors vanishing band powers before forming ratios.
	MinPower = 1e-3
	// MaxRatio clamps unrealistic ratio spikes.
	MaxRatio = 20.0

	// WarmupTicks are skipped unconditionally after a (re)start.
	WarmupTicks = 3
	// MinWindowSeconds of buffered signal are needed per evaluation.
	MinWindowSeconds = 6
	// DefaultTickInterval between evaluations.
	DefaultTickInterval = 3 * time.Second
)

// Result is one channel's evaluation at one tick, immutable once emitted.
type Result struct {
	Channel eeg.Channel
	Time    time.Time
	Powers  BandPowerSet
	Ratios  RatioSet
	State   State
}

// Classifier re-derives the state from scratch on every tick; there is no
// smoothing or hysteresis across ticks.
type Classifier struct {
	chain      *dsp.Chain
	thresholds ThresholdSet
	minSamples int
	ticks      int
}

// NewClassifier builds a classifier around a configured chain. The minimum
// evaluation window is MinWindowSeconds at the chain's input rate.
func NewClassifier(cfg dsp.FilterConfig) *Classifier {
	return &Classifier{
		chain:      dsp.NewChain(cfg),
		thresholds: StrictThresholds,
		minSamples: cfg.TargetRate * MinWindowSeconds,
	}
}

// MinSamples is how many buffered pairs a tick needs.
func (c *Classifier) MinSamples() int { return c.minSamples }

// Reset restarts the warm-up window, e.g. after a session (re)start.
func (c *Classifier) Reset() { c.ticks = 0 }

// Tick evaluates the most recent window of the ring for both channels. It
// returns nil during warm-up or when too little data is buffered; neither
// case changes state or produces results.
func (c *Classifier) Tick(ring *eeg.PairRing, now time.Time) []Result {
	c.ticks++
	if c.ticks <= WarmupTicks {
		logrus.WithField("tick", c.ticks).Debug("classifier warming up")
		return nil
	}
	if n := ring.Len(); n < c.minSamples {
		logrus.WithFields(logrus.Fields{
			"buffered": n,
			"need":     c.minSamples,
		}).Debug("classifier tick skipped: insufficient data")
		return nil
	}
	pairs := ring.Tail(c.minSamples)
	results := make([]Result, 0, 2)
	for _, ch := range eeg.Channels() {
		results = append(results, c.evaluate(ch, eeg.Column(pairs, ch), now))
	}
	return results
}

func (c *Classifier) evaluate(ch eeg.Channel, raw []float64, now time.Time) Result {
	seg := c.chain.Apply(raw)
	fs := c.chain.Rate()

	p := BandPowerSet{
		Delta: bandPower(seg, fs, BandDelta),
		Theta: bandPower(seg, fs, BandTheta),
		Alpha: bandPower(seg, fs, BandAlpha),
		Beta:  bandPower(seg, fs, BandBeta),
	}
	r := RatioSet{
		DA: clampRatio(p.Delta / p.Alpha),
		TA: clampRatio(p.Theta / p.Alpha),
		TB: clampRatio(p.Theta / p.Beta),
		AB: clampRatio(p.Alpha / p.Beta),
	}
	state := Wakeful
	if r.DA >= c.thresholds.DA && r.TA >= c.thresholds.TA {
		state = Drowsy
	}
	return Result{Channel: ch, Time: now, Powers: p, Ratios: r, State: state}
}

func bandPower(seg []float64, fs float64, b Band) float64 {
	p := spectral.BandPower(seg, fs, b.Low, b.High, spectral.DefaultSegmentSeconds)
	if p < MinPower {
		return MinPower
	}
	return p
}

func clampRatio(r float64) float64 {
	if r > MaxRatio {
		return MaxRatio
	}
	return r
}
