package dsp

import (
	"github.com/sirupsen/logrus"
)

// FilterConfig holds every knob of the processing chain. Stage order is
// fixed: downsample, bandpass, notch, normalize; each stage toggles
// independently.
type FilterConfig struct {
	Downsample   bool    `json:"downsample"`
	OriginalRate int     `json:"original_rate"`
	TargetRate   int     `json:"target_rate"`

	Bandpass bool    `json:"bandpass"`
	LowHz    float64 `json:"bandpass_low"`
	HighHz   float64 `json:"bandpass_high"`
	Family   Family  `json:"filter_family"`
	Order    int     `json:"filter_order"`

	Notch   bool    `json:"notch"`
	NotchHz float64 `json:"notch_freq"`
	NotchQ  float64 `json:"notch_q"`

	Normalize bool `json:"normalize"`
}

// DefaultFilterConfig mirrors the headset's native 512 Hz stream processed
// at 128 Hz with a 0.5-50 Hz passband and a mains notch.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Downsample:   true,
		OriginalRate: 512,
		TargetRate:   128,
		Bandpass:     true,
		LowHz:        0.5,
		HighHz:       50,
		Family:       FamilyMaxFlat,
		Order:        4,
		Notch:        true,
		NotchHz:      50,
		NotchQ:       30,
		Normalize:    true,
	}
}

// decimationFactor reports the integer rate reduction, or 0 when the
// configuration calls for the documented pass-through fallback.
func (c *FilterConfig) decimationFactor() int {
	if !c.Downsample || c.TargetRate >= c.OriginalRate || c.TargetRate <= 0 {
		return 0
	}
	if c.OriginalRate%c.TargetRate != 0 {
		return 0
	}
	return c.OriginalRate / c.TargetRate
}

// EffectiveRate is the sample rate of a segment after the downsample stage.
func (c *FilterConfig) EffectiveRate() float64 {
	if c.decimationFactor() > 0 {
		return float64(c.TargetRate)
	}
	return float64(c.OriginalRate)
}

// Chain is a configured processing chain. Filters are designed once at
// construction; Apply only runs them.
type Chain struct {
	cfg      FilterConfig
	factor   int
	bandpass *IIR
	notch    *IIR
}

// NewChain validates cutoffs against the effective rate and designs the
// enabled filters. Degenerate parameters never fail: the offending stage
// becomes a pass-through and a warning is logged, matching the recovery
// table for filter errors.
func NewChain(cfg FilterConfig) *Chain {
	c := &Chain{cfg: cfg, factor: cfg.decimationFactor()}
	fs := cfg.EffectiveRate()
	if cfg.Bandpass {
		if ok, why := validBand(cfg.LowHz, cfg.HighHz, fs); ok {
			c.bandpass = Bandpass(cfg.Family, cfg.Order, cfg.LowHz, cfg.HighHz, fs)
		} else {
			logrus.WithFields(logrus.Fields{
				"fs":   fs,
				"low":  cfg.LowHz,
				"high": cfg.HighHz,
			}).Warnf("bandpass disabled: %s", why)
		}
	}
	if cfg.Notch {
		if cfg.NotchHz > 0 && cfg.NotchHz < fs/2 && cfg.NotchQ > 0 {
			c.notch = Notch(cfg.NotchHz, cfg.NotchQ, fs)
		} else {
			logrus.WithFields(logrus.Fields{
				"fs":    fs,
				"notch": cfg.NotchHz,
				"q":     cfg.NotchQ,
			}).Warn("notch disabled: frequency outside (0, fs/2) or bad Q")
		}
	}
	return c
}

func validBand(low, high, fs float64) (bool, string) {
	switch {
	case fs <= 0:
		return false, "non-positive sample rate"
	case high >= fs/2:
		return false, "high cutoff at or above Nyquist"
	case low <= 0:
		return false, "non-positive low cutoff"
	case low >= high:
		return false, "low cutoff not below high cutoff"
	}
	nyq := fs / 2
	if l, h := low/nyq, high/nyq; !(0 < l && l < h && h < 1) {
		return false, "normalized cutoffs not strictly ordered in (0,1)"
	}
	return true, ""
}

// Rate is the sample rate of segments returned by Apply.
func (c *Chain) Rate() float64 { return c.cfg.EffectiveRate() }

// Apply runs the enabled stages over a snapshot segment. Segments shorter
// than a filter's transient length skip that filter with a warning; the
// chain never fails.
func (c *Chain) Apply(seg []float64) []float64 {
	if c.factor > 0 {
		seg = Decimate(seg, c.factor)
	}
	seg = c.applyIIR("bandpass", c.bandpass, seg)
	seg = c.applyIIR("notch", c.notch, seg)
	if c.cfg.Normalize {
		seg = Normalize(seg)
	}
	return seg
}

func (c *Chain) applyIIR(stage string, f *IIR, seg []float64) []float64 {
	if f == nil {
		return seg
	}
	if len(seg) <= PadLen(f) {
		logrus.WithFields(logrus.Fields{
			"stage":   stage,
			"samples": len(seg),
			"need":    PadLen(f) + 1,
		}).Warn("segment shorter than filter transient, passing through")
		return seg
	}
	return FiltFilt(f, seg)
}
