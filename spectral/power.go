// Package spectral estimates band power from processed EEG segments.
package spectral

import (
	welch "github.com/mjibson/go-dsp/spectral"
	"gonum.org/v1/gonum/integrate"
)

// DefaultSegmentSeconds is the window length for segmented band power.
const DefaultSegmentSeconds = 1.0

// windowPower estimates one window's PSD with Welch's method (single
// window-length segment, half overlap internally) and integrates it over
// [lowHz, highHz) with the trapezoidal rule.
func windowPower(seg []float64, fs, lowHz, highHz float64) float64 {
	pxx, freqs := welch.Pwelch(seg, fs, &welch.PwelchOptions{
		NFFT:     len(seg),
		Noverlap: len(seg) / 2,
	})
	var bx, by []float64
	for i, f := range freqs {
		if f >= lowHz && f < highHz {
			bx = append(bx, f)
			by = append(by, pxx[i])
		}
	}
	if len(bx) < 2 {
		return 0
	}
	return integrate.Trapezoidal(bx, by)
}

// BandPower partitions the segment into non-overlapping windows of
// segmentSeconds at the segment's effective sample rate, integrates each
// window's PSD over [lowHz, highHz) and averages. A segment with no complete
// window yields 0.0 rather than an error.
func BandPower(seg []float64, fs, lowHz, highHz, segmentSeconds float64) float64 {
	winLen := int(fs * segmentSeconds)
	if winLen <= 0 || len(seg) < winLen {
		return 0
	}
	sum, n := 0.0, 0
	for i := 0; i+winLen <= len(seg); i += winLen {
		sum += windowPower(seg[i:i+winLen], fs, lowHz, highHz)
		n++
	}
	return sum / float64(n)
}
