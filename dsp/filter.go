package dsp

import "math"

// lfilter runs the direct-form II transposed difference equation. a[0] must
// be 1.
func lfilter(b, a, x []float64) []float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	bp := make([]float64, n)
	ap := make([]float64, n)
	copy(bp, b)
	copy(ap, a)
	z := make([]float64, n-1)
	y := make([]float64, len(x))
	for i, xi := range x {
		yi := bp[0]*xi + z[0]
		for j := 1; j < n; j++ {
			zj := 0.0
			if j < n-1 {
				zj = z[j]
			}
			z[j-1] = bp[j]*xi + zj - ap[j]*yi
		}
		y[i] = yi
	}
	return y
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// PadLen is the zero-phase transient length for a filter: segments no longer
// than this pass through unfiltered.
func PadLen(f *IIR) int { return 3 * f.Taps() }

// FiltFilt applies f forward then backward for zero phase distortion. The
// input is extended at both ends by an odd reflection of PadLen samples to
// suppress edge transients. Input shorter than the extension is returned
// unchanged; callers guard and log that case.
func FiltFilt(f *IIR, x []float64) []float64 {
	pad := PadLen(f)
	if len(x) <= pad {
		return x
	}
	ext := make([]float64, 0, len(x)+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	last := len(x) - 1
	for i := 1; i <= pad; i++ {
		ext = append(ext, 2*x[last]-x[last-i])
	}
	y := lfilter(f.B, f.A, ext)
	reverse(y)
	y = lfilter(f.B, f.A, y)
	reverse(y)
	return y[pad : pad+len(x)]
}

// firLowpass designs an n-tap Hamming-windowed sinc lowpass with cutoff
// given as a fraction of Nyquist, unity DC gain.
func firLowpass(n int, cutoff float64) []float64 {
	h := make([]float64, n)
	m := float64(n - 1)
	sum := 0.0
	for k := 0; k < n; k++ {
		t := float64(k) - m/2
		s := cutoff
		if t != 0 {
			s = math.Sin(math.Pi*cutoff*t) / (math.Pi * t)
		}
		w := 0.54 - 0.46*math.Cos(2*math.Pi*float64(k)/m)
		h[k] = s * w
		sum += h[k]
	}
	for k := range h {
		h[k] /= sum
	}
	return h
}

// Decimate reduces the sample rate by an integer factor with an
// anti-aliasing FIR applied at zero phase (linear-phase taps, group delay
// compensated). The factor must be >= 2.
func Decimate(x []float64, factor int) []float64 {
	if factor < 2 || len(x) == 0 {
		return x
	}
	h := firLowpass(20*factor+1, 1/float64(factor))
	half := len(h) / 2

	// Odd-extend the edges so the convolution sees no step.
	ext := make([]float64, 0, len(x)+2*half)
	for i := half; i >= 1; i-- {
		j := i
		if j >= len(x) {
			j = len(x) - 1
		}
		ext = append(ext, 2*x[0]-x[j])
	}
	ext = append(ext, x...)
	last := len(x) - 1
	for i := 1; i <= half; i++ {
		j := last - i
		if j < 0 {
			j = 0
		}
		ext = append(ext, 2*x[last]-x[j])
	}

	out := make([]float64, 0, (len(x)+factor-1)/factor)
	for i := 0; i < len(x); i += factor {
		acc := 0.0
		for k, hk := range h {
			acc += hk * ext[i+k]
		}
		out = append(out, acc)
	}
	return out
}

// Normalize returns x scaled to zero mean and unit variance. A constant
// segment comes back unmodified.
func Normalize(x []float64) []float64 {
	if len(x) == 0 {
		return x
	}
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	variance := 0.0
	for _, v := range x {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(x)))
	if std == 0 {
		return x
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / std
	}
	return out
}
