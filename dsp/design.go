package dsp

import (
	"math"
	"math/cmplx"
)

// Family selects the bandpass approximation. Selection happens once when the
// chain is built, not per segment.
type Family int

const (
	// FamilyMaxFlat is a Butterworth response: monotonic, maximally flat
	// passband.
	FamilyMaxFlat Family = iota
	// FamilyRipple is a Chebyshev type-I response with 0.5 dB passband
	// ripple: steeper rolloff for the same order.
	FamilyRipple
)

func (f Family) String() string {
	if f == FamilyRipple {
		return "ripple"
	}
	return "maxflat"
}

const rippleDB = 0.5

// IIR is a designed filter as transfer-function coefficients, a[0] == 1.
type IIR struct {
	B, A []float64
}

// Taps is the longer of the two coefficient vectors; the zero-phase transient
// guard is 3*Taps samples.
func (f *IIR) Taps() int {
	if len(f.A) > len(f.B) {
		return len(f.A)
	}
	return len(f.B)
}

// prototypePoles returns the analog lowpass prototype poles for the family,
// all strictly in the left half plane.
func prototypePoles(family Family, order int) []complex128 {
	poles := make([]complex128, order)
	switch family {
	case FamilyRipple:
		eps := math.Sqrt(math.Pow(10, rippleDB/10) - 1)
		mu := math.Asinh(1/eps) / float64(order)
		for k := 0; k < order; k++ {
			theta := math.Pi * float64(2*k+1) / float64(2*order)
			poles[k] = complex(-math.Sinh(mu)*math.Sin(theta), math.Cosh(mu)*math.Cos(theta))
		}
	default:
		for k := 0; k < order; k++ {
			theta := math.Pi * float64(2*k+order+1) / float64(2*order)
			poles[k] = cmplx.Exp(complex(0, theta))
		}
	}
	return poles
}

// poly expands prod(z - r) over the roots into monic coefficients, highest
// power first.
func poly(roots []complex128) []complex128 {
	c := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(c)+1)
		for i, v := range c {
			next[i] += v
			next[i+1] -= v * r
		}
		c = next
	}
	return c
}

func polyEval(c []float64, z complex128) complex128 {
	acc := complex(0, 0)
	for _, v := range c {
		acc = acc*z + complex(v, 0)
	}
	return acc
}

// Bandpass designs a digital bandpass filter of the given family and order
// over [lowHz, highHz] at sample rate fs: analog prototype, lowpass-to-
// bandpass transform, bilinear transform, then gain normalization at the
// band's geometric center. Cutoffs must already be validated by the caller.
func Bandpass(family Family, order int, lowHz, highHz, fs float64) *IIR {
	// Prewarp the band edges for the bilinear transform.
	k := 2 * fs
	w1 := k * math.Tan(math.Pi*lowHz/fs)
	w2 := k * math.Tan(math.Pi*highHz/fs)
	w0 := math.Sqrt(w1 * w2)
	bw := w2 - w1

	// Each prototype pole maps to a conjugate pair around w0.
	var apoles []complex128
	for _, p := range prototypePoles(family, order) {
		s := complex(bw/2, 0) * p
		d := cmplx.Sqrt(s*s - complex(w0*w0, 0))
		apoles = append(apoles, s+d, s-d)
	}

	// Bilinear transform of poles; the order zeros at s=0 and order zeros at
	// infinity land on z=1 and z=-1.
	zpoles := make([]complex128, len(apoles))
	for i, p := range apoles {
		zpoles[i] = (complex(k, 0) + p) / (complex(k, 0) - p)
	}
	zzeros := make([]complex128, 0, 2*order)
	for i := 0; i < order; i++ {
		zzeros = append(zzeros, 1, -1)
	}

	b := realParts(poly(zzeros))
	a := realParts(poly(zpoles))

	// Normalize the passband gain at the center frequency. A Chebyshev
	// response of even order sits at the ripple floor there.
	target := 1.0
	if family == FamilyRipple && order%2 == 0 {
		target = math.Pow(10, -rippleDB/20)
	}
	wc := 2 * math.Atan(w0/k)
	zc := cmplx.Exp(complex(0, wc))
	gain := cmplx.Abs(polyEval(b, zc) / polyEval(a, zc))
	scale := target / gain
	for i := range b {
		b[i] *= scale
	}
	return &IIR{B: b, A: a}
}

// Notch designs a narrow-band rejection biquad centered on freqHz with the
// given quality factor, unity gain at DC and Nyquist.
func Notch(freqHz, q, fs float64) *IIR {
	w0 := 2 * math.Pi * freqHz / fs
	alpha := math.Sin(w0) / (2 * q)
	c := math.Cos(w0)
	a0 := 1 + alpha
	return &IIR{
		B: []float64{1 / a0, -2 * c / a0, 1 / a0},
		A: []float64{1, -2 * c / a0, (1 - alpha) / a0},
	}
}

func realParts(c []complex128) []float64 {
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}
	return out
}
