package spectral

import (
	"math/cmplx"

	"github.com/runningwild/go-fftw/fftw32"
)

// Spectrum computes the display-oriented magnitude spectrum of a whole
// segment: zero-mean, FFT, and the non-negative-frequency half with its
// frequency axis. Computed fresh per call; not used by the classifier.
func Spectrum(seg []float64, fs float64) (freqs, mags []float64) {
	n := len(seg)
	if n == 0 {
		return nil, nil
	}
	mean := 0.0
	for _, v := range seg {
		mean += v
	}
	mean /= float64(n)

	arr := fftw32.NewArray(n)
	for i, v := range seg {
		arr.Elems[i] = complex(float32(v-mean), 0)
	}
	out := fftw32.FFT(arr)

	half := n / 2
	freqs = make([]float64, half)
	mags = make([]float64, half)
	binHz := fs / float64(n)
	for i := 0; i < half; i++ {
		freqs[i] = float64(i) * binHz
		mags[i] = cmplx.Abs(complex128(out.Elems[i]))
	}
	return freqs, mags
}
