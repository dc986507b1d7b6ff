package dsp

import (
	"math"
	"testing"
)

func sine(freq, fs float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
	}
	return out
}

func rms(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestDecimateLength(t *testing.T) {
	data := sine(2, 512, 5120)
	out := Decimate(data, 4)
	if d := len(out) - len(data)/4; d < -1 || d > 1 {
		t.Fatalf("decimated length %d, want %d±1", len(out), len(data)/4)
	}
}

func TestDecimatePreservesPassband(t *testing.T) {
	// A 2 Hz tone at 512 Hz must survive 4x decimation nearly unchanged.
	in := sine(2, 512, 5120)
	out := Decimate(in, 4)
	want := sine(2, 128, len(out))
	for i := 10; i < len(out)-10; i++ {
		if math.Abs(out[i]-want[i]) > 0.05 {
			t.Fatalf("sample %d: %v, want %v", i, out[i], want[i])
		}
	}
}

func TestDecimateRejectsAlias(t *testing.T) {
	// A 100 Hz tone is above the 64 Hz post-decimation Nyquist and must be
	// strongly attenuated, not folded in.
	out := Decimate(sine(100, 512, 5120), 4)
	if r := rms(out[20 : len(out)-20]); r > 0.05 {
		t.Fatalf("aliased energy rms %.4f", r)
	}
}

func TestBandpassTransientGuard(t *testing.T) {
	f := Bandpass(FamilyMaxFlat, 4, 0.5, 50, 128)
	// order 4 bandpass has 9 coefficients; guard is 27 samples.
	if PadLen(f) != 27 {
		t.Fatalf("padlen %d, want 27", PadLen(f))
	}
	in := sine(10, 128, 27)
	out := FiltFilt(f, in)
	for i := range in {
		if out[i] != in[i] {
			t.Fatal("short segment was filtered, want pass-through")
		}
	}
}

func TestBandpassPassAndStop(t *testing.T) {
	for _, family := range []Family{FamilyMaxFlat, FamilyRipple} {
		f := Bandpass(family, 4, 0.5, 30, 128)
		pass := FiltFilt(f, sine(10, 128, 1280))
		stop := FiltFilt(f, sine(55, 128, 1280))
		pr, sr := rms(pass[100:1180]), rms(stop[100:1180])
		if pr < 0.5 {
			t.Fatalf("%v: passband tone attenuated to rms %.3f", family, pr)
		}
		if sr > 0.05 {
			t.Fatalf("%v: stopband tone leaked rms %.3f", family, sr)
		}
	}
}

func TestBandpassZeroPhase(t *testing.T) {
	// Forward-backward application must not shift a passband tone.
	f := Bandpass(FamilyMaxFlat, 4, 0.5, 50, 128)
	in := sine(10, 128, 1280)
	out := FiltFilt(f, in)
	for i := 300; i < 400; i++ {
		if math.Abs(out[i]-in[i]) > 0.05 {
			t.Fatalf("sample %d shifted: %v vs %v", i, out[i], in[i])
		}
	}
}

func TestNotchRejectsCenter(t *testing.T) {
	f := Notch(50, 30, 128)
	hum := FiltFilt(f, sine(50, 128, 1280))
	tone := FiltFilt(f, sine(10, 128, 1280))
	if r := rms(hum[100:1180]); r > 0.1 {
		t.Fatalf("notch center leaked rms %.3f", r)
	}
	if r := rms(tone[100:1180]); r < 0.5 {
		t.Fatalf("tone away from notch attenuated to rms %.3f", r)
	}
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float64{1, 2, 3, 4, 5})
	mean, sq := 0.0, 0.0
	for _, v := range out {
		mean += v
	}
	mean /= float64(len(out))
	for _, v := range out {
		sq += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sq / float64(len(out)))
	if math.Abs(mean) > 1e-12 || math.Abs(std-1) > 1e-12 {
		t.Fatalf("mean %v std %v", mean, std)
	}
}

func TestNormalizeConstant(t *testing.T) {
	in := []float64{3, 3, 3}
	out := Normalize(in)
	for i := range in {
		if out[i] != in[i] {
			t.Fatal("constant segment must pass through unchanged")
		}
	}
}
