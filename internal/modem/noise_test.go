package modem

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestNoise_OffSentinel(t *testing.T) {
	n := NewNoise(1)
	for _, snr := range []float64{100, 100.5, 250} {
		for i := 0; i < 100; i++ {
			if v := n.Gaussian(100, snr); v != 0 {
				t.Fatalf("Gaussian(snr=%v) = %v, want 0", snr, v)
			}
			if i, q := n.IQ(snr); i != 0 || q != 0 {
				t.Fatalf("IQ(snr=%v) = (%v, %v), want 0", snr, i, q)
			}
		}
	}
	var none *Noise
	if v := none.Gaussian(100, 3); v != 0 {
		t.Errorf("nil noise = %v, want 0", v)
	}
	if v := n.Gaussian(0, 3); v != 0 {
		t.Errorf("zero amplitude noise = %v, want 0", v)
	}
}

func TestNoise_GaussianStatistics(t *testing.T) {
	const (
		amplitude = 100.0
		snr       = 10.0
		draws     = 200000
	)
	n := NewNoise(42)
	x := make([]float64, draws)
	for i := range x {
		x[i] = n.Gaussian(amplitude, snr)
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			t.Fatalf("draw %d not finite: %v", i, x[i])
		}
	}

	want := NoiseStdDev(amplitude, snr) // sqrt(5000/10)
	if math.Abs(want-math.Sqrt(500)) > 1e-9 {
		t.Fatalf("NoiseStdDev = %v, want %v", want, math.Sqrt(500))
	}
	mean, std := stat.MeanStdDev(x, nil)
	if math.Abs(mean) > 0.02*want {
		t.Errorf("mean = %v, want ~0", mean)
	}
	if math.Abs(std-want)/want > 0.02 {
		t.Errorf("std = %v, want %v", std, want)
	}
}

func TestNoise_IQPerChannelPower(t *testing.T) {
	const snr = 6.0
	n := NewNoise(7)
	is := make([]float64, 100000)
	qs := make([]float64, len(is))
	for k := range is {
		is[k], qs[k] = n.IQ(snr)
	}
	want := math.Sqrt(0.5 / math.Pow(10, snr/10))
	for name, x := range map[string][]float64{"I": is, "Q": qs} {
		if std := stat.StdDev(x, nil); math.Abs(std-want)/want > 0.02 {
			t.Errorf("%s std = %v, want %v", name, std, want)
		}
	}
	if c := stat.Correlation(is, qs, nil); math.Abs(c) > 0.02 {
		t.Errorf("I/Q correlation = %v, want ~0", c)
	}
}

func TestNoise_Reproducible(t *testing.T) {
	a, b := NewNoise(99), NewNoise(99)
	for i := 0; i < 1000; i++ {
		if x, y := a.Gaussian(1, 0), b.Gaussian(1, 0); x != y {
			t.Fatalf("draw %d: %v != %v", i, x, y)
		}
	}
}

func TestNoise_UniformRange(t *testing.T) {
	n := NewNoise(3)
	for i := 0; i < 100000; i++ {
		if u := n.uniform(); u <= 0 || u > 1 {
			t.Fatalf("uniform() = %v outside (0,1]", u)
		}
	}
}
