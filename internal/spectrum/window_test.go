package spectrum

import (
	"math"
	"testing"

	"github.com/mjibson/go-dsp/window"
)

func TestWindow_MatchesReference(t *testing.T) {
	for _, n := range []int{8, 256, 1024} {
		refs := map[Window][]float64{
			Hann:    window.Hann(n),
			Hamming: window.Hamming(n),
		}
		for w, ref := range refs {
			for i := 0; i < n; i++ {
				if got := w.Coefficient(i, n); math.Abs(got-ref[i]) > 1e-12 {
					t.Fatalf("%s n=%d i=%d: got %v, want %v", w, n, i, got, ref[i])
				}
			}
		}
		for i := 0; i < n; i++ {
			if got := Rectangular.Coefficient(i, n); got != 1 {
				t.Fatalf("Rectangular(%d) = %v", i, got)
			}
		}
	}
}

func TestWindow_Endpoints(t *testing.T) {
	n := 64
	if got := Hann.Coefficient(0, n); got != 0 {
		t.Errorf("Hann(0) = %v, want 0", got)
	}
	if got := Hamming.Coefficient(0, n); math.Abs(got-0.08) > 1e-12 {
		t.Errorf("Hamming(0) = %v, want 0.08", got)
	}
	if got := Hann.Coefficient(0, 1); got != 1 {
		t.Errorf("single-point window = %v, want 1", got)
	}
}

func TestWindow_Text(t *testing.T) {
	for _, w := range []Window{Rectangular, Hann, Hamming} {
		b, err := w.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Window
		if err := back.UnmarshalText(b); err != nil || back != w {
			t.Errorf("%s: round trip gave %v, %v", w, back, err)
		}
	}
	if _, err := ParseWindow("kaiser"); err == nil {
		t.Error("expected error for unknown window")
	}
}
