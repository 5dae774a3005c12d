package spectrum

import (
	"fmt"
	"math"
	"strings"
)

// Window is the taper applied to the FFT block.
type Window int

const (
	Rectangular Window = iota
	Hann
	Hamming
)

// String returns the window name.
func (w Window) String() string {
	switch w {
	case Rectangular:
		return "Rectangular"
	case Hann:
		return "Hann"
	case Hamming:
		return "Hamming"
	default:
		return "Unknown"
	}
}

// ParseWindow parses a window name (case-insensitive).
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rectangular", "rect", "none":
		return Rectangular, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	}
	return 0, fmt.Errorf("unknown window %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (w Window) MarshalText() ([]byte, error) {
	if w < Rectangular || w > Hamming {
		return nil, fmt.Errorf("unknown window %d", int(w))
	}
	return []byte(strings.ToLower(w.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Window) UnmarshalText(b []byte) error {
	parsed, err := ParseWindow(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Coefficient returns the symmetric window value at sample i of n.
func (w Window) Coefficient(i, n int) float64 {
	if n < 2 {
		return 1.0
	}
	switch w {
	case Hann:
		return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	case Hamming:
		return 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	default:
		return 1.0
	}
}
