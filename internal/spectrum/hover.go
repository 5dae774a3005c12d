package spectrum

import "math"

// Display constants for the spectral plot.
const (
	// DisplayRangeDB is the dynamic range shown below the peak.
	DisplayRangeDB = 90.0
	// HoverTolerance is how far (px) a pointer may be from a bar and still
	// select it.
	HoverTolerance = 2
	// DefaultMargin is the horizontal plot margin in pixels.
	DefaultMargin = 50
)

// Plot is the horizontal screen geometry the visible bins are spread over.
type Plot struct {
	Width  int
	Margin int
}

// Hover is the bin under the pointer.
type Hover struct {
	Bin       int     `json:"bin" msgpack:"bin"`
	Frequency float64 `json:"frequency" msgpack:"frequency"`
	PowerDB   float64 `json:"powerDb" msgpack:"powerDb"`
	X         int     `json:"x" msgpack:"x"`
}

// Frequency returns the lower edge frequency of bin.
func (s *Spectrum) Frequency(bin int) float64 {
	return float64(bin) * s.FreqPerBin
}

// Visible returns the dB values of the visible range.
func (s *Spectrum) Visible() []float64 {
	return s.PSD[s.StartBin : s.EndBin+1]
}

// BinX returns the screen x of bin within p.
func (s *Spectrum) BinX(bin int, p Plot) int {
	width := float64(p.Width - 2*p.Margin)
	if s.EndBin == s.StartBin {
		return p.Margin
	}
	return p.Margin + int(float64(bin-s.StartBin)*width/float64(s.EndBin-s.StartBin))
}

// Level returns the bar height of bin as a fraction of the display range
// below MaxDB, clamped to [0, 1].
func (s *Spectrum) Level(bin int) float64 {
	v := (s.PSD[bin] - (s.MaxDB - DisplayRangeDB)) / DisplayRangeDB
	return math.Min(math.Max(v, 0), 1)
}

// Hover returns the visible bin drawn closest to screen x, if one lies
// within HoverTolerance pixels. The spectrum is not modified.
func (s *Spectrum) Hover(x int, p Plot) (Hover, bool) {
	best, bestDist := -1, HoverTolerance+1
	for i := s.StartBin; i <= s.EndBin; i++ {
		d := x - s.BinX(i, p)
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Hover{}, false
	}
	return Hover{
		Bin:       best,
		Frequency: s.Frequency(best),
		PowerDB:   s.PSD[best],
		X:         s.BinX(best, p),
	}, true
}
