package scope

import (
	"go.uber.org/zap"

	"github.com/jeongseonghan/modviz/internal/modem"
	"github.com/jeongseonghan/modviz/internal/spectrum"
)

// Frame is one rendered view. Exactly one of Time, Constellation and
// Spectrum is set, matching View.
type Frame struct {
	Seq        uint64    `json:"seq" msgpack:"seq"`
	View       View      `json:"view" msgpack:"view"`
	Status     [2]string `json:"status" msgpack:"status"`
	Message    string    `json:"message" msgpack:"message"`
	TimeOffset float64   `json:"timeOffset" msgpack:"timeOffset"`
	Paused     bool      `json:"paused" msgpack:"paused"`
	Screen     Screen    `json:"screen" msgpack:"screen"`

	Time          *TimeTrace     `json:"time,omitempty" msgpack:"time,omitempty"`
	Constellation *IQFrame       `json:"constellation,omitempty" msgpack:"constellation,omitempty"`
	Spectrum      *SpectrumFrame `json:"spectrum,omitempty" msgpack:"spectrum,omitempty"`
}

// TimeTrace holds one signal value per screen column and the row it is
// drawn at.
type TimeTrace struct {
	Samples []float64 `json:"samples" msgpack:"samples"`
	Y       []int     `json:"y" msgpack:"y"`
}

// IdealPoint is a noiseless constellation point.
type IdealPoint struct {
	I float64 `json:"i" msgpack:"i"`
	Q float64 `json:"q" msgpack:"q"`
}

// IQFrame is the constellation trace. Scale is pixels per unit amplitude.
type IQFrame struct {
	Points []modem.IQPoint `json:"points" msgpack:"points"`
	Ideal  []IdealPoint    `json:"ideal" msgpack:"ideal"`
	Scale  float64         `json:"scale" msgpack:"scale"`
	SER    float64         `json:"ser" msgpack:"ser"`
}

// SpectrumFrame carries the estimate. When the estimate fails, Spectrum
// is the last good result (possibly nil), Stale is set and Error says why.
type SpectrumFrame struct {
	Spectrum *spectrum.Spectrum `json:"spectrum" msgpack:"spectrum"`
	Hover    *spectrum.Hover    `json:"hover,omitempty" msgpack:"hover,omitempty"`
	Stale    bool               `json:"stale,omitempty" msgpack:"stale,omitempty"`
	Error    string             `json:"error,omitempty" msgpack:"error,omitempty"`
}

func (s *State) renderTime() *TimeTrace {
	cfg := s.cur.Modulation
	w, mid := s.cur.Screen.Width, s.cur.Screen.Height/2
	tr := &TimeTrace{
		Samples: make([]float64, w),
		Y:       make([]int, w),
	}

	synth := modem.NewSynthesizer(cfg, s.msg, modem.IndexOpen)
	synth.Sweep(tr.Samples, s.offset, 1/s.cur.PixelsPerSecond)
	for x, y := range tr.Samples {
		y += s.noise.Gaussian(cfg.Amplitude, cfg.SNRdB)
		tr.Samples[x] = y
		tr.Y[x] = mid - int(y)
	}
	return tr
}

func (s *State) renderConstellation() *IQFrame {
	cfg := s.cur.Modulation
	points := modem.NewConstellation(cfg).Points()
	ideal := make([]IdealPoint, len(points))
	for i, p := range points {
		ideal[i] = IdealPoint{I: real(p), Q: imag(p)}
	}

	trace := modem.Trace(cfg, s.msg, s.noise)
	return &IQFrame{
		Points: trace,
		Ideal:  ideal,
		Scale:  float64(s.cur.Screen.Height) / 3,
		SER:    modem.SymbolErrorRate(trace),
	}
}

func (s *State) renderSpectrum() *SpectrumFrame {
	cfg := s.cur.Spectrum
	cfg.TimeOffset = s.offset

	spec, err := s.est.Estimate(s.cur.Modulation, cfg, s.msg)
	if err != nil {
		s.log.Warn("spectrum estimate failed, keeping previous frame",
			zap.Int("fft_size", cfg.FFTSize),
			zap.Error(err),
		)
		return &SpectrumFrame{Spectrum: s.last, Stale: true, Error: err.Error()}
	}
	s.last = spec

	f := &SpectrumFrame{Spectrum: spec}
	if s.hoverX >= 0 {
		plot := spectrum.Plot{Width: s.cur.Screen.Width, Margin: spectrum.DefaultMargin}
		if h, ok := spec.Hover(s.hoverX, plot); ok {
			f.Hover = &h
		}
	}
	return f
}
