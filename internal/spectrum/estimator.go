package spectrum

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/jeongseonghan/modviz/internal/modem"
)

// dbFloor keeps log10 finite for empty bins (-120 dB).
const dbFloor = 1e-12

// MaxPower bounds the PSD contrast exponent.
const MaxPower = 100.0

// ErrInvalidPower is returned for a contrast exponent that is not a finite
// number up to MaxPower.
var ErrInvalidPower = errors.New("invalid psd exponent")

// Config holds the spectral view parameters.
type Config struct {
	FFTSize         int     `yaml:"fft_size" json:"fftSize" msgpack:"fftSize"`
	Window          Window  `yaml:"window" json:"window" msgpack:"window"`
	Power           float64 `yaml:"power" json:"power" msgpack:"power"` // PSD contrast exponent, applied when > 1
	CenterFrequency float64 `yaml:"center_frequency" json:"centerFrequency" msgpack:"centerFrequency"`
	Span            float64 `yaml:"span" json:"span" msgpack:"span"`
	TimeOffset      float64 `yaml:"time_offset" json:"timeOffset" msgpack:"timeOffset"`
}

// DefaultConfig returns a spectrum covering 0..2 kHz at the default
// 4 kHz sample rate.
func DefaultConfig() Config {
	return Config{
		FFTSize:         1024,
		Window:          Hann,
		Power:           1,
		CenterFrequency: 1000,
		Span:            2000,
	}
}

// Validate checks the FFT size and the contrast exponent, the parameters
// that can make a spectrum impossible to compute.
func (c Config) Validate() error {
	if math.IsNaN(c.Power) || c.Power > MaxPower {
		return fmt.Errorf("%w: %g > %g", ErrInvalidPower, c.Power, MaxPower)
	}
	return CheckSize(c.FFTSize)
}

// Spectrum is the result of one estimate. PSD holds FFTSize/2 values in dB;
// StartBin..EndBin (inclusive) is the visible range.
type Spectrum struct {
	PSD        []float64 `json:"psd" msgpack:"psd"`
	FreqPerBin float64   `json:"freqPerBin" msgpack:"freqPerBin"`
	Nyquist    float64   `json:"nyquist" msgpack:"nyquist"`
	StartBin   int       `json:"startBin" msgpack:"startBin"`
	EndBin     int       `json:"endBin" msgpack:"endBin"`
	MaxDB      float64   `json:"maxDb" msgpack:"maxDb"`
	PeakBin    int       `json:"peakBin" msgpack:"peakBin"`
}

// Estimator computes power spectra. It keeps its FFT buffer between calls;
// an Estimator must not be used from more than one goroutine at a time.
type Estimator struct {
	buf []complex128
}

// Estimate synthesizes an FFTSize block starting at cfg.TimeOffset, applies
// the window, transforms it and maps the result to dB. Invalid FFT sizes are
// rejected before any work is done.
func (e *Estimator) Estimate(mod modem.Config, cfg Config, msg modem.Message) (*Spectrum, error) {
	if err := mod.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := cfg.FFTSize
	buf := e.scratch(n)
	fillBlock(buf, mod, cfg, msg)
	if err := Transform(buf); err != nil {
		return nil, err
	}

	half := n / 2
	s := &Spectrum{
		PSD:     PowerDB(buf, cfg.Power, make([]float64, half)),
		Nyquist: mod.SampleRate / 2,
	}
	s.FreqPerBin = s.Nyquist / float64(half)
	s.StartBin, s.EndBin = VisibleBins(cfg.CenterFrequency, cfg.Span, s.Nyquist, s.FreqPerBin, half)

	s.PeakBin = s.StartBin + floats.MaxIdx(s.Visible())
	s.MaxDB = s.PSD[s.PeakBin]
	return s, nil
}

// Estimate is a one-shot estimate with its own scratch buffer.
func Estimate(mod modem.Config, cfg Config, msg modem.Message) (*Spectrum, error) {
	var e Estimator
	return e.Estimate(mod, cfg, msg)
}

func (e *Estimator) scratch(n int) []complex128 {
	if cap(e.buf) < n {
		e.buf = make([]complex128, n)
	}
	e.buf = e.buf[:n]
	return e.buf
}

// fillBlock writes the windowed, periodic synthesis of msg into buf. An
// empty message yields silence.
func fillBlock(buf []complex128, mod modem.Config, cfg Config, msg modem.Message) {
	if msg.Empty() {
		for i := range buf {
			buf[i] = 0
		}
		return
	}
	n := len(buf)
	synth := modem.NewSynthesizer(mod, msg, modem.IndexPeriodic)
	for i := range buf {
		t := cfg.TimeOffset + float64(i)/mod.SampleRate
		y := synth.Sample(t) * cfg.Window.Coefficient(i, n)
		buf[i] = complex(y, 0)
	}
}

// PowerDB converts the first len(x)/2 bins of a transformed block into
// 10*log10(|X|^exponent / N) dB values, written to dst. Exponents above 1
// are evaluated in the log domain so that large powers stay finite.
func PowerDB(x []complex128, exponent float64, dst []float64) []float64 {
	n := len(x)
	for i := 0; i < n/2 && i < len(dst); i++ {
		p := real(x[i])*real(x[i]) + imag(x[i])*imag(x[i])
		if exponent > 1 && p > 0 {
			dst[i] = 10 * logAddFloor(exponent*math.Log10(p)-math.Log10(float64(n)))
			continue
		}
		dst[i] = 10 * math.Log10(p/float64(n)+dbFloor)
	}
	return dst
}

// logAddFloor returns log10(10^lg + dbFloor) without forming 10^lg.
func logAddFloor(lg float64) float64 {
	hi, lo := lg, math.Log10(dbFloor)
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi + math.Log10(1+math.Pow(10, lo-hi))
}

// VisibleBins maps the frequency window center±span/2, clamped to
// [0, nyquist], onto bin indices in [0, half). The range always holds at
// least one bin, and two whenever half allows it.
func VisibleBins(center, span, nyquist, freqPerBin float64, half int) (start, end int) {
	lo := math.Max(center-span/2, 0)
	hi := math.Min(center+span/2, nyquist)

	start = int(lo / freqPerBin)
	end = int(hi / freqPerBin)
	if start < 0 {
		start = 0
	}
	if start > half-1 {
		start = half - 1
	}
	if end >= half {
		end = half - 1
	}
	if end <= start {
		end = start + 1
	}
	if end > half-1 {
		end = half - 1
		start = max(end-1, 0)
	}
	return start, end
}
