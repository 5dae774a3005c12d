package export

import (
	"errors"

	"github.com/jeongseonghan/modviz/internal/modem"
)

var (
	// ErrEmptyMessage is returned when nothing has been committed.
	ErrEmptyMessage = errors.New("no active message to export")
	// ErrNoSamples is returned when the message is too short to yield a
	// single sample.
	ErrNoSamples = errors.New("no samples to export")
)

// SampleCount returns the number of samples covering every symbol of msg.
func SampleCount(cfg modem.Config, msg modem.Message) int {
	return msg.TotalSymbols(cfg.BitsPerSymbol) * cfg.SamplesPerBit
}

// Render synthesizes the full message at cfg.SampleRate. Symbols outside
// the message contribute nothing, so the waveform has a definite start and
// end. noise may be nil for a clean, reproducible signal.
func Render(cfg modem.Config, msg modem.Message, noise *modem.Noise) ([]float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if msg.Empty() {
		return nil, ErrEmptyMessage
	}
	n := SampleCount(cfg, msg)
	if n <= 0 {
		return nil, ErrNoSamples
	}

	synth := modem.NewSynthesizer(cfg, msg, modem.IndexBounded)
	out := make([]float32, n)
	for i := range out {
		t := float64(i) / cfg.SampleRate
		y := synth.Sample(t) + noise.Gaussian(cfg.Amplitude, cfg.SNRdB)
		out[i] = float32(y)
	}
	return out, nil
}
