package modem

import "math"

// fskScheme shifts the carrier frequency by half the carrier per symbol
// step, keeping phase continuous across symbol boundaries.
type fskScheme struct{}

func (fskScheme) sample(s *Synthesizer, t float64) float64 {
	s.phase += fskIncrement(s.cfg, s.current(t))
	return s.cfg.Amplitude * math.Sin(s.phase)
}

// fskFrequency returns the tone used for symbol.
func fskFrequency(cfg Config, symbol int) float64 {
	return cfg.Frequency + float64(symbol)*(cfg.Frequency/2)
}

// fskIncrement returns the per-sample phase advance for symbol.
func fskIncrement(cfg Config, symbol int) float64 {
	return 2 * math.Pi * fskFrequency(cfg, symbol) / cfg.SampleRate
}
