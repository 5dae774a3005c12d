package modem

import "math"

// askScheme keys the carrier amplitude with the raised-cosine shaped
// symbol level.
type askScheme struct{}

func (askScheme) sample(s *Synthesizer, t float64) float64 {
	envelope, _ := s.shape(t, func(symbol int) (float64, float64) {
		return askLevel(symbol, s.order), 0
	})
	return s.cfg.Amplitude * envelope * math.Sin(2*math.Pi*s.cfg.Frequency*t)
}

// askLevel maps a symbol to its amplitude level in [0, 1].
func askLevel(symbol, order int) float64 {
	if order == 1 {
		return float64(symbol)
	}
	return float64(symbol) / float64(order-1)
}
