package modem

import "math"

// pskScheme shapes the symbol's I/Q pair with the raised-cosine pulse and
// mixes it onto the carrier.
type pskScheme struct{}

func (pskScheme) sample(s *Synthesizer, t float64) float64 {
	i, q := s.shape(t, func(symbol int) (float64, float64) {
		angle := pskAngle(symbol, s.order, true)
		return math.Cos(angle), math.Sin(angle)
	})
	carrier := 2 * math.Pi * s.cfg.Frequency * t
	return s.cfg.Amplitude * (i*math.Cos(carrier) - q*math.Sin(carrier))
}

// pskAngle returns the constellation angle of symbol. QPSK is rotated by
// 45 degrees when rotate is set.
func pskAngle(symbol, order int, rotate bool) float64 {
	angle := 2 * math.Pi * float64(symbol) / float64(order)
	if rotate && order == 4 {
		angle += math.Pi / 4
	}
	return angle
}
