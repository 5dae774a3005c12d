package modem

import "math"

// PulseSpan is the number of symbol periods on either side of a sample that
// contribute to pulse shaping. The raised-cosine kernel is truncated to
// zero beyond this distance, so the synthesizer sums 2*PulseSpan+1 symbols.
const PulseSpan = 4

const pulseEpsilon = 1e-9

// Sinc returns sin(pi*x)/(pi*x), with the removable singularity at 0.
func Sinc(x float64) float64 {
	if math.Abs(x) < pulseEpsilon {
		return 1.0
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// RaisedCosine returns the raised-cosine kernel at offset t from the symbol
// center for symbol period ts and roll-off beta.
func RaisedCosine(t, ts, beta float64) float64 {
	if math.Abs(t) > PulseSpan*ts {
		return 0
	}
	if math.Abs(t) < pulseEpsilon {
		return 1.0
	}

	x := 2.0 * beta * t / ts
	if beta > pulseEpsilon && math.Abs(math.Abs(x)-1.0) < pulseEpsilon {
		return math.Pi / 4.0 * Sinc(1.0/(2.0*beta))
	}

	u := math.Pi * t / ts
	return math.Sin(u) / u * math.Cos(beta*u) / (1.0 - x*x)
}
