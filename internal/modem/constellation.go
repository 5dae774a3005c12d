package modem

import (
	"math"
)

// Constellation holds the ideal I/Q point of every symbol value.
type Constellation struct {
	Kind   Kind
	points []complex128
}

// NewConstellation builds the constellation for cfg. ASK levels lie on the
// I axis in [0, 1]; FSK and PSK symbols lie on the unit circle, with QPSK
// rotated by 45 degrees.
func NewConstellation(cfg Config) *Constellation {
	order := cfg.Order()
	c := &Constellation{
		Kind:   cfg.Kind,
		points: make([]complex128, order),
	}
	for v := range c.points {
		switch cfg.Kind {
		case ASK:
			c.points[v] = complex(askLevel(v, order), 0)
		default:
			angle := pskAngle(v, order, cfg.Kind == PSK)
			c.points[v] = complex(math.Cos(angle), math.Sin(angle))
		}
	}
	return c
}

// Order returns the number of points.
func (c *Constellation) Order() int {
	return len(c.points)
}

// Point returns the ideal point of symbol. Out-of-range symbols map to
// symbol 0.
func (c *Constellation) Point(symbol int) complex128 {
	if symbol < 0 || symbol >= len(c.points) {
		symbol = 0
	}
	return c.points[symbol]
}

// Points returns a copy of all ideal points, indexed by symbol value.
func (c *Constellation) Points() []complex128 {
	out := make([]complex128, len(c.points))
	copy(out, c.points)
	return out
}

// Demap finds the closest constellation point and returns its symbol.
func (c *Constellation) Demap(p complex128) int {
	minDist := math.MaxFloat64
	minIdx := 0

	for i, q := range c.points {
		d := real(p-q)*real(p-q) + imag(p-q)*imag(p-q)
		if d < minDist {
			minDist = d
			minIdx = i
		}
	}
	return minIdx
}

// IQPoint is one symbol of the constellation trace.
type IQPoint struct {
	Index    int     `json:"index" msgpack:"index"`
	Symbol   int     `json:"symbol" msgpack:"symbol"`
	I        float64 `json:"i" msgpack:"i"`
	Q        float64 `json:"q" msgpack:"q"`
	IdealI   float64 `json:"idealI" msgpack:"idealI"`
	IdealQ   float64 `json:"idealQ" msgpack:"idealQ"`
	Detected int     `json:"detected" msgpack:"detected"`
}

// Trace enumerates every symbol of msg in order, returning its ideal point
// plus I/Q noise drawn from noise at cfg.SNRdB.
func Trace(cfg Config, msg Message, noise *Noise) []IQPoint {
	c := NewConstellation(cfg)
	total := msg.Len() * 8 / cfg.BitsPerSymbol
	trace := make([]IQPoint, 0, total)

	for i := 0; i < total; i++ {
		symbol := msg.Symbol(i, cfg.BitsPerSymbol)
		ideal := c.Point(symbol)
		ni, nq := noise.IQ(cfg.SNRdB)
		received := complex(real(ideal)+ni, imag(ideal)+nq)
		trace = append(trace, IQPoint{
			Index:    i,
			Symbol:   symbol,
			I:        real(received),
			Q:        imag(received),
			IdealI:   real(ideal),
			IdealQ:   imag(ideal),
			Detected: c.Demap(received),
		})
	}
	return trace
}

// SymbolErrorRate returns the fraction of trace points whose nearest
// constellation point is not the transmitted symbol.
func SymbolErrorRate(trace []IQPoint) float64 {
	if len(trace) == 0 {
		return 0
	}
	errs := 0
	for _, p := range trace {
		if p.Detected != p.Symbol {
			errs++
		}
	}
	return float64(errs) / float64(len(trace))
}
