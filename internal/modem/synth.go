package modem

import "math"

// IndexPolicy decides how a sweep treats symbol indices outside the message.
type IndexPolicy int

const (
	// IndexOpen skips negative indices; indices past the end read as the
	// zero symbol. Used by the scrolling time-domain view.
	IndexOpen IndexPolicy = iota
	// IndexBounded skips every index outside [0, total). FSK holds the last
	// symbol. Used by export, where the signal has a definite end.
	IndexBounded
	// IndexPeriodic wraps indices modulo the symbol count so that the
	// message repeats. Used by the spectral block.
	IndexPeriodic
)

// scheme is one modulation family. Implementations read symbols through the
// synthesizer and may keep per-sweep state on it.
type scheme interface {
	sample(s *Synthesizer, t float64) float64
}

func (k Kind) scheme() scheme {
	switch k {
	case FSK:
		return fskScheme{}
	case PSK:
		return pskScheme{}
	default:
		return askScheme{}
	}
}

// Synthesizer evaluates the modulated waveform over one sweep. It owns the
// FSK phase accumulator, so a fresh Synthesizer must be used for each sweep
// and it must not be shared between goroutines.
type Synthesizer struct {
	cfg    Config
	msg    Message
	policy IndexPolicy
	scheme scheme

	total int     // symbols in msg
	ts    float64 // symbol period, s
	order int     // M

	phase float64
}

// NewSynthesizer starts a sweep over msg with a snapshot of cfg.
func NewSynthesizer(cfg Config, msg Message, policy IndexPolicy) *Synthesizer {
	return &Synthesizer{
		cfg:    cfg,
		msg:    msg,
		policy: policy,
		scheme: cfg.Kind.scheme(),
		total:  msg.TotalSymbols(cfg.BitsPerSymbol),
		ts:     cfg.SymbolPeriod(),
		order:  cfg.Order(),
	}
}

// Sample returns the signal value at time t (seconds). For FSK every call
// advances the phase accumulator by one sample period.
func (s *Synthesizer) Sample(t float64) float64 {
	return s.scheme.sample(s, t)
}

// Sweep fills dst with samples at t0, t0+dt, ...
func (s *Synthesizer) Sweep(dst []float64, t0, dt float64) []float64 {
	for i := range dst {
		dst[i] = s.Sample(t0 + float64(i)*dt)
	}
	return dst
}

// Phase returns the accumulated FSK phase in radians.
func (s *Synthesizer) Phase() float64 {
	return s.phase
}

// TotalSymbols returns the number of symbols in the sweep's message.
func (s *Synthesizer) TotalSymbols() int {
	return s.total
}

// symbolIndex returns the index of the symbol that contains t.
func (s *Synthesizer) symbolIndex(t float64) int {
	return int(math.Floor(t / s.ts))
}

// neighbor resolves a shaping-window index into a symbol value. ok is false
// when the policy skips the index.
func (s *Synthesizer) neighbor(index int) (value int, ok bool) {
	if index < 0 {
		return 0, false
	}
	switch s.policy {
	case IndexBounded:
		if index >= s.total {
			return 0, false
		}
	case IndexPeriodic:
		if s.total == 0 {
			return 0, false
		}
		index %= s.total
	}
	return s.msg.Symbol(index, s.cfg.BitsPerSymbol), true
}

// current resolves the symbol under t for schemes without pulse shaping.
func (s *Synthesizer) current(t float64) int {
	index := s.symbolIndex(t)
	switch s.policy {
	case IndexBounded:
		if index >= s.total {
			index = s.total - 1
		}
	case IndexPeriodic:
		if s.total > 0 && index >= 0 {
			index %= s.total
		}
	}
	return s.msg.Symbol(index, s.cfg.BitsPerSymbol)
}

// shape sums the raised-cosine weighted impulses of the symbols within
// PulseSpan of t. impulse maps a symbol value to its (I, Q) weight.
func (s *Synthesizer) shape(t float64, impulse func(symbol int) (float64, float64)) (float64, float64) {
	var sumI, sumQ float64
	center := s.symbolIndex(t)
	for j := -PulseSpan; j <= PulseSpan; j++ {
		index := center + j
		value, ok := s.neighbor(index)
		if !ok {
			continue
		}
		i, q := impulse(value)
		k := RaisedCosine(t-(float64(index)+0.5)*s.ts, s.ts, s.cfg.RollOff)
		sumI += i * k
		sumQ += q * k
	}
	return sumI, sumQ
}
