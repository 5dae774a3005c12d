package modem

import (
	"errors"
	"fmt"
	"strings"
)

// Kind selects the modulation family.
type Kind int

const (
	ASK Kind = iota
	FSK
	PSK
)

// String returns the modulation name.
func (k Kind) String() string {
	switch k {
	case ASK:
		return "ASK"
	case FSK:
		return "FSK"
	case PSK:
		return "PSK"
	default:
		return "Unknown"
	}
}

// ParseKind parses a modulation name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASK":
		return ASK, nil
	case "FSK":
		return FSK, nil
	case "PSK":
		return PSK, nil
	}
	return 0, fmt.Errorf("unknown modulation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < ASK || k > PSK {
		return nil, fmt.Errorf("unknown modulation %d", int(k))
	}
	return []byte(strings.ToLower(k.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Limits enforced by Config.Validate.
const (
	MinSamplesPerBit = 4
	MaxBitsPerSymbol = 16
)

var ErrInvalidConfig = errors.New("invalid modulation config")

// Config holds the modulation parameters. It is passed by value into every
// synthesis call and must not change while a sweep is in flight.
type Config struct {
	Kind          Kind    `yaml:"kind" json:"kind" msgpack:"kind"`
	BitsPerSymbol int     `yaml:"bits_per_symbol" json:"bitsPerSymbol" msgpack:"bitsPerSymbol"`
	Amplitude     float64 `yaml:"amplitude" json:"amplitude" msgpack:"amplitude"`
	Frequency     float64 `yaml:"frequency" json:"frequency" msgpack:"frequency"` // carrier, Hz
	SamplesPerBit int     `yaml:"samples_per_bit" json:"samplesPerBit" msgpack:"samplesPerBit"`
	RollOff       float64 `yaml:"roll_off" json:"rollOff" msgpack:"rollOff"`
	SampleRate    float64 `yaml:"sample_rate" json:"sampleRate" msgpack:"sampleRate"`
	SNRdB         float64 `yaml:"snr_db" json:"snrDb" msgpack:"snrDb"`
}

// DefaultConfig returns the start-up parameters.
func DefaultConfig() Config {
	return Config{
		Kind:          ASK,
		BitsPerSymbol: 1,
		Amplitude:     100,
		Frequency:     300,
		SamplesPerBit: 50,
		RollOff:       0.35,
		SampleRate:    4000,
		SNRdB:         NoiseOffSNR,
	}
}

// Validate reports the first parameter outside its allowed range.
func (c Config) Validate() error {
	switch {
	case c.Kind < ASK || c.Kind > PSK:
		return fmt.Errorf("%w: unknown modulation %d", ErrInvalidConfig, int(c.Kind))
	case c.BitsPerSymbol < 1 || c.BitsPerSymbol > MaxBitsPerSymbol:
		return fmt.Errorf("%w: bits per symbol %d not in [1,%d]", ErrInvalidConfig, c.BitsPerSymbol, MaxBitsPerSymbol)
	case c.Amplitude < 0:
		return fmt.Errorf("%w: negative amplitude %g", ErrInvalidConfig, c.Amplitude)
	case c.Frequency <= 0:
		return fmt.Errorf("%w: carrier frequency %g must be positive", ErrInvalidConfig, c.Frequency)
	case c.SamplesPerBit < MinSamplesPerBit:
		return fmt.Errorf("%w: samples per bit %d below %d", ErrInvalidConfig, c.SamplesPerBit, MinSamplesPerBit)
	case c.RollOff < 0 || c.RollOff > 1:
		return fmt.Errorf("%w: roll-off %g not in [0,1]", ErrInvalidConfig, c.RollOff)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %g must be positive", ErrInvalidConfig, c.SampleRate)
	}
	return nil
}

// Order returns the alphabet size M = 2^BitsPerSymbol.
func (c Config) Order() int {
	return 1 << c.BitsPerSymbol
}

// SymbolPeriod returns the symbol duration in seconds.
func (c Config) SymbolPeriod() float64 {
	return float64(c.SamplesPerBit) / c.SampleRate
}

// Label returns the short scheme name shown in the status line.
func (c Config) Label() string {
	m := c.Order()
	if c.Kind == PSK {
		switch m {
		case 2:
			return "BPSK"
		case 4:
			return "QPSK"
		}
	}
	return fmt.Sprintf("%d-%s", m, c.Kind)
}

// Status returns the two status lines describing the configuration.
func (c Config) Status() [2]string {
	return [2]string{
		fmt.Sprintf("A:%.0f F:%.0f %s", c.Amplitude, c.Frequency, c.Label()),
		fmt.Sprintf("px/bit:%d SNR:%.0fdB Roll-off:%.2f, Fs:%.f Hz", c.SamplesPerBit, c.SNRdB, c.RollOff, c.SampleRate),
	}
}
