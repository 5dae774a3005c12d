package modem

import (
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero amplitude", func(c *Config) { c.Amplitude = 0 }, true},
		{"negative amplitude", func(c *Config) { c.Amplitude = -1 }, false},
		{"zero frequency", func(c *Config) { c.Frequency = 0 }, false},
		{"zero bits", func(c *Config) { c.BitsPerSymbol = 0 }, false},
		{"too many bits", func(c *Config) { c.BitsPerSymbol = MaxBitsPerSymbol + 1 }, false},
		{"short symbols", func(c *Config) { c.SamplesPerBit = 3 }, false},
		{"roll-off above one", func(c *Config) { c.RollOff = 1.01 }, false},
		{"roll-off zero", func(c *Config) { c.RollOff = 0 }, true},
		{"no sample rate", func(c *Config) { c.SampleRate = 0 }, false},
		{"bad kind", func(c *Config) { c.Kind = Kind(9) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_Label(t *testing.T) {
	tests := []struct {
		kind Kind
		bps  int
		want string
	}{
		{PSK, 1, "BPSK"},
		{PSK, 2, "QPSK"},
		{PSK, 3, "8-PSK"},
		{ASK, 1, "2-ASK"},
		{FSK, 2, "4-FSK"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Kind, cfg.BitsPerSymbol = tt.kind, tt.bps
		if got := cfg.Label(); got != tt.want {
			t.Errorf("Label(%s, %d) = %q, want %q", tt.kind, tt.bps, got, tt.want)
		}
	}
}

func TestConfig_Status(t *testing.T) {
	st := DefaultConfig().Status()
	if st[0] != "A:100 F:300 2-ASK" {
		t.Errorf("line 1 = %q", st[0])
	}
	if st[1] != "px/bit:50 SNR:100dB Roll-off:0.35, Fs:4000 Hz" {
		t.Errorf("line 2 = %q", st[1])
	}
}

func TestKind_Text(t *testing.T) {
	for _, k := range []Kind{ASK, FSK, PSK} {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Kind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Errorf("%s: round trip gave %v, %v", k, back, err)
		}
	}
	var k Kind
	if err := k.UnmarshalText([]byte("qam")); err == nil {
		t.Error("expected error for unknown modulation")
	}
	if _, err := Kind(7).MarshalText(); err == nil {
		t.Error("expected error for out-of-range kind")
	}
}
