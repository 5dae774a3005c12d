package export

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeongseonghan/modviz/internal/modem"
)

func TestRender_EmptyMessage(t *testing.T) {
	_, err := Render(modem.DefaultConfig(), modem.Message{}, nil)
	assert.True(t, errors.Is(err, ErrEmptyMessage))
	assert.EqualError(t, err, "no active message to export")
}

func TestRender_InvalidConfig(t *testing.T) {
	cfg := modem.DefaultConfig()
	cfg.SamplesPerBit = 2
	_, err := Render(cfg, modem.NewMessage([]byte("x")), nil)
	assert.True(t, errors.Is(err, modem.ErrInvalidConfig))
}

func TestRender_SampleCount(t *testing.T) {
	tests := []struct {
		msg  string
		bps  int
		want int
	}{
		{"Hi", 1, 16 * 50},
		{"Hi", 2, 8 * 50},
		{"H", 3, 2 * 50},
		{"H", 16, 1 * 50},
	}
	for _, tt := range tests {
		cfg := modem.DefaultConfig()
		cfg.BitsPerSymbol = tt.bps
		out, err := Render(cfg, modem.NewMessage([]byte(tt.msg)), nil)
		require.NoError(t, err)
		assert.Len(t, out, tt.want, "msg %q bps %d", tt.msg, tt.bps)
	}
}

func TestRender_MatchesBoundedSynthesis(t *testing.T) {
	for _, kind := range []modem.Kind{modem.ASK, modem.FSK, modem.PSK} {
		cfg := modem.DefaultConfig()
		cfg.Kind = kind
		cfg.BitsPerSymbol = 2
		msg := modem.NewMessage([]byte("ok"))

		out, err := Render(cfg, msg, nil)
		require.NoError(t, err)

		synth := modem.NewSynthesizer(cfg, msg, modem.IndexBounded)
		for i, got := range out {
			want := float32(synth.Sample(float64(i) / cfg.SampleRate))
			if got != want {
				t.Fatalf("%s sample %d = %v, want %v", kind, i, got, want)
			}
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	cfg := modem.DefaultConfig()
	cfg.Kind = modem.PSK
	msg := modem.NewMessage([]byte("repeat"))

	a, err := Render(cfg, msg, nil)
	require.NoError(t, err)
	b, err := Render(cfg, msg, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRender_SeededNoise(t *testing.T) {
	cfg := modem.DefaultConfig()
	cfg.SNRdB = 10
	msg := modem.NewMessage([]byte("n"))

	clean, err := Render(cfg, msg, nil)
	require.NoError(t, err)
	a, err := Render(cfg, msg, modem.NewNoise(7))
	require.NoError(t, err)
	b, err := Render(cfg, msg, modem.NewNoise(7))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, clean, a)

	cfg.SNRdB = modem.NoiseOffSNR
	off, err := Render(cfg, msg, modem.NewNoise(7))
	require.NoError(t, err)
	assert.Equal(t, clean, off)
}
