package scope

import (
	"errors"
	"fmt"

	"github.com/jeongseonghan/modviz/internal/modem"
	"github.com/jeongseonghan/modviz/internal/spectrum"
)

// ErrInvalidSettings wraps every Settings validation failure.
var ErrInvalidSettings = errors.New("invalid scope settings")

// Screen is the drawing area in pixels.
type Screen struct {
	Width  int `yaml:"width" json:"width" msgpack:"width"`
	Height int `yaml:"height" json:"height" msgpack:"height"`
}

// Settings is everything a client can read back and replace in one go.
type Settings struct {
	Modulation      modem.Config    `json:"modulation" msgpack:"modulation"`
	Spectrum        spectrum.Config `json:"spectrum" msgpack:"spectrum"`
	View            View            `json:"view" msgpack:"view"`
	PixelsPerSecond float64         `json:"pixelsPerSecond" msgpack:"pixelsPerSecond"`
	Screen          Screen          `json:"screen" msgpack:"screen"`
}

// DefaultSettings returns the start-up view: a 1240x720 time-domain plot
// sweeping 500 px per second.
func DefaultSettings() Settings {
	return Settings{
		Modulation:      modem.DefaultConfig(),
		Spectrum:        spectrum.DefaultConfig(),
		View:            TimeDomain,
		PixelsPerSecond: 500,
		Screen:          Screen{Width: 1240, Height: 720},
	}
}

// Validate checks the modulation, view and screen. The FFT size is left to
// the estimator so that a bad size only blanks the spectrum view.
func (s Settings) Validate() error {
	if err := s.Modulation.Validate(); err != nil {
		return err
	}
	switch {
	case s.View < TimeDomain || s.View > PowerSpectrum:
		return fmt.Errorf("%w: unknown view %d", ErrInvalidSettings, int(s.View))
	case s.PixelsPerSecond <= 0:
		return fmt.Errorf("%w: pixels per second %g must be positive", ErrInvalidSettings, s.PixelsPerSecond)
	case s.Screen.Width <= 2*spectrum.DefaultMargin:
		return fmt.Errorf("%w: screen width %d too small", ErrInvalidSettings, s.Screen.Width)
	case s.Screen.Height <= 0:
		return fmt.Errorf("%w: screen height %d must be positive", ErrInvalidSettings, s.Screen.Height)
	}
	return nil
}
