package scope

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jeongseonghan/modviz/internal/modem"
)

// ErrUnknownCommand is returned by Apply for names not in the command set.
var ErrUnknownCommand = errors.New("unknown command")

// Command is a named one-step adjustment.
type Command string

const (
	AmplitudeUp   Command = "amplitude-up"
	AmplitudeDown Command = "amplitude-down"
	FrequencyUp   Command = "frequency-up"
	FrequencyDown Command = "frequency-down"
	RollOffUp     Command = "rolloff-up"
	RollOffDown   Command = "rolloff-down"
	SNRUp         Command = "snr-up"
	SNRDown       Command = "snr-down"
	BitsUp        Command = "bits-up"
	BitsDown      Command = "bits-down"
	SamplesUp     Command = "samples-up"
	SamplesDown   Command = "samples-down"
	ScrollBack    Command = "scroll-back"
	ScrollForward Command = "scroll-forward"
	ScrollReset   Command = "scroll-reset"
	TogglePause   Command = "pause"
	ResetWaveform Command = "reset"
	SelectASK     Command = "ask"
	SelectFSK     Command = "fsk"
	SelectPSK     Command = "psk"
	ViewTime      Command = "view-time"
	ViewIQ        Command = "view-constellation"
	ViewSpectrum  Command = "view-spectrum"
)

// Step sizes.
const (
	amplitudeStep = 5.0
	frequencyStep = 1.0
	minFrequency  = 1.0
	rollOffStep   = 0.05
	snrStep       = 1.0
	samplesStep   = 2
	scrollStep    = 0.1
)

var commands = map[Command]func(s *State){
	AmplitudeUp:   func(s *State) { s.cur.Modulation.Amplitude += amplitudeStep },
	AmplitudeDown: func(s *State) { s.cur.Modulation.Amplitude = math.Max(s.cur.Modulation.Amplitude-amplitudeStep, 0) },
	FrequencyUp:   func(s *State) { s.cur.Modulation.Frequency += frequencyStep },
	FrequencyDown: func(s *State) {
		s.cur.Modulation.Frequency = math.Max(s.cur.Modulation.Frequency-frequencyStep, minFrequency)
	},
	RollOffUp:   func(s *State) { s.cur.Modulation.RollOff = stepRollOff(s.cur.Modulation.RollOff, rollOffStep) },
	RollOffDown: func(s *State) { s.cur.Modulation.RollOff = stepRollOff(s.cur.Modulation.RollOff, -rollOffStep) },
	SNRUp:       func(s *State) { s.cur.Modulation.SNRdB += snrStep },
	SNRDown:     func(s *State) { s.cur.Modulation.SNRdB -= snrStep },
	BitsUp: func(s *State) {
		s.cur.Modulation.BitsPerSymbol = min(s.cur.Modulation.BitsPerSymbol+1, modem.MaxBitsPerSymbol)
	},
	BitsDown: func(s *State) { s.cur.Modulation.BitsPerSymbol = max(s.cur.Modulation.BitsPerSymbol-1, 1) },
	SamplesUp: func(s *State) { s.cur.Modulation.SamplesPerBit += samplesStep },
	SamplesDown: func(s *State) {
		s.cur.Modulation.SamplesPerBit = max(s.cur.Modulation.SamplesPerBit-samplesStep, modem.MinSamplesPerBit)
	},
	ScrollBack:    func(s *State) { s.offset = math.Max(s.offset-scrollStep, 0) },
	ScrollForward: func(s *State) { s.offset += scrollStep },
	ScrollReset:   func(s *State) { s.offset = 0 },
	TogglePause:   func(s *State) { s.paused = !s.paused },
	ResetWaveform: (*State).resetWaveform,
	SelectASK:     func(s *State) { s.cur.Modulation.Kind = modem.ASK },
	SelectFSK:     func(s *State) { s.cur.Modulation.Kind = modem.FSK },
	SelectPSK:     func(s *State) { s.cur.Modulation.Kind = modem.PSK },
	ViewTime:      func(s *State) { s.cur.View = TimeDomain },
	ViewIQ:        func(s *State) { s.cur.View = Constellation },
	ViewSpectrum:  func(s *State) { s.cur.View = PowerSpectrum },
}

// Commands lists every command name in sorted order.
func Commands() []Command {
	out := make([]Command, 0, len(commands))
	for c := range commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// stepRollOff moves the roll-off by delta, clamped to [0, 1] and kept on
// the 0.01 grid so repeated steps do not drift.
func stepRollOff(v, delta float64) float64 {
	v = math.Round((v+delta)*100) / 100
	return math.Min(math.Max(v, 0), 1)
}

// resetWaveform restores the waveform parameters and scroll position. The
// modulation family, sample rate and view are kept.
func (s *State) resetWaveform() {
	d := s.defaults.Modulation
	m := &s.cur.Modulation
	m.Frequency = d.Frequency
	m.Amplitude = d.Amplitude
	m.SNRdB = d.SNRdB
	m.SamplesPerBit = d.SamplesPerBit
	m.RollOff = d.RollOff
	m.BitsPerSymbol = d.BitsPerSymbol
	s.offset = 0
}

func unknownCommand(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}
