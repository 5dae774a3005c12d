package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeongseonghan/modviz/internal/config"
	"github.com/jeongseonghan/modviz/internal/logging"
	"github.com/jeongseonghan/modviz/internal/modem"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "modviz",
		Short:         "Digital modulation visualizer: ASK, FSK and PSK waveforms, spectra and constellations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newExportCmd(opts),
		newSpectrumCmd(opts),
		newConstellationCmd(opts),
		newPlayCmd(opts),
		newDevicesCmd(opts),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (o *rootOptions) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// modFlags overrides the configured modulation from the command line.
type modFlags struct {
	preset        string
	kind          string
	bitsPerSymbol int
	amplitude     float64
	frequency     float64
	samplesPerBit int
	rollOff       float64
	sampleRate    float64
	snr           float64
}

func (m *modFlags) register(cmd *cobra.Command) {
	d := modem.DefaultConfig()
	f := cmd.Flags()
	f.StringVarP(&m.preset, "preset", "p", "", "Named modulation preset (e.g. bpsk, qpsk, 4fsk)")
	f.StringVarP(&m.kind, "kind", "k", "", "Modulation: ask, fsk or psk")
	f.IntVarP(&m.bitsPerSymbol, "bits", "b", d.BitsPerSymbol, "Bits per symbol")
	f.Float64VarP(&m.amplitude, "amplitude", "A", d.Amplitude, "Carrier amplitude")
	f.Float64VarP(&m.frequency, "frequency", "f", d.Frequency, "Carrier frequency in Hz")
	f.IntVar(&m.samplesPerBit, "samples-per-bit", d.SamplesPerBit, "Samples per symbol period")
	f.Float64Var(&m.rollOff, "rolloff", d.RollOff, "Raised-cosine roll-off factor")
	f.Float64VarP(&m.sampleRate, "sample-rate", "s", d.SampleRate, "Sample rate in Hz")
	f.Float64Var(&m.snr, "snr", d.SNRdB, "SNR in dB (100 or more disables noise)")
}

// apply starts from the configured modulation (or preset) and overrides
// only the flags given explicitly.
func (m *modFlags) apply(cmd *cobra.Command, cfg *config.Config) (modem.Config, error) {
	mod := cfg.Modulation
	if m.preset != "" {
		p, err := cfg.Preset(m.preset)
		if err != nil {
			return mod, err
		}
		mod = p
	}

	changed := cmd.Flags().Changed
	if m.kind != "" {
		kind, err := modem.ParseKind(m.kind)
		if err != nil {
			return mod, err
		}
		mod.Kind = kind
	}
	if changed("bits") {
		mod.BitsPerSymbol = m.bitsPerSymbol
	}
	if changed("amplitude") {
		mod.Amplitude = m.amplitude
	}
	if changed("frequency") {
		mod.Frequency = m.frequency
	}
	if changed("samples-per-bit") {
		mod.SamplesPerBit = m.samplesPerBit
	}
	if changed("rolloff") {
		mod.RollOff = m.rollOff
	}
	if changed("sample-rate") {
		mod.SampleRate = m.sampleRate
	}
	if changed("snr") {
		mod.SNRdB = m.snr
	}
	return mod, mod.Validate()
}

func messageArg(args []string) modem.Message {
	return modem.NewMessage([]byte(strings.Join(args, " ")))
}
