package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jeongseonghan/modviz/internal/logging"
	"github.com/jeongseonghan/modviz/internal/spectrum"
)

func newSpectrumCmd(root *rootOptions) *cobra.Command {
	var (
		mod    modFlags
		size   int
		window string
		power  float64
		center float64
		span   float64
		offset float64
		top    int
	)
	cmd := &cobra.Command{
		Use:   "spectrum MESSAGE...",
		Short: "Print the strongest bins of the message's power spectrum",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			modCfg, err := mod.apply(cmd, cfg)
			if err != nil {
				return err
			}
			specCfg := cfg.Spectrum
			flags := cmd.Flags()
			if flags.Changed("fft-size") {
				specCfg.FFTSize = size
			}
			if flags.Changed("window") {
				w, err := spectrum.ParseWindow(window)
				if err != nil {
					return err
				}
				specCfg.Window = w
			}
			if flags.Changed("power") {
				specCfg.Power = power
			}
			if flags.Changed("center") {
				specCfg.CenterFrequency = center
			}
			if flags.Changed("span") {
				specCfg.Span = span
			}
			specCfg.TimeOffset = offset

			spec, err := spectrum.Estimate(modCfg, specCfg, messageArg(args))
			if err != nil {
				return err
			}

			bins := make([]int, 0, spec.EndBin-spec.StartBin+1)
			for i := spec.StartBin; i <= spec.EndBin; i++ {
				bins = append(bins, i)
			}
			sort.SliceStable(bins, func(a, b int) bool { return spec.PSD[bins[a]] > spec.PSD[bins[b]] })
			if top > 0 && len(bins) > top {
				bins = bins[:top]
			}

			fmt.Printf("%s  FFT %d (%s), %.3f Hz/bin, bins %d-%d\n",
				modCfg.Label(), specCfg.FFTSize, specCfg.Window, spec.FreqPerBin, spec.StartBin, spec.EndBin)
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Bin", "Frequency (Hz)", "Power (dB)", "Level"})
			for _, b := range bins {
				table.Append([]string{
					fmt.Sprint(b),
					fmt.Sprintf("%.2f", spec.Frequency(b)),
					fmt.Sprintf("%.2f", spec.PSD[b]),
					fmt.Sprintf("%.2f", spec.Level(b)),
				})
			}
			table.Render()
			return nil
		},
	}
	mod.register(cmd)
	d := spectrum.DefaultConfig()
	cmd.Flags().IntVarP(&size, "fft-size", "n", d.FFTSize, "FFT size (power of two)")
	cmd.Flags().StringVarP(&window, "window", "w", d.Window.String(), "Window: rectangular, hann or hamming")
	cmd.Flags().Float64Var(&power, "power", d.Power, "PSD contrast exponent")
	cmd.Flags().Float64Var(&center, "center", d.CenterFrequency, "Center of the visible band in Hz")
	cmd.Flags().Float64Var(&span, "span", d.Span, "Width of the visible band in Hz")
	cmd.Flags().Float64Var(&offset, "offset", 0, "Block start time in seconds")
	cmd.Flags().IntVar(&top, "top", 10, "Number of bins to list (0 for all)")
	return cmd
}
