package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jeongseonghan/modviz/internal/export"
	"github.com/jeongseonghan/modviz/internal/logging"
	"github.com/jeongseonghan/modviz/internal/modem"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		mod   modFlags
		name  string
		dir   string
		noise bool
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "export MESSAGE...",
		Short: "Write the modulated message as raw float32 (.32fl) or WAV",
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
			if cmd.Flags().Changed("dir") {
				cfg.Export.Dir = dir
			}
			if cmd.Flags().Changed("noise") {
				cfg.Export.Noise = noise
			}
			if cmd.Flags().Changed("seed") {
				cfg.Export.Seed = seed
			}

			exporter, err := newExporter(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			req := export.Request{Config: modCfg, Message: messageArg(args), Name: name}
			if cfg.Export.Noise {
				req.Noise = modem.NewNoise(cfg.Export.Seed)
			}

			res, err := exporter.Export(cmd.Context(), req)
			if res == nil && err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"File", "Format", "Samples", "Bytes", "CRC32", "Location"})
			table.Append([]string{
				res.Path,
				res.Format,
				fmt.Sprint(res.Samples),
				fmt.Sprint(res.Bytes),
				fmt.Sprintf("%08x", res.CRC32),
				res.Location,
			})
			table.Render()
			return err
		},
	}
	mod.register(cmd)
	cmd.Flags().StringVarP(&name, "out", "o", export.DefaultName, "Output file name (.32fl or .wav)")
	cmd.Flags().StringVar(&dir, "dir", "./exports", "Export directory")
	cmd.Flags().BoolVar(&noise, "noise", false, "Add Gaussian noise at the configured SNR")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Noise seed")
	return cmd
}
