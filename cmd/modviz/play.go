package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeongseonghan/modviz/internal/audio"
	"github.com/jeongseonghan/modviz/internal/export"
	"github.com/jeongseonghan/modviz/internal/logging"
)

func newPlayCmd(root *rootOptions) *cobra.Command {
	var mod modFlags
	cmd := &cobra.Command{
		Use:   "play MESSAGE...",
		Short: "Play the modulated message on the default audio device",
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
			samples, err := export.Render(modCfg, messageArg(args), nil)
			if err != nil {
				return err
			}

			logger.Info("playing",
				zap.String("modulation", modCfg.Label()),
				zap.Int("samples", len(samples)),
				zap.Float64("seconds", float64(len(samples))/modCfg.SampleRate),
			)
			if err := audio.PlayDefault(cmd.Context(), samples, modCfg.SampleRate, modCfg.Amplitude); err != nil {
				return fmt.Errorf("play: %w", err)
			}
			return nil
		},
	}
	mod.register(cmd)
	return cmd
}
