package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeongseonghan/modviz/internal/audio"
	"github.com/jeongseonghan/modviz/internal/config"
	"github.com/jeongseonghan/modviz/internal/export"
	"github.com/jeongseonghan/modviz/internal/logging"
	"github.com/jeongseonghan/modviz/internal/scope"
	"github.com/jeongseonghan/modviz/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr      string
		staticDir string
		frameRate int
		noAudio   bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web interface and stream frames over websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("static") {
				cfg.Server.StaticDir = staticDir
			}
			if cmd.Flags().Changed("frame-rate") {
				cfg.Server.FrameRate = frameRate
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			state, err := scope.New(cfg.Settings(), cfg.Server.NoiseSeed, logger.Named("scope"))
			if err != nil {
				return err
			}
			exporter, err := newExporter(ctx, cfg, logger)
			if err != nil {
				return err
			}

			opts := server.Options{
				Exporter:    exporter,
				FrameRate:   cfg.Server.FrameRate,
				ExportNoise: cfg.Export.Noise,
				NoiseSeed:   cfg.Export.Seed,
				Logger:      logger.Named("server"),
			}
			if !noAudio && !audioAvailable(logger) {
				noAudio = true
			}
			if !noAudio {
				opts.Player = server.PlayerFunc(audio.PlayDefault)
				opts.Devices = listDevices
			}

			handlers := server.NewHandlers(state, opts)
			srv := server.NewServer(cfg.Server.Addr, handlers, cfg.Server.StaticDir, logger)
			return srv.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Server address")
	cmd.Flags().StringVar(&staticDir, "static", "./web/static", "Static file directory")
	cmd.Flags().IntVar(&frameRate, "frame-rate", 60, "Frames pushed per second")
	cmd.Flags().BoolVar(&noAudio, "no-audio", false, "Disable playback and device listing")
	return cmd
}

// newExporter builds the exporter, with an S3 uploader when a bucket is
// configured.
func newExporter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*export.Exporter, error) {
	var uploader export.Uploader
	if cfg.Export.S3.Enabled() {
		up, err := export.NewS3Uploader(ctx, cfg.Export.S3)
		if err != nil {
			return nil, err
		}
		uploader = up
	}
	return export.NewExporter(cfg.Export.Dir, uploader, logger.Named("export")), nil
}

// listDevices brackets a device query with PortAudio setup and teardown.
func listDevices() ([]audio.DeviceInfo, error) {
	if err := audio.Init(); err != nil {
		return nil, err
	}
	defer audio.Terminate()
	return audio.ListDevices()
}

// audioAvailable probes PortAudio once at startup.
func audioAvailable(logger *zap.Logger) bool {
	if err := audio.Init(); err != nil {
		logger.Warn("portaudio unavailable, playback disabled", zap.Error(err))
		return false
	}
	defer audio.Terminate()
	if !audio.HasOutputDevice() {
		logger.Warn("no default output device, playback disabled")
		return false
	}
	return true
}
