package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeongseonghan/modviz/internal/logging"
)

func newDevicesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio output devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			devices, err := listDevices()
			if err != nil {
				logger.Warn("device query failed", zap.Error(err))
				return fmt.Errorf("list devices: %w", err)
			}
			logger.Debug("devices listed", zap.Int("count", len(devices)))
			if len(devices) == 0 {
				fmt.Println("(no output devices found)")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"#", "Name", "Host API", "Channels", "Rate", "Default"})
			hasDefault := false
			for _, d := range devices {
				def := ""
				if d.IsDefault {
					def = "*"
					hasDefault = true
				}
				table.Append([]string{
					fmt.Sprint(d.Index),
					d.Name,
					d.HostAPI,
					fmt.Sprint(d.MaxOutputChannels),
					fmt.Sprintf("%.0f", d.DefaultSampleRate),
					def,
				})
			}
			table.Render()

			if !hasDefault {
				fmt.Println("\n  WARNING: No default output device. Playback unavailable.")
			}
			return nil
		},
	}
}
