package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jeongseonghan/modviz/internal/logging"
	"github.com/jeongseonghan/modviz/internal/modem"
)

func newConstellationCmd(root *rootOptions) *cobra.Command {
	var (
		mod   modFlags
		seed  int64
		limit int
	)
	cmd := &cobra.Command{
		Use:   "constellation MESSAGE...",
		Short: "List the message's symbols as I/Q points with the symbol error rate",
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
			trace := modem.Trace(modCfg, messageArg(args), modem.NewNoise(seed))

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"#", "Symbol", "I", "Q", "Ideal I", "Ideal Q", "Detected"})
			for i, p := range trace {
				if limit > 0 && i >= limit {
					break
				}
				table.Append([]string{
					fmt.Sprint(p.Index),
					fmt.Sprint(p.Symbol),
					fmt.Sprintf("%.4f", p.I),
					fmt.Sprintf("%.4f", p.Q),
					fmt.Sprintf("%.4f", p.IdealI),
					fmt.Sprintf("%.4f", p.IdealQ),
					fmt.Sprint(p.Detected),
				})
			}
			table.Render()
			fmt.Printf("%s, %d symbols, SNR %.0f dB, SER %.4f\n",
				modCfg.Label(), len(trace), modCfg.SNRdB, modem.SymbolErrorRate(trace))
			return nil
		},
	}
	mod.register(cmd)
	cmd.Flags().Int64Var(&seed, "seed", 1, "Noise seed")
	cmd.Flags().IntVar(&limit, "limit", 64, "Rows to print (0 for all)")
	return cmd
}
