package main

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gridpop/popmap/internal/pipeline"
)

var (
	renderOutput    string
	renderCartogram bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the population map",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if renderOutput != "" {
			cfg.Map.Output = renderOutput
		}
		if cmd.Flags().Changed("cartogram") {
			cfg.Map.Cartogram = renderCartogram
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		summary, err := pipeline.New(cfg).Run(ctx)
		if err != nil {
			zap.L().Error("render failed", zap.String("detail", eris.ToString(err, true)))
			return eris.Wrap(err, "render")
		}

		zap.L().Info("map written",
			zap.String("output", summary.Output),
			zap.String("run_id", summary.RunID),
		)

		fmt.Printf("Wrote %s (%d regions, population %.0f..%.0f)\n",
			summary.Output, summary.Regions,
			math.Round(summary.MinPopulation), math.Round(summary.MaxPopulation))
		if summary.ZeroFilled > 0 {
			fmt.Printf("Warning: %d region(s) had no raster coverage and were set to zero\n", summary.ZeroFilled)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderOutput, "output", "", "output PNG path (overrides config)")
	renderCmd.Flags().BoolVar(&renderCartogram, "cartogram", false, "distort regions so area tracks population")
	rootCmd.AddCommand(renderCmd)
}
