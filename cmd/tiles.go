package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gridpop/popmap/internal/worldpop"
)

var tilesYear int

var tilesCmd = &cobra.Command{
	Use:   "tiles",
	Short: "Inspect WorldPop demographic tile directories",
}

var tilesScanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Inventory per-sex, per-age raster tiles and report coverage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		tiles, err := worldpop.ScanDir(dir, tilesYear)
		if err != nil {
			return eris.Wrap(err, "tiles scan")
		}

		coverage := worldpop.Matrix(tiles)
		fmt.Printf("%d tile(s) in %s\n", len(tiles), dir)
		for _, tile := range tiles {
			fmt.Printf("  %s %s age %02d year %d  %s\n",
				tile.Country, tile.Sex, tile.AgeLow, tile.Year, tile.Path)
		}

		if coverage.Complete() {
			fmt.Println("Coverage: complete (all sex and age bands present)")
			return nil
		}
		fmt.Printf("Coverage: %d missing combination(s), zero tiles will be substituted:\n", len(coverage.Missing))
		for _, m := range coverage.Missing {
			fmt.Printf("  %s age %02d\n", m.Sex, m.AgeLow)
		}
		return nil
	},
}

func init() {
	tilesScanCmd.Flags().IntVar(&tilesYear, "year", 0, "tile year to select (0 picks the latest present)")
	tilesCmd.AddCommand(tilesScanCmd)
	rootCmd.AddCommand(tilesCmd)
}
