package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/gridpop/popmap/internal/spatial"
	"github.com/gridpop/popmap/internal/zonal"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export aggregated regions as GeoJSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		regions, raster, err := spatial.Load(cfg)
		if err != nil {
			return eris.Wrap(err, "export: load inputs")
		}
		regions, zeroFilled, err := zonal.Aggregate(regions, raster)
		if err != nil {
			return eris.Wrap(err, "export: aggregate population")
		}

		fc := &geojson.FeatureCollection{}
		for _, region := range regions {
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry: region.Geom,
				Properties: map[string]interface{}{
					"name":       region.Name,
					"population": region.Population,
				},
			})
		}

		data, err := json.MarshalIndent(fc, "", "  ")
		if err != nil {
			return eris.Wrap(err, "export: encode geojson")
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return eris.Wrapf(err, "export: write %s", exportOut)
		}

		fmt.Printf("Wrote %s (%d features)\n", exportOut, len(fc.Features))
		if zeroFilled > 0 {
			fmt.Printf("Warning: %d region(s) had no raster coverage and were set to zero\n", zeroFilled)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "regions.geojson", "output GeoJSON path")
	rootCmd.AddCommand(exportCmd)
}
