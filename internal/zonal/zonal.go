// Package zonal computes coverage-weighted zonal statistics: the sum of
// raster cell values inside each administrative polygon, with cells that
// straddle the boundary contributing in proportion to the overlapped
// fraction of their area. Whole-cell or cell-center inclusion would bias
// the totals of small regions, so the overlap is computed exactly.
package zonal

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/gridpop/popmap/internal/spatial"
)

// Aggregate attaches a population value to every region. Regions with no
// raster coverage (outside the grid, or all NoData) are set to zero rather
// than left unset; the second return value counts them so the caller can
// surface a warning. The zero-fill is deliberate: downstream range and
// legend computations require every region to carry a number.
func Aggregate(regions spatial.RegionSet, r *spatial.Raster) (spatial.RegionSet, int, error) {
	if r == nil || len(r.Data) == 0 {
		return nil, 0, eris.New("zonal: empty raster")
	}

	var zeroFilled int
	for i := range regions {
		sum, covered := coverageSum(regions[i].Geom, r)
		if !covered {
			zap.L().Debug("zonal: region has no raster coverage, recording zero",
				zap.String("region", regions[i].Name),
			)
			zeroFilled++
			sum = 0
		}
		regions[i].Population = sum
		regions[i].HasPopulation = true
	}

	return regions, zeroFilled, nil
}

// coverageSum computes the coverage-weighted sum of raster values inside a
// multipolygon. covered is false when not a single cell with valid data
// overlaps the geometry.
func coverageSum(mp *geom.MultiPolygon, r *spatial.Raster) (sum float64, covered bool) {
	b := mp.Bounds()
	c0, r0, c1, r1, ok := r.CellWindow(b.Min(0), b.Min(1), b.Max(0), b.Max(1))
	if !ok {
		return 0, false
	}

	cw, ch := r.CellSize()
	cellArea := cw * ch

	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			v := r.Value(col, row)
			if r.IsNoData(v) {
				continue
			}
			minX, minY, maxX, maxY := r.CellBounds(col, row)
			frac := coverageFraction(mp, minX, minY, maxX, maxY, cellArea)
			if frac <= 0 {
				continue
			}
			sum += v * frac
			covered = true
		}
	}

	return sum, covered
}

// coverageFraction returns the fraction of the cell rectangle covered by
// the multipolygon, in [0, 1]. Exterior rings carry positive signed area
// and holes negative (the loader normalizes orientation), so summing the
// signed areas of the clipped rings yields the net covered area directly.
func coverageFraction(mp *geom.MultiPolygon, minX, minY, maxX, maxY, cellArea float64) float64 {
	var area float64
	for pi := 0; pi < mp.NumPolygons(); pi++ {
		poly := mp.Polygon(pi)
		for ri := 0; ri < poly.NumLinearRings(); ri++ {
			clipped := clipRingToRect(poly.LinearRing(ri).FlatCoords(), minX, minY, maxX, maxY)
			area += ringSignedArea(clipped)
		}
	}

	frac := area / cellArea
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}
