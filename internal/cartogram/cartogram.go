// Package cartogram distorts region geometries so that polygon area becomes
// proportional to the population attribute, using the Dougenik, Chrisman and
// Niemeyer (1985) rubber-sheet algorithm. Convergence is approximate and
// bounded by an iteration cap rather than a numeric tolerance.
package cartogram

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/gridpop/popmap/internal/spatial"
)

// DefaultIterations is the iteration cap used when the caller passes a
// non-positive count.
const DefaultIterations = 10

// Transform returns a copy of the region set whose polygon areas trend
// toward proportionality with the Population attribute. Region count,
// order, names and population values are preserved; only geometry changes.
func Transform(regions spatial.RegionSet, iterations int) (spatial.RegionSet, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	var totalValue float64
	for _, r := range regions {
		if !r.HasPopulation {
			return nil, eris.Errorf("cartogram: region %q has no population attribute", r.Name)
		}
		totalValue += r.Population
	}
	if totalValue <= 0 {
		return nil, eris.New("cartogram: total population is zero, nothing to be proportional to")
	}

	out := make(spatial.RegionSet, len(regions))
	for i, r := range regions {
		flat := append([]float64(nil), r.Geom.FlatCoords()...)
		out[i] = r
		out[i].Geom = geom.NewMultiPolygonFlat(geom.XY, flat, copyEndss(r.Geom.Endss()))
	}

	for it := 0; it < iterations; it++ {
		meanError := relax(out, totalValue)
		zap.L().Debug("cartogram iteration",
			zap.Int("iteration", it+1),
			zap.Float64("mean_size_error", meanError),
		)
	}

	return out, nil
}

// relax performs one Dougenik iteration over the whole set and returns the
// mean size error before displacement.
func relax(regions spatial.RegionSet, totalValue float64) float64 {
	n := len(regions)
	areas := make([]float64, n)
	radii := make([]float64, n)
	masses := make([]float64, n)
	cxs := make([]float64, n)
	cys := make([]float64, n)

	var totalArea float64
	for i, r := range regions {
		areas[i] = r.Geom.Area()
		totalArea += areas[i]
		cxs[i], cys[i] = centroid(r.Geom)
	}

	var errorSum float64
	for i, r := range regions {
		desired := totalArea * r.Population / totalValue
		radii[i] = math.Sqrt(areas[i] / math.Pi)
		masses[i] = math.Sqrt(desired/math.Pi) - radii[i]
		errorSum += sizeError(areas[i], desired)
	}
	meanError := errorSum / float64(n)
	forceReduction := 1 / (1 + meanError)

	for i := range regions {
		flat := regions[i].Geom.FlatCoords()
		for v := 0; v < len(flat); v += 2 {
			x, y := flat[v], flat[v+1]
			var dx, dy float64
			for j := 0; j < n; j++ {
				if masses[j] == 0 || radii[j] == 0 {
					continue
				}
				ex, ey := x-cxs[j], y-cys[j]
				d := math.Hypot(ex, ey)
				if d == 0 {
					continue
				}
				var force float64
				if d > radii[j] {
					force = masses[j] * radii[j] / d
				} else {
					ratio := d / radii[j]
					force = masses[j] * ratio * ratio * (4 - 3*ratio)
				}
				dx += force * forceReduction * ex / d
				dy += force * forceReduction * ey / d
			}
			flat[v] = x + dx
			flat[v+1] = y + dy
		}
	}

	return meanError
}

// sizeError is the ratio of the larger of (area, desired) to the smaller,
// minus one; zero means the region already has its target area.
func sizeError(area, desired float64) float64 {
	if area <= 0 || desired <= 0 {
		return 0
	}
	if area > desired {
		return area/desired - 1
	}
	return desired/area - 1
}

// centroid computes the area-weighted centroid of a multipolygon. Holes
// carry negative signed area, so they subtract from the weighting.
func centroid(mp *geom.MultiPolygon) (float64, float64) {
	var cx, cy, areaSum float64
	for pi := 0; pi < mp.NumPolygons(); pi++ {
		poly := mp.Polygon(pi)
		for ri := 0; ri < poly.NumLinearRings(); ri++ {
			flat := poly.LinearRing(ri).FlatCoords()
			n := len(flat) / 2
			var a, sx, sy float64
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				cross := flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
				a += cross
				sx += (flat[2*i] + flat[2*j]) * cross
				sy += (flat[2*i+1] + flat[2*j+1]) * cross
			}
			a /= 2
			if a != 0 {
				cx += sx / 6
				cy += sy / 6
				areaSum += a
			}
		}
	}
	if areaSum == 0 {
		// Degenerate geometry: fall back to the bounds center.
		b := mp.Bounds()
		return (b.Min(0) + b.Max(0)) / 2, (b.Min(1) + b.Max(1)) / 2
	}
	return cx / areaSum, cy / areaSum
}

func copyEndss(endss [][]int) [][]int {
	out := make([][]int, len(endss))
	for i, ends := range endss {
		out[i] = append([]int(nil), ends...)
	}
	return out
}
