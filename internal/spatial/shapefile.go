package spatial

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/twpayne/go-geom"
)

// ReadBoundaries reads polygon records from a shapefile into a RegionSet.
// Region names come from the first recognized DBF name field; records with
// no usable name keep an empty one. Records without polygon geometry are
// skipped.
func ReadBoundaries(shpPath string) (RegionSet, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "spatial: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
	}
	nameIdx := detectNameField(names)
	if nameIdx < 0 {
		zap.L().Warn("spatial: no name attribute recognized in shapefile",
			zap.Strings("fields", names),
		)
	}

	var regions RegionSet
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}
		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		var name string
		if nameIdx >= 0 {
			name = strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		}
		regions = append(regions, Region{Name: name, Geom: mp})
	}

	if skipped > 0 {
		zap.L().Debug("spatial: skipped non-polygon shapefile records", zap.Int("skipped", skipped))
	}
	if len(regions) == 0 {
		return nil, eris.Errorf("spatial: no polygon records in %s", shpPath)
	}

	return regions, nil
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile outer rings wind clockwise and holes counter-clockwise; rings
// are normalized so exterior rings carry positive signed area and holes
// negative, which is what the zonal clipping relies on.
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	// Group rings into polygons: an outer ring starts a polygon, following
	// hole rings attach to it. MultiPolygon.Push copies coordinates, so each
	// polygon must be complete before it is pushed.
	var groups [][][]float64

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		if len(flat) < 8 { // a closed ring needs at least 4 vertices
			continue
		}

		outer := ringSignedArea(flat) < 0 // shapefile outer rings are CW
		flat = reverseRing(flat)

		if outer || len(groups) == 0 {
			groups = append(groups, [][]float64{flat})
			continue
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], flat)
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for gi, rings := range groups {
		poly := geom.NewPolygon(geom.XY)
		for _, flat := range rings {
			if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
				zap.L().Debug("spatial: skipping malformed ring", zap.Int("polygon", gi), zap.Error(err))
			}
		}
		if poly.NumLinearRings() == 0 {
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("spatial: skipping malformed polygon part", zap.Int("polygon", gi), zap.Error(err))
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// ringSignedArea computes the shoelace signed area of a flat XY ring.
// Positive means counter-clockwise.
func ringSignedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}

// reverseRing reverses the vertex order of a flat XY ring in place.
func reverseRing(flat []float64) []float64 {
	n := len(flat) / 2
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		flat[2*i], flat[2*j] = flat[2*j], flat[2*i]
		flat[2*i+1], flat[2*j+1] = flat[2*j+1], flat[2*i+1]
	}
	return flat
}
