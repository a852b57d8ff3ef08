// Package spatial loads administrative boundaries and the population raster
// and prepares both in the target coordinate reference system.
package spatial

import (
	"strings"

	"github.com/twpayne/go-geom"
)

// Region is one administrative polygon with its aggregated population.
// Geometry is always non-nil; Population is meaningful only once
// HasPopulation is set by the aggregator.
type Region struct {
	Name          string
	Geom          *geom.MultiPolygon
	Population    float64
	HasPopulation bool
}

// RegionSet is an ordered collection of administrative regions.
type RegionSet []Region

// nameFieldCandidates lists DBF attribute names that may carry the region
// name, in priority order. Boundary products differ: GADM uses NAME_1,
// OCHA COD-AB uses ADM1_EN, geoBoundaries uses shapeName.
var nameFieldCandidates = []string{"name_1", "name", "adm1_en", "shapename", "adm1name"}

// detectNameField returns the index of the first candidate present in the
// DBF field list, or -1 if none match.
func detectNameField(fields []string) int {
	for _, cand := range nameFieldCandidates {
		for i, f := range fields {
			if strings.EqualFold(f, cand) {
				return i
			}
		}
	}
	return -1
}

// PopulationRange returns the min and max population across the set.
// Regions without an aggregated population are ignored; ok is false when
// none have one.
func (rs RegionSet) PopulationRange() (min, max float64, ok bool) {
	for _, r := range rs {
		if !r.HasPopulation {
			continue
		}
		if !ok {
			min, max = r.Population, r.Population
			ok = true
			continue
		}
		if r.Population < min {
			min = r.Population
		}
		if r.Population > max {
			max = r.Population
		}
	}
	return min, max, ok
}

// Bounds returns the bounding box of all region geometries.
func (rs RegionSet) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	for _, r := range rs {
		b := r.Geom.Bounds()
		if !ok {
			minX, minY, maxX, maxY = b.Min(0), b.Min(1), b.Max(0), b.Max(1)
			ok = true
			continue
		}
		if b.Min(0) < minX {
			minX = b.Min(0)
		}
		if b.Min(1) < minY {
			minY = b.Min(1)
		}
		if b.Max(0) > maxX {
			maxX = b.Max(0)
		}
		if b.Max(1) > maxY {
			maxY = b.Max(1)
		}
	}
	return minX, minY, maxX, maxY, ok
}
