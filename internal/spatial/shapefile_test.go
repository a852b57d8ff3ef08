package spatial

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestDetectNameField(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   int
	}{
		{"gadm", []string{"GID_1", "NAME_1", "VARNAME_1"}, 1},
		{"cod_ab", []string{"ADM1_PCODE", "ADM1_EN"}, 1},
		{"plain", []string{"id", "NAME"}, 1},
		{"priority", []string{"NAME", "NAME_1"}, 1}, // NAME_1 outranks NAME
		{"none", []string{"GEOID", "ALAND"}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectNameField(tt.fields))
		})
	}
}

func TestRingSignedArea(t *testing.T) {
	// CCW unit square: positive area.
	ccw := []float64{0, 0, 1, 0, 1, 1, 0, 1}
	assert.InDelta(t, 1.0, ringSignedArea(ccw), 1e-12)

	// CW: negative.
	cw := []float64{0, 0, 0, 1, 1, 1, 1, 0}
	assert.InDelta(t, -1.0, ringSignedArea(cw), 1e-12)
}

func TestReverseRing(t *testing.T) {
	flat := []float64{0, 0, 1, 0, 1, 1}
	reverseRing(flat)
	assert.Equal(t, []float64{1, 1, 1, 0, 0, 0}, flat)
}

func TestPolygonToMultiPolygon_OuterAndHole(t *testing.T) {
	// Shapefile convention: outer ring CW, hole CCW.
	outer := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	hole := []shp.Point{{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}, {X: 2, Y: 8}, {X: 2, Y: 2}}

	poly := &shp.Polygon{
		NumParts:  2,
		NumPoints: int32(len(outer) + len(hole)),
		Parts:     []int32{0, int32(len(outer))},
		Points:    append(append([]shp.Point{}, outer...), hole...),
	}

	mp := polygonToMultiPolygon(poly)
	require.NotNil(t, mp)
	require.Equal(t, 1, mp.NumPolygons())

	p := mp.Polygon(0)
	require.Equal(t, 2, p.NumLinearRings())

	// Normalized orientation: exterior CCW (positive), hole CW (negative).
	assert.Greater(t, ringSignedArea(p.LinearRing(0).FlatCoords()), 0.0)
	assert.Less(t, ringSignedArea(p.LinearRing(1).FlatCoords()), 0.0)

	// Net area 100 - 36.
	assert.InDelta(t, 64.0, p.Area(), 1e-9)
}

func TestPolygonToMultiPolygon_TwoParts(t *testing.T) {
	a := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	b := []shp.Point{{X: 5, Y: 0}, {X: 5, Y: 2}, {X: 7, Y: 2}, {X: 7, Y: 0}, {X: 5, Y: 0}}

	poly := &shp.Polygon{
		NumParts:  2,
		NumPoints: int32(len(a) + len(b)),
		Parts:     []int32{0, int32(len(a))},
		Points:    append(append([]shp.Point{}, a...), b...),
	}

	mp := polygonToMultiPolygon(poly)
	require.NotNil(t, mp)
	assert.Equal(t, 2, mp.NumPolygons())
	assert.InDelta(t, 5.0, mp.Area(), 1e-9)
}

func TestPolygonToMultiPolygon_Empty(t *testing.T) {
	assert.Nil(t, polygonToMultiPolygon(nil))
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
}

func TestRegionSetPopulationRange(t *testing.T) {
	square := geom.NewMultiPolygonFlat(geom.XY, []float64{0, 0, 1, 0, 1, 1, 0, 1}, [][]int{{8}})

	rs := RegionSet{
		{Name: "a", Geom: square, Population: 10, HasPopulation: true},
		{Name: "b", Geom: square, Population: 250, HasPopulation: true},
		{Name: "c", Geom: square}, // not aggregated: ignored
	}

	min, max, ok := rs.PopulationRange()
	require.True(t, ok)
	assert.Equal(t, 10.0, min)
	assert.Equal(t, 250.0, max)

	_, _, ok = RegionSet{{Name: "x", Geom: square}}.PopulationRange()
	assert.False(t, ok)
}

func TestRegionSetBounds(t *testing.T) {
	a := geom.NewMultiPolygonFlat(geom.XY, []float64{0, 0, 1, 0, 1, 1, 0, 1}, [][]int{{8}})
	b := geom.NewMultiPolygonFlat(geom.XY, []float64{5, -2, 9, -2, 9, 3, 5, 3}, [][]int{{8}})

	minX, minY, maxX, maxY, ok := RegionSet{{Geom: a}, {Geom: b}}.Bounds()
	require.True(t, ok)
	assert.Equal(t, 0.0, minX)
	assert.Equal(t, -2.0, minY)
	assert.Equal(t, 9.0, maxX)
	assert.Equal(t, 3.0, maxY)
}
