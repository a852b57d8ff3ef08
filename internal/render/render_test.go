package render

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/gridpop/popmap/internal/spatial"
)

func TestScaleSpansRange(t *testing.T) {
	s := NewScale(100, 500)

	assert.Equal(t, 0.0, s.Frac(100))
	assert.Equal(t, 1.0, s.Frac(500))
	assert.InDelta(t, 0.5, s.Frac(300), 1e-12)

	// Out-of-range values clamp.
	assert.Equal(t, 0.0, s.Frac(-50))
	assert.Equal(t, 1.0, s.Frac(9999))
}

func TestScaleDegenerateRange(t *testing.T) {
	s := NewScale(42, 42)
	assert.Equal(t, 0.5, s.Frac(42))
}

func TestScaleColorEndpoints(t *testing.T) {
	s := NewScale(0, 1)

	low := s.Color(0).(color.NRGBA)
	high := s.Color(1).(color.NRGBA)
	assert.Equal(t, rampLight, low)
	assert.Equal(t, rampDark, high)

	// Midpoint is strictly between the endpoints on every channel.
	mid := s.Color(0.5).(color.NRGBA)
	assert.Less(t, mid.R, rampLight.R)
	assert.Greater(t, mid.R, rampDark.R)
}

func TestFormatPopulation(t *testing.T) {
	assert.Equal(t, "0", FormatPopulation(0))
	assert.Equal(t, "1,234", FormatPopulation(1234))
	assert.Equal(t, "2,958,784", FormatPopulation(2958784.4))
	// Large values stay in plain notation.
	assert.Equal(t, "19,610,769", FormatPopulation(1.9610769e7))
}

func regionWithPop(name string, minX, minY, maxX, maxY, pop float64) spatial.Region {
	flat := []float64{minX, minY, maxX, minY, maxX, maxY, minX, maxY}
	return spatial.Region{
		Name:          name,
		Geom:          geom.NewMultiPolygonFlat(geom.XY, flat, [][]int{{len(flat)}}),
		Population:    pop,
		HasPopulation: true,
	}
}

func TestRenderWritesPNG(t *testing.T) {
	regions := spatial.RegionSet{
		regionWithPop("a", 0, 0, 50, 40, 1200),
		regionWithPop("b", 50, 0, 100, 40, 88000),
		regionWithPop("c", 0, 40, 100, 80, 430000),
	}

	path := filepath.Join(t.TempDir(), "out.png")
	err := Render(regions, path, Options{WidthInches: 2, HeightInches: 1.5, DPI: 72})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// PNG magic bytes.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestRenderDropsRegionsWithoutPopulation(t *testing.T) {
	withPop := regionWithPop("ok", 0, 0, 10, 10, 500)
	noPop := regionWithPop("stale", 10, 0, 20, 10, 0)
	noPop.HasPopulation = false

	path := filepath.Join(t.TempDir(), "out.png")
	err := Render(spatial.RegionSet{withPop, noPop}, path, Options{WidthInches: 2, HeightInches: 1.5, DPI: 72})
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRenderNothingToDraw(t *testing.T) {
	reg := regionWithPop("stale", 0, 0, 10, 10, 0)
	reg.HasPopulation = false

	err := Render(spatial.RegionSet{reg}, filepath.Join(t.TempDir(), "out.png"), DefaultOptions())
	assert.Error(t, err)
}
