package zonal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipRingToRect_FullyInside(t *testing.T) {
	ring := []float64{2, 2, 4, 2, 4, 4, 2, 4}
	clipped := clipRingToRect(ring, 0, 0, 10, 10)
	assert.InDelta(t, 4.0, ringSignedArea(clipped), 1e-12)
}

func TestClipRingToRect_FullyOutside(t *testing.T) {
	ring := []float64{20, 20, 24, 20, 24, 24, 20, 24}
	clipped := clipRingToRect(ring, 0, 0, 10, 10)
	assert.InDelta(t, 0.0, ringSignedArea(clipped), 1e-12)
}

func TestClipRingToRect_HalfOverlap(t *testing.T) {
	// Square straddling the right edge of the clip window.
	ring := []float64{8, 0, 12, 0, 12, 4, 8, 4}
	clipped := clipRingToRect(ring, 0, 0, 10, 10)
	assert.InDelta(t, 8.0, ringSignedArea(clipped), 1e-12)
}

func TestClipRingToRect_RingContainsRect(t *testing.T) {
	// The subject completely contains the clip window.
	ring := []float64{-10, -10, 20, -10, 20, 20, -10, 20}
	clipped := clipRingToRect(ring, 0, 0, 10, 10)
	assert.InDelta(t, 100.0, ringSignedArea(clipped), 1e-12)
}

func TestClipRingToRect_Triangle(t *testing.T) {
	// Right triangle with legs of 10 along the window edges: half the window.
	ring := []float64{0, 0, 10, 0, 0, 10}
	clipped := clipRingToRect(ring, 0, 0, 10, 10)
	assert.InDelta(t, 50.0, ringSignedArea(clipped), 1e-12)
}

func TestClipRingToRect_PreservesWinding(t *testing.T) {
	ccw := []float64{-5, -5, 15, -5, 15, 15, -5, 15}
	cw := []float64{-5, -5, -5, 15, 15, 15, 15, -5}

	assert.Greater(t, ringSignedArea(clipRingToRect(ccw, 0, 0, 10, 10)), 0.0)
	assert.Less(t, ringSignedArea(clipRingToRect(cw, 0, 0, 10, 10)), 0.0)
}

func TestClipRingToRect_Empty(t *testing.T) {
	assert.Empty(t, clipRingToRect(nil, 0, 0, 10, 10))
}

func TestRingSignedArea_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, ringSignedArea([]float64{1, 1}))
	assert.Equal(t, 0.0, ringSignedArea([]float64{1, 1, 2, 2}))
}
