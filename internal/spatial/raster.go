package spatial

import "math"

// Raster is a single-band grid of population values held in memory after
// cropping and reprojection. The grid is north-up: GeoTransform carries no
// rotation terms (GDAL order: originX, cellWidth, 0, originY, 0, -cellHeight).
type Raster struct {
	Data         []float64
	Width        int
	Height       int
	GeoTransform [6]float64
	NoData       float64
	HasNoData    bool
}

// Value returns the cell value at the given column and row.
func (r *Raster) Value(col, row int) float64 {
	return r.Data[row*r.Width+col]
}

// IsNoData reports whether v is the raster's NoData sentinel. NaN cells are
// always treated as NoData.
func (r *Raster) IsNoData(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	return r.HasNoData && v == r.NoData
}

// CellSize returns the absolute cell width and height in CRS units.
func (r *Raster) CellSize() (w, h float64) {
	return math.Abs(r.GeoTransform[1]), math.Abs(r.GeoTransform[5])
}

// CellBounds returns the geographic bounds of the cell at (col, row).
func (r *Raster) CellBounds(col, row int) (minX, minY, maxX, maxY float64) {
	x0 := r.GeoTransform[0] + float64(col)*r.GeoTransform[1]
	y0 := r.GeoTransform[3] + float64(row)*r.GeoTransform[5]
	x1 := x0 + r.GeoTransform[1]
	y1 := y0 + r.GeoTransform[5]
	return math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)
}

// Bounds returns the geographic bounds of the whole grid.
func (r *Raster) Bounds() (minX, minY, maxX, maxY float64) {
	x0 := r.GeoTransform[0]
	y0 := r.GeoTransform[3]
	x1 := x0 + float64(r.Width)*r.GeoTransform[1]
	y1 := y0 + float64(r.Height)*r.GeoTransform[5]
	return math.Min(x0, x1), math.Min(y0, y1), math.Max(x0, x1), math.Max(y0, y1)
}

// CellWindow returns the clamped column/row range of cells whose extent
// intersects the given bounding box. ok is false when the box misses the
// grid entirely.
func (r *Raster) CellWindow(minX, minY, maxX, maxY float64) (c0, r0, c1, r1 int, ok bool) {
	gMinX, gMinY, gMaxX, gMaxY := r.Bounds()
	if maxX <= gMinX || minX >= gMaxX || maxY <= gMinY || minY >= gMaxY {
		return 0, 0, 0, 0, false
	}

	cw, ch := r.CellSize()
	c0 = int(math.Floor((minX - gMinX) / cw))
	c1 = int(math.Ceil((maxX - gMinX) / cw))
	// Rows count down from the top edge.
	r0 = int(math.Floor((gMaxY - maxY) / ch))
	r1 = int(math.Ceil((gMaxY - minY) / ch))

	c0 = clamp(c0, 0, r.Width-1)
	c1 = clamp(c1, 0, r.Width-1)
	r0 = clamp(r0, 0, r.Height-1)
	r1 = clamp(r1, 0, r.Height-1)
	return c0, r0, c1, r1, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
