package zonal

// clipRingToRect clips a flat XY ring against an axis-aligned rectangle
// using Sutherland-Hodgman. The clip window is convex, so the result is a
// single ring (possibly empty) that keeps the subject's winding order.
func clipRingToRect(flat []float64, minX, minY, maxX, maxY float64) []float64 {
	out := clipHalfPlane(flat, func(x, _ float64) bool { return x >= minX }, func(x1, y1, x2, y2 float64) (float64, float64) {
		t := (minX - x1) / (x2 - x1)
		return minX, y1 + t*(y2-y1)
	})
	out = clipHalfPlane(out, func(x, _ float64) bool { return x <= maxX }, func(x1, y1, x2, y2 float64) (float64, float64) {
		t := (maxX - x1) / (x2 - x1)
		return maxX, y1 + t*(y2-y1)
	})
	out = clipHalfPlane(out, func(_, y float64) bool { return y >= minY }, func(x1, y1, x2, y2 float64) (float64, float64) {
		t := (minY - y1) / (y2 - y1)
		return x1 + t*(x2-x1), minY
	})
	out = clipHalfPlane(out, func(_, y float64) bool { return y <= maxY }, func(x1, y1, x2, y2 float64) (float64, float64) {
		t := (maxY - y1) / (y2 - y1)
		return x1 + t*(x2-x1), maxY
	})
	return out
}

// clipHalfPlane clips a ring against one half-plane. inside reports whether
// a vertex is kept; intersect computes the crossing point of an edge with
// the half-plane boundary.
func clipHalfPlane(flat []float64, inside func(x, y float64) bool, intersect func(x1, y1, x2, y2 float64) (float64, float64)) []float64 {
	n := len(flat) / 2
	if n == 0 {
		return nil
	}

	out := make([]float64, 0, len(flat)+8)
	px, py := flat[2*(n-1)], flat[2*(n-1)+1]
	pin := inside(px, py)

	for i := 0; i < n; i++ {
		cx, cy := flat[2*i], flat[2*i+1]
		cin := inside(cx, cy)

		switch {
		case cin && pin:
			out = append(out, cx, cy)
		case cin && !pin:
			ix, iy := intersect(px, py, cx, cy)
			out = append(out, ix, iy, cx, cy)
		case !cin && pin:
			ix, iy := intersect(px, py, cx, cy)
			out = append(out, ix, iy)
		}

		px, py, pin = cx, cy, cin
	}

	return out
}

// ringSignedArea computes the shoelace signed area of a flat XY ring.
func ringSignedArea(flat []float64) float64 {
	var sum float64
	n := len(flat) / 2
	if n < 3 {
		return 0
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
