package geom

// Contains reports whether pt lies inside the exterior ring of p using the
// even-odd rule on a ray cast towards +X. Holes are ignored. Points on an
// edge get whatever the crossing test yields, which is stable for identical
// input.
func Contains(pt Point, p Polygon) bool {
	r := p.Exterior.ring()
	n := len(r)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y) + a.X
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}
