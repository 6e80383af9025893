package geom

import "math"

// SignedArea returns the shoelace area of the implicitly closed ring,
// positive when the vertices run counter-clockwise.
func SignedArea(ring LineString) float64 {
	r := ring.ring()
	n := len(r)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum / 2
}

// Area returns the unsigned area of the exterior ring. Holes are not
// subtracted.
func Area(p Polygon) float64 {
	return math.Abs(SignedArea(p.Exterior))
}

// NetArea is Area minus the area of every hole, never below zero.
func NetArea(p Polygon) float64 {
	a := Area(p)
	for _, h := range p.Interiors {
		a -= math.Abs(SignedArea(h))
	}
	return math.Max(0, a)
}
