package geom

import "math"

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return Distance(p, Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// DistanceToPath returns the distance from p to the nearest point on ls.
// An empty path yields +Inf.
func DistanceToPath(p Point, ls LineString) float64 {
	switch len(ls) {
	case 0:
		return math.Inf(1)
	case 1:
		return Distance(p, ls[0])
	}
	best := math.Inf(1)
	for i := 0; i+1 < len(ls); i++ {
		if d := segmentDistance(p, ls[i], ls[i+1]); d < best {
			best = d
		}
	}
	return best
}
