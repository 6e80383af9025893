package geom

import "math"

// DefaultQuadrantSegments is the number of chords used for a quarter circle
// when BufferOptions leaves it unset.
const DefaultQuadrantSegments = 8

// angleEps separates straight continuations from real turns.
const angleEps = 1e-12

// BufferOptions tunes the arc approximation of Buffer. The join style is
// always round: outside turns and path ends get circular arcs, inside turns
// use the intersection of the two offset segments. Where the raw outline
// crosses itself it is cut at the crossings and only its outer boundary is
// kept.
type BufferOptions struct {
	QuadrantSegments int
}

// Buffer returns a polygon whose exterior ring is the outline of all points
// within |distance| of line. The sign of distance is ignored.
//
// Open paths are wrapped with round caps. A closed path (first point
// repeated, at least three distinct vertices enclosing area) yields only its
// outward offset ring; no hole is produced. Paths with fewer than two points
// give an empty polygon. The ring is counter-clockwise and explicitly closed.
func Buffer(line LineString, distance float64) Polygon {
	return BufferWithOptions(line, distance, BufferOptions{})
}

// BufferWithOptions is Buffer with a custom arc resolution.
func BufferWithOptions(line LineString, distance float64, opts BufferOptions) Polygon {
	if len(line) < 2 {
		return Polygon{Exterior: LineString{}}
	}
	qs := opts.QuadrantSegments
	if qs <= 0 {
		qs = DefaultQuadrantSegments
	}
	o := offsetter{d: math.Abs(distance), step: math.Pi / 2 / float64(qs)}

	path := dedupe(line)
	var out LineString
	switch {
	case len(path) == 1:
		out = o.arc(nil, path[0], 0, 2*math.Pi)
	case path.Closed() && len(path) >= 4 && SignedArea(path) != 0:
		ring := path[:len(path)-1]
		if SignedArea(ring) < 0 {
			ring = reversed(ring)
		}
		out = o.ring(ring)
	default:
		out = o.open(trimReturn(path))
	}
	eps := o.d * 1e-12
	out = compact(out, eps)
	if o.d > 0 && len(path) > 1 {
		// tight turns fold the raw outline over itself
		out = outerBoundary(out)
		if SignedArea(out) < 0 {
			out = reversed(out)
		}
	}
	return Polygon{Exterior: closeRing(out, eps)}
}

type offsetter struct {
	d    float64 // offset magnitude
	step float64 // max arc step in radians
}

// open traces the right side forward, the end cap, the left side backward
// and the start cap.
func (o offsetter) open(path LineString) LineString {
	n := len(path)
	out := o.side(nil, path)
	out = o.arc(out, path[n-1], angle(right(direction(path[n-2], path[n-1]))), math.Pi)
	rev := reversed(path)
	out = o.side(out, rev)
	out = o.arc(out, rev[n-1], angle(right(direction(rev[n-2], rev[n-1]))), math.Pi)
	return out
}

// side offsets path to its right, joining consecutive segments.
func (o offsetter) side(out LineString, path LineString) LineString {
	u := direction(path[0], path[1])
	out = append(out, o.shift(path[0], u))
	for i := 1; i+1 < len(path); i++ {
		v := direction(path[i], path[i+1])
		out = o.join(out, path[i-1], path[i], path[i+1], u, v)
		u = v
	}
	return append(out, o.shift(path[len(path)-1], u))
}

// ring offsets a counter-clockwise ring outward, which is its right side.
func (o offsetter) ring(r LineString) LineString {
	n := len(r)
	var out LineString
	for i := 0; i < n; i++ {
		prev, v, next := r[(i+n-1)%n], r[i], r[(i+1)%n]
		out = o.join(out, prev, v, next, direction(prev, v), direction(v, next))
	}
	return out
}

// join connects the right offsets of segments prev-v (direction u1) and
// v-next (direction u2).
func (o offsetter) join(out LineString, prev, v, next, u1, u2 Point) LineString {
	if o.d == 0 {
		return append(out, v)
	}
	turn := math.Atan2(u1.X*u2.Y-u1.Y*u2.X, u1.X*u2.X+u1.Y*u2.Y)
	if math.Abs(turn) >= math.Pi-angleEps {
		// reversal: wrap around v like a cap
		turn = math.Pi
	}
	switch {
	case turn > angleEps:
		return o.arc(out, v, angle(right(u1)), turn)
	case turn < -angleEps:
		a1, b1 := o.shift(prev, u1), o.shift(v, u1)
		a2, b2 := o.shift(v, u2), o.shift(next, u2)
		if p, ok := intersect(a1, b1, a2, b2); ok {
			return append(out, p)
		}
		return append(out, b1, v, a2)
	default:
		return append(out, o.shift(v, u1))
	}
}

// arc appends points on the circle of radius d around c, from angle start
// sweeping counter-clockwise. Both ends are included.
func (o offsetter) arc(out LineString, c Point, start, sweep float64) LineString {
	n := int(math.Ceil(sweep/o.step - 1e-9))
	if n < 1 {
		n = 1
	}
	for k := 0; k <= n; k++ {
		a := start + sweep*float64(k)/float64(n)
		out = append(out, Point{X: c.X + o.d*math.Cos(a), Y: c.Y + o.d*math.Sin(a)})
	}
	return out
}

func (o offsetter) shift(p, u Point) Point {
	r := right(u)
	return Point{X: p.X + o.d*r.X, Y: p.Y + o.d*r.Y}
}

// direction is the unit vector from a to b; a and b must differ.
func direction(a, b Point) Point {
	l := Distance(a, b)
	return Point{X: (b.X - a.X) / l, Y: (b.Y - a.Y) / l}
}

func right(u Point) Point { return Point{X: u.Y, Y: -u.X} }

func angle(u Point) float64 { return math.Atan2(u.Y, u.X) }

// intersect returns the crossing of segments a1-b1 and a2-b2.
func intersect(a1, b1, a2, b2 Point) (Point, bool) {
	rx, ry := b1.X-a1.X, b1.Y-a1.Y
	sx, sy := b2.X-a2.X, b2.Y-a2.Y
	den := rx*sy - ry*sx
	if den == 0 {
		return Point{}, false
	}
	qx, qy := a2.X-a1.X, a2.Y-a1.Y
	t := (qx*sy - qy*sx) / den
	w := (qx*ry - qy*rx) / den
	if t < 0 || t > 1 || w < 0 || w > 1 {
		return Point{}, false
	}
	return Point{X: a1.X + t*rx, Y: a1.Y + t*ry}, true
}

// trimReturn cuts a path that retraces itself back to its outward half.
func trimReturn(ls LineString) LineString {
	n := len(ls)
	for i := 0; i < n/2; i++ {
		if ls[i] != ls[n-1-i] {
			return ls
		}
	}
	return ls[:n/2+1]
}

// dedupe drops consecutive repeated vertices.
func dedupe(ls LineString) LineString {
	out := make(LineString, 0, len(ls))
	for i, p := range ls {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// compact drops points within eps of their predecessor.
func compact(ls LineString, eps float64) LineString {
	out := ls[:0]
	for i, p := range ls {
		if i > 0 && Distance(p, out[len(out)-1]) <= eps {
			continue
		}
		out = append(out, p)
	}
	return out
}

// closeRing repeats the first point at the end, snapping a last point that
// already lies within eps of it.
func closeRing(ls LineString, eps float64) LineString {
	if len(ls) < 2 {
		return ls
	}
	if Distance(ls[0], ls[len(ls)-1]) <= eps {
		ls[len(ls)-1] = ls[0]
		return ls
	}
	return append(ls, ls[0])
}

func reversed(ls LineString) LineString {
	out := make(LineString, len(ls))
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}
