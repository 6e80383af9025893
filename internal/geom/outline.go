package geom

import (
	"math"
	"sort"
)

// outerBoundary nodes the possibly self-intersecting ring at every crossing
// and walks the boundary of the unbounded face of the resulting planar graph.
// The result is counter-clockwise without a closing duplicate. Loops that
// fold back inside the outline are dropped. If the walk does not close, the
// input is returned unchanged.
func outerBoundary(ring LineString) LineString {
	r := ring.ring()
	if len(r) < 3 {
		return ring
	}
	g := newOutlineGraph(r)
	if out, ok := g.walk(); ok {
		return out
	}
	return r
}

type outlineEdge struct {
	a, b   Point
	bounds BBox
	cuts   []Point // crossings with other edges, unordered
}

type outlineGraph struct {
	eps   float64
	nodes []Point
	cells map[[2]int64][]int
	adj   [][]int
}

func newOutlineGraph(r LineString) *outlineGraph {
	var span BBox
	var far float64
	for i, p := range r {
		span = span.Extend(p, i > 0)
		far = math.Max(far, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	size := math.Max(span.MaxX-span.MinX, span.MaxY-span.MinY)
	g := &outlineGraph{
		eps:   math.Max(math.Max(size*1e-9, far*1e-12), 1e-300),
		cells: make(map[[2]int64][]int),
	}

	n := len(r)
	edges := make([]*outlineEdge, 0, n)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		if Distance(a, b) <= g.eps {
			continue
		}
		edges = append(edges, &outlineEdge{a: a, b: b, bounds: BBox{}.Extend(a, false).Extend(b, true)})
	}

	// sweep along X so only edges with overlapping boxes are tested
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].bounds.MinX < edges[j].bounds.MinX })
	for i, e := range edges {
		for _, f := range edges[i+1:] {
			if f.bounds.MinX > e.bounds.MaxX+g.eps {
				break
			}
			if f.bounds.MinY > e.bounds.MaxY+g.eps || f.bounds.MaxY < e.bounds.MinY-g.eps {
				continue
			}
			g.cross(e, f)
		}
	}

	g.adj = make([][]int, 0, len(edges))
	for _, e := range edges {
		g.split(e)
	}
	return g
}

// cross records where e and f meet, including overlaps of collinear edges.
func (g *outlineGraph) cross(e, f *outlineEdge) {
	rx, ry := e.b.X-e.a.X, e.b.Y-e.a.Y
	sx, sy := f.b.X-f.a.X, f.b.Y-f.a.Y
	le, lf := math.Hypot(rx, ry), math.Hypot(sx, sy)
	den := rx*sy - ry*sx
	if math.Abs(den) <= 1e-12*le*lf {
		// parallel: only collinear overlaps matter
		for _, p := range []Point{f.a, f.b} {
			if segmentDistance(p, e.a, e.b) <= g.eps {
				g.cut(e, p)
			}
		}
		for _, p := range []Point{e.a, e.b} {
			if segmentDistance(p, f.a, f.b) <= g.eps {
				g.cut(f, p)
			}
		}
		return
	}
	qx, qy := f.a.X-e.a.X, f.a.Y-e.a.Y
	t := (qx*sy - qy*sx) / den
	u := (qx*ry - qy*rx) / den
	te, tf := g.eps/le, g.eps/lf
	if t < -te || t > 1+te || u < -tf || u > 1+tf {
		return
	}
	t = math.Min(1, math.Max(0, t))
	p := Point{X: e.a.X + t*rx, Y: e.a.Y + t*ry}
	g.cut(e, p)
	g.cut(f, p)
}

// cut adds p to e unless it already is one of e's ends.
func (g *outlineGraph) cut(e *outlineEdge, p Point) {
	if Distance(p, e.a) <= g.eps || Distance(p, e.b) <= g.eps {
		return
	}
	e.cuts = append(e.cuts, p)
}

// split turns e and its cuts into graph edges between consecutive nodes.
func (g *outlineGraph) split(e *outlineEdge) {
	rx, ry := e.b.X-e.a.X, e.b.Y-e.a.Y
	at := func(p Point) float64 { return (p.X-e.a.X)*rx + (p.Y-e.a.Y)*ry }
	pts := append([]Point{e.a}, e.cuts...)
	pts = append(pts, e.b)
	sort.SliceStable(pts[1:len(pts)-1], func(i, j int) bool { return at(pts[i+1]) < at(pts[j+1]) })

	prev := g.node(e.a)
	for _, p := range pts[1:] {
		id := g.node(p)
		g.link(prev, id)
		prev = id
	}
}

// node returns the id of the node within eps of p, adding one if needed.
func (g *outlineGraph) node(p Point) int {
	cx, cy := int64(math.Floor(p.X/g.eps)), int64(math.Floor(p.Y/g.eps))
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, id := range g.cells[[2]int64{cx + dx, cy + dy}] {
				if Distance(g.nodes[id], p) <= g.eps {
					return id
				}
			}
		}
	}
	id := len(g.nodes)
	g.nodes = append(g.nodes, p)
	g.adj = append(g.adj, nil)
	g.cells[[2]int64{cx, cy}] = append(g.cells[[2]int64{cx, cy}], id)
	return id
}

func (g *outlineGraph) link(a, b int) {
	if a == b {
		return
	}
	for _, n := range g.adj[a] {
		if n == b {
			return
		}
	}
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}

// walk starts at the lowest, then leftmost, node and keeps the unbounded
// face on its right by always taking the sharpest right turn.
func (g *outlineGraph) walk() (LineString, bool) {
	if len(g.nodes) < 3 {
		return nil, false
	}
	start := 0
	for i, p := range g.nodes {
		s := g.nodes[start]
		if p.Y < s.Y || (p.Y == s.Y && p.X < s.X) {
			start = i
		}
	}
	first := g.turn(start, Point{X: -1}, -1)
	if first < 0 {
		return nil, false
	}

	var links int
	for _, a := range g.adj {
		links += len(a)
	}
	out := LineString{g.nodes[start]}
	prev, cur := start, first
	for steps := 0; steps <= links; steps++ {
		back := Point{X: g.nodes[prev].X - g.nodes[cur].X, Y: g.nodes[prev].Y - g.nodes[cur].Y}
		next := g.turn(cur, back, prev)
		if cur == start && next == first {
			return out, len(out) >= 3
		}
		out = append(out, g.nodes[cur])
		prev, cur = cur, next
	}
	return nil, false
}

// turn picks the neighbour of id reached first when sweeping
// counter-clockwise from the back direction. from is taken only as a last
// resort.
func (g *outlineGraph) turn(id int, back Point, from int) int {
	best, bestAngle := -1, math.Inf(1)
	c := g.nodes[id]
	for _, n := range g.adj[id] {
		v := Point{X: g.nodes[n].X - c.X, Y: g.nodes[n].Y - c.Y}
		a := math.Atan2(back.X*v.Y-back.Y*v.X, back.X*v.X+back.Y*v.Y)
		if a <= 0 {
			a += 2 * math.Pi
		}
		if n == from {
			a = 2 * math.Pi
		}
		if a < bestAngle {
			best, bestAngle = n, a
		}
	}
	return best
}
