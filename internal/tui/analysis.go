package tui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gisops/internal/geom"
)

// bufferDistance is the configured distance, or 2% of the extent diagonal.
func (m Model) bufferDistance() float64 {
	if m.cfg.BufferDistance > 0 {
		return m.cfg.BufferDistance
	}
	lo := geom.Point{X: m.extent.MinX, Y: m.extent.MinY}
	hi := geom.Point{X: m.extent.MaxX, Y: m.extent.MaxY}
	return geom.Distance(lo, hi) * 0.02
}

// computeBuffers outlines every line and polygon exterior. Points are
// skipped since a lone point has no buffer outline.
func (m *Model) computeBuffers() {
	d := m.bufferDistance()
	if d == 0 || (len(m.lines) == 0 && len(m.polygons) == 0) {
		m.status = "buffer: nothing to buffer"
		return
	}
	var out []geom.Polygon
	add := func(ls geom.LineString) {
		b := geom.BufferWithOptions(ls, d, m.cfg.Buffer)
		if len(b.Exterior) > 0 {
			out = append(out, b)
		}
	}
	for _, ls := range m.lines {
		add(ls)
	}
	for _, p := range m.polygons {
		add(closeRing(p.Exterior))
	}
	m.buffers = out
	m.bbox = m.extent
	for _, b := range out {
		for _, p := range b.Exterior {
			m.bbox = m.bbox.Extend(p, true)
		}
	}
	m.showBuffers = true
	m.status = fmt.Sprintf("buffered %d features at d=%.5g", len(out), d)
	m.log.Info("buffers computed", "features", len(out), "distance", d)
}

func closeRing(ls geom.LineString) geom.LineString {
	if len(ls) < 2 || ls.Closed() {
		return ls
	}
	out := geom.NewLineString(ls...)
	return append(out, ls[0])
}

// polygonAt returns the index of the first polygon containing p, or -1.
func (m Model) polygonAt(p geom.Point) int {
	for i, poly := range m.polygons {
		if geom.Contains(p, poly) {
			return i
		}
	}
	return -1
}

type nearest struct {
	kind  string
	index int
	dist  float64
}

// nearestFeature finds the point, line or polygon outline closest to p.
func (m Model) nearestFeature(p geom.Point) (nearest, bool) {
	best := nearest{dist: math.Inf(1)}
	consider := func(kind string, i int, d float64) {
		if d < best.dist {
			best = nearest{kind: kind, index: i, dist: d}
		}
	}
	for i, q := range m.points {
		consider("point", i, geom.Distance(p, q))
	}
	for i, ls := range m.lines {
		consider("line", i, geom.DistanceToPath(p, ls))
	}
	for i, poly := range m.polygons {
		consider("polygon", i, geom.DistanceToPath(p, closeRing(poly.Exterior)))
	}
	return best, !math.IsInf(best.dist, 1)
}

// inspect describes the dataset as seen from the viewport center.
func (m Model) inspect() (string, bool) {
	w, h := m.mapW, m.mapH
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	x, y, ok := m.cellToLonLat(w/2, h/2, w, h)
	if !ok {
		return "", false
	}
	center := geom.Point{X: x, Y: y}
	near, ok := m.nearestFeature(center)
	if !ok {
		return "", false
	}

	name := filepath.Base(m.selPath)
	if m.selPath == "" {
		name = "<unsaved>"
	}
	var total float64
	for _, p := range m.polygons {
		total += geom.NetArea(p)
	}
	meta := []string{
		fmt.Sprintf("name: %s", name),
		fmt.Sprintf("bbox: [%.5f, %.5f, %.5f, %.5f]", m.bbox.MinX, m.bbox.MinY, m.bbox.MaxX, m.bbox.MaxY),
		m.counts(),
		fmt.Sprintf("center: x=%.6f y=%.6f", center.X, center.Y),
		fmt.Sprintf("nearest: %s #%d at %.6g", near.kind, near.index+1, near.dist),
	}
	if i := m.polygonAt(center); i >= 0 {
		p := m.polygons[i]
		meta = append(meta, fmt.Sprintf("inside: polygon #%d area=%.6g holes=%d", i+1, geom.Area(p), len(p.Interiors)))
	} else {
		meta = append(meta, "inside: none")
	}
	if len(m.polygons) > 0 {
		meta = append(meta, fmt.Sprintf("polygon area: %.6g", total))
	}
	if len(m.buffers) > 0 {
		meta = append(meta, fmt.Sprintf("buffers: %d", len(m.buffers)))
	}
	return strings.Join(meta, "\n"), true
}
