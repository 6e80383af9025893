package tui

import (
	"sort"
	"strings"

	"gisops/internal/geom"
)

// dot addresses the sub-cell grid: two columns and four rows per terminal
// cell.
type dot struct{ x, y int }

// dotBits[col][row] is the bit a dot sets in a U+2800 braille pattern.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// canvas is a w x h grid of braille cells that draws geometry through proj.
type canvas struct {
	w, h  int
	cells []uint8 // row-major dot masks
	proj  func(geom.Point) (dot, bool)
}

func newCanvas(w, h int, proj func(geom.Point) (dot, bool)) *canvas {
	return &canvas{w: w, h: h, cells: make([]uint8, w*h), proj: proj}
}

func (c *canvas) plot(d dot) {
	if d.x < 0 || d.y < 0 || d.x >= 2*c.w || d.y >= 4*c.h {
		return
	}
	c.cells[(d.y/4)*c.w+d.x/2] |= dotBits[d.x%2][d.y%4]
}

// line plots every dot on the segment a-b, stepping one dot along the
// longer axis at a time.
func (c *canvas) line(a, b dot) {
	dx, dy := b.x-a.x, b.y-a.y
	n := max(abs(dx), abs(dy))
	if n == 0 {
		c.plot(a)
		return
	}
	for i := 0; i <= n; i++ {
		c.plot(dot{a.x + roundDiv(i*dx, n), a.y + roundDiv(i*dy, n)})
	}
}

// roundDiv is p/q rounded half away from zero, for q > 0.
func roundDiv(p, q int) int {
	if p < 0 {
		return -((-p + q/2) / q)
	}
	return (p + q/2) / q
}

// project maps ls onto the dot grid, skipping points proj rejects.
func (c *canvas) project(ls geom.LineString) []dot {
	out := make([]dot, 0, len(ls))
	for _, p := range ls {
		if d, ok := c.proj(p); ok {
			out = append(out, d)
		}
	}
	return out
}

func (c *canvas) point(p geom.Point) {
	if d, ok := c.proj(p); ok {
		c.plot(d)
	}
}

// path strokes ls, joining the last point back to the first when closed.
func (c *canvas) path(ls geom.LineString, closed bool) {
	c.stroke(c.project(ls), closed)
}

func (c *canvas) stroke(ds []dot, closed bool) {
	for i := 1; i < len(ds); i++ {
		c.line(ds[i-1], ds[i])
	}
	if closed && len(ds) > 2 {
		c.line(ds[len(ds)-1], ds[0])
	}
}

// polygon fills with the even-odd rule across all rings, so holes stay
// empty, then outlines every ring.
func (c *canvas) polygon(poly geom.Polygon) {
	var rings [][]dot
	for _, r := range append([]geom.LineString{poly.Exterior}, poly.Interiors...) {
		if ds := c.project(r); len(ds) >= 3 {
			rings = append(rings, ds)
		}
	}
	if len(rings) == 0 {
		return
	}
	for y := 0; y < 4*c.h; y++ {
		var xs []int
		for _, r := range rings {
			for i, a := range r {
				b := r[(i+1)%len(r)]
				if (y >= a.y) != (y >= b.y) {
					xs = append(xs, a.x+(y-a.y)*(b.x-a.x)/(b.y-a.y))
				}
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := max(0, xs[i]); x <= min(xs[i+1], 2*c.w-1); x++ {
				c.plot(dot{x, y})
			}
		}
	}
	for _, r := range rings {
		c.stroke(r, true)
	}
}

// glyph is the braille rune of cell (x, y), or a space when it is empty.
func (c *canvas) glyph(x, y int) rune {
	if mask := c.cells[y*c.w+x]; mask != 0 {
		return rune(0x2800 + int(mask))
	}
	return ' '
}

// String renders the canvas as h newline-separated rows.
func (c *canvas) String() string {
	var sb strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			sb.WriteRune(c.glyph(x, y))
		}
	}
	return sb.String()
}
