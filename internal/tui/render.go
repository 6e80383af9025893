package tui

import (
	"strings"

	"gisops/internal/geom"
)

// cellToLonLat converts a map cell back to data coordinates using bbox, zoom
// and pan.
func (m Model) cellToLonLat(cx, cy, w, h int) (float64, float64, bool) {
	if !(m.bbox.MaxX > m.bbox.MinX && m.bbox.MaxY > m.bbox.MinY) {
		return 0, 0, false
	}
	if w <= 1 || h <= 1 {
		return 0, 0, false
	}
	zx := float64(cx-m.offsetX) / float64(w-1)
	zy := 1.0 - float64(cy-m.offsetY)/float64(h-1)
	nx := 0.5 + (zx-0.5)/m.zoom
	ny := 0.5 + (zy-0.5)/m.zoom
	lon := m.bbox.MinX + nx*(m.bbox.MaxX-m.bbox.MinX)
	lat := m.bbox.MinY + ny*(m.bbox.MaxY-m.bbox.MinY)
	return lon, lat, true
}

// screenXYMicro maps data coordinates into a 2x4 microgrid per cell for
// braille rendering.
func (m Model) screenXYMicro(lon, lat float64, w, h int) (int, int, bool) {
	if !(m.bbox.MaxX > m.bbox.MinX && m.bbox.MaxY > m.bbox.MinY) {
		return 0, 0, false
	}
	nx := (lon - m.bbox.MinX) / (m.bbox.MaxX - m.bbox.MinX)
	ny := (lat - m.bbox.MinY) / (m.bbox.MaxY - m.bbox.MinY)
	zx := 0.5 + (nx-0.5)*m.zoom
	zy := 0.5 + (ny-0.5)*m.zoom
	wMic := w * 2
	hMic := h * 4
	sx := int(zx*float64(wMic-1)) + m.offsetX*2
	sy := int((1.0-zy)*float64(hMic-1)) + m.offsetY*4
	return sx, sy, true
}

// mapCanvas is a w x h canvas projecting through the current zoom and pan.
func (m Model) mapCanvas(w, h int) *canvas {
	return newCanvas(w, h, func(p geom.Point) (dot, bool) {
		x, y, ok := m.screenXYMicro(p.X, p.Y, w, h)
		return dot{x, y}, ok
	})
}

// renderMap draws the visible layers into a w x h braille canvas. Buffers
// are drawn underneath the data in their own color.
func (m Model) renderMap(w, h int) string {
	data, halo := m.mapCanvas(w, h), m.mapCanvas(w, h)

	if m.showPolys {
		for _, poly := range m.polygons {
			data.polygon(poly)
		}
	}
	if m.showLines {
		for _, ls := range m.lines {
			data.path(ls, false)
		}
	}
	if m.showPoints {
		for _, p := range m.points {
			data.point(p)
		}
	}
	if m.showBuffers {
		for _, b := range m.buffers {
			halo.path(b.Exterior, true)
		}
	}

	rows := make([]string, h)
	for y := 0; y < h; y++ {
		var sb strings.Builder
		for x := 0; x < w; x++ {
			top, under := data.glyph(x, y), halo.glyph(x, y)
			switch {
			case m.hovering && x == m.hoverMicX/2 && y == m.hoverMicY/4:
				sb.WriteString(hoverStyle.Render("◯"))
			case top != ' ':
				sb.WriteRune(top)
			case under != ' ':
				sb.WriteString(bufferStyle.Render(string(under)))
			default:
				sb.WriteByte(' ')
			}
		}
		rows[y] = sb.String()
	}
	return strings.Join(rows, "\n")
}
