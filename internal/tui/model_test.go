package tui

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"gisops/internal/geom"
)

func writeWKT(t *testing.T, wkt string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data.wkt")
	if err := os.WriteFile(p, []byte(wkt), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadAndBuffer(t *testing.T) {
	p := writeWKT(t, "POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))")
	m := NewWithPath(Config{Buffer: geom.BufferOptions{QuadrantSegments: 4}}, p)
	if len(m.polygons) != 1 || !m.showPolys {
		t.Fatalf("polygons = %v", m.polygons)
	}
	if m.selPath != p {
		t.Fatalf("selPath = %q", m.selPath)
	}

	want := math.Hypot(10, 10) * 0.02
	if d := m.bufferDistance(); math.Abs(d-want) > 1e-12 {
		t.Fatalf("auto distance = %v, want %v", d, want)
	}

	m = press(t, m, key("b"))
	if len(m.buffers) != 1 {
		t.Fatalf("buffers = %d", len(m.buffers))
	}
	if m.bbox.MinX >= 0 || m.bbox.MaxX <= 10 {
		t.Fatalf("view bbox not grown: %+v", m.bbox)
	}
	if m.extent != (geom.BBox{MaxX: 10, MaxY: 10}) {
		t.Fatalf("extent changed: %+v", m.extent)
	}

	// a second press recomputes from the data extent, not the grown view
	m = press(t, m, key("b"))
	if d := m.bufferDistance(); math.Abs(d-want) > 1e-12 {
		t.Fatalf("distance drifted to %v", d)
	}

	m = press(t, m, key("4"))
	if m.showBuffers {
		t.Fatalf("buffers still visible")
	}
}

func TestConfiguredBufferDistance(t *testing.T) {
	p := writeWKT(t, "LINESTRING (0 0, 10 0)")
	m := NewWithPath(Config{BufferDistance: 1}, p)
	m = press(t, m, key("b"))
	if len(m.buffers) != 1 {
		t.Fatalf("buffers = %d", len(m.buffers))
	}
	if got := geom.Area(m.buffers[0]); got < 20 || got > 20+math.Pi {
		t.Fatalf("buffer area = %v", got)
	}
}

func TestHoverFindsPolygon(t *testing.T) {
	p := writeWKT(t, "POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))")
	m := NewWithPath(Config{}, p)
	m.helpVisible = false
	m = press(t, m, tea.WindowSizeMsg{Width: 160, Height: 24})

	// map is 159x21 at row 1, so cell (79,10) is the data center
	m = press(t, m, tea.MouseMsg{X: 79, Y: 11})
	if !m.hovering || !m.hoverHasGeo {
		t.Fatalf("not hovering")
	}
	if math.Abs(m.hoverLon-5) > 1e-9 || math.Abs(m.hoverLat-5) > 1e-9 {
		t.Fatalf("hover at %v,%v", m.hoverLon, m.hoverLat)
	}
	if m.hoverPoly != 0 {
		t.Fatalf("hoverPoly = %d", m.hoverPoly)
	}
	if !strings.Contains(m.View(), "in poly #1") {
		t.Fatalf("footer missing polygon hint")
	}

	m = press(t, m, tea.MouseMsg{X: 0, Y: 0})
	if m.hovering || m.hoverPoly != -1 {
		t.Fatalf("hover outside map kept state")
	}
}

func TestInspect(t *testing.T) {
	p := writeWKT(t, "POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0), (4 4, 6 4, 6 6, 4 6, 4 4))")
	m := NewWithPath(Config{}, p)
	m = press(t, m, key("i"))
	if m.inspectPopup == "" {
		t.Fatalf("no popup: %s", m.status)
	}
	for _, want := range []string{"nearest: polygon #1", "polygon area: 96"} {
		if !strings.Contains(m.inspectPopup, want) {
			t.Errorf("popup missing %q:\n%s", want, m.inspectPopup)
		}
	}
	m = press(t, m, key("i"))
	if m.inspectPopup != "" {
		t.Fatalf("popup not dismissed")
	}
}

func TestPasteWKT(t *testing.T) {
	m := New(Config{})
	m = press(t, m, key("p"))
	if !m.pasteMode {
		t.Fatalf("paste mode not entered")
	}
	m.ta.SetValue("MULTILINESTRING ((0 0, 4 0), (0 1, 4 1))")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.pasteMode {
		t.Fatalf("still in paste mode: %s", m.status)
	}
	if len(m.lines) != 2 || !m.showLines {
		t.Fatalf("lines = %v", m.lines)
	}

	cols, rows := m.buildAttributes()
	if len(cols) == 0 || len(rows) != 2 || rows[0][0] != "line" || rows[0][2] != "4" {
		t.Fatalf("measurements = %v %v", cols, rows)
	}
}

func TestRenderMap(t *testing.T) {
	p := writeWKT(t, "LINESTRING (0 0, 10 10)")
	m := NewWithPath(Config{}, p)
	out := m.renderMap(20, 10)
	rows := strings.Split(out, "\n")
	if len(rows) != 10 {
		t.Fatalf("rows = %d", len(rows))
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("nothing drawn")
	}
}
