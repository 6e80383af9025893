package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// discArea is the area of the regular polygon Buffer uses for a full circle.
func discArea(d float64, qs int) float64 {
	return 2 * float64(qs) * d * d * math.Sin(math.Pi/float64(2*qs))
}

func assertFinite(t *testing.T, ls LineString) {
	t.Helper()
	for i, p := range ls {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Fatalf("vertex %d is not finite: %v", i, p)
		}
	}
}

func TestBufferDegenerateInput(t *testing.T) {
	for _, ls := range []LineString{nil, {}, {{1, 2}}} {
		got := Buffer(ls, 5)
		if len(got.Exterior) != 0 || len(got.Interiors) != 0 {
			t.Errorf("Buffer(%v) = %v, want empty polygon", ls, got)
		}
	}
}

func TestBufferSegment(t *testing.T) {
	const d = 2.0
	line := NewLineString(Point{0, 0}, Point{10, 0})
	got := Buffer(line, d)
	ext := got.Exterior
	assertFinite(t, ext)
	if !ext.Closed() {
		t.Fatalf("ring is not closed: %v", ext)
	}
	if len(got.Interiors) != 0 {
		t.Errorf("buffer must not produce holes")
	}
	if SignedArea(ext) <= 0 {
		t.Errorf("ring should be counter-clockwise")
	}
	want := 2*d*10 + discArea(d, DefaultQuadrantSegments)
	if a := Area(got); !floats.EqualWithinAbsOrRel(a, want, 1e-9, 1e-9) {
		t.Errorf("area = %v, want %v", a, want)
	}
	// every outline vertex sits exactly d away from the segment
	for _, p := range ext {
		if dist := DistanceToPath(p, line); !floats.EqualWithinAbs(dist, d, 1e-9) {
			t.Errorf("vertex %v is %v from the line, want %v", p, dist, d)
		}
	}
}

func TestBufferClosedSquare(t *testing.T) {
	const d, qs = 1.0, 4
	ring := append(square(4), Point{0, 0})
	got := BufferWithOptions(ring, d, BufferOptions{QuadrantSegments: qs})
	assertFinite(t, got.Exterior)
	want := 16 + 4*4*d + discArea(d, qs)
	if a := Area(got); !floats.EqualWithinAbsOrRel(a, want, 1e-9, 1e-9) {
		t.Errorf("area = %v, want %v", a, want)
	}
	// clockwise input gives the same outline area
	cw := append(reversed(square(4)), Point{0, 4})
	if a := Area(BufferWithOptions(cw, d, BufferOptions{QuadrantSegments: qs})); !floats.EqualWithinAbsOrRel(a, want, 1e-9, 1e-9) {
		t.Errorf("clockwise area = %v, want %v", a, want)
	}
	for _, p := range square(4) {
		if !Contains(p, got) {
			t.Errorf("buffered ring should contain input vertex %v", p)
		}
	}
}

func TestBufferVerticesWithinDistance(t *testing.T) {
	lines := []LineString{
		{{0, 0}, {5, 0}, {5, 5}},
		{{0, 0}, {5, 0}, {5, 5}, {0, 5}},
		{{0, 0}, {3, 4}, {6, 0}, {9, 4}},
		{{0, 0}, {10, 0}, {0, 0.5}},
		{{0, 0}, {4, 0}, {0, 0}},
		{{1, 1}, {1, 1}, {2, 3}, {2, 3}, {5, -1}},
	}
	for _, d := range []float64{0.1, 1, 3.5} {
		for _, qs := range []int{1, 4, 8, 16} {
			eps := d * (1 - math.Cos(math.Pi/4/float64(qs)))
			for _, line := range lines {
				got := BufferWithOptions(line, d, BufferOptions{QuadrantSegments: qs})
				assertFinite(t, got.Exterior)
				if Area(got) <= 0 {
					t.Errorf("buffer(%v, %v) has no area", line, d)
				}
				for _, v := range line {
					if dist := DistanceToPath(v, got.Exterior); dist > d+eps+1e-9 {
						t.Errorf("buffer(%v, %v, qs=%d): vertex %v is %v from outline", line, d, qs, v, dist)
					}
				}
			}
		}
	}
}

func TestBufferZeroDistance(t *testing.T) {
	line := NewLineString(Point{0, 0}, Point{3, 1}, Point{5, -2}, Point{8, 0})
	got := Buffer(line, 0)
	assertFinite(t, got.Exterior)
	for _, p := range got.Exterior {
		if dist := DistanceToPath(p, line); dist > 1e-12 {
			t.Errorf("zero buffer vertex %v is off the line by %v", p, dist)
		}
		found := false
		for _, v := range line {
			if Distance(p, v) <= 1e-12 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("zero buffer vertex %v does not match an input vertex", p)
		}
	}
	for _, v := range line {
		if DistanceToPath(v, got.Exterior) > 1e-12 {
			t.Errorf("input vertex %v missing from zero buffer", v)
		}
	}
}

func TestBufferNegativeDistanceUsesMagnitude(t *testing.T) {
	line := NewLineString(Point{0, 0}, Point{4, 1}, Point{6, 5})
	pos, neg := Buffer(line, 1.5), Buffer(line, -1.5)
	if len(pos.Exterior) != len(neg.Exterior) {
		t.Fatalf("vertex counts differ: %d vs %d", len(pos.Exterior), len(neg.Exterior))
	}
	for i := range pos.Exterior {
		if pos.Exterior[i] != neg.Exterior[i] {
			t.Fatalf("vertex %d differs: %v vs %v", i, pos.Exterior[i], neg.Exterior[i])
		}
	}
}

func TestBufferCollapsedPath(t *testing.T) {
	const d = 2.0
	got := Buffer(NewLineString(Point{3, 3}, Point{3, 3}), d)
	if a := Area(got); !floats.EqualWithinAbsOrRel(a, discArea(d, DefaultQuadrantSegments), 1e-9, 1e-9) {
		t.Errorf("collapsed path area = %v", a)
	}
	zero := Buffer(NewLineString(Point{3, 3}, Point{3, 3}), 0)
	if len(zero.Exterior) != 1 || zero.Exterior[0] != (Point{3, 3}) {
		t.Errorf("collapsed zero buffer = %v", zero.Exterior)
	}
}

func TestBufferOutAndBack(t *testing.T) {
	const d = 1.0
	there := Buffer(NewLineString(Point{0, 0}, Point{4, 0}), d)
	back := Buffer(NewLineString(Point{0, 0}, Point{4, 0}, Point{0, 0}), d)
	if a, b := Area(there), Area(back); !floats.EqualWithinAbsOrRel(a, b, 1e-9, 1e-9) {
		t.Errorf("out-and-back area = %v, want %v", b, a)
	}
}

func TestBufferDeterministic(t *testing.T) {
	line := NewLineString(Point{0, 0}, Point{2, 7}, Point{9, 3}, Point{4, -2})
	a, b := Buffer(line, 1.25), Buffer(line, 1.25)
	if len(a.Exterior) != len(b.Exterior) {
		t.Fatalf("lengths differ")
	}
	for i := range a.Exterior {
		if a.Exterior[i] != b.Exterior[i] {
			t.Fatalf("vertex %d differs", i)
		}
	}
}

func TestBufferFoldedPathsCoverNearbyPoints(t *testing.T) {
	cases := []struct {
		name  string
		line  LineString
		d     float64
		holes bool // the input encloses area farther than d from it
	}{
		{"open u", NewLineString(Point{0, 0}, Point{10, 0}, Point{10, 1}, Point{0, 1}), 2, false},
		{"hairpin", NewLineString(Point{0, 0}, Point{10, 0}, Point{0, 0.5}), 1, false},
		{"zigzag", NewLineString(Point{0, 0}, Point{1, 3}, Point{2, 0}, Point{3, 3}), 1, false},
		{"notched ring", NewLineString(Point{0, 0}, Point{10, 0}, Point{10, 10}, Point{6, 10}, Point{6, 2},
			Point{4, 2}, Point{4, 10}, Point{0, 10}, Point{0, 0}), 2, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Buffer(c.line, c.d)
			assertFinite(t, got.Exterior)
			if SignedArea(got.Exterior) <= 0 {
				t.Errorf("ring should be counter-clockwise")
			}
			var box BBox
			for i, p := range c.line {
				box = box.Extend(p, i > 0)
			}
			for x := box.MinX - c.d - 0.5; x <= box.MaxX+c.d+0.5; x += 0.25 {
				for y := box.MinY - c.d - 0.5; y <= box.MaxY+c.d+0.5; y += 0.25 {
					p := Point{x, y}
					dist := DistanceToPath(p, c.line)
					if dist < c.d-0.05 && !Contains(p, got) {
						t.Errorf("%v is %v from the line but outside the buffer", p, dist)
					}
					if !c.holes && dist > c.d+1e-9 && Contains(p, got) {
						t.Errorf("%v is %v from the line but inside the buffer", p, dist)
					}
				}
			}
		})
	}
}

func TestBufferOpenU(t *testing.T) {
	const r = 2.0
	got := Buffer(NewLineString(Point{0, 0}, Point{10, 0}, Point{10, 1}, Point{0, 1}), r)
	for _, p := range []Point{{5, 0.5}, {2, 0.5}} {
		if !Contains(p, got) {
			t.Errorf("buffer should contain %v", p)
		}
	}
	// band, right side rectangle, two quarter discs and the left caps whose
	// discs overlap by a lens
	lens := 2*r*r*math.Acos(0.5/r) - 0.5*math.Sqrt(4*r*r-1)
	want := 10*5 + 2*1 + 2*math.Pi + (2*math.Pi*r*r-lens)/2
	if a := Area(got); a > want+1e-9 || a < want-0.2 {
		t.Errorf("area = %v, want about %v", a, want)
	}
}

func TestBufferNotchedRing(t *testing.T) {
	const d = 2.0
	ring := NewLineString(Point{0, 0}, Point{10, 0}, Point{10, 10}, Point{6, 10}, Point{6, 2},
		Point{4, 2}, Point{4, 10}, Point{0, 10}, Point{0, 0})
	got := Buffer(ring, d)
	for _, p := range []Point{{5, 5}, {5, 11}, {2, 2}} {
		if !Contains(p, got) {
			t.Errorf("buffer should contain %v", p)
		}
	}
	for _, v := range ring {
		if dist := DistanceToPath(v, got.Exterior); dist < d/2 {
			t.Errorf("input vertex %v is %v from the outline", v, dist)
		}
	}
	if n := len(got.Interiors); n != 0 {
		t.Errorf("got %d holes", n)
	}
}

func TestOuterBoundary(t *testing.T) {
	sq := outerBoundary(square(4))
	if len(sq) != 4 || !floats.EqualWithinAbs(SignedArea(sq), 16, 1e-12) {
		t.Errorf("simple ring changed: %v", sq)
	}
	bowtie := outerBoundary(NewLineString(Point{0, 0}, Point{2, 2}, Point{2, 0}, Point{0, 2}))
	if len(bowtie) != 6 || !floats.EqualWithinAbs(SignedArea(bowtie), 2, 1e-12) {
		t.Errorf("bowtie outline = %v, area %v", bowtie, SignedArea(bowtie))
	}
	// a loop folded back inside the ring is dropped
	curl := outerBoundary(NewLineString(Point{0, 0}, Point{4, 0}, Point{4, 4}, Point{1, 1}, Point{3, 1}, Point{0, 4}))
	if !floats.EqualWithinAbs(SignedArea(curl), 16-4, 1e-9) {
		t.Errorf("curl area = %v", SignedArea(curl))
	}
}
