package geom

// Point is a planar coordinate. Equality is exact.
type Point struct {
	X float64
	Y float64
}

// LineString is an ordered path of points. Whether it is closed depends on
// the operation consuming it.
type LineString []Point

// Polygon has one exterior ring and zero or more holes. Rings are implicitly
// closed; a duplicated closing point is allowed.
type Polygon struct {
	Exterior  LineString
	Interiors []LineString
}

func NewPoint(x, y float64) Point { return Point{X: x, Y: y} }

// NewLineString copies pts so later changes by the caller are not observed.
func NewLineString(pts ...Point) LineString {
	ls := make(LineString, len(pts))
	copy(ls, pts)
	return ls
}

func NewPolygon(exterior LineString, interiors ...LineString) Polygon {
	return Polygon{Exterior: exterior, Interiors: interiors}
}

// Closed reports whether the path explicitly repeats its first point.
func (ls LineString) Closed() bool {
	return len(ls) > 1 && ls[0] == ls[len(ls)-1]
}

// ring returns the vertices without an explicit closing duplicate.
func (ls LineString) ring() LineString {
	if ls.Closed() {
		return ls[:len(ls)-1]
	}
	return ls
}

type BBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Extend grows b to cover p. The first call on an empty box (valid=false)
// collapses it onto p.
func (b BBox) Extend(p Point, valid bool) BBox {
	if !valid {
		return BBox{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
	}
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
	return b
}

// Data is a loaded dataset for rendering and analysis.
type Data struct {
	Points   []Point
	Lines    []LineString
	Polygons []Polygon
	BBox     BBox

	n int // vertices seen, drives BBox initialisation
}

func (d *Data) extend(pts ...Point) {
	for _, p := range pts {
		d.BBox = d.BBox.Extend(p, d.n > 0)
		d.n++
	}
}

func (d *Data) AddPoint(p Point) {
	d.Points = append(d.Points, p)
	d.extend(p)
}

func (d *Data) AddLine(ls LineString) {
	d.Lines = append(d.Lines, ls)
	d.extend(ls...)
}

func (d *Data) AddPolygon(p Polygon) {
	d.Polygons = append(d.Polygons, p)
	d.extend(p.Exterior...)
	for _, h := range p.Interiors {
		d.extend(h...)
	}
}

// Empty reports whether nothing was loaded.
func (d Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}
