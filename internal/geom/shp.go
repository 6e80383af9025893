package geom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
)

// LoadShapefile reads point, multipoint, polyline and polygon shapes (and
// their Z/M variants) from a .shp file. Polygon parts after the first are
// kept as holes.
func LoadShapefile(path string) (Data, error) {
	r, err := shp.Open(path)
	if err != nil {
		return Data{}, fmt.Errorf("shp: %w", err)
	}
	defer r.Close()
	var d Data
	for r.Next() {
		_, s := r.Shape()
		switch s := s.(type) {
		case *shp.Point:
			d.AddPoint(Point{X: s.X, Y: s.Y})
		case *shp.PointZ:
			d.AddPoint(Point{X: s.X, Y: s.Y})
		case *shp.PointM:
			d.AddPoint(Point{X: s.X, Y: s.Y})
		case *shp.MultiPoint:
			for _, p := range s.Points {
				d.AddPoint(Point{X: p.X, Y: p.Y})
			}
		case *shp.PolyLine:
			for _, ls := range shpParts(s.Parts, s.Points) {
				d.AddLine(ls)
			}
		case *shp.PolyLineZ:
			for _, ls := range shpParts(s.Parts, s.Points) {
				d.AddLine(ls)
			}
		case *shp.Polygon:
			d.addShpPolygon(shpParts(s.Parts, s.Points))
		case *shp.PolygonZ:
			d.addShpPolygon(shpParts(s.Parts, s.Points))
		}
	}
	if err := r.Err(); err != nil {
		return Data{}, fmt.Errorf("shp: %w", err)
	}
	if d.Empty() {
		return Data{}, errors.New("shp: no geometries found")
	}
	return d, nil
}

// ShapefileAttributes returns the dBASE field names of a shapefile and one
// row of values per shape. A missing .dbf gives no columns.
func ShapefileAttributes(path string) ([]string, [][]string, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("shp: %w", err)
	}
	defer r.Close()
	fields := r.Fields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.String()
	}
	var rows [][]string
	for r.Next() {
		n, _ := r.Shape()
		row := make([]string, len(fields))
		for k := range fields {
			row[k] = strings.TrimSpace(r.ReadAttribute(n, k))
		}
		rows = append(rows, row)
	}
	if err := r.Err(); err != nil {
		return nil, nil, fmt.Errorf("shp: %w", err)
	}
	return cols, rows, nil
}

func (d *Data) addShpPolygon(rings []LineString) {
	if len(rings) == 0 {
		return
	}
	d.AddPolygon(NewPolygon(rings[0], rings[1:]...))
}

// shpParts splits a flat point list at the given part offsets.
func shpParts(parts []int32, pts []shp.Point) []LineString {
	var out []LineString
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(pts) {
			continue
		}
		ls := make(LineString, 0, end-start)
		for _, p := range pts[start:end] {
			ls = append(ls, Point{X: p.X, Y: p.Y})
		}
		out = append(out, ls)
	}
	return out
}
