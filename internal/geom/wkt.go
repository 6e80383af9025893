package geom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// ParseWKTData parses POINT, MULTIPOINT, LINESTRING, MULTILINESTRING,
// POLYGON, MULTIPOLYGON and GEOMETRYCOLLECTION text.
func ParseWKTData(s string) (Data, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Data{}, errors.New("empty wkt")
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return Data{}, fmt.Errorf("wkt: %w", err)
	}
	var d Data
	d.addOrb(g)
	if d.Empty() {
		return Data{}, errors.New("wkt: no coordinates parsed")
	}
	return d, nil
}

// addOrb flattens an orb geometry into d.
func (d *Data) addOrb(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		d.AddPoint(fromOrbPoint(g))
	case orb.MultiPoint:
		for _, p := range g {
			d.AddPoint(fromOrbPoint(p))
		}
	case orb.LineString:
		d.AddLine(fromOrbPath(g))
	case orb.MultiLineString:
		for _, ls := range g {
			d.AddLine(fromOrbPath(ls))
		}
	case orb.Ring:
		d.AddPolygon(NewPolygon(fromOrbPath(g)))
	case orb.Polygon:
		d.AddPolygon(fromOrbPolygon(g))
	case orb.MultiPolygon:
		for _, p := range g {
			d.AddPolygon(fromOrbPolygon(p))
		}
	case orb.Collection:
		for _, sub := range g {
			d.addOrb(sub)
		}
	}
}

func fromOrbPoint(p orb.Point) Point { return Point{X: p[0], Y: p[1]} }

func fromOrbPath(pts []orb.Point) LineString {
	ls := make(LineString, len(pts))
	for i, p := range pts {
		ls[i] = fromOrbPoint(p)
	}
	return ls
}

func fromOrbPolygon(p orb.Polygon) Polygon {
	if len(p) == 0 {
		return Polygon{}
	}
	var holes []LineString
	for _, r := range p[1:] {
		holes = append(holes, fromOrbPath(r))
	}
	return NewPolygon(fromOrbPath(p[0]), holes...)
}
