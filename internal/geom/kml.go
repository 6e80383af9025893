package geom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlGeometry struct {
	Points   []kmlCoords   `xml:"Point"`
	Lines    []kmlCoords   `xml:"LineString"`
	Polygons []kmlPolygon  `xml:"Polygon"`
	Multi    []kmlGeometry `xml:"MultiGeometry"`
}

// LoadKML extracts Point, LineString and Polygon placemarks at any depth.
// KML coordinates are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	return ParseKML(f)
}

func ParseKML(r io.Reader) (Data, error) {
	var d Data
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Data{}, fmt.Errorf("kml: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlGeometry
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return Data{}, fmt.Errorf("kml: %w", err)
		}
		d.addKML(pm)
	}
	if d.Empty() {
		return Data{}, errors.New("kml: no geometries found")
	}
	return d, nil
}

func (d *Data) addKML(g kmlGeometry) {
	for _, p := range g.Points {
		for _, pt := range parseKMLCoords(p.Coordinates) {
			d.AddPoint(pt)
		}
	}
	for _, l := range g.Lines {
		if ls := parseKMLCoords(l.Coordinates); len(ls) > 0 {
			d.AddLine(ls)
		}
	}
	for _, p := range g.Polygons {
		ext := parseKMLCoords(p.Outer.Coordinates)
		if len(ext) == 0 {
			continue
		}
		var holes []LineString
		for _, in := range p.Inner {
			holes = append(holes, parseKMLCoords(in.Coordinates))
		}
		d.AddPolygon(NewPolygon(ext, holes...))
	}
	for _, m := range g.Multi {
		d.addKML(m)
	}
}

// parseKMLCoords reads whitespace separated "lon,lat[,alt]" tuples,
// skipping malformed ones.
func parseKMLCoords(s string) LineString {
	var ls LineString
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		ls = append(ls, Point{X: lon, Y: lat})
	}
	return ls
}
