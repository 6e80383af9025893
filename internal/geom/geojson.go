package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// LoadGeo reads a GeoJSON file: a FeatureCollection, a Feature or a bare
// geometry of any type.
func LoadGeo(path string) (Data, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseGeoJSON(b)
}

func ParseGeoJSON(b []byte) (Data, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return Data{}, fmt.Errorf("geojson: %w", err)
	}
	var d Data
	switch head.Type {
	case "":
		return Data{}, errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(b)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		for _, f := range fc.Features {
			if f.Geometry != nil {
				d.addOrb(f.Geometry)
			}
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(b)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		if f.Geometry != nil {
			d.addOrb(f.Geometry)
		}
	default:
		g, err := geojson.UnmarshalGeometry(b)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		d.addOrb(g.Geometry())
	}
	if d.Empty() {
		return Data{}, errors.New("no geometries found")
	}
	return d, nil
}

// GeoJSONProperties returns the properties of every feature in a GeoJSON
// file, in feature order. Bare geometries have none.
func GeoJSONProperties(path string) ([]map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}
	var features []*geojson.Feature
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(b)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		features = fc.Features
	case "Feature":
		f, err := geojson.UnmarshalFeature(b)
		if err != nil {
			return nil, fmt.Errorf("geojson: %w", err)
		}
		features = []*geojson.Feature{f}
	default:
		return nil, nil
	}
	out := make([]map[string]any, 0, len(features))
	for _, f := range features {
		out = append(out, map[string]any(f.Properties))
	}
	return out, nil
}
