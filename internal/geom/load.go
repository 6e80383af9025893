package geom

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// SupportedExt reports whether Load understands files with extension ext.
func SupportedExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".geojson", ".json", ".csv", ".kml", ".wkt", ".shp":
		return true
	}
	return false
}

// Load picks a loader from the file extension.
func Load(path string) (Data, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		return LoadGeo(path)
	case ".csv":
		return LoadCSV(path)
	case ".kml":
		return LoadKML(path)
	case ".shp":
		return LoadShapefile(path)
	case ".wkt":
		b, err := os.ReadFile(path)
		if err != nil {
			return Data{}, err
		}
		return ParseWKTData(string(b))
	default:
		return Data{}, errors.New("unsupported file: " + ext)
	}
}
