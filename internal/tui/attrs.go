package tui

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	table "github.com/charmbracelet/bubbles/table"

	"gisops/internal/geom"
)

const maxColW = 24

// refreshAttrsFromCurrent rebuilds the table from the current dataset.
func (m *Model) refreshAttrsFromCurrent() {
	cols, rows := m.buildAttributes()
	// an empty table would panic on render
	if len(cols) == 0 || len(rows) == 0 {
		m.showAttrs = false
		m.status = "no attributes for current dataset"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	for _, c := range cols {
		tcols = append(tcols, table.Column{Title: c, Width: min(len(c)+2, maxColW)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		cells := make([]string, len(tcols))
		cells[0] = strconv.Itoa(i + 1)
		copy(cells[1:], r)
		trows = append(trows, table.Row(cells))
	}
	// clear rows first so columns and rows never disagree
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
}

// buildAttributes returns columns and rows for the current dataset. Files
// without attributes, and pasted WKT, get a per-feature measurement table.
func (m *Model) buildAttributes() ([]string, [][]string) {
	var cols []string
	var rows [][]string
	switch strings.ToLower(filepath.Ext(m.selPath)) {
	case ".geojson", ".json":
		cols, rows = attrsGeoJSON(m.selPath)
	case ".csv":
		cols, rows = attrsCSV(m.selPath)
	case ".shp":
		cols, rows, _ = geom.ShapefileAttributes(m.selPath)
	}
	if len(cols) > 0 && len(rows) > 0 {
		return cols, rows
	}
	return m.measurements()
}

// measurements lists every line and polygon with its size.
func (m *Model) measurements() ([]string, [][]string) {
	cols := []string{"kind", "vertices", "length", "area", "holes"}
	var rows [][]string
	for _, ls := range m.lines {
		rows = append(rows, []string{"line", strconv.Itoa(len(ls)), fmtFloat(pathLength(ls)), "", ""})
	}
	for _, p := range m.polygons {
		rows = append(rows, []string{
			"polygon", strconv.Itoa(len(p.Exterior)), fmtFloat(pathLength(closeRing(p.Exterior))),
			fmtFloat(geom.Area(p)), strconv.Itoa(len(p.Interiors)),
		})
	}
	if len(rows) == 0 && len(m.points) > 0 {
		rows = append(rows, []string{"points", strconv.Itoa(len(m.points)), "", "", ""})
	}
	return cols, rows
}

func pathLength(ls geom.LineString) float64 {
	var l float64
	for i := 1; i < len(ls); i++ {
		l += geom.Distance(ls[i-1], ls[i])
	}
	return l
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', 6, 64) }

// attrsGeoJSON unions the property keys of all features in first-seen order.
func attrsGeoJSON(path string) ([]string, [][]string) {
	props, err := geom.GeoJSONProperties(path)
	if err != nil || len(props) == 0 {
		return nil, nil
	}
	var order []string
	seen := map[string]bool{}
	for _, pm := range props {
		for _, k := range slices.Sorted(maps.Keys(pm)) {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	rows := make([][]string, 0, len(props))
	for _, pm := range props {
		vals := make([]string, len(order))
		for i, k := range order {
			vals[i] = fmtValue(pm[k])
		}
		rows = append(rows, vals)
	}
	return order, rows
}

func fmtValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		return strconv.FormatBool(t)
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}

// attrsCSV returns the header as columns and each record as a row.
func attrsCSV(path string) ([]string, [][]string) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil || len(recs) == 0 {
		return nil, nil
	}
	header := recs[0]
	rows := make([][]string, 0, len(recs)-1)
	for _, rec := range recs[1:] {
		vals := make([]string, len(header))
		copy(vals, rec)
		rows = append(rows, vals)
	}
	return header, rows
}
