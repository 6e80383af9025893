package tui

import (
	"log/slog"
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"gisops/internal/geom"
)

// Config carries the viewer's settings. A zero Config is usable.
type Config struct {
	Log    *slog.Logger
	Buffer geom.BufferOptions
	// BufferDistance for the b key; 0 picks 2% of the data extent.
	BufferDistance float64
}

type Model struct {
	cfg Config
	log *slog.Logger

	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int

	status string

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Data
	points   []geom.Point
	bbox     geom.BBox // view extent, grows to cover buffers
	extent   geom.BBox // extent of the loaded data
	lines    []geom.LineString
	polygons []geom.Polygon
	buffers  []geom.Polygon

	// last rendered map size (for inspect)
	mapW int
	mapH int

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// layer visibility
	showPoints  bool
	showLines   bool
	showPolys   bool
	showBuffers bool

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverMicX   int
	hoverMicY   int
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64
	hoverPoly   int // index into polygons containing the cursor, -1 if none

	// attributes table
	showAttrs bool
	tbl       table.Model
}

func New(cfg Config) Model {
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := Model{
		cfg:         cfg,
		log:         log,
		showSidebar: false,
		helpVisible: true,
		zoom:        1.0,
		status:      "gisops ready",
		showPoints:  true,
		showLines:   true,
		showPolys:   true,
		showBuffers: true,
		hoverPoly:   -1,
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste WKT here (POINT, LINESTRING, POLYGON and MULTI*). Press Enter to render; Esc to cancel."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// columns are inferred per dataset
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath preloads a file's data at launch.
func NewWithPath(cfg Config, path string) Model {
	m := New(cfg)
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// setData replaces the dataset and picks the most informative layers.
func (m *Model) setData(d geom.Data) {
	m.points, m.lines, m.polygons = d.Points, d.Lines, d.Polygons
	m.bbox, m.extent = d.BBox, d.BBox
	m.buffers = nil
	m.hoverPoly = -1
	m.inspectPopup = ""
	// prefer polys > lines > points for visibility
	m.showPolys = len(m.polygons) > 0
	m.showLines = len(m.lines) > 0 && !m.showPolys
	m.showPoints = len(m.points) > 0 && !m.showPolys && !m.showLines
	m.showBuffers = true
}
