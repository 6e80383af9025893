package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"gisops/internal/config"
	"gisops/internal/geom"
	"gisops/internal/gisops"
	"gisops/internal/logging"
	"gisops/internal/server"
	"gisops/internal/tui"
)

type app struct {
	cfgPath string
	input   string

	cfg config.Config
	log *slog.Logger
	reg *prometheus.Registry
	svc *gisops.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gisops [file]",
		Short: "Planar geometry: distance, area, containment and buffers.",
		Long: `gisops runs planar geometry operations on JSON coordinates.

Without a subcommand it opens a terminal viewer, optionally preloading a
GeoJSON, CSV, KML, WKT or shapefile dataset. The subcommands run a single
operation, a batch of operations, or an HTTP server.

Settings come from the file given by --config (TOML) and from GISOPS_*
environment variables, e.g. GISOPS_BUFFER_QUADRANT_SEGMENTS=16.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runViewer,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to a TOML configuration file")
	root.AddCommand(
		a.distanceCmd(),
		a.areaCmd(),
		a.containsCmd(),
		a.bufferCmd(),
		a.batchCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// the viewer owns the terminal, so it only logs to a file
	var sink io.Writer = cmd.ErrOrStderr()
	if cmd == cmd.Root() {
		sink = nil
	}
	a.log = logging.New(cfg.Log, sink)

	a.reg = prometheus.NewRegistry()
	a.svc = gisops.NewService(gisops.Options{
		Logger:     a.log,
		Buffer:     geom.BufferOptions{QuadrantSegments: cfg.Buffer.QuadrantSegments},
		Workers:    cfg.Batch.Workers,
		Registerer: a.reg,
	})
	return nil
}

func (a *app) runViewer(cmd *cobra.Command, args []string) error {
	tcfg := tui.Config{
		Log:            a.log,
		Buffer:         geom.BufferOptions{QuadrantSegments: a.cfg.Buffer.QuadrantSegments},
		BufferDistance: a.cfg.Buffer.Distance,
	}
	var m tea.Model
	if len(args) > 0 {
		m = tui.NewWithPath(tcfg, args[0])
	} else {
		m = tui.New(tcfg)
	}
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}

func (a *app) inputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.input, "input", "i", "-", "read the JSON request from this file (- for stdin)")
}

func (a *app) readInput(cmd *cobra.Command) ([]byte, error) {
	if a.input == "" || a.input == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(a.input)
}

// opCmd builds a single-operation command. With nargs positional JSON
// arguments the request is built from them; with none, a request envelope
// is read from --input.
func (a *app) opCmd(op, use, short string, nargs int, build func(args []string) (gisops.Request, *gisops.Error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != nargs {
				return fmt.Errorf("%s takes %d arguments or none, got %d", op, nargs, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var req gisops.Request
			var perr *gisops.Error
			if len(args) > 0 {
				req, perr = build(args)
			} else {
				b, err := a.readInput(cmd)
				if err != nil {
					return err
				}
				req, perr = gisops.ParseRequest(b)
			}
			var resp gisops.Response
			if perr != nil {
				resp = gisops.Response{Op: op, Error: perr}
			} else {
				req.Op = op
				resp = a.svc.Handle(cmd.Context(), req)
			}
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(resp); err != nil {
				return err
			}
			if resp.Error != nil {
				return resp.Error
			}
			return nil
		},
	}
	a.inputFlag(cmd)
	return cmd
}

func (a *app) distanceCmd() *cobra.Command {
	return a.opCmd(gisops.OpDistance, `distance [A B]`,
		`Euclidean distance between two points, e.g. distance '{"x":0,"y":0}' '{"x":3,"y":4}'`, 2,
		func(args []string) (gisops.Request, *gisops.Error) {
			return gisops.NewDistanceRequest([]byte(args[0]), []byte(args[1]))
		})
}

func (a *app) areaCmd() *cobra.Command {
	return a.opCmd(gisops.OpArea, `area [RING]`,
		"Unsigned area of a ring given as a JSON array of points", 1,
		func(args []string) (gisops.Request, *gisops.Error) {
			return gisops.NewAreaRequest([]byte(args[0]))
		})
}

func (a *app) containsCmd() *cobra.Command {
	return a.opCmd(gisops.OpContains, `contains [POINT RING]`,
		"Whether a point lies inside a ring", 2,
		func(args []string) (gisops.Request, *gisops.Error) {
			return gisops.NewContainsRequest([]byte(args[0]), []byte(args[1]))
		})
}

func (a *app) bufferCmd() *cobra.Command {
	return a.opCmd(gisops.OpBuffer, `buffer [POINTS DISTANCE]`,
		"Outline of all points within a distance of a path", 2,
		func(args []string) (gisops.Request, *gisops.Error) {
			d, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return gisops.Request{Op: gisops.OpBuffer}, &gisops.Error{
					Kind: gisops.KindDecode, Op: gisops.OpBuffer, Field: "distance", Msg: err.Error(), Cause: err,
				}
			}
			return gisops.NewBufferRequest([]byte(args[0]), d)
		})
}

func (a *app) batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run a JSON array or newline-delimited stream of requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := cmd.InOrStdin()
			if a.input != "" && a.input != "-" {
				f, err := os.Open(a.input)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			resps, err := a.svc.BatchJSON(cmd.Context(), r)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, resp := range resps {
				if err := enc.Encode(resp); err != nil {
					return err
				}
			}
			return nil
		},
	}
	a.inputFlag(cmd)
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(a.cfg.Server, a.svc, a.reg, a.log).Run(ctx)
		},
	}
}
