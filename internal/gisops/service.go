package gisops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"

	"gisops/internal/geom"
)

const defaultWorkers = 8

// Options configures a Service. Zero values are usable.
type Options struct {
	Logger     *slog.Logger
	Buffer     geom.BufferOptions
	Workers    int                   // batch concurrency
	Registerer prometheus.Registerer // nil disables metric registration
}

// Service validates requests, runs the geometry core and records metrics.
// It is safe for concurrent use.
type Service struct {
	log     *slog.Logger
	buffer  geom.BufferOptions
	workers int
	metrics *metrics
}

func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{
		log:     log,
		buffer:  opts.Buffer,
		workers: workers,
		metrics: newMetrics(opts.Registerer),
	}
}

// Handle runs one request. Failures are reported in Response.Error; the
// geometry core is only reached with validated, finite input.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	start := time.Now()
	resp := s.handle(ctx, req)
	s.record(ctx, req.Op, resp, start)
	return resp
}

// HandleJSON decodes a JSON envelope and runs it.
func (s *Service) HandleJSON(ctx context.Context, b []byte) Response {
	start := time.Now()
	req, err := ParseRequest(b)
	if err != nil {
		resp := Response{Op: req.Op, Error: err}
		s.record(ctx, req.Op, resp, start)
		return resp
	}
	return s.Handle(ctx, req)
}

// Batch runs reqs on a bounded worker pool. Responses keep request order.
func (s *Service) Batch(ctx context.Context, reqs []Request) []Response {
	return run(s.workers, reqs, func(r Request) Response { return s.Handle(ctx, r) })
}

// BatchJSON reads either a JSON array of envelopes or a stream of
// newline-delimited envelopes from r. A malformed envelope yields an error
// response in its slot; only an unreadable stream fails the whole batch.
func (s *Service) BatchJSON(ctx context.Context, r io.Reader) ([]Response, error) {
	raws, err := readEnvelopes(r)
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "batch started", "requests", len(raws), "workers", s.workers)
	return run(s.workers, raws, func(b json.RawMessage) Response { return s.HandleJSON(ctx, b) }), nil
}

func (s *Service) handle(ctx context.Context, req Request) Response {
	if err := ctx.Err(); err != nil {
		return Response{Op: req.Op, Error: &Error{Kind: KindCanceled, Op: req.Op, Msg: err.Error(), Cause: err}}
	}
	if err := req.Validate(); err != nil {
		return Response{Op: req.Op, Error: err}
	}

	resp := Response{Op: req.Op}
	switch req.Op {
	case OpDistance:
		resp.Value = geom.Distance(req.A.point(), req.B.point())
	case OpArea:
		resp.Value = geom.Area(geom.NewPolygon(toPath(req.Points)))
	case OpContains:
		resp.Value = geom.Contains(req.Point.point(), geom.NewPolygon(toPath(req.Points)))
	case OpBuffer:
		poly := geom.BufferWithOptions(toPath(req.Points), *req.Distance, s.buffer)
		if !finitePath(poly.Exterior) {
			return overflow(req.Op)
		}
		resp.Value = toOutput(poly.Exterior)
	}
	if f, ok := resp.Value.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return overflow(req.Op)
	}
	return resp
}

func overflow(op string) Response {
	return Response{Op: op, Error: &Error{Kind: KindNonFinite, Op: op, Msg: "result is not finite"}}
}

func finitePath(ls geom.LineString) bool {
	for _, p := range ls {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			return false
		}
	}
	return true
}

func (s *Service) record(ctx context.Context, op string, resp Response, start time.Time) {
	elapsed := time.Since(start)
	label := op
	if !slices.Contains(Ops, op) {
		label = "unknown"
	}
	result := "ok"
	if resp.Error != nil {
		result = string(resp.Error.Kind)
	}
	s.metrics.requests.WithLabelValues(label, result).Inc()
	s.metrics.latency.WithLabelValues(label).Observe(elapsed.Seconds())

	if resp.Error != nil {
		s.log.WarnContext(ctx, "request rejected",
			"op", op, "kind", resp.Error.Kind, "field", resp.Error.Field, "error", resp.Error.Msg)
		return
	}
	s.log.DebugContext(ctx, "request handled", "op", op, "elapsed", elapsed)
}

// run applies f to every item with at most n goroutines, writing results by
// index so output order matches input order.
func run[T any](n int, items []T, f func(T) Response) []Response {
	out := make([]Response, len(items))
	p := pool.New().WithMaxGoroutines(n)
	for i, it := range items {
		p.Go(func() { out[i] = f(it) })
	}
	p.Wait()
	return out
}

func readEnvelopes(r io.Reader) ([]json.RawMessage, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var raws []json.RawMessage
		if err := dec.Decode(&raws); err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
		return raws, nil
	}

	var raws []json.RawMessage
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return raws, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode batch line %d: %w", len(raws)+1, err)
		}
		raws = append(raws, raw)
	}
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
