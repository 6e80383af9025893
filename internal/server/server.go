// Package server exposes the geometry operations over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gisops/internal/config"
	"gisops/internal/gisops"
)

const maxBodyBytes = 8 << 20

// Server wraps an http.Server running a gin engine with graceful shutdown.
type Server struct {
	server  *http.Server
	svc     *gisops.Service
	log     *slog.Logger
	timeout time.Duration
}

// New wires the routes. gatherer backs GET /metrics.
func New(cfg config.ServerConfig, svc *gisops.Service, gatherer prometheus.Gatherer, log *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{svc: svc, log: log, timeout: cfg.ShutdownTimeout}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log), maxBody(maxBodyBytes))
	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	v1 := engine.Group("/v1")
	v1.POST("/batch", s.batch)
	v1.POST("/:op", s.op)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed engine, mainly for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Run serves until ctx is canceled, then shuts down within the configured
// timeout.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("http server starting", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("http server stopping")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// op handles POST /v1/:op. The path names the operation; an op field in the
// body is ignored.
func (s *Server) op(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gisops.Response{Error: &gisops.Error{Kind: gisops.KindDecode, Msg: err.Error()}})
		return
	}
	req, perr := gisops.ParseRequest(body)
	if perr != nil {
		c.JSON(http.StatusBadRequest, gisops.Response{Op: c.Param("op"), Error: perr})
		return
	}
	req.Op = c.Param("op")
	resp := s.svc.Handle(c.Request.Context(), req)
	c.JSON(status(resp), resp)
}

// batch handles POST /v1/batch. Per-item failures stay in their slot and the
// overall status is 200.
func (s *Server) batch(c *gin.Context) {
	resps, err := s.svc.BatchJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gisops.Response{Op: "batch", Error: &gisops.Error{Kind: gisops.KindDecode, Msg: err.Error()}})
		return
	}
	if resps == nil {
		resps = []gisops.Response{}
	}
	c.JSON(http.StatusOK, resps)
}

func status(resp gisops.Response) int {
	if resp.Error == nil {
		return http.StatusOK
	}
	switch resp.Error.Kind {
	case gisops.KindUnknownOp:
		return http.StatusNotFound
	case gisops.KindCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.InfoContext(c.Request.Context(), "http request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"cost", time.Since(start),
		)
	}
}

func maxBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gisops.Response{
				Error: &gisops.Error{Kind: gisops.KindDecode, Msg: "request body too large"},
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
