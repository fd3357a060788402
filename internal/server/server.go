// Package server exposes the solver pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/abhisek/mathstep/internal/logging"
	"github.com/abhisek/mathstep/internal/ocr"
	"github.com/abhisek/mathstep/internal/problem"
	"github.com/abhisek/mathstep/internal/store"
)

// Solver is the part of solver.Pipeline the handlers use.
type Solver interface {
	Solve(ctx context.Context, raw string) (problem.Result, error)
	SolveImage(ctx context.Context, image []byte) (problem.Result, error)
}

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	SolveTimeout    time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
}

// Server wires the gin router to a Solver.
type Server struct {
	cfg    Config
	solver Solver
	repo   store.EventRepo
	logger *slog.Logger
	router *gin.Engine
	http   *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithHistory enables GET /api/history backed by repo.
func WithHistory(repo store.EventRepo) Option { return func(s *Server) { s.repo = repo } }

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// New builds the router. Call ListenAndServe to start accepting requests.
func New(cfg Config, solver Solver, opts ...Option) *Server {
	if cfg.SolveTimeout <= 0 {
		cfg.SolveTimeout = 30 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{cfg: cfg, solver: solver, logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = ocr.MaxImageBytes + 1<<20
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("mathstep"))
	router.Use(requestIDMiddleware())
	router.Use(accessLogMiddleware(s.logger))
	s.routes(router)

	s.router = router
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/solve", s.HandleSolve)
		api.POST("/upload", s.HandleUpload)
		if s.repo != nil {
			api.GET("/history", s.HandleHistory)
		}
	}

	r.GET("/healthz", s.HandleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", slog.String("addr", s.cfg.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}
