// Package server exposes the gallery over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gauthierbraillon/mediamix/internal/content"
	"github.com/gauthierbraillon/mediamix/internal/gallery"
	"github.com/gauthierbraillon/mediamix/internal/generate"
	"github.com/gauthierbraillon/mediamix/internal/logger"
	"github.com/gauthierbraillon/mediamix/internal/metrics"
	"github.com/gauthierbraillon/mediamix/internal/poller"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Refresher triggers gallery refreshes.
type Refresher interface {
	TriggerNow() bool
	LastNotice() (poller.Notice, bool)
}

// Generator submits generation requests.
type Generator interface {
	Submit(ctx context.Context, rawURL string, contentType content.Type) (generate.Receipt, error)
}

// Config configures the Server.
type Config struct {
	Addr            string
	Debug           bool
	Version         string
	ShutdownTimeout time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithRefresher enables POST /api/refresh.
func WithRefresher(r Refresher) Option {
	return func(s *Server) {
		s.refresher = r
	}
}

// WithGenerator enables POST /api/generate.
func WithGenerator(g Generator) Option {
	return func(s *Server) {
		s.generator = g
	}
}

// WithMetrics counts render failures reported by clients.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithGatherer serves gatherer on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// Server is the gallery HTTP API.
type Server struct {
	cfg       Config
	state     *gallery.State
	refresher Refresher
	generator Generator
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	log       logger.Logger
	started   time.Time

	router *gin.Engine
	server *http.Server
}

// New creates a Server over state.
func New(cfg Config, state *gallery.State, opts ...Option) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	s := &Server{
		cfg:      cfg,
		state:    state,
		gatherer: prometheus.DefaultGatherer,
		log:      logger.NewNop(),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(recovery(s.log), requestID(), requestLogger(s.log))
	s.routes(router)

	s.router = router
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/gallery", s.listGallery)
	api.GET("/gallery/partitions", s.partitions)
	api.POST("/gallery/items/:id/render-failed", s.renderFailed)
	api.POST("/refresh", s.refresh)
	api.POST("/generate", s.generate)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", logger.String("address", s.cfg.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}
