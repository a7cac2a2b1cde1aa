package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// RateLimit configures per-client request limits on /api/v1
type RateLimit struct {
	Enabled bool
	RPS     float64
	Burst   int
}

// Options configures the HTTP server
type Options struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxHeaderBytes int
	CORSOrigins    []string
	RateLimit      RateLimit
}

func (o *Options) applyDefaults() {
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 30 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 60 * time.Second
	}
	if o.MaxHeaderBytes <= 0 {
		o.MaxHeaderBytes = 1 << 20
	}
}

// Server is the HTTP front end over the job services
type Server struct {
	engine       *gin.Engine
	httpServer   *http.Server
	opts         Options
	deps         *types.Dependencies
	stopLimiters func()
}

func NewServer(opts Options) *Server {
	opts.applyDefaults()

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		engine:       engine,
		opts:         opts,
		deps:         &types.Dependencies{},
		stopLimiters: func() {},
		httpServer: &http.Server{
			Addr:           opts.Address,
			Handler:        engine,
			ReadTimeout:    opts.ReadTimeout,
			WriteTimeout:   opts.WriteTimeout,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: opts.MaxHeaderBytes,
		},
	}
}

// SetDependencies replaces the handler dependencies. Call before Initialize.
func (s *Server) SetDependencies(deps *types.Dependencies) {
	if deps != nil {
		s.deps = deps
	}
}

// Engine exposes the router for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Initialize installs middleware and mounts the routes
func (s *Server) Initialize() error {
	s.engine.Use(gin.Logger(), CORS(s.opts.CORSOrigins...), BodyLimit(maxRequestBody))
	s.stopLimiters = RegisterRoutes(s.engine, s.deps, s.opts.RateLimit)
	return nil
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests. Running jobs are owned by the worker
// pool and are not affected.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopLimiters()
	return s.httpServer.Shutdown(ctx)
}
