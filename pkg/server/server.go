package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"folio-hq/relay/pkg/config"
	"folio-hq/relay/pkg/proxy"
	"folio-hq/relay/pkg/proxy/handlers"
	"folio-hq/relay/pkg/proxy/middleware"
)

// Server is the relay's HTTP front end. It owns routing, the middleware
// chain, and graceful lifecycle; the endpoint logic lives in the handlers
// package.
type Server struct {
	config     *config.ServerConfig
	service    *handlers.Service
	metricsCfg config.MetricsConfig
	tracer     trace.Tracer
	logger     *slog.Logger

	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates the relay server around a wired handler service.
func NewServer(cfg *config.ServerConfig, metricsCfg config.MetricsConfig, svc *handlers.Service, tracer trace.Tracer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		service:      svc,
		metricsCfg:   metricsCfg,
		tracer:       tracer,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting relay server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("relay server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/proxy", s.instrument("proxy", handlers.NewPassthroughHandler(s.service)))
	mux.Handle("/calendar", s.instrument("calendar", handlers.NewCalendarHandler(s.service)))
	mux.Handle("/catalog", s.instrument("catalog", handlers.NewCatalogHandler(s.service)))
	mux.Handle("/readme", s.instrument("readme", handlers.NewReadmeHandler(s.service)))
	mux.Handle("/contest", s.instrument("contest", handlers.NewContestHandler(s.service)))
	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(s.service))

	if s.metricsCfg.Enabled && s.service.Metrics != nil {
		mux.Handle(s.metricsCfg.Path, s.service.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.TimeoutMiddleware(s.config.RequestTimeout)(handler)
	handler = middleware.CORSMiddleware(s.convertCORSConfig())(handler)
	if s.tracer != nil {
		handler = middleware.TracingMiddleware(s.tracer)(handler)
	}
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// instrument wraps an endpoint handler so every response is recorded in
// the metrics collector under the endpoint's name, with the cache state
// the handler stamped on the response.
func (s *Server) instrument(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.service.Metrics.RecordRequest(endpoint, rec.status, w.Header().Get(proxy.CacheStateHeader), time.Since(start))
	})
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// convertCORSConfig maps the YAML CORS block onto the middleware's
// config, keeping the default exposed headers so browsers can read the
// relay's validators.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	def := middleware.DefaultCORSConfig()
	cc := &middleware.CORSConfig{
		Enabled:        s.config.CORS.Enabled,
		AllowedOrigins: s.config.CORS.AllowedOrigins,
		AllowedMethods: s.config.CORS.AllowedMethods,
		AllowedHeaders: s.config.CORS.AllowedHeaders,
		ExposedHeaders: def.ExposedHeaders,
		MaxAge:         s.config.CORS.MaxAge,
	}
	if len(cc.AllowedOrigins) == 0 {
		cc.AllowedOrigins = def.AllowedOrigins
	}
	if len(cc.AllowedMethods) == 0 {
		cc.AllowedMethods = def.AllowedMethods
	}
	if len(cc.AllowedHeaders) == 0 {
		cc.AllowedHeaders = def.AllowedHeaders
	}
	if cc.MaxAge <= 0 {
		cc.MaxAge = def.MaxAge
	}
	return cc
}
