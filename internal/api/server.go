// Package api provides the HTTP REST API for scangate.
// It exposes scan and report download endpoints alongside health, metrics and documentation routes.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/anstrom/scangate/docs/swagger" // registers the OpenAPI document
	"github.com/anstrom/scangate/internal/api/handlers"
	"github.com/anstrom/scangate/internal/api/middleware"
	"github.com/anstrom/scangate/internal/auth"
	"github.com/anstrom/scangate/internal/config"
	"github.com/anstrom/scangate/internal/logging"
	"github.com/anstrom/scangate/internal/metrics"
	"github.com/anstrom/scangate/internal/scanner"
)

// Server timing constants.
const (
	serverShutdownTimeout = 30 * time.Second
	limiterCleanupPeriod  = time.Minute
	metricsUpdatePeriod   = 15 * time.Second
)

// Paths served without an API key when authentication is enabled. Entries
// ending in a slash cover every path below them.
var publicPaths = []string{
	"/",
	"/api/v1/health",
	"/api/v1/liveness",
	"/api/v1/version",
	"/metrics",
	"/docs",
	"/swagger/",
}

// Server represents the API server.
type Server struct {
	httpServer    *http.Server
	router        *mux.Router
	config        *config.Config
	scanner       *scanner.Service
	metrics       *metrics.PrometheusMetrics
	logger        *logging.Logger
	globalLimiter *middleware.RateLimiter
	scanLimiter   *middleware.RateLimiter
	startTime     time.Time
}

// New creates a new API server instance. pm may be nil, in which case
// metrics are not recorded and /metrics is not served.
func New(cfg *config.Config, svc *scanner.Service, pm *metrics.PrometheusMetrics, build handlers.BuildInfo) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("scan service is required")
	}

	server := &Server{
		router:    mux.NewRouter(),
		config:    cfg,
		scanner:   svc,
		metrics:   pm,
		logger:    logging.Default().WithComponent("api"),
		startTime: time.Now(),
	}

	if cfg.API.RateLimit.Enabled {
		server.globalLimiter = middleware.NewRateLimiter(toLimits(cfg.API.RateLimit.Global)...)
		server.scanLimiter = middleware.NewRateLimiter(toLimits(cfg.API.RateLimit.Scan)...)
	}

	server.setupMiddleware()
	server.setupRoutes(build)

	var handler http.Handler = server.router
	if cfg.API.CORS.Enabled {
		handler = gorillahandlers.CORS(
			gorillahandlers.AllowedOrigins(cfg.API.CORS.AllowedOrigins),
			gorillahandlers.AllowedMethods(cfg.API.CORS.AllowedMethods),
			gorillahandlers.AllowedHeaders(cfg.API.CORS.AllowedHeaders),
		)(handler)
	}

	server.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  cfg.API.IdleTimeout,
	}

	return server, nil
}

func toLimits(rules []config.LimitRule) []middleware.Limit {
	limits := make([]middleware.Limit, 0, len(rules))
	for _, rule := range rules {
		limits = append(limits, middleware.Limit{Requests: rule.Requests, Window: rule.Window})
	}
	return limits
}

func (s *Server) recorder() metrics.Recorder {
	if s.metrics == nil {
		return metrics.Nop{}
	}
	return s.metrics
}

// setupMiddleware configures the middleware chain shared by every route.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.Logging(s.logger))
	s.router.Use(middleware.Metrics(s.recorder()))

	if s.globalLimiter != nil {
		s.router.Use(middleware.RateLimit(s.globalLimiter, "global", s.logger, s.recorder()))
	}

	if s.config.API.Auth.Enabled {
		keyring := auth.NewKeyring(s.config.API.Auth.KeyHashes)
		s.logger.Info("API key authentication enabled", "keys", keyring.Len())
		s.router.Use(middleware.Authentication(keyring, publicPaths, s.logger))
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes(build handlers.BuildInfo) {
	scanHandler := handlers.NewScanHandler(s.scanner, s.logger)
	healthHandler := handlers.NewHealthHandler(s.scanner, s.scanner.Limiter(), build, s.logger)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/liveness", healthHandler.Liveness).Methods(http.MethodGet)
	api.HandleFunc("/version", healthHandler.Version).Methods(http.MethodGet)

	var scanLimit []func(http.Handler) http.Handler
	if s.scanLimiter != nil {
		scanLimit = append(scanLimit, middleware.RateLimit(s.scanLimiter, "scan", s.logger, s.recorder()))
	}
	api.Handle("/scans", chain(http.HandlerFunc(scanHandler.CreateScan),
		append(scanLimit, middleware.ContentType(), middleware.MaxBodySize(s.config.API.MaxRequestSize))...,
	)).Methods(http.MethodPost)
	api.Handle("/scans/download/{format}/{target}/{ports}",
		chain(http.HandlerFunc(scanHandler.DownloadScan), scanLimit...),
	).Methods(http.MethodGet)

	if s.metrics != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.GetRegistry(), promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	s.router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
	))
	s.router.HandleFunc("/docs", s.redirectToSwagger).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.index).Methods(http.MethodGet)
}

func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Start starts the API server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting API server",
		"address", s.httpServer.Addr,
		"read_timeout", s.httpServer.ReadTimeout,
		"write_timeout", s.httpServer.WriteTimeout,
		"auth_enabled", s.config.API.Auth.Enabled,
		"rate_limit_enabled", s.config.API.RateLimit.Enabled)

	if s.globalLimiter != nil {
		s.globalLimiter.StartCleanup(ctx, limiterCleanupPeriod)
		s.scanLimiter.StartCleanup(ctx, limiterCleanupPeriod)
	}
	if s.metrics != nil {
		s.metrics.StartPeriodicUpdates(ctx, metricsUpdatePeriod)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errChan:
		return err
	}
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("API server shutdown error", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server stopped successfully")
	return nil
}

// index returns API information for root requests.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service": "scangate",
		"version": "v1",
		"endpoints": map[string]string{
			"scan":     "/api/v1/scans",
			"download": "/api/v1/scans/download/{format}/{target}/{ports}",
			"health":   "/api/v1/health",
			"liveness": "/api/v1/liveness",
			"docs":     "/swagger/",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode API index response", "error", err)
	}
}

// redirectToSwagger redirects to the Swagger UI.
func (s *Server) redirectToSwagger(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// Handler returns the root handler including CORS handling.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// GetAddress returns the server address.
func (s *Server) GetAddress() string {
	return s.httpServer.Addr
}
