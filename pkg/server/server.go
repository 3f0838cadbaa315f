package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowbase/dagctl/pkg/config"
	"github.com/flowbase/dagctl/pkg/health"
	"github.com/flowbase/dagctl/pkg/logging"
	"github.com/flowbase/dagctl/pkg/storage"
	"github.com/flowbase/dagctl/pkg/telemetry"
)

// Config holds server configuration
type Config struct {
	// Address to listen on (e.g., ":8080")
	Address string

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration

	// ShutdownTimeout for graceful shutdown
	ShutdownTimeout time.Duration

	// MaxRequestBodySize limits request body size
	MaxRequestBodySize int64

	// EnableCORS enables CORS headers
	EnableCORS bool
}

// schedulerStallThreshold is how long a running workflow may go without a
// scheduler tick before the "scheduler" health check reports unhealthy.
const schedulerStallThreshold = 30 * time.Second

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Address:            ":8080",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024, // 10MB
		EnableCORS:         true,
	}
}

// Server is the HTTP API server fronting the scheduler.
type Server struct {
	config            Config
	httpServer        *http.Server
	healthChecker     *health.Checker
	healthMonitor     *health.Monitor
	telemetryProvider *telemetry.Provider
	logger            *logging.Logger
	schedulerConfig   *config.Config
	store             storage.Store
}

// New creates a new server instance. schedulerConfig governs every workflow
// built from a definition submitted to this server; pass nil for
// config.Default().
func New(cfg Config, schedulerConfig *config.Config) (*Server, error) {
	if schedulerConfig == nil {
		schedulerConfig = config.Default()
	}

	logger, err := logging.New(logging.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	telemetryConfig := telemetry.DefaultConfig()
	telemetryProvider, err := telemetry.NewProvider(context.Background(), telemetryConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry provider: %w", err)
	}

	healthChecker := health.NewChecker("dagctl-scheduler", "0.1.0")
	healthMonitor := health.NewMonitor(schedulerStallThreshold)
	healthChecker.RegisterCheck("scheduler", healthMonitor.Check, 5*time.Second, true)

	server := &Server{
		config:            cfg,
		healthChecker:     healthChecker,
		healthMonitor:     healthMonitor,
		telemetryProvider: telemetryProvider,
		logger:            logger,
		schedulerConfig:   schedulerConfig,
		store:             storage.NewInMemoryStore(),
	}

	mux := http.NewServeMux()
	server.registerRoutes(mux)

	server.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      server.middlewareChain(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, nil
}

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health endpoints
	mux.HandleFunc("/health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("/health/live", s.healthChecker.LivenessHandler())
	mux.HandleFunc("/health/ready", s.healthChecker.ReadinessHandler())

	// Metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Ad hoc definition execution/validation
	mux.HandleFunc("/api/v1/workflow/execute", s.handleExecuteWorkflow)
	mux.HandleFunc("/api/v1/workflow/validate", s.handleValidateWorkflow)

	// Stored definitions
	mux.HandleFunc("/api/v1/workflow/save", s.handleSaveWorkflow)
	mux.HandleFunc("/api/v1/workflow/list", s.handleListWorkflows)
	mux.HandleFunc("/api/v1/workflow/load/", s.handleLoadWorkflow)
	mux.HandleFunc("/api/v1/workflow/delete/", s.handleDeleteWorkflow)
	mux.HandleFunc("/api/v1/workflow/execute/", s.handleExecuteWorkflowByID)
	mux.HandleFunc("/api/v1/workflow/graph/", s.handleWorkflowGraph)
}

// middlewareChain applies middleware to the handler
func (s *Server) middlewareChain(handler http.Handler) http.Handler {
	if s.config.EnableCORS {
		handler = s.corsMiddleware(handler)
	}
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

// readBody enforces the server's body size limit and reads the request body.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodySize)
	return io.ReadAll(r.Body)
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeErrorResponse writes an error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int, err error) {
	entry := s.logger.WithField("status_code", statusCode)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Error(message)

	resp := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	if err != nil {
		resp["details"] = err.Error()
	}
	s.writeJSONResponse(w, statusCode, resp)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("address", s.config.Address).Info("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown http server: %w", err)
	}

	if err := s.telemetryProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown telemetry: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(startTime)

		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status_code": rw.statusCode,
			"duration_ms": duration.Milliseconds(),
			"remote_addr": r.RemoteAddr,
		}).Info("http request")
	})
}

// recoveryMiddleware recovers from panics
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.WithField("error", fmt.Sprintf("%v", err)).
					WithField("path", r.URL.Path).
					Error("panic recovered")

				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
