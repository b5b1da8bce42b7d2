package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/neoskop/hostit/internal/config"
	filehttp "github.com/neoskop/hostit/internal/file/http"
	"github.com/neoskop/hostit/internal/metrics"
	"github.com/neoskop/hostit/internal/upload"
)

// APIServer serves the file hosting API.
type APIServer struct {
	server *http.Server
	logger *slog.Logger
}

// NewAPIServer creates the API server with its full routing table. Write
// routes run through the upload gate; raw content writes additionally get
// the body buffered and verified before the handler runs.
func NewAPIServer(
	cfg *config.Config,
	fileHandler *filehttp.FileHandler,
	gate *upload.Gate,
	db *sql.DB,
	meterProvider metric.MeterProvider,
	logger *slog.Logger,
) *APIServer {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	// write prepends the rate limiter, when enabled, to a write route chain.
	write := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if !cfg.RateLimitEnabled {
			return handlers
		}
		limiter := WriteRateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger)
		return append([]gin.HandlerFunc{limiter}, handlers...)
	}

	router.GET("/", IndexHandler)
	router.GET("/index.html", IndexHandler)
	router.GET("/health", HealthHandler)
	router.GET("/ready", ReadinessHandler(db))

	router.POST("/", write(upload.Middleware(gate, logger), fileHandler.CreateHandler)...)
	router.GET("/:id", fileHandler.GetHandler)
	router.PUT("/:id", write(upload.Middleware(gate, logger), fileHandler.UpdateHandler)...)
	router.DELETE("/:id", write(upload.AuthorizeMiddleware(gate, logger), fileHandler.DeleteHandler)...)
	router.GET("/:id/tags", fileHandler.GetTagsHandler)
	router.PUT("/:id/tags", write(upload.AuthorizeMiddleware(gate, logger), fileHandler.UpdateTagsHandler)...)
	router.GET("/:id/info", fileHandler.GetInfoHandler)
	router.PUT("/:id/info", write(upload.AuthorizeMiddleware(gate, logger), fileHandler.UpdateInfoHandler)...)
	router.GET("/:id/meta", fileHandler.GetMetaHandler)

	return &APIServer{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *APIServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the API server.
func (s *APIServer) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// HealthHandler reports process liveness.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReadinessHandler reports readiness, including database reachability.
func ReadinessHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}
