// Package server is the HTTP boundary of the explainer: the web form, the
// /explain endpoint, health and metrics, and the MCP endpoint.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sql-explainer/pkg/metrics"
	"sql-explainer/pkg/models"
	"sql-explainer/pkg/validation"
)

// Explainer produces the explanation of raw SQL.
type Explainer interface {
	Explain(ctx context.Context, raw string) (*models.Explanation, error)
}

// Options configures the router.
type Options struct {
	Explainer Explainer
	Validator *validation.Validator
	Logger    *zap.Logger
	// Metrics records per-request metrics; nil disables them.
	Metrics metrics.Collector
	// MetricsHandler is served at /metrics when set.
	MetricsHandler http.Handler
	// MCPHandler is served at /mcp when set.
	MCPHandler http.Handler
	// AllowedOrigins limits CORS; empty allows any origin.
	AllowedOrigins []string
	// MaxInputBytes bounds sql_code; it also sizes the request body limit.
	MaxInputBytes int
}

// Server holds the handlers' dependencies.
type Server struct {
	explainer     Explainer
	validator     *validation.Validator
	logger        *zap.Logger
	maxInputBytes int
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validator := opts.Validator
	if validator == nil {
		validator = validation.NewValidator(opts.MaxInputBytes)
	}
	s := &Server{
		explainer:     opts.Explainer,
		validator:     validator,
		logger:        logger.With(zap.String("component", "http")),
		maxInputBytes: opts.MaxInputBytes,
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(s.logger))
	if opts.Metrics != nil {
		router.Use(Metrics(opts.Metrics))
	}
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/", s.handleIndex)
	router.POST("/explain", s.handleExplain)
	router.GET("/health", s.handleHealth)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}
	if opts.MCPHandler != nil {
		router.Any("/mcp", gin.WrapH(opts.MCPHandler))
	}
	return router
}

func corsConfig(allowed []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader, "Mcp-Session-Id"},
		ExposeHeaders: []string{"Content-Length", requestIDHeader, "Mcp-Session-Id"},
	}
	if len(allowed) == 0 {
		cfg.AllowOriginFunc = func(origin string) bool { return true }
		return cfg
	}
	cfg.AllowOriginFunc = func(origin string) bool {
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
	return cfg
}
