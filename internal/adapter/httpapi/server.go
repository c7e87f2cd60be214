package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	llmhttp "github.com/tppkitchen/backoffice/internal/adapter/llm/http"
	"github.com/tppkitchen/backoffice/internal/store"
	"github.com/tppkitchen/backoffice/internal/usecase/nutrition"
)

const shutdownGrace = 10 * time.Second

// Params captures the collaborators for the HTTP API.
type Params struct {
	Engine  *nutrition.Engine
	Recipes store.RecipeStore // nil when the store is disabled
	Metrics llmhttp.Metrics   // nil when metrics are disabled
	Logger  llmhttp.Logger    // nil disables request logging

	// RequestTimeout bounds one analysis request end to end.
	RequestTimeout time.Duration
}

// Server exposes the nutrition engine and recipe store over HTTP.
type Server struct {
	engine  *nutrition.Engine
	recipes store.RecipeStore
	metrics llmhttp.Metrics
	logger  llmhttp.Logger
	timeout time.Duration
	router  *gin.Engine
}

// NewServer builds the router with all routes registered.
func NewServer(p Params) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	if p.Logger != nil {
		router.Use(requestLogger(p.Logger))
	}

	timeout := p.RequestTimeout
	if timeout <= 0 {
		timeout = 55 * time.Second
	}

	s := &Server{
		engine:  p.Engine,
		recipes: p.Recipes,
		metrics: p.Metrics,
		logger:  p.Logger,
		timeout: timeout,
		router:  router,
	}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.POST("/nutrition/analyze", s.handleAnalyze)
	api.GET("/nutrition/stats", s.handleStats)
	api.POST("/recipes/:id/nutrition", s.handleRecipeNutrition)

	return s
}

// Router returns the underlying handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger emits one structured log line per request.
func requestLogger(logger llmhttp.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.LogInfo(c.Request.Context(), "http request", map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})
	}
}
