// Package httpapi exposes the ask service over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/normativa/internal/core/ports/driving"
	"github.com/custodia-labs/normativa/internal/logger"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("httpapi: ask service is required")

// Server serves /health and /ask.
type Server struct {
	ask    driving.AskService
	router *gin.Engine
}

// NewServer creates the HTTP server and its routes.
func NewServer(ask driving.AskService) (*Server, error) {
	if ask == nil {
		return nil, ErrMissingAskService
	}

	s := &Server{ask: ask}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware())
	router.GET("/health", s.handleHealth)
	router.POST("/ask", s.handleAsk)

	s.router = router
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

// loggerMiddleware logs one line per request in verbose mode.
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Millisecond))
	}
}
