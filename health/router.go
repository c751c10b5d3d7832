// Package health serves the uptime probe and prometheus metrics.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// QueueCounter reports the publication queue depth.
type QueueCounter interface {
	QueueLen() int
}

// NewRouter builds the gin engine.
func NewRouter(queue QueueCounter, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))

	router.GET("/health", healthCheck(queue))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func healthCheck(queue QueueCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"queue":  queue.QueueLen(),
		})
	}
}

func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs at debug; uptime probes hit /health constantly.
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Debug()
		if status >= 500 {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	}
}

// Server wraps the http.Server running the router.
type Server struct {
	srv *http.Server
	log zerolog.Logger
}

// NewServer prepares a server on addr.
func NewServer(addr string, queue QueueCounter, log zerolog.Logger) *Server {
	log = log.With().Str("component", "health").Logger()
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(queue, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("health server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "health server")
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
