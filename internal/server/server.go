package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httperr "github.com/Abrar090909/webhook-repo/internal/core/errors"
	"github.com/Abrar090909/webhook-repo/internal/core/storage"
	"github.com/Abrar090909/webhook-repo/internal/web"
)

type Server struct {
	Engine *gin.Engine
	Addr   string
	store  storage.EventStore
}

// New builds the HTTP boundary: dashboard, health probe, and the 404
// fallback. Ingestion and query services register their own routes on
// s.Engine.
func New(addr string, store storage.EventStore, mode string) *Server {
	if mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		Engine: r,
		Addr:   addr,
		store:  store,
	}

	r.GET("/", s.indexHandler)
	r.GET("/health", s.healthHandler)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{Error: "Endpoint not found"})
	})

	return s
}

func (s *Server) indexHandler(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.Dashboard)
}

// healthHandler reports liveness. It ALWAYS returns 200, even when the
// database is unreachable: a liveness probe that restarts the process
// during a slow storage cold start would make the outage worse. The body's
// database field carries the real story.
func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := "connected"
	if err := s.store.Ping(ctx); err != nil {
		if s.store.State() == storage.StateUninitialized {
			database = "initialization_failed"
		} else {
			database = "connecting_or_failed"
		}
		slog.Warn("health check database ping failed", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr,
		Handler: s.Engine,
	}

	slog.Info("starting HTTP server", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
