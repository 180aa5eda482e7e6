package query

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/Abrar090909/webhook-repo/internal/api/v1"
	httperr "github.com/Abrar090909/webhook-repo/internal/core/errors"
)

// RegisterRoutes registers the dashboard read API and the clear endpoint.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/events", s.EventsHandler)
	r.POST("/api/clear", s.ClearHandler)
}

// EventsHandler handles GET /api/events?since=<ISO8601>&limit=<int>.
// Both parameters are optional; a malformed since is logged and treated as
// absent so a buggy poller still gets data instead of an error.
func (s *Service) EventsHandler(c *gin.Context) {
	limit := DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		} else {
			slog.Warn("invalid limit parameter, using default", "limit", raw)
		}
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		if t, err := v1.ParseTimestamp(raw); err == nil {
			since = &t
		} else {
			slog.Warn("invalid since parameter, ignoring", "since", raw)
		}
	}

	events := s.Recent(c.Request.Context(), limit, since)

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"count":       len(events),
		"events":      events,
		"server_time": time.Now().UTC().Format(time.RFC3339),
	})
}

// ClearHandler handles POST /api/clear (administrative/test use).
func (s *Service) ClearHandler(c *gin.Context) {
	deleted, err := s.Clear(c.Request.Context())
	if err != nil {
		slog.Error("failed to clear events", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{Error: "Failed to clear events"})
		return
	}

	slog.Info("cleared events", "deleted_count", deleted)
	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"message":       fmt.Sprintf("Cleared %d events", deleted),
		"deleted_count": deleted,
	})
}
