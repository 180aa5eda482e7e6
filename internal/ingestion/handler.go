package ingestion

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/Abrar090909/webhook-repo/internal/api/v1"
	httperr "github.com/Abrar090909/webhook-repo/internal/core/errors"
)

const (
	msgEmptyPayload  = "Empty payload"
	msgInvalidJSON   = "Invalid JSON payload"
	msgMissingFields = "Missing required fields"
	msgStoreFailed   = "Failed to store event"

	msgStored    = "Event stored successfully"
	msgDuplicate = "Event already exists (duplicate ignored)"
)

// RegisterRoutes registers the ingestion endpoint.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/webhook", s.WebhookHandler)
}

// WebhookHandler handles POST /webhook.
//
// 201 {status:"success"}   on first insert
// 200 {status:"duplicate"} when the request_id was already stored
// 400 {error}              on empty body, bad JSON, or missing fields
// 500 {error}              on storage failure or unparseable timestamp
func (s *Service) WebhookHandler(c *gin.Context) {
	raw, ok := s.parsePayload(c)
	if !ok {
		return
	}

	missing := raw.MissingFields()
	if len(missing) > 0 {
		slog.Warn("webhook missing required fields", "missing", missing)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			Error:         msgMissingFields,
			MissingFields: missing,
		})
		return
	}

	requestID := raw.EnsureRequestID()
	slog.Info("received webhook",
		"event_type", raw.EventType,
		"author", raw.Author,
		"request_id", requestID)

	res, err := s.Ingest(c.Request.Context(), raw)
	if err != nil {
		slog.Error("failed to ingest webhook", "request_id", requestID, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{Error: msgStoreFailed})
		return
	}

	if res.Duplicate {
		slog.Warn("duplicate webhook ignored", "request_id", res.RequestID)
		c.JSON(http.StatusOK, gin.H{
			"status":     "duplicate",
			"message":    msgDuplicate,
			"request_id": res.RequestID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":     "success",
		"message":    msgStored,
		"request_id": res.RequestID,
	})
}

// parsePayload reads the bounded request body and decodes it. Responds and
// returns ok=false on any client fault.
func (s *Service) parsePayload(c *gin.Context) (*v1.RawEvent, bool) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, int64(s.maxBodySizeBytes)+1))
	if err != nil {
		slog.Error("failed to read webhook body", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{Error: msgStoreFailed})
		return nil, false
	}

	if len(body) == 0 {
		slog.Warn("received empty webhook payload")
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{Error: msgEmptyPayload})
		return nil, false
	}

	if len(body) > s.maxBodySizeBytes {
		slog.Warn("webhook body exceeds maximum size", "size", len(body), "max", s.maxBodySizeBytes)
		c.JSON(http.StatusRequestEntityTooLarge, httperr.ErrorResponse{Error: "Request body too large"})
		return nil, false
	}

	var raw v1.RawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		slog.Warn("invalid webhook JSON", "error", err, "payload_size", len(body))
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{Error: msgInvalidJSON})
		return nil, false
	}

	return &raw, true
}
