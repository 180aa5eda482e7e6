package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/Abrar090909/webhook-repo/internal/api/v1"
	"github.com/Abrar090909/webhook-repo/internal/core/storage"
)

// Result is the outcome of ingesting one validated event.
type Result struct {
	RequestID string
	Duplicate bool
}

// Service orchestrates validate → parse → store for webhook events.
type Service struct {
	store            storage.EventStore
	maxBodySizeBytes int
	now              func() time.Time
}

func NewService(store storage.EventStore, maxBodySizeMB int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1
	}
	return &Service{
		store:            store,
		maxBodySizeBytes: maxBodySizeMB * 1024 * 1024,
		now:              time.Now,
	}
}

// Ingest stores one raw event. The raw payload has already passed field
// presence validation; the timestamp is parsed here so a malformed value
// surfaces as an ingestion failure (the producer's payload is broken in a
// way a retry will not fix, but the contract maps it to a server error).
//
// A Duplicate result is a soft success: the upstream source delivers
// at-least-once, and the unique index on request_id is the sole mechanism
// converting that into effectively-once storage. No retry happens here on
// timeout; redelivery is the producer's job.
func (s *Service) Ingest(ctx context.Context, raw *v1.RawEvent) (Result, error) {
	requestID := raw.EnsureRequestID()

	ts, err := v1.ParseTimestamp(raw.Timestamp)
	if err != nil {
		return Result{RequestID: requestID}, fmt.Errorf("parse event timestamp: %w", err)
	}

	event := &v1.Event{
		RequestID:  requestID,
		EventType:  raw.EventType,
		Author:     raw.Author,
		Action:     raw.Action,
		FromBranch: raw.FromBranch,
		ToBranch:   raw.ToBranch,
		Branch:     raw.Branch,
		Timestamp:  ts,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.store.InsertEvent(ctx, event); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return Result{RequestID: requestID, Duplicate: true}, nil
		}
		return Result{RequestID: requestID}, fmt.Errorf("store event: %w", err)
	}

	return Result{RequestID: requestID}, nil
}
