package query

import (
	"context"
	"log/slog"
	"time"

	v1 "github.com/Abrar090909/webhook-repo/internal/api/v1"
	"github.com/Abrar090909/webhook-repo/internal/core/storage"
)

const (
	// DefaultLimit applies when the caller does not specify one.
	DefaultLimit = 50
	// MaxLimit is the server-side clamp protecting the store from
	// unbounded result requests.
	MaxLimit = 500
)

// Service serves the dashboard's polling reads and the administrative
// full-clear operation.
type Service struct {
	store storage.EventStore
}

func NewService(store storage.EventStore) *Service {
	if store == nil {
		panic("query: store must not be nil")
	}
	return &Service{store: store}
}

// Recent returns up to limit events sorted newest-first, restricted to
// timestamps strictly greater than since when a watermark is given.
//
// Storage failures degrade to an empty slice rather than an error: a
// transient hiccup should look like "no new data" to the polling client,
// not kill the dashboard. The write path makes the opposite choice.
func (s *Service) Recent(ctx context.Context, limit int, since *time.Time) []*v1.Event {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	events, err := s.store.RecentEvents(ctx, since, limit)
	if err != nil {
		slog.Warn("event query degraded to empty result", "error", err)
		return []*v1.Event{}
	}
	if events == nil {
		events = []*v1.Event{}
	}
	return events
}

// Clear deletes all stored events. Unlike Recent, failures propagate:
// the caller asked for a state change and must know it did not happen.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	return s.store.ClearEvents(ctx)
}
