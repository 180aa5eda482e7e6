package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/Abrar090909/webhook-repo/internal/api/v1"
)

// ErrDuplicate is returned when an event with the same request_id already
// exists. It is an expected outcome of at-least-once delivery, not a fault:
// callers surface it as a soft success.
var ErrDuplicate = errors.New("event already exists")

// ErrUnavailable is returned when the backing store cannot be reached, or
// was never configured. Writes fail fast on it; reads degrade to empty.
var ErrUnavailable = errors.New("storage unavailable")

// State describes the adapter's connection lifecycle. The adapter connects
// lazily, so a probe must be able to report degraded-but-running instead of
// crashing the process.
type State int

const (
	// StateUninitialized means no connection attempt has been made, or no
	// connection string was configured.
	StateUninitialized State = iota
	// StateConnecting means a connection attempt is in flight.
	StateConnecting
	// StateReady means the last probe of the backend succeeded.
	StateReady
	// StateDegraded means the backend was reachable before (or a connect
	// attempt failed); the next operation retries the connection.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "uninitialized"
	}
}

// EventStore defines the persistence contract for webhook events.
//
// InsertEvent and ClearEvents propagate failures (correctness over
// availability on the write path); RecentEvents callers are expected to
// degrade read failures to an empty result (availability over correctness
// on the read path). That asymmetry is a deliberate policy, owned by the
// services, not by implementations of this interface.
type EventStore interface {
	// InsertEvent persists the event exactly once, assigning event.ID and
	// returning ErrDuplicate when request_id was already stored. Uniqueness
	// is enforced atomically by the store; concurrent inserts of the same
	// request_id yield exactly one success.
	InsertEvent(ctx context.Context, event *v1.Event) error

	// RecentEvents returns up to limit events ordered by timestamp
	// descending. When since is non-nil only events with timestamp strictly
	// greater than since are returned.
	RecentEvents(ctx context.Context, since *time.Time, limit int) ([]*v1.Event, error)

	// ClearEvents deletes all stored events and reports how many were
	// removed. Administrative/test use only.
	ClearEvents(ctx context.Context) (int64, error)

	// Ping verifies the backend is reachable, connecting first if needed.
	Ping(ctx context.Context) error

	// State reports the current connection lifecycle state.
	State() State
}
