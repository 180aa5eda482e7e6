package v1

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the sole persisted entity: one CI/CD webhook notification.
type Event struct {
	// ID is the storage-assigned identifier, rendered as an opaque string.
	// Empty until the event has been inserted.
	ID string `json:"id,omitempty"`

	// RequestID is the idempotency key. Caller-supplied or server-generated,
	// unique across all stored events.
	RequestID string `json:"request_id"`

	// EventType is a categorical tag ("push", "pull_request", "merge", ...).
	// The set is not constrained by the server.
	EventType string `json:"event_type"`

	// Author is the actor that triggered the event.
	Author string `json:"author"`

	// Event-type-dependent attributes, stored uninterpreted.
	Action     string `json:"action"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Branch     string `json:"branch"`

	// Timestamp is the caller-asserted event time (ordering and filtering key).
	Timestamp time.Time `json:"timestamp"`

	// CreatedAt is the wall-clock time of insertion. Record-keeping only,
	// never used for ordering or filtering.
	CreatedAt time.Time `json:"created_at"`
}

// RawEvent is the untyped POST /webhook payload. Timestamp stays a string
// here; semantic parsing happens on the insert path so that a malformed
// timestamp is reported as an ingestion failure, not a validation failure.
type RawEvent struct {
	RequestID  string `json:"request_id"`
	EventType  string `json:"event_type"`
	Author     string `json:"author"`
	Action     string `json:"action"`
	FromBranch string `json:"from_branch"`
	ToBranch   string `json:"to_branch"`
	Branch     string `json:"branch"`
	Timestamp  string `json:"timestamp"`
}

// MissingFields returns the names of every absent required field, so the
// caller can fix the request in one round trip. Empty result means valid.
func (e *RawEvent) MissingFields() []string {
	var missing []string
	if e.EventType == "" {
		missing = append(missing, "event_type")
	}
	if e.Author == "" {
		missing = append(missing, "author")
	}
	if e.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	return missing
}

// EnsureRequestID assigns a fresh random UUID when the caller did not supply
// a request_id, and returns the effective value.
func (e *RawEvent) EnsureRequestID() string {
	if e.RequestID == "" {
		e.RequestID = uuid.NewString()
	}
	return e.RequestID
}

// ParseTimestamp parses an ISO-8601 timestamp. A trailing "Z" is accepted as
// UTC offset per RFC 3339; a value with no offset at all is interpreted as
// UTC, matching what producers that omit the zone designator intend.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO-8601", s)
}
