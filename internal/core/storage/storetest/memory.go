// Package storetest provides an in-memory storage.EventStore used by
// service and handler tests, mirroring the dedup and ordering semantics of
// the postgres adapter.
package storetest

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	v1 "github.com/Abrar090909/webhook-repo/internal/api/v1"
	"github.com/Abrar090909/webhook-repo/internal/core/storage"
)

// MemoryStore implements storage.EventStore in memory.
//
// Setting Err makes every operation fail with that error, which is how
// tests exercise the degraded-storage paths.
type MemoryStore struct {
	mu     sync.Mutex
	events []*v1.Event
	byID   map[string]bool
	nextID int64

	Err       error
	ErrState  storage.State
	connected bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]bool), ErrState: storage.StateDegraded}
}

func (m *MemoryStore) InsertEvent(ctx context.Context, event *v1.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.connected = true

	if m.byID[event.RequestID] {
		return storage.ErrDuplicate
	}
	m.byID[event.RequestID] = true

	m.nextID++
	event.ID = strconv.FormatInt(m.nextID, 10)

	stored := *event
	m.events = append(m.events, &stored)
	return nil
}

func (m *MemoryStore) RecentEvents(ctx context.Context, since *time.Time, limit int) ([]*v1.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	m.connected = true

	var out []*v1.Event
	for _, e := range m.events {
		if since != nil && !e.Timestamp.After(*since) {
			continue
		}
		copied := *e
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) ClearEvents(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}

	deleted := int64(len(m.events))
	m.events = nil
	m.byID = make(map[string]bool)
	return deleted, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.connected = true
	return nil
}

func (m *MemoryStore) State() storage.State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.ErrState
	}
	if !m.connected {
		return storage.StateUninitialized
	}
	return storage.StateReady
}

// Count reports the number of stored events, for test assertions.
func (m *MemoryStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
