package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	v1 "github.com/Abrar090909/webhook-repo/internal/api/v1"
	"github.com/Abrar090909/webhook-repo/internal/core/storage"
	"github.com/Abrar090909/webhook-repo/internal/migrations"
	"github.com/lib/pq"
)

const (
	connectPingTimeout = 5 * time.Second
	defaultOpTimeout   = 8 * time.Second

	// uniqueViolation is the postgres error code for a unique constraint
	// breach. The ON CONFLICT clause normally absorbs duplicates, but a
	// racing insert can still surface the raw violation.
	uniqueViolation = pq.ErrorCode("23505")
)

// Options configures the adapter. An empty DSN is permitted: the adapter
// stays uninitialized and every operation fails with storage.ErrUnavailable,
// so the process can boot (and answer /health) without a database.
type Options struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	OpTimeout    time.Duration
	AutoMigrate  bool
}

// Adapter implements storage.EventStore for PostgreSQL.
//
// The connection is established lazily on first use rather than at process
// startup, so boot never blocks on a slow or cold-starting backend. Every
// operation first runs ensureReady, which walks the state machine
// Uninitialized → Connecting → Ready | Degraded; from Degraded the next
// operation retries the connection.
type Adapter struct {
	opts Options

	mu    sync.Mutex
	db    *sql.DB
	state storage.State

	schemaMu    sync.Mutex
	schemaReady bool
}

var runMigrations = migrations.Run

// NewAdapter creates the adapter without touching the network.
func NewAdapter(opts Options) *Adapter {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 25
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 25
	}
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = defaultOpTimeout
	}
	return &Adapter{opts: opts, state: storage.StateUninitialized}
}

// ensureReady returns a usable handle, connecting and bootstrapping the
// schema as needed.
func (a *Adapter) ensureReady(ctx context.Context) (*sql.DB, error) {
	db, err := a.ensureConnected(ctx)
	if err != nil {
		return nil, err
	}
	a.ensureSchema(db)
	return db, nil
}

// ensureConnected walks the state machine Uninitialized → Connecting →
// Ready | Degraded. The mutex guards only the lifecycle transition;
// operations run on the pooled handle concurrently without it.
func (a *Adapter) ensureConnected(ctx context.Context) (*sql.DB, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.opts.DSN == "" {
		return nil, fmt.Errorf("no connection string configured: %w", storage.ErrUnavailable)
	}

	if a.db == nil {
		a.state = storage.StateConnecting
		db, err := sql.Open("postgres", a.opts.DSN)
		if err != nil {
			a.state = storage.StateDegraded
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(a.opts.MaxOpenConns)
		db.SetMaxIdleConns(a.opts.MaxIdleConns)
		db.SetConnMaxLifetime(5 * time.Minute)
		a.db = db
	}

	if a.state != storage.StateReady {
		a.state = storage.StateConnecting
		pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
		defer cancel()

		if err := a.db.PingContext(pingCtx); err != nil {
			a.state = storage.StateDegraded
			return nil, fmt.Errorf("ping postgres: %w: %w", storage.ErrUnavailable, err)
		}
		a.state = storage.StateReady
		slog.Info("[postgres] connected", "max_open_conns", a.opts.MaxOpenConns)
	}

	return a.db, nil
}

// ensureSchema bootstraps the unique index once. Non-fatal: the schema may
// already exist or the backend may still be warming up; inserts keep
// attempting the write and rely on the constraint, and the bootstrap is
// retried on the next operation. It runs outside the connection lock and
// single-flight, so a slow migration never stalls unrelated operations.
func (a *Adapter) ensureSchema(db *sql.DB) {
	if !a.opts.AutoMigrate {
		return
	}
	if !a.schemaMu.TryLock() {
		// A bootstrap is already in flight; don't pile up behind it.
		return
	}
	defer a.schemaMu.Unlock()

	if a.schemaReady {
		return
	}
	if err := runMigrations(db, a.opts.OpTimeout); err != nil {
		slog.Warn("[postgres] schema bootstrap failed, will retry", "error", err)
		return
	}
	a.schemaReady = true
}

// markDegraded forces a reconnect probe on the next operation.
func (a *Adapter) markDegraded() {
	a.mu.Lock()
	a.state = storage.StateDegraded
	a.mu.Unlock()
}

// State reports the connection lifecycle state for the health endpoint.
func (a *Adapter) State() storage.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Ping verifies backend reachability, connecting first if needed. It always
// issues a driver-level ping, so a backend that went away after a successful
// connect is detected rather than reported healthy from cached state.
func (a *Adapter) Ping(ctx context.Context) error {
	db, err := a.ensureReady(ctx)
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		a.markDegraded()
		return fmt.Errorf("ping postgres: %w: %w", storage.ErrUnavailable, err)
	}
	return nil
}

// InsertEvent persists the event, assigning event.ID from the database.
// A request_id that already exists returns storage.ErrDuplicate; the
// unique index enforces this atomically, so two racing inserts of the same
// id resolve to exactly one success without any application-level lock.
func (a *Adapter) InsertEvent(ctx context.Context, event *v1.Event) error {
	db, err := a.ensureReady(ctx)
	if err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(ctx, a.opts.OpTimeout)
	defer cancel()

	var id int64
	err = db.QueryRowContext(opCtx, queryInsertEvent,
		event.RequestID,
		event.EventType,
		event.Author,
		event.Action,
		event.FromBranch,
		event.ToBranch,
		event.Branch,
		event.Timestamp,
		event.CreatedAt,
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		// ON CONFLICT DO NOTHING returned no row: the id was already stored.
		return storage.ErrDuplicate
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return storage.ErrDuplicate
	}
	if err != nil {
		a.markDegraded()
		return fmt.Errorf("insert event: %w", err)
	}

	event.ID = strconv.FormatInt(id, 10)
	return nil
}

// RecentEvents returns up to limit events sorted by timestamp descending,
// strictly newer than since when a watermark is supplied.
func (a *Adapter) RecentEvents(ctx context.Context, since *time.Time, limit int) ([]*v1.Event, error) {
	db, err := a.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, a.opts.OpTimeout)
	defer cancel()

	var rows *sql.Rows
	if since != nil {
		rows, err = db.QueryContext(opCtx, queryRecentEventsSince, *since, limit)
	} else {
		rows, err = db.QueryContext(opCtx, queryRecentEvents, limit)
	}
	if err != nil {
		a.markDegraded()
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*v1.Event
	for rows.Next() {
		event, scanErr := scanEventRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	return events, nil
}

// ClearEvents deletes every stored event and reports the count removed.
func (a *Adapter) ClearEvents(ctx context.Context) (int64, error) {
	db, err := a.ensureReady(ctx)
	if err != nil {
		return 0, err
	}

	opCtx, cancel := context.WithTimeout(ctx, a.opts.OpTimeout)
	defer cancel()

	res, err := db.ExecContext(opCtx, queryClearEvents)
	if err != nil {
		a.markDegraded()
		return 0, fmt.Errorf("clear events: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear events rows affected: %w", err)
	}
	return deleted, nil
}

// Close releases the connection pool. Safe when never connected.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	a.state = storage.StateUninitialized

	a.schemaMu.Lock()
	a.schemaReady = false
	a.schemaMu.Unlock()
	return err
}
