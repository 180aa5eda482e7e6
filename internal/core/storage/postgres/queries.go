package postgres

// SQL for the events table. Dedup relies on the unique index on request_id:
// ON CONFLICT DO NOTHING makes the duplicate insert return no rows
// (sql.ErrNoRows), which the adapter maps to storage.ErrDuplicate.

const (
	queryInsertEvent = `
		INSERT INTO events (
			request_id, event_type, author,
			action, from_branch, to_branch, branch,
			timestamp, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (request_id) DO NOTHING
		RETURNING id
	`

	// queryRecentEvents serves the dashboard poll without a watermark.
	queryRecentEvents = `
		SELECT
			id, request_id, event_type, author,
			action, from_branch, to_branch, branch,
			timestamp, created_at
		FROM events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	// queryRecentEventsSince is the incremental variant: strictly newer
	// than the watermark, so an event at exactly the watermark is excluded.
	queryRecentEventsSince = `
		SELECT
			id, request_id, event_type, author,
			action, from_branch, to_branch, branch,
			timestamp, created_at
		FROM events
		WHERE timestamp > $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	queryClearEvents = `DELETE FROM events`
)
