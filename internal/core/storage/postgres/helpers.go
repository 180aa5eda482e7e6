package postgres

import (
	"fmt"
	"strconv"

	v1 "github.com/Abrar090909/webhook-repo/internal/api/v1"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanEventRow scans one events row into an Event. Compatible with both
// sql.Row and sql.Rows. The BIGSERIAL id is rendered as an opaque string.
func scanEventRow(row scanner) (*v1.Event, error) {
	var evt v1.Event
	var id int64

	err := row.Scan(
		&id,
		&evt.RequestID,
		&evt.EventType,
		&evt.Author,
		&evt.Action,
		&evt.FromBranch,
		&evt.ToBranch,
		&evt.Branch,
		&evt.Timestamp,
		&evt.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan event row: %w", err)
	}

	evt.ID = strconv.FormatInt(id, 10)
	evt.Timestamp = evt.Timestamp.UTC()
	evt.CreatedAt = evt.CreatedAt.UTC()
	return &evt, nil
}
