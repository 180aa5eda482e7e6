package v1

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		event   RawEvent
		missing []string
	}{
		{
			name:    "all required present",
			event:   RawEvent{EventType: "push", Author: "alice", Timestamp: "2026-01-30T10:00:00Z"},
			missing: nil,
		},
		{
			name:    "all required absent",
			event:   RawEvent{Branch: "main"},
			missing: []string{"event_type", "author", "timestamp"},
		},
		{
			name:    "author absent",
			event:   RawEvent{EventType: "push", Timestamp: "2026-01-30T10:00:00Z"},
			missing: []string{"author"},
		},
		{
			name:    "event_type and timestamp absent",
			event:   RawEvent{Author: "alice"},
			missing: []string{"event_type", "timestamp"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.missing, tc.event.MissingFields())
		})
	}
}

func TestEnsureRequestID_PreservesCallerValue(t *testing.T) {
	e := RawEvent{RequestID: "abc-123"}
	require.Equal(t, "abc-123", e.EnsureRequestID())
	require.Equal(t, "abc-123", e.RequestID)
}

func TestEnsureRequestID_GeneratesDistinctIDs(t *testing.T) {
	a := RawEvent{}
	b := RawEvent{}

	idA := a.EnsureRequestID()
	idB := b.EnsureRequestID()

	require.NotEmpty(t, idA)
	require.NotEmpty(t, idB)
	require.NotEqual(t, idA, idB)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		fails bool
	}{
		{
			name:  "trailing Z is UTC",
			input: "2026-01-30T10:00:00Z",
			want:  time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "explicit offset normalized to UTC",
			input: "2026-01-30T12:00:00+02:00",
			want:  time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "no offset interpreted as UTC",
			input: "2026-01-30T10:00:00",
			want:  time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC),
		},
		{
			// time.Parse accepts a fractional second after the seconds
			// field even when the layout omits it.
			name:  "fractional seconds without offset",
			input: "2026-01-30T10:00:00.123",
			want:  time.Date(2026, 1, 30, 10, 0, 0, 123000000, time.UTC),
		},
		{
			name:  "fractional seconds with Z",
			input: "2026-01-30T10:00:00.123Z",
			want:  time.Date(2026, 1, 30, 10, 0, 0, 123000000, time.UTC),
		},
		{
			name:  "garbage rejected",
			input: "yesterday",
			fails: true,
		},
		{
			name:  "empty rejected",
			input: "",
			fails: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTimestamp(tc.input)
			if tc.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, tc.want.Equal(got), "want %v got %v", tc.want, got)
		})
	}
}
