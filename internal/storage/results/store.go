// Package results keeps the history of sweep results across runs.
package results

import (
	"context"
	"time"

	"github.com/newthinker/bankroll/internal/sweep"
)

// Record is one stored sweep result.
type Record struct {
	SweepID    string    `json:"sweep_id"`
	RecordedAt time.Time `json:"recorded_at"`
	sweep.Result
}

// Store defines the interface for sweep result persistence.
type Store interface {
	// Save appends the results of one sweep, in sweep order.
	Save(ctx context.Context, sweepID string, results []sweep.Result) error

	// List retrieves records matching the filter, oldest first.
	List(ctx context.Context, filter ListFilter) ([]Record, error)

	// Count returns the number of records matching the filter.
	Count(ctx context.Context, filter ListFilter) (int, error)

	Close() error
}

// ListFilter defines criteria for listing records.
type ListFilter struct {
	SweepID string
	RunID   string
	From    time.Time
	To      time.Time
	Limit   int
	Offset  int
}

// Open returns a SQLite store for a non-empty DSN and an in-memory store
// otherwise.
func Open(dsn string, memoryCap int) (Store, error) {
	if dsn == "" {
		return NewMemoryStore(memoryCap), nil
	}
	return NewSQLiteStore(dsn)
}

// paginate applies offset and limit to an already filtered slice.
func paginate(records []Record, filter ListFilter) []Record {
	if filter.Offset > 0 {
		if filter.Offset >= len(records) {
			return []Record{}
		}
		records = records[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(records) {
		records = records[:filter.Limit]
	}
	return records
}
