package results

import (
	"context"
	"sync"
	"time"

	"github.com/newthinker/bankroll/internal/sweep"
)

// MemoryStore is an in-memory result store holding at most maxSize records.
type MemoryStore struct {
	records []Record
	maxSize int
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store with max capacity.
// A non-positive maxSize keeps everything.
func NewMemoryStore(maxSize int) *MemoryStore {
	return &MemoryStore{
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Save appends the results of one sweep.
func (m *MemoryStore) Save(ctx context.Context, sweepID string, results []sweep.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	at := m.now().UTC()
	for _, r := range results {
		m.records = append(m.records, Record{SweepID: sweepID, RecordedAt: at, Result: r})
	}

	// Trim if over capacity (remove oldest)
	if m.maxSize > 0 && len(m.records) > m.maxSize {
		m.records = append([]Record(nil), m.records[len(m.records)-m.maxSize:]...)
	}
	return nil
}

// List returns records matching the filter.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []Record{}
	for _, rec := range m.records {
		if matches(rec, filter) {
			result = append(result, rec)
		}
	}
	return paginate(result, filter), nil
}

// Count returns the count of matching records.
func (m *MemoryStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records {
		if matches(rec, filter) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) Close() error { return nil }

func matches(rec Record, filter ListFilter) bool {
	if filter.SweepID != "" && rec.SweepID != filter.SweepID {
		return false
	}
	if filter.RunID != "" && rec.RunID != filter.RunID {
		return false
	}
	if !filter.From.IsZero() && rec.RecordedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && rec.RecordedAt.After(filter.To) {
		return false
	}
	return true
}
