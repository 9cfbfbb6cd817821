package results

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/newthinker/bankroll/internal/sweep"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sweep_results (
    id                    INTEGER PRIMARY KEY AUTOINCREMENT,
    sweep_id              TEXT    NOT NULL,
    recorded_at           INTEGER NOT NULL,
    run_id                TEXT    NOT NULL,
    capital_per_trade     REAL    NOT NULL,
    loss_streak_threshold INTEGER NOT NULL,
    margin_factor         REAL    NOT NULL,
    max_concurrent_trades INTEGER NOT NULL,
    starting_equity       REAL    NOT NULL,
    ending_equity         REAL    NOT NULL,
    worst_drawdown        REAL    NOT NULL,
    trades                INTEGER NOT NULL DEFAULT 0,
    taken                 INTEGER NOT NULL DEFAULT 0,
    skipped_capacity      INTEGER NOT NULL DEFAULT 0,
    skipped_loss_streak   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_results_sweep ON sweep_results(sweep_id);
CREATE INDEX IF NOT EXISTS idx_results_at    ON sweep_results(recorded_at);
CREATE INDEX IF NOT EXISTS idx_results_run   ON sweep_results(run_id);
`

const columns = `sweep_id, recorded_at, run_id, capital_per_trade, loss_streak_threshold, margin_factor,
    max_concurrent_trades, starting_equity, ending_equity, worst_drawdown,
    trades, taken, skipped_capacity, skipped_loss_streak`

// SQLiteStore persists results with the pure-Go modernc SQLite driver.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("results.NewSQLiteStore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("results.NewSQLiteStore: apply schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Save inserts all results of a sweep in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, sweepID string, results []sweep.Result) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("results.Save: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sweep_results (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("results.Save: prepare: %w", err)
	}
	defer stmt.Close()

	at := s.now().UTC().UnixNano()
	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			sweepID, at, r.RunID, r.CapitalPerTrade, r.LossStreakThreshold, r.MarginFactor,
			r.MaxConcurrentTrades, r.StartingEquity, r.EndingEquity, r.WorstDrawdown,
			r.Trades, r.Taken, r.SkippedCapacity, r.SkippedLossStreak,
		); err != nil {
			return fmt.Errorf("results.Save: insert %s: %w", r.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("results.Save: commit: %w", err)
	}
	return nil
}

// List returns matching records in insertion order.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + columns + ` FROM sweep_results` + where + ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("results.List: query: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var at int64
		if err := rows.Scan(
			&rec.SweepID, &at, &rec.RunID, &rec.CapitalPerTrade, &rec.LossStreakThreshold, &rec.MarginFactor,
			&rec.MaxConcurrentTrades, &rec.StartingEquity, &rec.EndingEquity, &rec.WorstDrawdown,
			&rec.Trades, &rec.Taken, &rec.SkippedCapacity, &rec.SkippedLossStreak,
		); err != nil {
			return nil, fmt.Errorf("results.List: scan: %w", err)
		}
		rec.RecordedAt = time.Unix(0, at).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of matching records.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := whereClause(filter)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sweep_results`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("results.Count: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func whereClause(filter ListFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.SweepID != "" {
		conds = append(conds, "sweep_id = ?")
		args = append(args, filter.SweepID)
	}
	if filter.RunID != "" {
		conds = append(conds, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if !filter.From.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, filter.From.UTC().UnixNano())
	}
	if !filter.To.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, filter.To.UTC().UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
