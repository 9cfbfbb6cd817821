// Package ledger turns raw per-symbol trade logs into the single, chronologically
// ordered list of closed trades that the simulation replays.
package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/newthinker/bankroll/internal/core"
)

// Pairing selects which neighbouring row supplies an exit's start timestamp.
type Pairing string

const (
	// PairPreceding takes the start from the row before the exit (oldest-first logs).
	PairPreceding Pairing = "preceding"
	// PairFollowing takes the start from the row after the exit (newest-first exports).
	PairFollowing Pairing = "following"
)

// ParsePairing validates a pairing name; empty means PairPreceding.
func ParsePairing(s string) (Pairing, error) {
	switch Pairing(s) {
	case "", PairPreceding:
		return PairPreceding, nil
	case PairFollowing:
		return PairFollowing, nil
	default:
		return "", core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown ledger pairing %q (want preceding or following)", s))
	}
}

// BuildOptions controls ledger construction.
type BuildOptions struct {
	Pairing Pairing
}

// Build pairs every exit row with its neighbouring row's timestamp, rescales profit
// from percentage points to a fraction, concatenates all symbols and sorts by start
// time. The sort is stable, so equal start times keep symbol-then-row input order.
func Build(logs []core.SymbolLog, opts BuildOptions) ([]core.TradeRecord, error) {
	pairing := opts.Pairing
	if pairing == "" {
		pairing = PairPreceding
	}

	var trades []core.TradeRecord
	for _, log := range logs {
		paired, err := pairLog(log, pairing)
		if err != nil {
			return nil, err
		}
		trades = append(trades, paired...)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].StartTime.Before(trades[j].StartTime)
	})
	return trades, nil
}

func pairLog(log core.SymbolLog, pairing Pairing) ([]core.TradeRecord, error) {
	var trades []core.TradeRecord
	for i, ev := range log.Events {
		if ev.Type != core.EventExit {
			continue
		}

		j := i - 1
		if pairing == PairFollowing {
			j = i + 1
		}
		if j < 0 || j >= len(log.Events) {
			return nil, core.WrapError(core.ErrMalformedLedger,
				fmt.Errorf("%s: exit at row %d has no %s row to open the trade", log.Symbol, i, pairing))
		}

		start := log.Events[j].Timestamp
		if ev.Timestamp.Before(start) {
			return nil, core.WrapError(core.ErrMalformedLedger,
				fmt.Errorf("%s: exit at row %d (%s) precedes its start (%s)",
					log.Symbol, i, ev.Timestamp.Format("2006-01-02 15:04"), start.Format("2006-01-02 15:04")))
		}

		trades = append(trades, core.TradeRecord{
			Symbol:         log.Symbol,
			StartTime:      start,
			EndTime:        ev.Timestamp,
			ProfitFraction: ev.ProfitPercent / 100,
		})
	}
	return trades, nil
}

// Source delivers a freshly built ledger on every call.
type Source interface {
	Ledger(ctx context.Context) ([]core.TradeRecord, error)
}

// LogSource builds the ledger from in-memory logs.
type LogSource struct {
	Logs    []core.SymbolLog
	Options BuildOptions
}

// Ledger implements Source.
func (s LogSource) Ledger(ctx context.Context) ([]core.TradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Build(s.Logs, s.Options)
}

// DirSource re-reads a directory of per-symbol CSV logs on every call.
type DirSource struct {
	Dir     string
	Options BuildOptions
}

// Ledger implements Source.
func (s DirSource) Ledger(ctx context.Context) ([]core.TradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logs, err := LoadDir(s.Dir)
	if err != nil {
		return nil, err
	}
	return Build(logs, s.Options)
}
