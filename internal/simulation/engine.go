// Package simulation replays a closed-trade ledger through a simulated account.
//
// A run is a fold over the ledger in start-time order. Each row reads only the
// state carried from the previous row, except for the concurrency gate, which
// counts open trades over the whole ledger (see overlapIndex).
package simulation

import (
	"fmt"

	"github.com/newthinker/bankroll/internal/core"
)

// Validate checks that params describe a runnable account
func (p Params) Validate() error {
	switch {
	case p.StartingCapital <= 0:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("starting capital must be positive, got %g", p.StartingCapital))
	case p.CapitalPerTrade <= 0:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("capital per trade must be positive, got %g", p.CapitalPerTrade))
	case p.MarginFactor <= 0:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("margin factor must be positive, got %g", p.MarginFactor))
	case p.LossStreakThreshold < 0:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("loss streak threshold cannot be negative, got %d", p.LossStreakThreshold))
	}
	return nil
}

// streakState is carried from row to row by the loss-streak fold
type streakState struct {
	count int
	reset bool
}

// next applies one row's profit. A winning row still increments the counter;
// the reset only takes effect on the following row.
func (s streakState) next(profit float64) streakState {
	prev := s.count
	if s.reset {
		prev = 0
	}
	return streakState{count: prev + 1, reset: profit > 0}
}

// equityState is carried from row to row by the compounding fold
type equityState struct {
	equity float64
}

func (s equityState) next(profit, capitalPerTrade float64, skip core.SkipReason) equityState {
	if skip.Skipped() {
		return s
	}
	return equityState{equity: s.equity * (1 + profit*capitalPerTrade)}
}

// Simulate replays a start-ordered ledger and returns the full row sequence,
// seed row first. The input slice is not modified.
//
// Skip precedence: when a row both exceeds the loss streak and fails the
// concurrency gate, it is reported as loss_streak_exceeded.
func Simulate(ledger []core.TradeRecord, p Params) (*Run, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := checkOrdered(ledger); err != nil {
		return nil, err
	}

	rows := make([]Row, len(ledger)+1)
	rows[0] = Row{Index: 0, Seed: true, Equity: p.StartingCapital}
	for i, t := range ledger {
		rows[i+1] = Row{Index: i + 1, Trade: t}
	}

	// Loss streaks depend on profits alone, so they are settled for every row
	// before the concurrency gate runs. The gate then sees later rows' streak
	// skips but not their capacity skips, which are decided as the fold reaches them.
	markLossStreaks(rows, p.LossStreakThreshold)

	maxOpen := p.MaxConcurrentTrades()
	gateAndCompound(rows, newOverlapIndex(ledger), p.CapitalPerTrade, maxOpen)

	run := &Run{
		Params:              p,
		MaxConcurrentTrades: maxOpen,
		Rows:                rows,
		Trades:              len(ledger),
	}
	for _, r := range rows[1:] {
		switch r.SkipReason {
		case core.SkipNone:
			run.Taken++
		case core.SkipInsufficientCapacity:
			run.SkippedCapacity++
		case core.SkipLossStreakExceeded:
			run.SkippedLossStreak++
		}
	}
	return run, nil
}

func markLossStreaks(rows []Row, threshold int) {
	var state streakState
	for i := 1; i < len(rows); i++ {
		state = state.next(rows[i].Trade.ProfitFraction)
		rows[i].LossStreakCount = state.count
		rows[i].LossStreakReset = state.reset
		if state.count > threshold {
			rows[i].SkipReason = core.SkipLossStreakExceeded
		}
	}
}

func gateAndCompound(rows []Row, idx *overlapIndex, capitalPerTrade float64, maxOpen int) {
	active := func(j int) bool { return !rows[j+1].SkipReason.Skipped() }

	state := equityState{equity: rows[0].Equity}
	for i := 1; i < len(rows); i++ {
		row := &rows[i]

		open := idx.count(i-1, active)
		if open > maxOpen {
			open = maxOpen
			if row.SkipReason != core.SkipLossStreakExceeded {
				row.SkipReason = core.SkipInsufficientCapacity
			}
		}
		row.ConcurrentOpen = open

		state = state.next(row.Trade.ProfitFraction, capitalPerTrade, row.SkipReason)
		row.Equity = state.equity
	}
}

func checkOrdered(ledger []core.TradeRecord) error {
	for i, t := range ledger {
		if t.EndTime.Before(t.StartTime) {
			return core.WrapError(core.ErrMalformedLedger,
				fmt.Errorf("trade %d (%s) ends before it starts", i, t.Symbol))
		}
		if i > 0 && t.StartTime.Before(ledger[i-1].StartTime) {
			return core.WrapError(core.ErrMalformedLedger,
				fmt.Errorf("trade %d (%s) is out of start-time order", i, t.Symbol))
		}
	}
	return nil
}
