package sweep

import (
	"github.com/newthinker/bankroll/internal/curve"
	"github.com/newthinker/bankroll/internal/simulation"
)

// Result summarises one sweep iteration
type Result struct {
	RunID               string  `json:"run_id" csv:"run_id"`
	CapitalPerTrade     float64 `json:"capital_per_trade" csv:"capital_per_trade"`
	LossStreakThreshold int     `json:"loss_streak_threshold" csv:"loss_streak_threshold"`
	MarginFactor        float64 `json:"margin_factor" csv:"margin_factor"`
	MaxConcurrentTrades int     `json:"max_concurrent_trades" csv:"max_concurrent_trades"`
	StartingEquity      float64 `json:"starting_equity" csv:"starting_equity"`
	EndingEquity        float64 `json:"ending_equity" csv:"ending_equity"`
	WorstDrawdown       float64 `json:"worst_drawdown" csv:"worst_drawdown"`
	Trades              int     `json:"trades" csv:"trades"`
	Taken               int     `json:"taken" csv:"taken"`
	SkippedCapacity     int     `json:"skipped_capacity" csv:"skipped_capacity"`
	SkippedLossStreak   int     `json:"skipped_loss_streak" csv:"skipped_loss_streak"`
}

// Outcome is one iteration: its grid point and either a result or an error
type Outcome struct {
	Point  Point           `json:"point"`
	Result *Result         `json:"result,omitempty"`
	Stats  curve.Stats     `json:"stats"`
	Run    *simulation.Run `json:"-"`
	Err    error           `json:"-"`
}

// Failed returns true if the iteration did not produce a result
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Report is the ordered output of one sweep
type Report struct {
	ID       string    `json:"id"`
	Outcomes []Outcome `json:"outcomes"`
}

// Results returns the successful summaries in sweep order
func (r *Report) Results() []Result {
	out := make([]Result, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Result != nil {
			out = append(out, *o.Result)
		}
	}
	return out
}

// Failures returns the failed iterations in sweep order
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// Best returns the result with the highest ending equity, or nil
func (r *Report) Best() *Result {
	var best *Result
	for _, o := range r.Outcomes {
		if o.Result != nil && (best == nil || o.Result.EndingEquity > best.EndingEquity) {
			best = o.Result
		}
	}
	return best
}
