// Package sweep repeats the full ledger → simulation → curve pipeline over a grid of
// capital-per-trade fractions and loss-streak thresholds.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/bankroll/internal/curve"
	"github.com/newthinker/bankroll/internal/ledger"
	"github.com/newthinker/bankroll/internal/simulation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runNamespace scopes deterministic run IDs
var runNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("bankroll.sweep.run"))

// Recorder receives per-iteration measurements
type Recorder interface {
	RecordSimulation(status string, seconds float64)
	RecordTrades(taken, skippedCapacity, skippedLossStreak int)
}

// Driver runs sweeps. It holds no per-run state and may be reused concurrently.
type Driver struct {
	base     simulation.Params
	workers  int
	logger   *zap.Logger
	recorder Recorder
}

// Option configures a Driver
type Option func(*Driver)

// WithWorkers bounds how many iterations run at once
func WithWorkers(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger sets the driver's logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		d.recorder = r
	}
}

// New creates a Driver. base supplies starting capital, margin factor and the
// default loss-streak threshold; capital per trade comes from the grid.
func New(base simulation.Params, opts ...Option) *Driver {
	d := &Driver{
		base:    base,
		workers: 1,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes every grid point. A failing iteration is recorded in its Outcome and
// does not stop the others; only an invalid grid or a cancelled context fails the
// whole run. Outcomes are in grid order regardless of completion order.
func (d *Driver) Run(ctx context.Context, src ledger.Source, grid Grid) (*Report, error) {
	points, err := grid.Points(d.base.LossStreakThreshold)
	if err != nil {
		return nil, err
	}

	report := &Report{
		ID:       uuid.NewString(),
		Outcomes: make([]Outcome, len(points)),
	}
	d.logger.Info("starting sweep",
		zap.String("sweep_id", report.ID),
		zap.Int("points", len(points)),
		zap.Int("workers", d.workers),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, pt := range points {
		g.Go(func() error {
			// each slot is written by exactly one goroutine
			report.Outcomes[i] = d.iterate(gctx, src, pt)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.logger.Info("sweep complete",
		zap.String("sweep_id", report.ID),
		zap.Int("succeeded", len(report.Results())),
		zap.Int("failed", len(report.Failures())),
	)
	return report, nil
}

func (d *Driver) iterate(ctx context.Context, src ledger.Source, pt Point) Outcome {
	start := time.Now()
	out := Outcome{Point: pt}

	out.Run, out.Result, out.Stats, out.Err = d.simulate(ctx, src, pt)

	status := "success"
	if out.Err != nil {
		status = "failed"
		out.Run, out.Result = nil, nil
		d.logger.Warn("sweep iteration failed",
			zap.Float64("capital_per_trade", pt.CapitalPerTrade),
			zap.Int("loss_streak_threshold", pt.LossStreakThreshold),
			zap.Error(out.Err),
		)
	} else {
		d.logger.Debug("sweep iteration",
			zap.Float64("capital_per_trade", pt.CapitalPerTrade),
			zap.Int("loss_streak_threshold", pt.LossStreakThreshold),
			zap.Float64("ending_equity", out.Result.EndingEquity),
			zap.Float64("worst_drawdown", out.Result.WorstDrawdown),
		)
	}

	if d.recorder != nil {
		d.recorder.RecordSimulation(status, time.Since(start).Seconds())
		if out.Result != nil {
			d.recorder.RecordTrades(out.Result.Taken, out.Result.SkippedCapacity, out.Result.SkippedLossStreak)
		}
	}
	return out
}

func (d *Driver) simulate(ctx context.Context, src ledger.Source, pt Point) (*simulation.Run, *Result, curve.Stats, error) {
	trades, err := src.Ledger(ctx)
	if err != nil {
		return nil, nil, curve.Stats{}, fmt.Errorf("building ledger: %w", err)
	}

	params := d.base
	params.CapitalPerTrade = pt.CapitalPerTrade
	params.LossStreakThreshold = pt.LossStreakThreshold

	run, err := simulation.Simulate(trades, params)
	if err != nil {
		return nil, nil, curve.Stats{}, fmt.Errorf("simulating: %w", err)
	}
	if err := curve.Annotate(run.Rows); err != nil {
		return nil, nil, curve.Stats{}, fmt.Errorf("annotating curve: %w", err)
	}

	return run, Summarize(run), curve.CalculateStats(run), nil
}

// Summarize builds the sweep result row of an annotated run
func Summarize(run *simulation.Run) *Result {
	p := run.Params
	return &Result{
		RunID:               RunID(p),
		CapitalPerTrade:     p.CapitalPerTrade,
		LossStreakThreshold: p.LossStreakThreshold,
		MarginFactor:        p.MarginFactor,
		MaxConcurrentTrades: run.MaxConcurrentTrades,
		StartingEquity:      run.StartingEquity(),
		EndingEquity:        run.EndingEquity(),
		WorstDrawdown:       curve.WorstDrawdown(run.Rows),
		Trades:              run.Trades,
		Taken:               run.Taken,
		SkippedCapacity:     run.SkippedCapacity,
		SkippedLossStreak:   run.SkippedLossStreak,
	}
}

// RunID derives a stable identifier from the parameters of a run
func RunID(p simulation.Params) string {
	key := fmt.Sprintf("capital=%.9f|cpt=%.9f|margin=%.9f|streak=%d",
		p.StartingCapital, p.CapitalPerTrade, p.MarginFactor, p.LossStreakThreshold)
	return uuid.NewSHA1(runNamespace, []byte(key)).String()
}
