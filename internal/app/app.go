// Package app wires configuration, ledger loading, the sweep driver and the
// persistence collaborators into the operations exposed by the CLI and API.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/newthinker/bankroll/internal/config"
	"github.com/newthinker/bankroll/internal/curve"
	"github.com/newthinker/bankroll/internal/ledger"
	"github.com/newthinker/bankroll/internal/metrics"
	"github.com/newthinker/bankroll/internal/notifier"
	"github.com/newthinker/bankroll/internal/notifier/telegram"
	"github.com/newthinker/bankroll/internal/notifier/webhook"
	"github.com/newthinker/bankroll/internal/report"
	"github.com/newthinker/bankroll/internal/simulation"
	"github.com/newthinker/bankroll/internal/storage/archive"
	"github.com/newthinker/bankroll/internal/storage/results"
	"github.com/newthinker/bankroll/internal/sweep"
	"go.uber.org/zap"
)

// historyCap bounds the in-memory result history when no DSN is configured
const historyCap = 10000

const notifyTimeout = 30 * time.Second

// App is the main application orchestrator
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	metrics   *metrics.Registry
	results   results.Store
	artifacts *archive.Artifacts
	notifiers *notifier.Registry
	now       func() time.Time

	mu      sync.Mutex
	running int
}

// Option customises App construction.
type Option func(*App)

// WithResultStore replaces the store opened from output.results_dsn.
func WithResultStore(s results.Store) Option {
	return func(a *App) { a.results = s }
}

// WithArchive replaces the store opened from output.archive.
func WithArchive(s archive.Store) Option {
	return func(a *App) {
		if s != nil {
			a.artifacts = archive.NewArtifacts(s)
		}
	}
}

// WithMetrics shares an existing registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(a *App) { a.metrics = reg }
}

// New creates a new App instance. Stores not supplied through options are
// opened from cfg.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		cfg:       cfg,
		logger:    logger,
		notifiers: notifier.NewRegistry(),
		now:       time.Now,
	}
	if err := a.registerConfiguredNotifiers(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.metrics == nil {
		a.metrics = metrics.NewRegistry()
	}
	if a.results == nil {
		store, err := results.Open(cfg.Output.ResultsDSN, historyCap)
		if err != nil {
			return nil, fmt.Errorf("opening result store: %w", err)
		}
		a.results = store
	}
	if a.artifacts == nil {
		store, err := archive.Open(archiveOptions(cfg.Output.Archive))
		if err != nil {
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		if store != nil {
			a.artifacts = archive.NewArtifacts(store)
		}
	}

	return a, nil
}

func (a *App) registerConfiguredNotifiers() error {
	names := make([]string, 0, len(a.cfg.Notifiers))
	for name := range a.cfg.Notifiers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		nc := a.cfg.Notifiers[name]
		if !nc.Enabled {
			continue
		}

		var n notifier.Notifier
		var err error
		switch name {
		case "webhook":
			n, err = webhook.New(nc.URL, nc.Headers)
		case "telegram":
			n, err = telegram.New(nc.BotToken, nc.ChatID)
		default:
			err = fmt.Errorf("unknown notifier %q", name)
		}
		if err != nil {
			return fmt.Errorf("creating notifier: %w", err)
		}
		if err := a.RegisterNotifier(n); err != nil {
			return err
		}
		a.logger.Info("registered notifier", zap.String("name", name))
	}
	return nil
}

// RegisterNotifier adds a channel that is told about every finished sweep.
func (a *App) RegisterNotifier(n notifier.Notifier) error {
	return a.notifiers.Register(n)
}

func archiveOptions(c config.ArchiveConfig) archive.Options {
	return archive.Options{
		Type: c.Type,
		Path: c.Path,
		S3: archive.S3Config{
			Bucket:    c.S3.Bucket,
			Endpoint:  c.S3.Endpoint,
			Region:    c.S3.Region,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
			Prefix:    c.S3.Prefix,
		},
	}
}

func (a *App) Config() *config.Config        { return a.cfg }
func (a *App) Metrics() *metrics.Registry    { return a.metrics }
func (a *App) Results() results.Store        { return a.results }
func (a *App) Artifacts() *archive.Artifacts { return a.artifacts }

// BaseParams returns the configured simulation parameters. Capital per trade
// is left at zero; callers supply it per run.
func (a *App) BaseParams() simulation.Params {
	return simulation.Params{
		StartingCapital:     a.cfg.Simulation.StartingCapital,
		MarginFactor:        a.cfg.Simulation.MarginFactor,
		LossStreakThreshold: a.cfg.Simulation.LossStreakThreshold,
	}
}

// DefaultGrid returns the configured sweep grid.
func (a *App) DefaultGrid() sweep.Grid {
	r := a.cfg.Sweep.CapitalPerTrade
	return sweep.Grid{
		CapitalPerTrade:      sweep.Range{Start: r.Start, Stop: r.Stop, Step: r.Step},
		LossStreakThresholds: a.cfg.Sweep.LossStreakThresholds,
	}
}

// LedgerSource reads the configured ledger directory, or dir when non-empty.
func (a *App) LedgerSource(dir string) (ledger.Source, error) {
	pairing, err := ledger.ParsePairing(a.cfg.Ledger.Pairing)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = a.cfg.Ledger.Dir
	}
	return ledger.DirSource{Dir: dir, Options: ledger.BuildOptions{Pairing: pairing}}, nil
}

// Simulate runs a single simulation and annotates its curve.
func (a *App) Simulate(ctx context.Context, src ledger.Source, p simulation.Params) (*simulation.Run, curve.Stats, error) {
	trades, err := src.Ledger(ctx)
	if err != nil {
		return nil, curve.Stats{}, fmt.Errorf("building ledger: %w", err)
	}

	run, err := simulation.Simulate(trades, p)
	if err != nil {
		return nil, curve.Stats{}, err
	}
	if err := curve.Annotate(run.Rows); err != nil {
		return nil, curve.Stats{}, err
	}

	a.logger.Info("simulation complete",
		zap.Int("trades", run.Trades),
		zap.Int("taken", run.Taken),
		zap.Float64("ending_equity", run.EndingEquity()),
	)
	return run, curve.CalculateStats(run), nil
}

// SweepRequest describes one sweep. Zero fields fall back to configuration.
type SweepRequest struct {
	Source  ledger.Source
	Base    *simulation.Params
	Grid    *sweep.Grid
	Workers int
}

// SweepOutput is a finished sweep and where it was persisted.
type SweepOutput struct {
	Report   *sweep.Report
	Archived []string
}

// Sweep runs the grid, stores the results in history and archives the bundle.
// Persistence failures are returned alongside the report.
func (a *App) Sweep(ctx context.Context, req SweepRequest) (*SweepOutput, error) {
	base := a.BaseParams()
	if req.Base != nil {
		base = *req.Base
	}
	grid := a.DefaultGrid()
	if req.Grid != nil {
		grid = *req.Grid
	}
	workers := req.Workers
	if workers <= 0 {
		workers = a.cfg.Sweep.Workers
	}
	src := req.Source
	if src == nil {
		var err error
		if src, err = a.LedgerSource(""); err != nil {
			return nil, err
		}
	}

	a.trackRunning(1)
	defer a.trackRunning(-1)

	driver := sweep.New(base,
		sweep.WithWorkers(workers),
		sweep.WithLogger(a.logger),
		sweep.WithRecorder(a.metrics),
	)
	rep, err := driver.Run(ctx, src, grid)
	if err != nil {
		a.metrics.RecordSweep("failed")
		a.notify(ctx, notifier.Event{
			Status:     notifier.StatusFailed,
			Error:      err.Error(),
			FinishedAt: a.now(),
		})
		return nil, err
	}
	a.metrics.RecordSweep("completed")

	out := &SweepOutput{Report: rep}
	err = a.persist(ctx, out)
	a.notify(ctx, notifier.NewEvent(rep, out.Archived, a.now()))
	return out, err
}

// notify delivers ev to every registered channel. Delivery failures are logged
// and never fail the sweep.
func (a *App) notify(ctx context.Context, ev notifier.Event) {
	if len(a.notifiers.Names()) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	for name, err := range a.notifiers.NotifyAll(ctx, ev) {
		a.logger.Warn("sweep notification failed",
			zap.String("notifier", name),
			zap.String("sweep_id", ev.SweepID),
			zap.Error(err),
		)
	}
}

func (a *App) persist(ctx context.Context, out *SweepOutput) error {
	rep := out.Report
	var errs []error

	if err := a.results.Save(ctx, rep.ID, rep.Results()); err != nil {
		errs = append(errs, fmt.Errorf("saving results: %w", err))
	}

	if a.artifacts != nil {
		files, err := report.Bundle(rep, a.now())
		if err != nil {
			errs = append(errs, err)
		} else {
			out.Archived, err = a.artifacts.SaveSweep(ctx, rep.ID, files)
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		a.logger.Error("persisting sweep", zap.String("sweep_id", rep.ID), zap.Errors("errors", errs))
	}
	return errors.Join(errs...)
}

func (a *App) trackRunning(delta int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running += delta
	a.metrics.SetJobsActive(a.running)
}

// Running returns the number of sweeps in progress.
func (a *App) Running() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Close releases the result store.
func (a *App) Close() error {
	return a.results.Close()
}
