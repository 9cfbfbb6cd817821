package main

import (
	"fmt"
	"os"

	"github.com/newthinker/bankroll/internal/app"
	"github.com/newthinker/bankroll/internal/report"
	"github.com/newthinker/bankroll/internal/sweep"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sweepStart       float64
	sweepStop        float64
	sweepStep        float64
	sweepThresholds  []int
	sweepWorkers     int
	sweepDir         string
	sweepCSV         string
	sweepMetricsFile string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the simulation across a capital-per-trade grid",
	Long: `Run one simulation per grid point, print the comparison table, store the
results in the history store and archive the result bundle.`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().Float64Var(&sweepStart, "start", 0, "first capital-per-trade value (default sweep.capital_per_trade.start)")
	sweepCmd.Flags().Float64Var(&sweepStop, "stop", 0, "exclusive upper bound (default sweep.capital_per_trade.stop)")
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 0, "grid step (default sweep.capital_per_trade.step)")
	sweepCmd.Flags().IntSliceVar(&sweepThresholds, "thresholds", nil, "loss-streak thresholds to cross with the grid")
	sweepCmd.Flags().IntVarP(&sweepWorkers, "workers", "w", 0, "iterations run in parallel (default sweep.workers)")
	sweepCmd.Flags().StringVar(&sweepDir, "dir", "", "directory of per-symbol trade logs (default ledger.dir)")
	sweepCmd.Flags().StringVar(&sweepCSV, "csv", "", "also write the results table to this CSV file (relative to output.dir)")
	sweepCmd.Flags().StringVar(&sweepMetricsFile, "metrics-file", "", "write Prometheus metrics in textfile format (default metrics.textfile)")

	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	grid := a.DefaultGrid()
	flags := cmd.Flags()
	if flags.Changed("start") {
		grid.CapitalPerTrade.Start = sweepStart
	}
	if flags.Changed("stop") {
		grid.CapitalPerTrade.Stop = sweepStop
	}
	if flags.Changed("step") {
		grid.CapitalPerTrade.Step = sweepStep
	}
	if flags.Changed("thresholds") {
		grid.LossStreakThresholds = sweepThresholds
	}

	src, err := a.LedgerSource(sweepDir)
	if err != nil {
		return err
	}

	out, err := a.Sweep(cmd.Context(), app.SweepRequest{
		Source:  src,
		Grid:    &grid,
		Workers: sweepWorkers,
	})
	if out == nil {
		return err
	}
	if err != nil {
		// the sweep itself finished; only persistence failed
		log.Warn("sweep results not fully persisted", zap.Error(err))
	}

	report.NewConsole(cmd.OutOrStdout()).PrintSweep(out.Report)
	if len(out.Archived) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\nArchived %d files for sweep %s\n", len(out.Archived), out.Report.ID)
	}

	if sweepCSV != "" {
		path, err := outputPath(cfg, sweepCSV)
		if err != nil {
			return err
		}
		if err := writeResultsCSV(path, out.Report.Results()); err != nil {
			return err
		}
		log.Info("wrote sweep results", zap.String("path", path))
	}

	metricsFile := sweepMetricsFile
	if metricsFile == "" {
		metricsFile = cfg.Metrics.Textfile
	}
	if metricsFile != "" {
		if err := a.Metrics().WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	if failed := out.Report.Failures(); len(failed) == len(out.Report.Outcomes) {
		return fmt.Errorf("all %d sweep iterations failed: %w", len(failed), failed[0].Err)
	}
	return nil
}

func writeResultsCSV(path string, results []sweep.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := report.WriteResultsCSV(f, results); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
