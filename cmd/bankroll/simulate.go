package main

import (
	"fmt"
	"os"

	"github.com/newthinker/bankroll/internal/app"
	"github.com/newthinker/bankroll/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	simCapitalPerTrade float64
	simStartingCapital float64
	simMarginFactor    float64
	simStreakThreshold int
	simDir             string
	simCSV             string
	simQuiet           bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay the trade ledger once",
	Long:  "Build the ledger from the trade logs, run one simulation and print the annotated rows",
	RunE:  runSimulate,
}

func init() {
	simulateCmd.Flags().Float64Var(&simCapitalPerTrade, "capital-per-trade", 0, "fraction of equity committed per trade (required)")
	simulateCmd.Flags().Float64Var(&simStartingCapital, "starting-capital", 0, "override simulation.starting_capital")
	simulateCmd.Flags().Float64Var(&simMarginFactor, "margin-factor", 0, "override simulation.margin_factor")
	simulateCmd.Flags().IntVar(&simStreakThreshold, "loss-streak-threshold", 0, "override simulation.loss_streak_threshold")
	simulateCmd.Flags().StringVar(&simDir, "dir", "", "directory of per-symbol trade logs (default ledger.dir)")
	simulateCmd.Flags().StringVar(&simCSV, "csv", "", "write the annotated rows to this CSV file (relative to output.dir)")
	simulateCmd.Flags().BoolVarP(&simQuiet, "quiet", "q", false, "print only the summary statistics")

	simulateCmd.MarkFlagRequired("capital-per-trade")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
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

	params := a.BaseParams()
	params.CapitalPerTrade = simCapitalPerTrade
	flags := cmd.Flags()
	if flags.Changed("starting-capital") {
		params.StartingCapital = simStartingCapital
	}
	if flags.Changed("margin-factor") {
		params.MarginFactor = simMarginFactor
	}
	if flags.Changed("loss-streak-threshold") {
		params.LossStreakThreshold = simStreakThreshold
	}

	src, err := a.LedgerSource(simDir)
	if err != nil {
		return err
	}

	run, stats, err := a.Simulate(cmd.Context(), src, params)
	if err != nil {
		return err
	}

	console := report.NewConsole(cmd.OutOrStdout())
	if simQuiet {
		console.PrintStats(stats)
	} else {
		console.PrintRun(run, stats)
	}

	if simCSV != "" {
		path, err := outputPath(cfg, simCSV)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		if err := report.WriteRowsCSV(f, run); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Info("wrote simulation rows", zap.String("path", path), zap.Int("rows", len(run.Rows)))
	}
	return nil
}
