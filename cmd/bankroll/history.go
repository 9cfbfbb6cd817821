package main

import (
	"fmt"

	"github.com/newthinker/bankroll/internal/app"
	"github.com/newthinker/bankroll/internal/report"
	"github.com/newthinker/bankroll/internal/storage/results"
	"github.com/newthinker/bankroll/internal/sweep"
	"github.com/spf13/cobra"
)

var (
	historySweep string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored sweep results",
	Long:  "List sweep results from the history store (output.results_dsn). The in-memory store is empty in a fresh process.",
	RunE:  runHistory,
}

var historyArchiveCmd = &cobra.Command{
	Use:   "archive [sweep-id]",
	Short: "List archived sweeps, or the files of one sweep",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryArchive,
}

func init() {
	historyCmd.Flags().StringVar(&historySweep, "sweep", "", "only results of this sweep ID")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum number of results")

	historyCmd.AddCommand(historyArchiveCmd)
	rootCmd.AddCommand(historyCmd)
}

// withApp handles common app setup and teardown.
func withApp(fn func(a *app.App) error) error {
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

	return fn(a)
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App) error {
		records, err := a.Results().List(cmd.Context(), results.ListFilter{
			SweepID: historySweep,
			Limit:   historyLimit,
		})
		if err != nil {
			return fmt.Errorf("listing results: %w", err)
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stored results")
			return nil
		}

		rows := make([]sweep.Result, len(records))
		for i, rec := range records {
			rows[i] = rec.Result
		}
		report.NewConsole(cmd.OutOrStdout()).PrintResults(rows)
		return nil
	})
}

func runHistoryArchive(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App) error {
		artifacts := a.Artifacts()
		if artifacts == nil {
			return fmt.Errorf("archiving is disabled (output.archive.type is none)")
		}

		var names []string
		var err error
		if len(args) == 1 {
			names, err = artifacts.Files(cmd.Context(), args[0])
		} else {
			names, err = artifacts.Sweeps(cmd.Context())
		}
		if err != nil {
			return err
		}

		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	})
}
