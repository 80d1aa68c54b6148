package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/llkb/internal/history"
)

var (
	cleanupRetentionDays int
	rangeStart           string
	rangeEnd             string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and maintain the knowledge event log",
}

var historyCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete event logs older than the retention window",
	Long: `cleanup permanently deletes per-day event logs dated strictly before
today minus the retention window. This is destructive and irreversible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := history.NewStore(cfg.Root, logger)
		if err != nil {
			return err
		}

		retention := cleanupRetentionDays
		if retention == 0 {
			retention = cfg.History.RetentionDays
		}
		deleted, err := store.Cleanup(retention)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired log file(s)\n", deleted)
		return nil
	},
}

var historyRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "List event log files in an inclusive date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		start, err := time.Parse("2006-01-02", rangeStart)
		if err != nil {
			return fmt.Errorf("invalid --start date: %w", err)
		}
		end, err := time.Parse("2006-01-02", rangeEnd)
		if err != nil {
			return fmt.Errorf("invalid --end date: %w", err)
		}

		store, err := history.NewStore(cfg.Root, logger)
		if err != nil {
			return err
		}
		paths, err := store.ListRange(start, end)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	historyCleanupCmd.Flags().IntVar(&cleanupRetentionDays, "retention-days", 0,
		"retention window in days (default from config)")

	historyRangeCmd.Flags().StringVar(&rangeStart, "start", "", "range start date YYYY-MM-DD (required)")
	historyRangeCmd.Flags().StringVar(&rangeEnd, "end", "", "range end date YYYY-MM-DD (required)")
	_ = historyRangeCmd.MarkFlagRequired("start")
	_ = historyRangeCmd.MarkFlagRequired("end")

	historyCmd.AddCommand(historyCleanupCmd)
	historyCmd.AddCommand(historyRangeCmd)
}
