package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/history"
	"github.com/fyrsmithlabs/llkb/internal/learnbank"
)

var (
	extractProfilePath string
	extractJourneyID   string
	extractStrategy    string
	extractForce       bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Synthesize patterns from a discovered profile and merge them into the store",
	Long: `extract reads a discovered application profile (JSON), consults the rate
governor, and if extraction is permitted synthesizes pattern candidates,
deduplicates them and merges them into the learned-pattern store. The run
is recorded in the history log and reported in discovered-patterns.json.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractProfilePath, "profile", "", "path to discovered profile JSON (required)")
	extractCmd.Flags().StringVar(&extractJourneyID, "journey", "", "source journey identifier")
	extractCmd.Flags().StringVar(&extractStrategy, "strategy", "data-testid", "preferred selector attribute strategy")
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "bypass rate governance")
	_ = extractCmd.MarkFlagRequired("profile")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := os.ReadFile(extractProfilePath)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}
	var profile learnbank.DiscoveredProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return fmt.Errorf("failed to parse profile: %w", err)
	}

	events, err := history.NewStore(cfg.Root, logger)
	if err != nil {
		return err
	}
	governor := history.NewGovernor(events, history.Limits{
		MaxPredictivePerDay:     cfg.Governor.MaxPredictivePerDay,
		MaxPredictivePerJourney: cfg.Governor.MaxPredictivePerJourney,
	}, logger)

	if !extractForce {
		if governor.IsDailyLimitReached() {
			logger.Warn("daily extraction limit reached, skipping extraction")
			fmt.Fprintln(cmd.OutOrStdout(), "extraction skipped: daily limit reached")
			return nil
		}
		if extractJourneyID != "" && governor.IsJourneyLimitReached(extractJourneyID) {
			logger.Warn("journey extraction limit reached, skipping extraction",
				zap.String("journey_id", extractJourneyID))
			fmt.Fprintln(cmd.OutOrStdout(), "extraction skipped: journey limit reached")
			return nil
		}
	}

	start := time.Now()
	synth := learnbank.NewSynthesizer(logger)
	patterns := synth.Synthesize(profile, learnbank.SelectorSignals{
		PreferredStrategy: extractStrategy,
	})
	if extractJourneyID != "" {
		for i := range patterns {
			patterns[i].SourceJourneys = []string{extractJourneyID}
		}
	}

	store, err := learnbank.NewStore(cfg.Root, logger)
	if err != nil {
		return err
	}
	stats, err := store.MergeAndSave(patterns)
	if err != nil {
		return err
	}

	report := learnbank.BuildReport(patterns, profile, extractProfilePath, time.Since(start))
	if err := store.SaveReport(report); err != nil {
		// The report is transient; losing it must not fail the merge.
		logger.Warn("failed to save discovery report", zap.Error(err))
	}

	// Governance writes never abort the workflow; failures are logged by
	// the store.
	_ = governor.RecordExtraction("extract", extractJourneyID)
	_ = events.Append(history.Event{
		Event:     history.EventPatternsMerged,
		Prompt:    "extract",
		JourneyID: extractJourneyID,
		Details: map[string]any{
			"created":   stats.Created,
			"updated":   stats.Updated,
			"unchanged": stats.Unchanged,
		},
	})

	fmt.Fprintf(cmd.OutOrStdout(), "extracted %d patterns: %d created, %d updated, %d unchanged\n",
		len(patterns), stats.Created, stats.Updated, stats.Unchanged)
	return nil
}
