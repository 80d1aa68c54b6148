package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/llkb/internal/analytics"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Analytics roll-up over the lesson and component stores",
}

var analyticsUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Recompute analytics.json from lessons.json and components.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		svc, err := analytics.NewService(cfg.Root, logger)
		if err != nil {
			return err
		}
		if err := svc.Update(); err != nil {
			return fmt.Errorf("analytics update failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "analytics updated")
		return nil
	},
}

var analyticsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current analytics snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		svc, err := analytics.NewService(cfg.Root, logger)
		if err != nil {
			return err
		}
		snapshot, err := svc.Load()
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	analyticsCmd.AddCommand(analyticsUpdateCmd)
	analyticsCmd.AddCommand(analyticsShowCmd)
}
