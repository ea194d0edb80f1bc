package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"isccd/internal/config"
	"isccd/internal/journal"
)

func newHistoryCommand(configFlag *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fingerprint outcomes from the local journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			store, err := journal.Open(cfg)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			outcomes, err := store.RecentOutcomes(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read outcomes: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(outcomes) == 0 {
				fmt.Fprintln(out, "No fingerprint outcomes recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(outcomes))
			for _, outcome := range outcomes {
				rows = append(rows, []string{
					strconv.FormatInt(outcome.AssetID, 10),
					outcome.SourceFile,
					string(outcome.Kind),
					outcome.Code,
					outcome.RecordedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}

			headers := []string{"Asset", "Source File", "Outcome", "ISCC", "Recorded"}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of outcomes to show")
	return cmd
}
