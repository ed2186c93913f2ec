package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"launcher/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var renders bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent launch outcomes or replay renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.History.Enabled {
				fmt.Fprintln(out, "History is disabled in the configuration")
				return nil
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			if renders {
				entries, err := store.RecentRenders(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No renders recorded")
					return nil
				}
				fmt.Fprintln(out, renderRenderTable(entries))
				return nil
			}

			outcomes, err := store.RecentOutcomes(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(outcomes) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderOutcomeTable(outcomes))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&renders, "renders", false, "Show replay renders instead of launch outcomes")
	return cmd
}

func renderOutcomeTable(outcomes []history.Outcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		rows = append(rows, []string{
			o.CreatedAt.Local().Format(historyTimeLayout),
			o.RunID,
			displayName(o.App),
			o.Stage,
			o.Result,
			o.Detail,
		})
	}
	return renderTable(historyColumns, rows, "")
}

func renderRenderTable(entries []history.RenderEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := "started"
		if e.Error != "" {
			status = e.Error
		}
		pid := "-"
		if e.PID > 0 {
			pid = strconv.Itoa(e.PID)
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format(historyTimeLayout),
			e.OutputName,
			e.Settings,
			pid,
			status,
		})
	}
	return renderTable(renderColumns, rows, "")
}
