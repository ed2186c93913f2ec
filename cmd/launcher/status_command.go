package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launcher/internal/apps"
	"launcher/internal/config"
	"launcher/internal/deps"
	"launcher/internal/keystate"
	"launcher/internal/replaywatch"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show what the next run would download, launch, and watch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			catalog := apps.FromConfig(cfg)

			var lines []string
			lines = append(lines, renderSectionHeader("Applications", colorize)...)
			statuses := deps.CheckApplications(catalog.All())
			lines = append(lines, renderApplicationTable(statuses, colorize))
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Replay rendering", colorize)...)
			kind, message := replayWatchStatus(catalog.Danser)
			lines = append(lines, renderStatusLine("Replay watch", kind, message, colorize))
			lines = append(lines, "")

			lines = append(lines, renderSectionHeader("Paths", colorize)...)
			lines = append(lines, renderConfigLines(ctx, cfg, colorize)...)

			fmt.Fprintln(out, strings.Join(lines, "\n"))
			return nil
		},
	}
}

func renderApplicationTable(statuses []deps.Status, colorize bool) string {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		exe := s.Executable
		if exe == "" {
			exe = "-"
		}
		detail := colorizeText(appStatusKind(s), s.Detail, colorize)
		rows = append(rows, []string{s.DisplayName, yesNo(s.Enabled), yesNo(s.Installed), exe, detail})
	}
	footer := fmt.Sprintf("%d of %d enabled tools ready to launch", deps.Ready(statuses), countEnabled(statuses))
	return renderTable(appColumns, rows, footer)
}

func countEnabled(statuses []deps.Status) int {
	n := 0
	for _, s := range statuses {
		if s.Enabled {
			n++
		}
	}
	return n
}

func replayWatchStatus(renderer *apps.Renderer) (statusKind, string) {
	if err := replaywatch.CheckPreconditions(renderer); err != nil {
		if errors.Is(err, replaywatch.ErrNotApplicable) {
			return statusInfo, strings.TrimPrefix(err.Error(), replaywatch.ErrNotApplicable.Error()+": ")
		}
		return statusError, err.Error()
	}
	key, err := keystate.Parse(renderer.RenderKey)
	if err != nil {
		return statusError, err.Error()
	}
	return statusOK, fmt.Sprintf("watching %s while %s is held (settings %s)", renderer.ReplaysDir, key.Name, renderer.SettingsName)
}

func renderConfigLines(ctx *commandContext, cfg *config.Config, colorize bool) []string {
	configMessage := ctx.configPath
	configKind := statusOK
	if !ctx.configExists {
		configKind = statusWarn
		configMessage += " (not found; defaults in use)"
	}
	historyKind, historyMessage := statusOK, cfg.HistoryPath()
	if !cfg.History.Enabled {
		historyKind, historyMessage = statusInfo, "disabled"
	}
	return []string{
		renderStatusLine("Config", configKind, configMessage, colorize),
		renderStatusLine("Logs", statusInfo, cfg.Paths.LogDir, colorize),
		renderStatusLine("History", historyKind, historyMessage, colorize),
	}
}
