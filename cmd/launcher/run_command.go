package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"launcher/internal/config"
	"launcher/internal/launcher"
	"launcher/internal/launchrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Download missing tools, launch everything, and wait for it to exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, ctx)
		},
	}
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download [app...]",
		Short: "Download and unpack missing tools without launching them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			names, err := resolveAppNames(cfg, args)
			if err != nil {
				return err
			}
			result, err := launchrun.Run(cmd.Context(), cfg, launchrun.Options{
				Mode:     launchrun.ModeDownload,
				LogLevel: ctx.logLevel(),
				Apps:     names,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(result.Report.Outcomes) == 0 {
				fmt.Fprintln(out, "Nothing to download")
				return nil
			}
			printReport(out, result.Report)
			return nil
		},
	}
}

func runLaunch(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !ctx.configExists && ctx.configPath != "" {
		if err := config.Save(ctx.configPath, cfg); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warn: unable to write default config: %v\n", err)
		} else {
			fmt.Fprintf(out, "Wrote default configuration to %s\n", ctx.configPath)
		}
	}

	result, err := launchrun.Run(cmd.Context(), cfg, launchrun.Options{LogLevel: ctx.logLevel()})
	if err != nil {
		return err
	}
	if result.Interrupted {
		fmt.Fprintln(out, "Interrupted; launched applications keep running")
		return nil
	}
	printReport(out, result.Report)
	return nil
}

func printReport(out io.Writer, report launcher.Report) {
	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		detail := o.Detail
		if o.Err != nil {
			detail = o.Err.Error()
		}
		rows = append(rows, []string{displayName(o.App), o.Stage, o.Result, detail})
	}
	footer := fmt.Sprintf("%d step(s) completed", len(report.Outcomes))
	if failures := report.Failures(); len(failures) > 0 {
		footer = fmt.Sprintf("%d of %d step(s) failed; see the log for details", len(failures), len(report.Outcomes))
	}
	fmt.Fprintln(out, renderTable(outcomeColumns, rows, footer))
}
