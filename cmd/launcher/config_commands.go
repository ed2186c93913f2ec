package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"launcher/internal/apps"
	"launcher/internal/config"
	"launcher/internal/deps"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the launcher configuration",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTargetPath(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			cfg, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("reload written config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote default configuration to %s\n", target)
			printEnabledTools(out, apps.FromConfig(cfg))
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func initTargetPath(flagValue string) (string, error) {
	target := strings.TrimSpace(flagValue)
	if target == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(target)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// printEnabledTools lists which tools a fresh config turns on, and how to
// turn on the rest.
func printEnabledTools(out io.Writer, catalog apps.Catalog) {
	var enabled, disabled []string
	for _, app := range catalog.All() {
		if app.Enabled() {
			enabled = append(enabled, apps.DisplayName(app.Name()))
		} else {
			disabled = append(disabled, app.Name())
		}
	}
	if len(enabled) == 0 {
		fmt.Fprintln(out, "Enabled tools: none")
	} else {
		fmt.Fprintf(out, "Enabled tools: %s\n", strings.Join(enabled, ", "))
	}
	if len(disabled) > 0 {
		fmt.Fprintf(out, "Set enabled = true under [%s] to add more tools.\n", strings.Join(disabled, "], ["))
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and report what each tool needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found; defaults in use)"
			}
			fmt.Fprintf(out, "Configuration valid: %s\n", source)

			catalog := apps.FromConfig(cfg)
			statuses := deps.CheckApplications(catalog.All())
			for _, s := range statuses {
				fmt.Fprintln(out, renderStatusLine(s.DisplayName, appStatusKind(s), s.Detail, colorize))
			}
			kind, message := replayWatchStatus(catalog.Danser)
			fmt.Fprintln(out, renderStatusLine("Replay watch", kind, message, colorize))
			fmt.Fprintf(out, "%d of %d enabled tools ready to launch\n", deps.Ready(statuses), countEnabled(statuses))
			return nil
		},
	}
}
