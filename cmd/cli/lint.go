package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sevigo/auto-me-bot/internal/bot"
	"github.com/sevigo/auto-me-bot/internal/config"
)

var lintCmd = &cobra.Command{
	Use:   "lint [file]",
	Short: "Validates an auto-me-bot.yml file and shows which checks it enables",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ".github/" + bot.ConfigFileName
		if len(args) == 1 {
			path = args[0]
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		cfg, err := config.ParseRepoConfig(data)
		if err != nil {
			errorColor.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", path, err)
			return err
		}

		out := cmd.OutOrStdout()
		report := bot.Lint(bot.DefaultConfigSpec(), cfg)

		titleColor.Fprintf(out, "%s\n", path)
		for _, check := range report.Enabled {
			successColor.Fprintf(out, "  ✓ %s\n", check)
		}
		for _, check := range report.Disabled {
			dimColor.Fprintf(out, "  - %s (disabled)\n", check)
		}
		for _, warning := range report.Warnings {
			warnColor.Fprintf(out, "  ! %s\n", warning)
		}
		if len(report.Enabled) == 0 {
			warnColor.Fprintln(out, "no checks are enabled, the bot will not report anything")
		}
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	rootCmd.AddCommand(lintCmd)
}
