package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var rootCmd = &cobra.Command{
	Use:   "auto-me-bot-cli",
	Short: "auto-me-bot-cli is the command-line companion of the auto-me-bot GitHub App.",
	Long:  `A CLI for validating auto-me-bot.yml files and inspecting the webhook delivery history.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if viper.GetBool("NO_COLOR") {
			color.NoColor = true
		}
	},
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable coloured output")
	_ = viper.BindPFlag("NO_COLOR", rootCmd.PersistentFlags().Lookup("no-color"))
}

// initConfig reads ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("AMB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
