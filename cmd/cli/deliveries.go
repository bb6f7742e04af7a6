package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sevigo/auto-me-bot/internal/config"
	"github.com/sevigo/auto-me-bot/internal/core"
	"github.com/sevigo/auto-me-bot/internal/db"
	"github.com/sevigo/auto-me-bot/internal/logger"
	"github.com/sevigo/auto-me-bot/internal/storage"
)

var (
	outputJSON    bool
	deliveryLimit int
)

var deliveriesCmd = &cobra.Command{
	Use:   "deliveries",
	Short: "Lists the most recent webhook deliveries handled by the bot",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbCfg := config.LoadDBConfig()
		if !dbCfg.Enabled() {
			return errors.New("delivery history is disabled, set DB_HOST to enable it")
		}

		conn, cleanup, err := db.Connect(&dbCfg, logger.Discard())
		if err != nil {
			return err
		}
		defer cleanup()

		records, err := storage.NewStore(conn.DB).ListRecentDeliveries(cmd.Context(), deliveryLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if outputJSON {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(records)
		}

		if len(records) == 0 {
			dimColor.Fprintln(out, "No deliveries recorded yet.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RECEIVED\tEVENT\tREPOSITORY\tOUTCOME\tDURATION")
		for _, r := range records {
			event := r.Event
			if r.Action != "" {
				event += "." + r.Action
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\n",
				r.CreatedAt.Local().Format(time.RFC822),
				event,
				r.RepoFullName,
				outcomeColor(r.Outcome).Sprint(r.Outcome),
				r.DurationMS,
			)
		}
		return w.Flush()
	},
}

func outcomeColor(outcome string) *color.Color {
	switch outcome {
	case core.DeliveryProcessed:
		return successColor
	case core.DeliveryFailed:
		return errorColor
	default:
		return dimColor
	}
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	deliveriesCmd.Flags().BoolVar(&outputJSON, "json", false, "Output deliveries as JSON")
	deliveriesCmd.Flags().IntVarP(&deliveryLimit, "limit", "n", 20, "Number of deliveries to show")
	rootCmd.AddCommand(deliveriesCmd)
}
