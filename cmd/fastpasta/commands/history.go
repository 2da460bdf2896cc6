package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/fastpasta/internal/cli/output"
	"github.com/marmos91/fastpasta/internal/statsstore"
	"github.com/marmos91/fastpasta/pkg/config"
)

var historyLimit int
var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs from the history store",
	Long: `history lists the most recent runs recorded by the
SQL-backed run-history store (internal/statsstore), which a check run
populates when history.enabled is set.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyFormat, "format", "table", "output format: table, json, yaml")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fmt.Errorf("history.enabled is false in the loaded configuration")
	}

	format, err := output.ParseFormat(historyFormat)
	if err != nil {
		return err
	}

	store, err := statsstore.Open(statsstore.Config{
		Driver:      statsstore.Driver(cfg.History.Driver),
		SQLitePath:  cfg.History.SQLitePath,
		PostgresDSN: cfg.History.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	records, err := store.ListRecent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list recent runs: %w", err)
	}

	printer := output.NewPrinter(os.Stdout, format, false)
	return statsstore.PrintRecent(printer, records)
}
