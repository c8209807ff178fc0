package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/berrythewa/quicklaunch/internal/storage"
)

// storeTimeout bounds the wait for the database lock held by a running launcher
const storeTimeout = 2 * time.Second

// newHistoryCmd creates the history command
func newHistoryCmd() *cobra.Command {
	var (
		clear   bool
		useJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "Show or clear argument history",
		Long: `Show or clear the argument history of a target.

Without a target the names of all targets that have history are listed.
The database is locked while a launcher window is open.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig()
			if cfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			logger := GetZapLogger()

			store, err := storage.NewBoltStorage(storage.StorageConfig{
				DBPath:  cfg.SystemPaths.DBFile,
				Timeout: storeTimeout,
				Logger:  logger,
			})
			if err != nil {
				return fmt.Errorf("failed to open history (is a launcher open?): %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()

			if len(args) == 0 {
				if clear {
					return fmt.Errorf("--clear needs a target")
				}
				names, err := store.HistoryTargets()
				if err != nil {
					return fmt.Errorf("failed to list history: %w", err)
				}
				return printList(cmd, names, useJSON)
			}

			target := args[0]
			if clear {
				if err := store.ClearHistory(target); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}
				logger.Info("History cleared", zap.String("target", target))
				fmt.Fprintf(out, "History for %q cleared\n", target)
				return nil
			}

			entries, err := store.LoadHistory(target)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			return printList(cmd, entries, useJSON)
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the target's history")
	cmd.Flags().BoolVar(&useJSON, "json", false, "Output as JSON")
	return cmd
}

func printList(cmd *cobra.Command, items []string, useJSON bool) error {
	out := cmd.OutOrStdout()
	if useJSON {
		if items == nil {
			items = []string{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	for _, item := range items {
		fmt.Fprintln(out, item)
	}
	return nil
}
