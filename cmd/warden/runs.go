package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spetersoncode/warden/store"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recorded runs or show one",
	Long:  `Reads the run history. Only useful with a shared backend (history.backend: redis); the memory backend starts empty in every process.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		runs, err := store.Open(cfg.History)
		if err != nil {
			return err
		}
		defer runs.Close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			rec, err := runs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		}

		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := runs.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			fmt.Fprintln(out, formatRecord(rec))
		}
		return nil
	},
}

func formatRecord(rec store.Record) string {
	return fmt.Sprintf("%s  %-9s  %s  %s",
		rec.RunID, rec.Termination, rec.FinishedAt.Format("2006-01-02 15:04:05"), strings.Join(rec.Path, " -> "))
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
}
