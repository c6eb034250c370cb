package main

import (
	"fmt"

	"github.com/spetersoncode/warden/workflow"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the workflow as a Mermaid diagram",
	Long:  `Compiles the configured workflow and prints it as a Mermaid flowchart (graph TD). With --run-id, the steps of a recorded run are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer a.Close()

		var overlay *workflow.Overlay
		if id, _ := cmd.Flags().GetString("run-id"); id != "" {
			rec, err := a.runs.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			overlay = &workflow.Overlay{Visited: rec.Path}
			if rec.Termination != string(workflow.TerminationComplete) && len(rec.Path) > 0 {
				overlay.Current = rec.Path[len(rec.Path)-1]
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), a.runner.Graph().Mermaid(overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("run-id", "", "Highlight the path of a recorded run")
}
