package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spetersoncode/warden/triage"
	"github.com/spf13/cobra"
)

var errNoOutput = errors.New("run produced no output")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Triage one Confluence page",
	Long:  `Runs the triage workflow for one page and prints the investigation or notification result. Exits non-zero when no output was produced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ref, _ := cmd.Flags().GetString("input-ref")
		if ref == "" {
			ref = cfg.InputRef
		}
		if ref == "" {
			return errors.New("no input reference: pass --input-ref or set input_ref")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger, true)
		if err != nil {
			return err
		}
		defer a.Close()

		result, runErr := a.runner.Run(ctx, ref)
		if result == nil {
			return runErr
		}
		a.record(ctx, result)
		printSummary(cmd.ErrOrStderr(), result)

		out, ok := triage.Output(result)
		if !ok {
			if runErr != nil {
				return runErr
			}
			return errNoOutput
		}
		return printOutput(cmd.OutOrStdout(), out)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("input-ref", "", "Confluence page URL, content ID or title (default: input_ref from config)")
}
