package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "warden",
	Short:         "Warden runs the security triage workflow",
	Long:          `Warden crawls a Confluence page, classifies it, and either searches Splunk or notifies the security team by email.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "warden.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before the configuration")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Override log.format (text, json)")
}
