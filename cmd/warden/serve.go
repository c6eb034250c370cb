package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spetersoncode/warden/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Serves POST /v1/runs, the run history, the workflow graph, live run events, /healthz and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger, true)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.runner,
			server.WithHistory(a.runs),
			server.WithBroker(a.broker),
			server.WithGatherer(a.reg),
			server.WithLogger(logger),
		)
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: server.addr from config)")
}
