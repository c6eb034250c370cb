package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spetersoncode/warden/client"
	"github.com/spetersoncode/warden/internal/logging"
	"github.com/spetersoncode/warden/internal/metrics"
	"github.com/spetersoncode/warden/mcp"
	"github.com/spetersoncode/warden/model"
	"github.com/spetersoncode/warden/server"
	"github.com/spetersoncode/warden/store"
	"github.com/spetersoncode/warden/tool"
	"github.com/spetersoncode/warden/triage"
	"github.com/spetersoncode/warden/workflow"
)

// loadConfig reads the env file, the YAML config and WARDEN_* overrides,
// applies logging flags and builds the logger.
func loadConfig(cmd *cobra.Command) (triage.Config, *slog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return triage.Config{}, nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	path, _ := cmd.Flags().GetString("config")
	cfg, err := triage.LoadConfig(path, nil)
	if err != nil {
		return triage.Config{}, nil, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return triage.Config{}, nil, err
	}
	return cfg, logging.New(level, cfg.Log.Format, cmd.ErrOrStderr()), nil
}

// apiKeys reads provider keys from the environment.
func apiKeys() client.APIKeys {
	return client.APIKeys{
		Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAI:    os.Getenv("OPENAI_API_KEY"),
		Google:    os.Getenv("GOOGLE_API_KEY"),
	}
}

// vertexProject reads the Vertex AI project and location from the environment.
func vertexProject() client.Vertex {
	return client.Vertex{
		Project:  os.Getenv("VERTEX_PROJECT"),
		Location: os.Getenv("VERTEX_LOCATION"),
	}
}

// app is the wired process: LLM client, tools, agents, graph, runner,
// history and metrics.
type app struct {
	cfg     triage.Config
	logger  *slog.Logger
	reg     *prometheus.Registry
	metrics *metrics.Metrics
	tools   *tool.Registry
	runner  *triage.Runner
	runs    *store.Runs
	broker  *server.Broker
	closers []io.Closer
}

// newApp wires everything cfg describes. With remote false, MCP tool
// servers are not started; the graph is the same either way.
func newApp(ctx context.Context, cfg triage.Config, logger *slog.Logger, remote bool) (*app, error) {
	m, err := model.Parse(cfg.Model)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	met := metrics.New(reg)

	llm := client.New(client.Config{
		APIKeys:  apiKeys(),
		Vertex:   vertexProject(),
		Defaults: client.Defaults{Chat: m},
		OnEvent:  met.ObserveClient,
		Logger:   logger,
	})

	a := &app{
		cfg:     cfg,
		logger:  logger,
		reg:     reg,
		metrics: met,
		tools:   triage.Tools(cfg, tool.WithHTTPTimeout(cfg.Timeouts.Tool)),
		broker:  server.NewBroker(0),
	}

	var grants []triage.CapabilityOption
	if remote {
		for _, rt := range cfg.RemoteTools {
			rr, err := connectRemote(ctx, rt)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("remote tools %q: %w", rt.Name, err)
			}
			a.closers = append(a.closers, rr)
			if err := rr.RegisterInto(a.tools); err != nil {
				a.Close()
				return nil, fmt.Errorf("remote tools %q: %w", rt.Name, err)
			}
			for _, agentKey := range rt.Agents {
				grants = append(grants, triage.WithAgentTools(agentKey, rr.Names()...))
			}
			logger.Info("remote tools connected", "name", rt.Name, "tools", rr.Names())
		}
	}

	caps, err := triage.NewCapabilities(cfg, llm, a.tools, logger, grants...)
	if err != nil {
		a.Close()
		return nil, err
	}
	g, err := triage.Build(caps, triage.WithClassifier(cfg.Classifier), triage.WithTasks(cfg.Tasks))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.runs, err = store.Open(cfg.History)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.runs)

	a.runner = triage.NewRunner(g,
		workflow.WithTimeout(cfg.Timeouts.Run),
		workflow.WithStepTimeout(cfg.Timeouts.Step),
		workflow.WithLogger(logger),
		workflow.WithHooks(met.Hooks()),
		workflow.WithHooks(a.broker.Hooks()),
	)
	return a, nil
}

func connectRemote(ctx context.Context, rt triage.RemoteTools) (*mcp.RemoteRegistry, error) {
	if rt.URL != "" {
		return mcp.NewRemoteRegistrySSE(ctx, rt.URL)
	}
	return mcp.NewRemoteRegistry(ctx, rt.Command, rt.Env, rt.Args...)
}

// record saves a finished run to the history, logging failures.
func (a *app) record(ctx context.Context, result *workflow.Result) {
	rec := store.NewRecord(result)
	if err := a.runs.Save(context.WithoutCancel(ctx), rec); err != nil {
		a.logger.Error("save run", "run_id", rec.RunID, "error", err)
	}
}

// Close releases remote tool servers and the history backend.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("close", "error", err)
		}
	}
	a.closers = nil
}
