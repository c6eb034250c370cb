// Package server exposes a workflow runner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spetersoncode/warden/store"
	"github.com/spetersoncode/warden/workflow"
)

// Runner runs a workflow for one input reference.
type Runner interface {
	Run(ctx context.Context, inputRef string) (*workflow.Result, error)
	Graph() *workflow.Graph
}

// Server serves runs, run history, the graph, live events and metrics.
type Server struct {
	runner   Runner
	runs     *store.Runs
	broker   *Broker
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithHistory records every run in runs and serves it under /v1/runs.
func WithHistory(runs *store.Runs) Option {
	return func(s *Server) { s.runs = runs }
}

// WithBroker serves the broker's events under /v1/events. The broker's
// hooks must be installed on the runner's engine.
func WithBroker(b *Broker) Option {
	return func(s *Server) { s.broker = b }
}

// WithGatherer serves g under /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server for runner.
func New(runner Runner, opts ...Option) *Server {
	s := &Server{
		runner: runner,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/graph", s.getGraph)
		r.Post("/runs", s.createRun)
		if s.runs != nil {
			r.Get("/runs", s.listRuns)
			r.Get("/runs/{runID}", s.getRun)
			r.Get("/runs/{runID}/graph", s.getRunGraph)
		}
		if s.broker != nil {
			r.Get("/events", s.streamEvents)
		}
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type runRequest struct {
	InputRef string `json:"input_ref"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	result, err := s.runner.Run(r.Context(), req.InputRef)
	if result == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	rec := store.NewRecord(result)
	if s.runs != nil {
		// The request context may already be cancelled; the record still counts.
		if serr := s.runs.Save(context.WithoutCancel(r.Context()), rec); serr != nil {
			s.logger.Error("save run", "run_id", rec.RunID, "error", serr)
		}
	}

	writeJSON(w, statusOf(result, err), rec)
}

// statusOf maps a run outcome to a response status. Graph defects are the
// server's fault; failed capabilities and deadlines are reported as 422.
func statusOf(result *workflow.Result, err error) int {
	switch {
	case result.Completed():
		return http.StatusOK
	case errors.Is(err, workflow.ErrStructural):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	recs, err := s.runs.List(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) record(w http.ResponseWriter, r *http.Request) (store.Record, bool) {
	rec, err := s.runs.Get(r.Context(), chi.URLParam(r, "runID"))
	switch {
	case errors.Is(err, store.ErrRunNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return rec, false
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return rec, false
	}
	return rec, true
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if rec, ok := s.record(w, r); ok {
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) getRunGraph(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.record(w, r)
	if !ok {
		return
	}
	overlay := &workflow.Overlay{Visited: rec.Path}
	if rec.Termination != string(workflow.TerminationComplete) && len(rec.Path) > 0 {
		overlay.Current = rec.Path[len(rec.Path)-1]
	}
	writeText(w, s.runner.Graph().Mermaid(overlay))
}

func (s *Server) getGraph(w http.ResponseWriter, _ *http.Request) {
	writeText(w, s.runner.Graph().Mermaid(nil))
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.LogAttrs(r.Context(), slog.LevelInfo, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
