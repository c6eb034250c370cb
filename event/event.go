// Package event defines the events a workflow run emits. They are observed
// by engine hooks, structured logging and metrics.
package event

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Type identifies the kind of event.
type Type string

// Run lifecycle events
const (
	// RunStart fires when the engine begins a run.
	RunStart Type = "run_start"

	// RunEnd fires when a run terminates, successfully or not.
	RunEnd Type = "run_end"
)

// Step lifecycle events
const (
	// StepStart fires before a step runs.
	StepStart Type = "step_start"

	// StepEnd fires after a step returns, with its duration and error.
	StepEnd Type = "step_end"

	// RouteSelected fires when an edge resolves to a successor.
	RouteSelected Type = "route_selected"
)

// Event represents an observable occurrence during a workflow run.
type Event struct {
	// Type identifies the kind of event.
	Type Type

	// RunID identifies the run.
	RunID string

	// Workflow is the name of the compiled graph.
	Workflow string

	// StepName identifies the step for step and route events.
	StepName string

	// RouteName is the selected successor for RouteSelected events.
	RouteName string

	// Label is the branch label that selected the route, if any.
	Label string

	// Duration is set on StepEnd and RunEnd.
	Duration time.Duration

	// Termination is the run outcome on RunEnd (complete, error, timeout, cancelled).
	Termination string

	// Path lists the steps executed so far, set on RunEnd.
	Path []string

	// Error is set on a failing StepEnd or RunEnd.
	Error error

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// New returns an event of type t stamped with the current time.
func New(t Type, runID, workflow string) Event {
	return Event{Type: t, RunID: runID, Workflow: workflow, Timestamp: time.Now()}
}

// Failed reports whether the event carries an error.
func (e Event) Failed() bool {
	return e.Error != nil
}

// Attrs returns the event as slog attributes, omitting empty fields.
func (e Event) Attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("run_id", e.RunID),
		slog.String("workflow", e.Workflow),
	}
	if e.StepName != "" {
		attrs = append(attrs, slog.String("step", e.StepName))
	}
	if e.RouteName != "" {
		attrs = append(attrs, slog.String("next", e.RouteName))
	}
	if e.Label != "" {
		attrs = append(attrs, slog.String("label", e.Label))
	}
	if e.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", e.Duration))
	}
	if e.Termination != "" {
		attrs = append(attrs, slog.String("termination", e.Termination))
	}
	if len(e.Path) > 0 {
		attrs = append(attrs, slog.Any("path", e.Path))
	}
	if e.Error != nil {
		attrs = append(attrs, slog.Any("error", e.Error))
	}
	return attrs
}

type wireEvent struct {
	Type        Type      `json:"type"`
	RunID       string    `json:"run_id"`
	Workflow    string    `json:"workflow"`
	StepName    string    `json:"step,omitempty"`
	RouteName   string    `json:"next,omitempty"`
	Label       string    `json:"label,omitempty"`
	DurationMS  int64     `json:"duration_ms,omitempty"`
	Termination string    `json:"termination,omitempty"`
	Path        []string  `json:"path,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// MarshalJSON encodes the event with the same keys as Attrs. The error is
// flattened to its message.
func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{
		Type:        e.Type,
		RunID:       e.RunID,
		Workflow:    e.Workflow,
		StepName:    e.StepName,
		RouteName:   e.RouteName,
		Label:       e.Label,
		DurationMS:  e.Duration.Milliseconds(),
		Termination: e.Termination,
		Path:        e.Path,
		Timestamp:   e.Timestamp,
	}
	if e.Error != nil {
		w.Error = e.Error.Error()
	}
	return json.Marshal(w)
}
