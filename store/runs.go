package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/spetersoncode/warden/workflow"
)

// Record is the persisted outcome of one run.
type Record struct {
	RunID       string            `json:"run_id"`
	Workflow    string            `json:"workflow"`
	Termination string            `json:"termination"`
	Path        []string          `json:"path"`
	State       map[string]string `json:"state"`
	Error       string            `json:"error,omitempty"`
	FailedStep  string            `json:"failed_step,omitempty"`
	Duration    time.Duration     `json:"duration_ns"`
	FinishedAt  time.Time         `json:"finished_at"`
}

// NewRecord captures a finished run.
func NewRecord(res *workflow.Result) Record {
	rec := Record{
		RunID:       res.RunID,
		Workflow:    res.Workflow,
		Termination: string(res.Termination),
		Path:        slices.Clone(res.Path),
		State:       map[string]string{},
		Duration:    res.Duration,
		FinishedAt:  time.Now().UTC(),
	}
	if res.State != nil {
		rec.State = res.State.Snapshot()
	}
	if res.Error != nil {
		rec.Error = res.Error.Error()
		rec.FailedStep, _ = workflow.FailedStep(res.Error)
	}
	return rec
}

// Runs is a typed view of an Adapter holding Records keyed by run ID.
type Runs struct {
	adapter Adapter
}

// NewRuns creates a run history over adapter. A nil adapter means an
// in-memory adapter of DefaultCapacity.
func NewRuns(adapter Adapter) *Runs {
	if adapter == nil {
		adapter = NewMemoryAdapter(0)
	}
	return &Runs{adapter: adapter}
}

// Save stores rec under its run ID.
func (r *Runs) Save(ctx context.Context, rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return &SerializationError{Key: rec.RunID, Err: err}
	}
	return r.adapter.Set(ctx, rec.RunID, raw)
}

// Get returns the record of runID, or ErrRunNotFound.
func (r *Runs) Get(ctx context.Context, runID string) (Record, error) {
	raw, ok, err := r.adapter.Get(ctx, runID)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrRunNotFound
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, &SerializationError{Key: runID, Err: err}
	}
	return rec, nil
}

// List returns up to limit records, newest first. Zero or less means all.
// Keys whose value vanished between listing and reading are skipped.
func (r *Runs) List(ctx context.Context, limit int) ([]Record, error) {
	keys, err := r.adapter.Keys(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(keys)

	var out []Record
	for _, k := range keys {
		if limit > 0 && len(out) == limit {
			break
		}
		rec, err := r.Get(ctx, k)
		if errors.Is(err, ErrRunNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close closes the underlying adapter.
func (r *Runs) Close() error {
	return r.adapter.Close()
}
