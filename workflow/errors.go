package workflow

import (
	"context"
	"errors"
	"fmt"
)

// ErrStructural is matched by every StructuralError.
var ErrStructural = errors.New("workflow: structural error")

// StructuralError reports a modeling defect: a graph that cannot be compiled,
// or a step that reads or writes outside its declarations. It is never retried.
type StructuralError struct {
	// Step is the step the defect belongs to, if any.
	Step string

	// Edge names the offending edge as "from -> to", if any.
	Edge string

	// Field is the state field involved, if any.
	Field string

	// Reason describes the defect.
	Reason string
}

func (e *StructuralError) Error() string {
	msg := "workflow: structural error"
	switch {
	case e.Edge != "":
		msg += fmt.Sprintf(" at edge %q", e.Edge)
	case e.Step != "":
		msg += fmt.Sprintf(" at step %q", e.Step)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	return msg + ": " + e.Reason
}

// Is reports whether target is ErrStructural.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

func structural(step, field, format string, args ...any) *StructuralError {
	return &StructuralError{Step: step, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func edgeError(from, to, format string, args ...any) *StructuralError {
	return &StructuralError{Step: from, Edge: from + " -> " + to, Reason: fmt.Sprintf(format, args...)}
}

// StepError wraps a failure returned by a step, typically a capability error.
type StepError struct {
	StepName string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("workflow: step %q failed: %v", e.StepName, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the name of the step an error is attributed to.
func FailedStep(err error) (string, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.StepName, true
	}
	var st *StructuralError
	if errors.As(err, &st) && st.Step != "" {
		return st.Step, true
	}
	return "", false
}

// Termination describes how a run ended.
type Termination string

const (
	TerminationComplete  Termination = "complete"
	TerminationError     Termination = "error"
	TerminationTimeout   Termination = "timeout"
	TerminationCancelled Termination = "cancelled"
)

func terminationOf(err error) Termination {
	switch {
	case err == nil:
		return TerminationComplete
	case errors.Is(err, context.DeadlineExceeded):
		return TerminationTimeout
	case errors.Is(err, context.Canceled):
		return TerminationCancelled
	default:
		return TerminationError
	}
}
