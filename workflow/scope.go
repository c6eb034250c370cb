package workflow

import (
	"errors"
	"slices"
)

// Scope is a step's view of the state, restricted to the fields the step
// declares. Reads of undeclared fields and invalid writes are recorded and
// fail the run once the step returns, even if the step ignores them.
type Scope struct {
	runID      string
	step       string
	state      *State
	requires   []string
	produces   []string
	violations []error
}

func newScope(runID string, step Step, state *State) *Scope {
	return &Scope{
		runID:    runID,
		step:     step.Name(),
		state:    state,
		requires: step.Requires(),
		produces: step.Produces(),
	}
}

// RunID returns the identifier of the current run.
func (s *Scope) RunID() string { return s.runID }

// StepName returns the name of the executing step.
func (s *Scope) StepName() string { return s.step }

// Input returns a required field. The engine has verified it is present.
// Reading a field the step does not require records a violation and
// returns "".
func (s *Scope) Input(field string) string {
	if !slices.Contains(s.requires, field) {
		s.violate(structural(s.step, field, "read of undeclared field"))
		return ""
	}
	v, _ := s.state.Get(field)
	return v
}

// Set writes a produced field. It fails if the field is not declared by
// the step, is already set, or the value is outside the field's label set.
func (s *Scope) Set(field, value string) error {
	var err error
	switch {
	case !slices.Contains(s.produces, field):
		err = structural(s.step, field, "write of undeclared field")
	case s.state.Has(field):
		err = structural(s.step, field, "field is already set")
	default:
		if cerr := s.state.schema.check(field, value); cerr != nil {
			err = structural(s.step, field, "%s", cerr.(*StructuralError).Reason)
		}
	}
	if err != nil {
		s.violate(err)
		return err
	}
	s.state.write(field, value)
	return nil
}

func (s *Scope) violate(err error) {
	s.violations = append(s.violations, err)
}

// err returns the recorded violations, or a missing-output error.
func (s *Scope) err() error {
	switch len(s.violations) {
	case 0:
	case 1:
		return s.violations[0]
	default:
		return errors.Join(s.violations...)
	}
	for _, f := range s.produces {
		if !s.state.Has(f) {
			return structural(s.step, f, "step returned without producing field")
		}
	}
	return nil
}
