package triage

import (
	"context"
	"errors"
	"fmt"

	"github.com/spetersoncode/warden/agent"
	"github.com/spetersoncode/warden/workflow"
)

// Capabilities are the capability units the triage steps delegate to.
type Capabilities struct {
	Crawler      agent.Capability
	Classifier   agent.Capability
	Investigator agent.Capability
	Notifier     agent.Capability
}

func (c Capabilities) validate() error {
	named := []struct {
		name string
		c    agent.Capability
	}{
		{"crawler", c.Crawler},
		{"classifier", c.Classifier},
		{"investigator", c.Investigator},
		{"notifier", c.Notifier},
	}
	var errs []error
	for _, n := range named {
		if n.c == nil {
			errs = append(errs, fmt.Errorf("triage: no %s capability", n.name))
		}
	}
	return errors.Join(errs...)
}

// GraphOption configures Build.
type GraphOption func(*graphOptions)

type graphOptions struct {
	classifier workflow.Classifier
	tasks      Tasks
}

// WithClassifier replaces DefaultClassifier.
func WithClassifier(c workflow.Classifier) GraphOption {
	return func(o *graphOptions) {
		o.classifier = c
	}
}

// WithTasks replaces the task wording. Empty templates keep their default.
func WithTasks(t Tasks) GraphOption {
	return func(o *graphOptions) {
		o.tasks = t
	}
}

// Build compiles the triage graph over caps.
func Build(caps Capabilities, opts ...GraphOption) (*workflow.Graph, error) {
	o := &graphOptions{classifier: DefaultClassifier(), tasks: DefaultTasks()}
	for _, opt := range opts {
		opt(o)
	}
	o.tasks = o.tasks.withDefaults()

	if err := caps.validate(); err != nil {
		return nil, err
	}
	if err := o.classifier.Validate(Labels); err != nil {
		return nil, err
	}

	both := []string{FieldContent, FieldDecision}
	return workflow.NewGraph(WorkflowName, Schema()).
		AddStep(workflow.NewStep(StepCrawl, []string{FieldInputRef}, []string{FieldContent}, crawl(caps.Crawler, o.tasks.Crawl))).
		AddStep(workflow.NewStep(StepDecide, []string{FieldContent}, []string{FieldDecision}, decide(caps.Classifier, o.tasks.Decide, o.classifier))).
		AddStep(workflow.NewStep(StepInvestigate, both, []string{FieldOutput}, act(caps.Investigator, o.tasks.Investigate))).
		AddStep(workflow.NewStep(StepNotify, both, []string{FieldOutput}, act(caps.Notifier, o.tasks.Notify))).
		SetStart(StepCrawl).
		AddEdge(StepCrawl, StepDecide).
		AddBranch(StepDecide, FieldDecision, map[string]string{
			LabelInvestigate: StepInvestigate,
			LabelNotify:      StepNotify,
		}).
		AddEdge(StepInvestigate, workflow.End).
		AddEdge(StepNotify, workflow.End).
		Compile()
}

// crawl stores the crawler's raw text as content.
func crawl(c agent.Capability, tmpl TaskTemplate) workflow.StepFunc {
	return func(ctx context.Context, s *workflow.Scope) error {
		ref := s.Input(FieldInputRef)
		text, err := c.Execute(ctx, tmpl.task(ref, ref))
		if err != nil {
			return err
		}
		return s.Set(FieldContent, text)
	}
}

// decide classifies the analyst's free-text answer into a decision label.
func decide(c agent.Capability, tmpl TaskTemplate, classifier workflow.Classifier) workflow.StepFunc {
	return func(ctx context.Context, s *workflow.Scope) error {
		answer, err := c.Execute(ctx, tmpl.task("", s.Input(FieldContent)))
		if err != nil {
			return err
		}
		return s.Set(FieldDecision, classifier.Classify(answer))
	}
}

// act runs a terminal branch and stores its result as output.
func act(c agent.Capability, tmpl TaskTemplate) workflow.StepFunc {
	return func(ctx context.Context, s *workflow.Scope) error {
		out, err := c.Execute(ctx, tmpl.task("", s.Input(FieldContent)))
		if err != nil {
			return err
		}
		return s.Set(FieldOutput, out)
	}
}
