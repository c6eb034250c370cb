package triage

import "github.com/spetersoncode/warden/workflow"

// WorkflowName names the compiled graph.
const WorkflowName = "triage"

// State fields.
const (
	FieldInputRef = "input_ref"
	FieldContent  = "content"
	FieldDecision = "decision"
	FieldOutput   = "output"
)

// Decision labels.
const (
	LabelInvestigate = "investigate"
	LabelNotify      = "notify"
)

// Step names.
const (
	StepCrawl       = "crawl"
	StepDecide      = "decide"
	StepInvestigate = "investigate"
	StepNotify      = "notify"
)

// Labels is the closed label set of the decision field.
var Labels = []string{LabelInvestigate, LabelNotify}

var schema = workflow.MustSchema(
	workflow.Field{Name: FieldInputRef, Input: true},
	workflow.Field{Name: FieldContent},
	workflow.Field{Name: FieldDecision, Labels: Labels},
	workflow.Field{Name: FieldOutput},
)

// Schema returns the state schema shared by every triage run.
func Schema() *workflow.Schema {
	return schema
}

// DefaultClassifier maps the analyst's answer to a decision. A mention of
// "notify" wins over "splunk", and an answer naming neither is investigated.
func DefaultClassifier() workflow.Classifier {
	return workflow.Classifier{
		Rules: []workflow.Rule{
			{Keyword: "notify", Label: LabelNotify},
			{Keyword: "splunk", Label: LabelInvestigate},
		},
		Default: LabelInvestigate,
	}
}
