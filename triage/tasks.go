package triage

import (
	"strings"

	"github.com/spetersoncode/warden/agent"
)

// inputRefPlaceholder is replaced with the run's input_ref in task descriptions.
const inputRefPlaceholder = "{input_ref}"

// TaskTemplate is the configurable wording of one step's task.
type TaskTemplate struct {
	Description    string `mapstructure:"description" yaml:"description"`
	ExpectedOutput string `mapstructure:"expected_output" yaml:"expected_output"`
}

func (t TaskTemplate) task(inputRef, context string) agent.Task {
	return agent.Task{
		Description:    strings.ReplaceAll(t.Description, inputRefPlaceholder, inputRef),
		ExpectedOutput: t.ExpectedOutput,
		Context:        context,
	}
}

// Tasks holds the task wording of every step.
type Tasks struct {
	Crawl       TaskTemplate `mapstructure:"crawl" yaml:"crawl"`
	Decide      TaskTemplate `mapstructure:"decide" yaml:"decide"`
	Investigate TaskTemplate `mapstructure:"investigate" yaml:"investigate"`
	Notify      TaskTemplate `mapstructure:"notify" yaml:"notify"`
}

// DefaultTasks returns the stock task wording.
func DefaultTasks() Tasks {
	return Tasks{
		Crawl: TaskTemplate{
			Description:    "Crawl the Confluence page at {input_ref} and return its content.",
			ExpectedOutput: "The text content of the page",
		},
		Decide: TaskTemplate{
			Description: "Analyze this Confluence content and decide if a Splunk investigation " +
				"is needed or if we should notify the security team by email.",
			ExpectedOutput: "Either 'splunk' or 'notify'",
		},
		Investigate: TaskTemplate{
			Description:    "Search Splunk for security logs relevant to this content.",
			ExpectedOutput: "Security logs from Splunk",
		},
		Notify: TaskTemplate{
			Description:    "Send a security notification email about this content to the SOC team.",
			ExpectedOutput: "Confirmation of sent email",
		},
	}
}

// withDefaults fills empty templates from DefaultTasks.
func (t Tasks) withDefaults() Tasks {
	d := DefaultTasks()
	fill := func(dst *TaskTemplate, def TaskTemplate) {
		if dst.Description == "" {
			dst.Description = def.Description
		}
		if dst.ExpectedOutput == "" {
			dst.ExpectedOutput = def.ExpectedOutput
		}
	}
	fill(&t.Crawl, d.Crawl)
	fill(&t.Decide, d.Decide)
	fill(&t.Investigate, d.Investigate)
	fill(&t.Notify, d.Notify)
	return t
}
