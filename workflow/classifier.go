package workflow

import (
	"errors"
	"slices"
	"strings"
)

// Rule maps a keyword to a label.
type Rule struct {
	Keyword string `mapstructure:"keyword" yaml:"keyword" json:"keyword"`
	Label   string `mapstructure:"label" yaml:"label" json:"label"`
}

// Classifier turns free text into a label with an ordered keyword table.
// Text and keywords are compared lower-cased; the first rule whose keyword
// occurs in the text wins, and text matching no rule gets Default.
type Classifier struct {
	Rules   []Rule `mapstructure:"rules" yaml:"rules" json:"rules"`
	Default string `mapstructure:"default" yaml:"default" json:"default"`
}

// Classify returns the label for text. It never fails.
func (c Classifier) Classify(text string) string {
	normalized := strings.ToLower(text)
	for _, r := range c.Rules {
		if strings.Contains(normalized, strings.ToLower(r.Keyword)) {
			return r.Label
		}
	}
	return c.Default
}

// Validate checks that every label the classifier can return is in labels
// and that no keyword is empty.
func (c Classifier) Validate(labels []string) error {
	var errs []error
	if !slices.Contains(labels, c.Default) {
		errs = append(errs, structural("", "", "default label %q is not one of %v", c.Default, labels))
	}
	for i, r := range c.Rules {
		if strings.TrimSpace(r.Keyword) == "" {
			errs = append(errs, structural("", "", "rule %d has an empty keyword", i))
		}
		if !slices.Contains(labels, r.Label) {
			errs = append(errs, structural("", "", "rule %d label %q is not one of %v", i, r.Label, labels))
		}
	}
	return errors.Join(errs...)
}
