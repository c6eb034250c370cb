package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"splunk keyword", "Please escalate to Splunk investigation.", "investigate"},
		{"notify keyword", "Just notify the team.", "notify"},
		{"case insensitive", "NOTIFY SOC", "notify"},
		{"both keywords, notify wins", "run a splunk search and notify", "notify"},
		{"order in text does not matter", "notify first, then splunk", "notify"},
		{"no keyword falls back to default", "unclear", "investigate"},
		{"empty text", "", "investigate"},
		{"substring match", "notification pending", "notify"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, testClassifier.Classify(tt.text))
		})
	}
}

func TestClassifier_IsDeterministic(t *testing.T) {
	text := "Splunk shows nothing; notify anyway"
	first := testClassifier.Classify(text)
	for range 10 {
		assert.Equal(t, first, testClassifier.Classify(text))
	}
}

func TestClassifier_UppercaseKeywords(t *testing.T) {
	c := Classifier{Rules: []Rule{{Keyword: "SPLUNK", Label: "investigate"}}, Default: "notify"}
	assert.Equal(t, "investigate", c.Classify("query splunk"))
}

func TestClassifier_Validate(t *testing.T) {
	labels := []string{"investigate", "notify"}

	assert.NoError(t, testClassifier.Validate(labels))

	bad := Classifier{
		Rules: []Rule{
			{Keyword: "", Label: "notify"},
			{Keyword: "page", Label: "escalate"},
		},
		Default: "ignore",
	}
	err := bad.Validate(labels)
	assert.ErrorIs(t, err, ErrStructural)
	assert.ErrorContains(t, err, `default label "ignore"`)
	assert.ErrorContains(t, err, "rule 0 has an empty keyword")
	assert.ErrorContains(t, err, `rule 1 label "escalate"`)
}
