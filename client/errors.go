package client

import "fmt"

// ErrMissingAPIKey is returned when a model is used but no API key
// is configured for that model's provider.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// ErrMissingVertexProject is returned when a Vertex AI model is used but
// no project and location are configured.
type ErrMissingVertexProject struct {
	Model string
}

func (e *ErrMissingVertexProject) Error() string {
	return fmt.Sprintf("no Vertex AI project and location configured (required by model %q)", e.Model)
}

// ErrNoModel is returned when no model is specified and no default is configured.
type ErrNoModel struct {
	Operation string
}

func (e *ErrNoModel) Error() string {
	return fmt.Sprintf("no model specified for %s: set client.Config Defaults.Chat or use ai.WithModel()", e.Operation)
}

// ErrUnsupportedProvider is returned for models whose provider has no adapter.
type ErrUnsupportedProvider struct {
	Provider string
}

func (e *ErrUnsupportedProvider) Error() string {
	return fmt.Sprintf("unsupported provider: %s", e.Provider)
}
