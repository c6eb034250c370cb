// Package vertex serves Gemini models through Vertex AI.
//
// Vertex AI authenticates with Application Default Credentials instead of
// an API key. ADC is discovered from GOOGLE_APPLICATION_CREDENTIALS, the
// gcloud CLI login, or the attached service account on GKE, Compute Engine
// and Cloud Run.
//
//	c, err := vertex.New(ctx, "my-project", "us-central1")
//
// Requests and responses use the same conversion as the Gemini API adapter.
package vertex

import (
	"context"
	"errors"

	"github.com/spetersoncode/warden/internal/provider/google"
	"google.golang.org/genai"
)

// ErrMissingProject is returned when project or location is empty.
var ErrMissingProject = errors.New("vertex: project and location are required")

// New creates a Vertex AI client for project in location.
func New(ctx context.Context, project, location string) (*google.Client, error) {
	if project == "" || location == "" {
		return nil, ErrMissingProject
	}
	return google.NewWithConfig(ctx, "vertex", &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  project,
		Location: location,
	})
}
