package service

import "context"

// Generation is the text returned by a generative model
type Generation struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// Generator defines the interface for generative text endpoints
type Generator interface {
	// Generate sends a single prompt and returns the generated text
	Generate(ctx context.Context, prompt string) (*Generation, error)

	// Name returns the provider name recorded on scans
	Name() string
}
