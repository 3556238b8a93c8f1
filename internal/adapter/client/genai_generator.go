package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
)

// GenAIGenerator generates analyses through the Google GenAI SDK
type GenAIGenerator struct {
	client *genai.Client
	model  string
}

// NewGenAIGenerator creates a new GenAI generator. baseURL is optional and
// overrides the SDK's default endpoint.
func NewGenAIGenerator(ctx context.Context, baseURL, model, apiKey string, timeout time.Duration) (*GenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIGenerator{
		client: client,
		model:  model,
	}, nil
}

// Name returns the provider name
func (g *GenAIGenerator) Name() string {
	return "genai"
}

// Generate sends a single prompt and returns the response text
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (*service.Generation, error) {
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return nil, &service.UpstreamError{Service: g.Name(), StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("genai returned no candidates")
	}

	model := result.ModelVersion
	if model == "" {
		model = g.model
	}

	return &service.Generation{
		Text:  text,
		Model: model,
	}, nil
}
