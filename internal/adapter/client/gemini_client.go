package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
)

// DefaultGeminiURL is the generative language API base URL
const DefaultGeminiURL = "https://generativelanguage.googleapis.com"

const apiKeyHeader = "x-goog-api-key"

// GeminiPart is a single text part of a content block
type GeminiPart struct {
	Text string `json:"text"`
}

// GeminiContent is a content block of a request or candidate
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GenerateContentRequest represents a generateContent request
type GenerateContentRequest struct {
	Contents []GeminiContent `json:"contents"`
}

// GeminiCandidate is a single generated candidate
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

// GenerateContentResponse represents a generateContent response
type GenerateContentResponse struct {
	Candidates   []GeminiCandidate `json:"candidates"`
	ModelVersion string            `json:"modelVersion,omitempty"`
}

// GeminiClient is an HTTP client for the generative language REST API
type GeminiClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewGeminiClient creates a new generative language client
func NewGeminiClient(baseURL, model, apiKey string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = DefaultGeminiURL
	}
	return &GeminiClient{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Generate sends a single prompt and returns the first candidate's text
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (*service.Generation, error) {
	reqBody := GenerateContentRequest{
		Contents: []GeminiContent{
			{Parts: []GeminiPart{{Text: prompt}}},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL(":generateContent"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &service.UpstreamError{Service: c.Name(), StatusCode: resp.StatusCode}
		}
		return nil, &service.UpstreamError{Service: c.Name(), StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result GenerateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	model := result.ModelVersion
	if model == "" {
		model = c.model
	}

	return &service.Generation{
		Text:  result.Candidates[0].Content.Parts[0].Text,
		Model: model,
	}, nil
}

// Ready checks that the configured model is reachable with the API key
func (c *GeminiClient) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL(""), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini model not ready: status %d", resp.StatusCode)
	}

	return nil
}

func (c *GeminiClient) modelURL(method string) string {
	return fmt.Sprintf("%s/v1beta/models/%s%s", c.baseURL, url.PathEscape(c.model), method)
}

// authorize sends the API key as a header so it never appears in a URL
func (c *GeminiClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}
}
