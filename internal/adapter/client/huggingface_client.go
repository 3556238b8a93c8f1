package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
)

// DefaultHuggingFaceURL is the hosted inference API base URL
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co"

// InferenceRequest represents a request to a hosted classification model
type InferenceRequest struct {
	Inputs string `json:"inputs"`
}

// SentimentLabel represents a single label/score pair
type SentimentLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ModelStatus represents the model status response
type ModelStatus struct {
	Loaded    bool   `json:"loaded"`
	State     string `json:"state"`
	Framework string `json:"framework"`
}

// HuggingFaceClient is an HTTP client for hosted classification models
type HuggingFaceClient struct {
	baseURL    string
	model      string
	token      string
	httpClient *http.Client
}

// NewHuggingFaceClient creates a new hosted inference client
func NewHuggingFaceClient(baseURL, model, token string, timeout time.Duration) *HuggingFaceClient {
	if baseURL == "" {
		baseURL = DefaultHuggingFaceURL
	}
	return &HuggingFaceClient{
		baseURL: baseURL,
		model:   model,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the model identifier requests are sent to
func (c *HuggingFaceClient) Model() string {
	return c.model
}

// Classify sends a single text for classification and returns every label
// the model produced
func (c *HuggingFaceClient) Classify(ctx context.Context, text, requestID string) ([]SentimentLabel, error) {
	body, err := json.Marshal(InferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+c.model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &service.UpstreamError{Service: "huggingface", StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &service.UpstreamError{Service: "huggingface", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	labels, err := decodeLabels(respBody)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return labels, nil
}

// Status checks whether the hosted model is loaded
func (c *HuggingFaceClient) Status(ctx context.Context) (*ModelStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+c.model, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface model not ready: status %d", resp.StatusCode)
	}

	var result ModelStatus
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

func (c *HuggingFaceClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// decodeLabels accepts both the nested [[...]] shape returned for a single
// input and a flat [...] list.
func decodeLabels(body []byte) ([]SentimentLabel, error) {
	var nested [][]SentimentLabel
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, fmt.Errorf("empty classification result")
		}
		return nested[0], nil
	}

	var flat []SentimentLabel
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, err
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("empty classification result")
	}
	return flat, nil
}
