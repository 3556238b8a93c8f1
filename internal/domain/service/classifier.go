package service

import "context"

// ClassificationResult represents the result of sentiment classification
type ClassificationResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model,omitempty"`
}

// Classifier defines the interface for sentiment classification
type Classifier interface {
	// Classify classifies a single text
	Classify(ctx context.Context, text, requestID string) (*ClassificationResult, error)

	// Name returns the provider name recorded on scans
	Name() string
}
