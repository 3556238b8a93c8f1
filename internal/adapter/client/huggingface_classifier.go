package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
)

// HuggingFaceClassifier adapts HuggingFaceClient to the Classifier interface
type HuggingFaceClassifier struct {
	client *HuggingFaceClient
}

// NewHuggingFaceClassifier creates a new HuggingFaceClassifier
func NewHuggingFaceClassifier(client *HuggingFaceClient) service.Classifier {
	return &HuggingFaceClassifier{client: client}
}

// Name returns the provider name
func (c *HuggingFaceClassifier) Name() string {
	return "huggingface"
}

// Classify classifies a single text and keeps the highest scoring label
func (c *HuggingFaceClassifier) Classify(ctx context.Context, text, requestID string) (*service.ClassificationResult, error) {
	labels, err := c.client.Classify(ctx, text, requestID)
	if err != nil {
		return nil, err
	}

	top := labels[0]
	for _, l := range labels[1:] {
		if l.Score > top.Score {
			top = l
		}
	}

	return &service.ClassificationResult{
		Label:      strings.ToUpper(top.Label),
		Confidence: top.Score,
		Model:      c.client.Model(),
	}, nil
}

// Ready reports whether the hosted model is loaded
func (c *HuggingFaceClassifier) Ready(ctx context.Context) error {
	status, err := c.client.Status(ctx)
	if err != nil {
		return err
	}
	if !status.Loaded {
		return fmt.Errorf("huggingface model %s not loaded: %s", c.client.Model(), status.State)
	}
	return nil
}
