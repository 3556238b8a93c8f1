package client

import (
	"context"
	"math"

	"github.com/jonreiter/govader"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
)

// compound thresholds recommended for VADER
const (
	vaderPositiveThreshold = 0.05
	vaderNegativeThreshold = -0.05
)

// VaderClassifier classifies text locally with the VADER lexicon
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderClassifier creates a new local classifier
func NewVaderClassifier() service.Classifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Name returns the provider name
func (c *VaderClassifier) Name() string {
	return "vader"
}

// Classify scores text without any network call
func (c *VaderClassifier) Classify(ctx context.Context, text, _ string) (*service.ClassificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compound := c.analyzer.PolarityScores(text).Compound

	var label string
	var confidence float64
	switch {
	case compound >= vaderPositiveThreshold:
		label = service.LabelPositive
		confidence = compound
	case compound <= vaderNegativeThreshold:
		label = service.LabelNegative
		confidence = -compound
	default:
		label = service.LabelNeutral
		confidence = 1 - math.Abs(compound)
	}

	return &service.ClassificationResult{
		Label:      label,
		Confidence: confidence,
		Model:      "vader-lexicon",
	}, nil
}
