package router

import (
	"context"
	"fmt"

	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/client"
	"github.com/ressKim-io/EcoScan/api-service/internal/adapter/http/handler"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
	"github.com/ressKim-io/EcoScan/api-service/internal/infrastructure/config"
)

type readinessChecker interface {
	Ready(ctx context.Context) error
}

// NewGenerator builds the generative endpoint selected by cfg.Provider
func NewGenerator(ctx context.Context, cfg *config.GeneratorConfig) (service.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return client.NewGeminiClient(cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.Timeout), nil
	case "genai":
		g, err := client.NewGenAIGenerator(ctx, cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openai":
		g, err := client.NewOpenAIGenerator(cfg.BaseURL, cfg.Model, cfg.APIKey, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}

// NewClassifier builds the sentiment classifier selected by cfg.Provider
func NewClassifier(cfg *config.ClassifierConfig) (service.Classifier, error) {
	switch cfg.Provider {
	case "huggingface":
		hf := client.NewHuggingFaceClient(cfg.BaseURL, cfg.Model, cfg.APIToken, cfg.Timeout)
		return client.NewHuggingFaceClassifier(hf), nil
	case "vader":
		return client.NewVaderClassifier(), nil
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
}

// readinessChecks returns readiness checks for the upstreams that support them
func readinessChecks(generator service.Generator, classifier service.Classifier) []handler.ReadinessCheck {
	var checks []handler.ReadinessCheck
	if rc, ok := generator.(readinessChecker); ok {
		checks = append(checks, handler.ReadinessCheck{Name: generator.Name(), Check: rc.Ready})
	}
	if rc, ok := classifier.(readinessChecker); ok {
		checks = append(checks, handler.ReadinessCheck{Name: classifier.Name(), Check: rc.Ready})
	}
	return checks
}
