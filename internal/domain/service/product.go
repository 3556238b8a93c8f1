package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
)

// ErrMissingInput is returned when neither a product name nor an image was supplied
var ErrMissingInput = errors.New("product name or image is required")

const promptTemplate = "Is the product '%s' eco-friendly? Explain why, rate it out of 100, and suggest greener alternatives."

// ResolveProduct picks the product-identifying string. A typed name takes
// precedence over an uploaded image's filename.
func ResolveProduct(name, imageName string) (product string, fromImage bool, err error) {
	if name = strings.TrimSpace(name); name != "" {
		return name, false, nil
	}
	if imageName = strings.TrimSpace(imageName); imageName != "" {
		return imageName, true, nil
	}
	return "", false, ErrMissingInput
}

// BuildPrompt interpolates the product into the analysis prompt
func BuildPrompt(product string) string {
	return fmt.Sprintf(promptTemplate, product)
}

// NormalizeProduct folds a product string for cache keys and leaderboard grouping
func NormalizeProduct(product string) string {
	return entity.NormalizeProduct(product)
}
