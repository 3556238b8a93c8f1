package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
)

func TestVaderClassifier_Classify(t *testing.T) {
	classifier := NewVaderClassifier()

	t.Run("positive text", func(t *testing.T) {
		result, err := classifier.Classify(context.Background(), "This is a wonderful, excellent and great product", "")

		require.NoError(t, err)
		assert.Equal(t, service.LabelPositive, result.Label)
		assert.Greater(t, result.Confidence, 0.5)
	})

	t.Run("negative text", func(t *testing.T) {
		result, err := classifier.Classify(context.Background(), "terrible awful horrible waste", "")

		require.NoError(t, err)
		assert.Equal(t, service.LabelNegative, result.Label)
		assert.Greater(t, result.Confidence, 0.5)
	})

	t.Run("neutral text", func(t *testing.T) {
		result, err := classifier.Classify(context.Background(), "shampoo bottle", "")

		require.NoError(t, err)
		assert.Equal(t, service.LabelNeutral, result.Label)
		assert.Equal(t, 1.0, result.Confidence)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := classifier.Classify(ctx, "anything", "")

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("name", func(t *testing.T) {
		assert.Equal(t, "vader", classifier.Name())
	})
}
