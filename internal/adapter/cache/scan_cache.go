package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/repository"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/service"
)

const keyPrefix = "ecoscan:scan:"

// CachedResult is the part of a successful scan worth replaying
type CachedResult struct {
	Product    string  `json:"product"`
	Analysis   string  `json:"analysis,omitempty"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence"`
	EcoScore   *int    `json:"eco_score,omitempty"`
	Provider   string  `json:"provider"`
	Model      string  `json:"model,omitempty"`
}

// ScanCache stores successful scan results in Redis
type ScanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScanCache creates a new Redis-backed scan cache
func NewScanCache(client *redis.Client, ttl time.Duration) *ScanCache {
	return &ScanCache{client: client, ttl: ttl}
}

// Key builds the cache key for a product and mode
func Key(mode entity.ScanMode, product string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, mode, service.NormalizeProduct(product))
}

var _ repository.ScanCache = (*ScanCache)(nil)

// Get returns the cached result as a completed scan without an ID, nil on a miss
func (c *ScanCache) Get(ctx context.Context, mode entity.ScanMode, product string) (*entity.Scan, error) {
	raw, err := c.client.Get(ctx, Key(mode, product)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var result CachedResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return result.toScan(mode), nil
}

func (r *CachedResult) toScan(mode entity.ScanMode) *entity.Scan {
	return &entity.Scan{
		Product:    r.Product,
		Mode:       mode,
		Status:     entity.ScanStatusCompleted,
		Analysis:   r.Analysis,
		Label:      r.Label,
		Confidence: r.Confidence,
		EcoScore:   r.EcoScore,
		Provider:   r.Provider,
		Model:      r.Model,
		Cached:     true,
	}
}

// Set stores a completed scan. Failed scans are never cached.
func (c *ScanCache) Set(ctx context.Context, scan *entity.Scan) error {
	if !scan.IsCompleted() {
		return nil
	}

	raw, err := json.Marshal(CachedResult{
		Product:    scan.Product,
		Analysis:   scan.Analysis,
		Label:      scan.Label,
		Confidence: scan.Confidence,
		EcoScore:   scan.EcoScore,
		Provider:   scan.Provider,
		Model:      scan.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cached result: %w", err)
	}

	if err := c.client.Set(ctx, Key(scan.Mode, scan.Product), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
