package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
)

// ScanRepository defines the interface for scan data operations
type ScanRepository interface {
	// Create stores a new scan
	Create(ctx context.Context, scan *entity.Scan) error

	// GetByID retrieves a scan by its ID, nil if it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Scan, error)

	// List retrieves scans newest first with pagination
	List(ctx context.Context, limit, offset int) ([]*entity.Scan, int64, error)

	// Leaderboard ranks products by their best eco-score over completed scans
	Leaderboard(ctx context.Context, limit int) ([]*entity.LeaderboardEntry, error)
}

// ScanCache stores the last successful result per product and mode
type ScanCache interface {
	// Get returns a completed scan template for the product, nil on a miss
	Get(ctx context.Context, mode entity.ScanMode, product string) (*entity.Scan, error)

	// Set stores a completed scan; failed scans are ignored
	Set(ctx context.Context, scan *entity.Scan) error
}
