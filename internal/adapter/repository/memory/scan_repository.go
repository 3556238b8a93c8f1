// Package memory holds an in-process scan repository used when no database
// is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/repository"
)

// ScanRepository keeps scans in memory, newest last
type ScanRepository struct {
	mu    sync.RWMutex
	scans []*entity.Scan
	now   func() time.Time
}

// NewScanRepository creates an empty in-memory scan repository
func NewScanRepository() *ScanRepository {
	return &ScanRepository{now: time.Now}
}

var _ repository.ScanRepository = (*ScanRepository)(nil)

func (r *ScanRepository) Create(ctx context.Context, scan *entity.Scan) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if scan.CreatedAt.IsZero() {
		scan.CreatedAt = r.now().UTC()
	}
	stored := *scan
	r.scans = append(r.scans, &stored)
	return nil
}

func (r *ScanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.scans {
		if s.ID == id {
			found := *s
			return &found, nil
		}
	}
	return nil, nil
}

func (r *ScanRepository) List(ctx context.Context, limit, offset int) ([]*entity.Scan, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.snapshot()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	total := int64(len(sorted))
	if offset >= len(sorted) {
		return []*entity.Scan{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(sorted) {
		end = len(sorted)
	}
	return sorted[offset:end], total, nil
}

func (r *ScanRepository) Leaderboard(ctx context.Context, limit int) ([]*entity.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return entity.RankLeaderboard(r.snapshot(), limit), nil
}

// snapshot copies the stored scans. Callers hold the read lock.
func (r *ScanRepository) snapshot() []*entity.Scan {
	out := make([]*entity.Scan, len(r.scans))
	for i, s := range r.scans {
		c := *s
		out[i] = &c
	}
	return out
}
