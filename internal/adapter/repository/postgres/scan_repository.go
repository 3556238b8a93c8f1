package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
	"github.com/ressKim-io/EcoScan/api-service/internal/domain/repository"
)

type scanRepository struct {
	db *gorm.DB
}

// NewScanRepository creates a new GORM-backed scan repository
func NewScanRepository(db *gorm.DB) repository.ScanRepository {
	return &scanRepository{db: db}
}

func (r *scanRepository) Create(ctx context.Context, scan *entity.Scan) error {
	scan.ProductKey = entity.NormalizeProduct(scan.Product)
	return r.db.WithContext(ctx).Create(scan).Error
}

func (r *scanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Scan, error) {
	var scan entity.Scan
	err := r.db.WithContext(ctx).First(&scan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &scan, nil
}

func (r *scanRepository) List(ctx context.Context, limit, offset int) ([]*entity.Scan, int64, error) {
	var scans []*entity.Scan
	var total int64

	if err := r.db.WithContext(ctx).Model(&entity.Scan{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&scans).Error
	if err != nil {
		return nil, 0, err
	}

	return scans, total, nil
}

// leaderboardRow is one product group aggregated in SQL
type leaderboardRow struct {
	ProductKey   string
	BestScore    int
	AverageScore float64
	ScanCount    int64
}

// Leaderboard groups completed scored scans by normalised product in SQL and
// then looks up the latest spelling and scan time of each returned group.
func (r *scanRepository) Leaderboard(ctx context.Context, limit int) ([]*entity.LeaderboardEntry, error) {
	scored := r.db.WithContext(ctx).
		Model(&entity.Scan{}).
		Where("status = ? AND eco_score IS NOT NULL", entity.ScanStatusCompleted).
		Session(&gorm.Session{})

	query := scored.
		Select("product_key, MAX(eco_score) AS best_score, AVG(eco_score) AS average_score, COUNT(*) AS scan_count").
		Group("product_key").
		Order("best_score DESC, scan_count DESC, MAX(created_at) DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []leaderboardRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*entity.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		var latest entity.Scan
		err := scored.
			Select("product", "created_at").
			Where("product_key = ?", row.ProductKey).
			Order("created_at DESC").
			Take(&latest).Error
		if err != nil {
			return nil, err
		}

		entries = append(entries, &entity.LeaderboardEntry{
			Product:       latest.Product,
			BestScore:     row.BestScore,
			AverageScore:  row.AverageScore,
			ScanCount:     row.ScanCount,
			LastScannedAt: latest.CreatedAt,
		})
	}

	return entries, nil
}
