package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entity.Scan{}))
	return db
}

func newCompletedScan(product string, score int, at time.Time) *entity.Scan {
	scan := entity.NewScan(product, entity.ScanSourceText, entity.ScanModeAnalysis)
	scan.Analysis = "analysis of " + product
	scan.EcoScore = &score
	scan.Complete("gemini", "gemini-pro", 42)
	scan.CreatedAt = at
	return scan
}

func TestScanRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanRepository(db)
	ctx := context.Background()

	scan := newCompletedScan("Bamboo Toothbrush", 85, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, scan))

	got, err := repo.GetByID(ctx, scan.ID)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, scan.ID, got.ID)
	assert.Equal(t, "Bamboo Toothbrush", got.Product)
	assert.Equal(t, entity.ScanStatusCompleted, got.Status)
	require.NotNil(t, got.EcoScore)
	assert.Equal(t, 85, *got.EcoScore)
	assert.Equal(t, int64(42), got.LatencyMs)
}

func TestScanRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanRepository(db)

	got, err := repo.GetByID(context.Background(), uuid.New())

	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestScanRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
	for i, product := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, newCompletedScan(product, 50, base.Add(time.Duration(i)*time.Minute))))
	}

	scans, total, err := repo.List(ctx, 2, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, scans, 2)
	assert.Equal(t, "third", scans[0].Product)
	assert.Equal(t, "second", scans[1].Product)

	scans, total, err = repo.List(ctx, 2, 2)

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, scans, 1)
	assert.Equal(t, "first", scans[0].Product)
}

func TestScanRepository_Leaderboard(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newCompletedScan("Plastic Straw", 10, base)))
	require.NoError(t, repo.Create(ctx, newCompletedScan("Glass Jar", 90, base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newCompletedScan("glass jar", 70, base.Add(2*time.Minute))))

	failed := entity.NewScan("Steel Bottle", entity.ScanSourceText, entity.ScanModeAnalysis)
	failed.Fail("gemini", 500, "boom", 1)
	require.NoError(t, repo.Create(ctx, failed))

	entries, err := repo.Leaderboard(ctx, 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "glass jar", entries[0].Product)
	assert.Equal(t, 90, entries[0].BestScore)
	assert.Equal(t, int64(2), entries[0].ScanCount)
	assert.Equal(t, "Plastic Straw", entries[1].Product)
}

func TestScanRepository_Leaderboard_Ranking(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
	scans := []*entity.Scan{
		newCompletedScan("Shampoo Bar", 80, base),
		newCompletedScan("Beeswax Wrap", 80, base.Add(time.Minute)),
		newCompletedScan("beeswax  WRAP", 60, base.Add(2*time.Minute)),
		newCompletedScan("Steel Bottle", 80, base.Add(3*time.Minute)),
		newCompletedScan("Paper Cup", 20, base.Add(4*time.Minute)),
	}
	for _, s := range scans {
		require.NoError(t, repo.Create(ctx, s))
	}
	unscored := entity.NewScan("Mystery Box", entity.ScanSourceText, entity.ScanModeAnalysis)
	unscored.Complete("gemini", "gemini-pro", 1)
	require.NoError(t, repo.Create(ctx, unscored))

	entries, err := repo.Leaderboard(ctx, 3)

	require.NoError(t, err)
	require.Len(t, entries, 3)

	// best score ties break on scan count, then on the latest scan
	assert.Equal(t, "beeswax  WRAP", entries[0].Product)
	assert.Equal(t, int64(2), entries[0].ScanCount)
	assert.InDelta(t, 70.0, entries[0].AverageScore, 1e-9)
	assert.True(t, entries[0].LastScannedAt.Equal(base.Add(2*time.Minute)))
	assert.Equal(t, "Steel Bottle", entries[1].Product)
	assert.Equal(t, "Shampoo Bar", entries[2].Product)

	all, err := repo.Leaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "Paper Cup", all[3].Product)
}

func TestScanRepository_Leaderboard_MatchesInMemoryRanking(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 18, 12, 0, 0, 0, time.UTC)
	var stored []*entity.Scan
	for i, p := range []struct {
		product string
		score   int
	}{
		{"Glass Jar", 75}, {"Bamboo Brush", 88}, {"glass jar", 91}, {"Plastic Bag", 5}, {"Bamboo brush", 40},
	} {
		scan := newCompletedScan(p.product, p.score, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, scan))
		stored = append(stored, scan)
	}

	got, err := repo.Leaderboard(ctx, 10)
	require.NoError(t, err)

	want := entity.RankLeaderboard(stored, 10)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Product, got[i].Product)
		assert.Equal(t, want[i].BestScore, got[i].BestScore)
		assert.Equal(t, want[i].ScanCount, got[i].ScanCount)
	}
}

func TestScanRepository_Create_SetsProductKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewScanRepository(db)
	ctx := context.Background()

	scan := &entity.Scan{ID: uuid.New(), Product: "  Glass   JAR ", Source: entity.ScanSourceText, Mode: entity.ScanModeAnalysis, Status: entity.ScanStatusCompleted}
	require.NoError(t, repo.Create(ctx, scan))

	var key string
	require.NoError(t, db.Model(&entity.Scan{}).Where("id = ?", scan.ID).Pluck("product_key", &key).Error)
	assert.Equal(t, "glass jar", key)
}
