package memory

import (
	"context"
	"time"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
)

type demoScan struct {
	product string
	mode    entity.ScanMode
	label   string
	score   int
	age     time.Duration
}

var demoScans = []demoScan{
	{product: "Plastic Shampoo Bottle", mode: entity.ScanModeAnalysis, score: 22, age: 6 * time.Hour},
	{product: "Bamboo Toothbrush", mode: entity.ScanModeAnalysis, score: 88, age: 5 * time.Hour},
	{product: "Reusable Steel Bottle", mode: entity.ScanModeSentiment, label: "POSITIVE", score: 93, age: 4 * time.Hour},
	{product: "Disposable Coffee Cup", mode: entity.ScanModeSentiment, label: "NEGATIVE", score: 14, age: 3 * time.Hour},
	{product: "Beeswax Food Wrap", mode: entity.ScanModeAnalysis, score: 81, age: 2 * time.Hour},
	{product: "Shampoo Bar", mode: entity.ScanModeAnalysis, score: 90, age: time.Hour},
}

// Seed fills the repository with sample history so a fresh instance renders
// non-empty history and leaderboard tables.
func (r *ScanRepository) Seed(ctx context.Context) error {
	now := r.now().UTC()
	for _, d := range demoScans {
		scan := entity.NewScan(d.product, entity.ScanSourceText, d.mode)
		score := d.score
		scan.EcoScore = &score
		scan.CreatedAt = now.Add(-d.age)

		if d.mode == entity.ScanModeSentiment {
			scan.Label = d.label
			scan.Confidence = float64(d.score) / 100
			if d.label != "POSITIVE" {
				scan.Confidence = 1 - scan.Confidence
			}
		} else {
			scan.Analysis = "Sample analysis for " + d.product + "."
		}
		scan.Complete("demo", "sample-data", 0)

		if err := r.Create(ctx, scan); err != nil {
			return err
		}
	}
	return nil
}
