package entity

import "sort"

// RankLeaderboard groups completed scans with an eco-score by product
// (case and whitespace insensitive) and ranks them by best score, then scan
// count, then most recent scan. A limit of zero or less returns every entry.
func RankLeaderboard(scans []*Scan, limit int) []*LeaderboardEntry {
	byProduct := make(map[string]*LeaderboardEntry)
	totals := make(map[string]int)
	var order []string

	for _, s := range scans {
		if !s.IsCompleted() || !s.HasEcoScore() {
			continue
		}
		key := NormalizeProduct(s.Product)
		entry, ok := byProduct[key]
		if !ok {
			entry = &LeaderboardEntry{Product: s.Product, BestScore: *s.EcoScore}
			byProduct[key] = entry
			order = append(order, key)
		}
		entry.ScanCount++
		totals[key] += *s.EcoScore
		if *s.EcoScore > entry.BestScore {
			entry.BestScore = *s.EcoScore
		}
		if s.CreatedAt.After(entry.LastScannedAt) {
			entry.LastScannedAt = s.CreatedAt
			entry.Product = s.Product
		}
	}

	entries := make([]*LeaderboardEntry, 0, len(order))
	for _, key := range order {
		entry := byProduct[key]
		entry.AverageScore = float64(totals[key]) / float64(entry.ScanCount)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.BestScore != b.BestScore {
			return a.BestScore > b.BestScore
		}
		if a.ScanCount != b.ScanCount {
			return a.ScanCount > b.ScanCount
		}
		return a.LastScannedAt.After(b.LastScannedAt)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
