package usecase

import (
	"sort"
	"time"

	"github.com/vitos/crypto_screener/internal/domain"
)

// TierSets groups the screened symbols by tier ID, each list sorted.
// Instruments that map to no tier are excluded from every bucket.
func TierSets(rows []*domain.ScreenedInstrument) map[string][]string {
	sets := make(map[string][]string)
	for _, row := range rows {
		if row.TierID == "" {
			continue
		}
		sets[row.TierID] = append(sets[row.TierID], row.Symbol)
	}
	for id := range sets {
		sort.Strings(sets[id])
	}
	return sets
}

// MarkNovelty flags each row whose symbol is in its tier's current set but
// not in the previously persisted set for that tier. An empty or missing
// previous snapshot yields zero novelty, not "everything is new". Returns the
// per-tier lists of newly observed symbols, sorted.
func MarkNovelty(rows []*domain.ScreenedInstrument, prev *domain.HistorySnapshot) map[string][]string {
	newByTier := make(map[string][]string)
	if prev == nil || prev.Kind == domain.HistoryEmpty {
		return newByTier
	}

	seen := make(map[string]map[string]bool)
	for _, row := range rows {
		if row.TierID == "" {
			continue
		}
		before, ok := seen[row.TierID]
		if !ok {
			before = prev.PreviousFor(row.TierID)
			seen[row.TierID] = before
		}
		if !before[row.Symbol] {
			row.IsNew = true
			newByTier[row.TierID] = append(newByTier[row.TierID], row.Symbol)
		}
	}
	for id := range newByTier {
		sort.Strings(newByTier[id])
	}
	return newByTier
}

// Snapshot packages the current per-tier sets for the unconditional
// end-of-run overwrite of the history store.
func Snapshot(rows []*domain.ScreenedInstrument, now time.Time) *domain.HistorySnapshot {
	return &domain.HistorySnapshot{
		Kind:      domain.HistoryPerTier,
		UpdatedAt: now.UTC(),
		Tiers:     TierSets(rows),
	}
}
