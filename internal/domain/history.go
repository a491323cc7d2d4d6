package domain

import "time"

// HistoryKind tags the shape of a persisted run-history snapshot. The
// predecessor tool stored a single flat symbol list; current runs store one
// list per tier. The loader surfaces whichever shape it found instead of
// shape-sniffing at the call sites.
type HistoryKind int

const (
	HistoryEmpty HistoryKind = iota
	HistoryLegacyFlat
	HistoryPerTier
)

// HistorySnapshot is the per-tier symbol sets persisted by the previous
// completed run. Overwritten, never appended, at the end of a successful run.
type HistorySnapshot struct {
	Kind      HistoryKind
	UpdatedAt time.Time
	Tiers     map[string][]string // tier ID -> sorted symbols (HistoryPerTier)
	Symbols   []string            // sorted symbols (HistoryLegacyFlat)
}

// PreviousFor returns the previously observed symbol set for a tier. A legacy
// flat snapshot counts a symbol as seen in every tier, so instruments known to
// the old single-list screener are never re-flagged as new after migration.
func (s *HistorySnapshot) PreviousFor(tierID string) map[string]bool {
	set := make(map[string]bool)
	if s == nil {
		return set
	}
	switch s.Kind {
	case HistoryLegacyFlat:
		for _, sym := range s.Symbols {
			set[sym] = true
		}
	case HistoryPerTier:
		for _, sym := range s.Tiers[tierID] {
			set[sym] = true
		}
	}
	return set
}
