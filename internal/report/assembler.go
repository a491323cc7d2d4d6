package report

import (
	"sort"
	"time"

	"github.com/vitos/crypto_screener/internal/domain"
	"github.com/vitos/crypto_screener/internal/usecase"
)

// TierSummary is the per-tier metadata exposed to the presentation layer.
type TierSummary struct {
	ID         string
	Name       string
	Label      string
	Count      int
	NewSymbols []string
}

// Report is the final, ordered artifact of a run. Rows are sorted by 30-day
// change descending, instruments without a 30-day figure last.
type Report struct {
	GeneratedAt time.Time
	Rows        []*domain.ScreenedInstrument
	Tiers       []TierSummary
	NewSymbols  []string // union across tiers, sorted
	Annotations map[string]string
}

// Assemble orders the screened rows and attaches tier metadata. The input
// result is not mutated; the report owns its own row slice ordering.
func Assemble(res *usecase.ScreenResult, tiers []domain.Tier) *Report {
	rows := append([]*domain.ScreenedInstrument(nil), res.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Change30d, rows[j].Change30d
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})

	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.TierID]++
	}

	summaries := make([]TierSummary, 0, len(tiers))
	var union []string
	for _, tier := range tiers {
		fresh := res.NewByTier[tier.ID]
		summaries = append(summaries, TierSummary{
			ID:         tier.ID,
			Name:       tier.Name,
			Label:      tier.Label,
			Count:      counts[tier.ID],
			NewSymbols: fresh,
		})
		union = append(union, fresh...)
	}
	sort.Strings(union)
	union = dedupSorted(union)

	return &Report{
		GeneratedAt: res.GeneratedAt,
		Rows:        rows,
		Tiers:       summaries,
		NewSymbols:  union,
		Annotations: res.Annotations,
	}
}

func dedupSorted(in []string) []string {
	out := in[:0]
	for i, s := range in {
		if i == 0 || s != in[i-1] {
			out = append(out, s)
		}
	}
	return out
}
