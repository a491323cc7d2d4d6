package usecase

import (
	"strings"

	"github.com/vitos/crypto_screener/internal/domain"
)

// DedupBySymbol collapses one provider's raw listing into a symbol-keyed map.
// Symbols are upper-cased before comparison. When a provider reports the same
// symbol twice, the record with the higher market cap wins; a nil market cap
// loses to any non-nil one, and exact ties keep the first-seen record.
func DedupBySymbol(records []domain.ReferenceRecord) map[string]*domain.ReferenceRecord {
	out := make(map[string]*domain.ReferenceRecord, len(records))
	for i := range records {
		rec := records[i].Clone()
		rec.Symbol = strings.ToUpper(rec.Symbol)
		prev, ok := out[rec.Symbol]
		if !ok {
			out[rec.Symbol] = rec
			continue
		}
		if higherMarketCap(rec, prev) {
			out[rec.Symbol] = rec
		}
	}
	return out
}

func higherMarketCap(candidate, incumbent *domain.ReferenceRecord) bool {
	if candidate.MarketCap == nil {
		return false
	}
	if incumbent.MarketCap == nil {
		return true
	}
	return *candidate.MarketCap > *incumbent.MarketCap
}

// MergeReferences combines two deduplicated provider maps with asymmetric OR
// semantics: the result starts as a copy of a, symbols only b knows are
// inserted verbatim, and for shared symbols b fills only the fields a left
// nil. A non-nil field from a is never overwritten. Neither input map is
// mutated and the result aliases neither.
func MergeReferences(a, b map[string]*domain.ReferenceRecord) map[string]*domain.ReferenceRecord {
	merged := make(map[string]*domain.ReferenceRecord, len(a)+len(b))
	for sym, rec := range a {
		merged[sym] = rec.Clone()
	}
	for sym, rec := range b {
		base, ok := merged[sym]
		if !ok {
			merged[sym] = rec.Clone()
			continue
		}
		if base.FDV == nil {
			base.FDV = cloneField(rec.FDV)
		}
		if base.MarketCap == nil {
			base.MarketCap = cloneField(rec.MarketCap)
		}
		if base.Change24h == nil {
			base.Change24h = cloneField(rec.Change24h)
		}
		if base.Change30d == nil {
			base.Change30d = cloneField(rec.Change30d)
		}
	}
	return merged
}

func cloneField(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
