package usecase

import (
	"strings"

	"github.com/vitos/crypto_screener/internal/domain"
)

// Change24hPolicy controls the effective 24h change. The exchange feed reports
// 0.00 both for a genuinely flat day and for an absent value, so the original
// screener substituted the reference provider's figure whenever the exchange
// said exactly zero. That fallback is kept for compatibility but exposed here
// as an explicit switch instead of a hidden literal-zero check.
type Change24hPolicy struct {
	ZeroMeansMissing bool
}

// Effective resolves the 24h change for one instrument.
func (p Change24hPolicy) Effective(exchange float64, reference *float64) float64 {
	if !p.ZeroMeansMissing || exchange != 0 {
		return exchange
	}
	if reference != nil && *reference != 0 {
		return *reference
	}
	return exchange
}

// Tierer joins exchange quotes with merged reference records, applies the
// admission filters and assigns each instrument to at most one tier.
type Tierer struct {
	Tiers  []domain.Tier
	MinFDV float64 // USD; <= 0 disables the FDV admission gate
	Change Change24hPolicy
}

// LookupSymbol strips a leading "1000" multiplier prefix from a contract
// symbol so "1000PEPE" resolves against the reference record for "PEPE".
// The display symbol keeps the prefix.
func LookupSymbol(symbol string) string {
	if strings.HasPrefix(symbol, "1000") && len(symbol) > 4 {
		return symbol[4:]
	}
	return symbol
}

// MatchTier finds the unique tier whose (min, max] interval contains the
// market cap, or nil when the value falls outside every bucket.
func (t *Tierer) MatchTier(marketCap float64) *domain.Tier {
	for i := range t.Tiers {
		if t.Tiers[i].Contains(marketCap) {
			return &t.Tiers[i]
		}
	}
	return nil
}

// Screen builds the per-run records for every admitted instrument. Order
// follows the input quotes; sorting is the report assembler's job.
//
// With an active FDV gate an instrument needs a reference record and a
// reported FDV above the minimum. Without the gate a missing FDV counts as
// zero and routing is purely by market cap, but an instrument with no
// reference record at all is still dropped since nothing can place it.
func (t *Tierer) Screen(quotes []domain.Quote, refs map[string]*domain.ReferenceRecord) []*domain.ScreenedInstrument {
	var out []*domain.ScreenedInstrument
	for _, q := range quotes {
		ref, ok := refs[strings.ToUpper(LookupSymbol(q.Symbol))]
		if !ok {
			continue
		}
		if t.MinFDV > 0 {
			if ref.FDV == nil || *ref.FDV <= t.MinFDV {
				continue
			}
		}

		var marketCap float64
		if ref.MarketCap != nil {
			marketCap = *ref.MarketCap
		}
		tierID := ""
		if tier := t.MatchTier(marketCap); tier != nil {
			tierID = tier.ID
		}

		out = append(out, &domain.ScreenedInstrument{
			Symbol:    q.Symbol,
			Name:      ref.Name,
			Price:     q.LastPrice,
			Volume24h: q.QuoteVolume24h,
			MarketCap: cloneField(ref.MarketCap),
			FDV:       cloneField(ref.FDV),
			Change24h: t.Change.Effective(q.PriceChange24h, ref.Change24h),
			Change30d: cloneField(ref.Change30d),
			TierID:    tierID,
		})
	}
	return out
}
