package domain

// Tier is one static market-cap bucket. The interval is half-open (Min, Max];
// Max <= 0 means unbounded above. Tiers are configuration, not runtime state.
type Tier struct {
	ID    string
	Name  string
	Label string
	Min   float64
	Max   float64
}

// Contains reports whether marketCap falls inside the tier's (Min, Max] interval.
func (t Tier) Contains(marketCap float64) bool {
	if marketCap <= t.Min {
		return false
	}
	return t.Max <= 0 || marketCap <= t.Max
}

const (
	million = 1_000_000
	billion = 1_000_000_000
)

// DefaultTiers returns the eight non-overlapping buckets spanning $25M up to
// unbounded above $1.5B. Market caps at or below $25M map to no tier.
func DefaultTiers() []Tier {
	return []Tier{
		{ID: "25m-50m", Name: "$25M-$50M", Label: "Micro Cap", Min: 25 * million, Max: 50 * million},
		{ID: "50m-100m", Name: "$50M-$100M", Label: "Small Cap", Min: 50 * million, Max: 100 * million},
		{ID: "100m-250m", Name: "$100M-$250M", Label: "Lower Mid Cap", Min: 100 * million, Max: 250 * million},
		{ID: "250m-500m", Name: "$250M-$500M", Label: "Mid Cap", Min: 250 * million, Max: 500 * million},
		{ID: "500m-750m", Name: "$500M-$750M", Label: "Upper Mid Cap", Min: 500 * million, Max: 750 * million},
		{ID: "750m-1b", Name: "$750M-$1B", Label: "Large Cap", Min: 750 * million, Max: 1 * billion},
		{ID: "1b-1.5b", Name: "$1B-$1.5B", Label: "Mega Cap", Min: 1 * billion, Max: 1.5 * billion},
		{ID: "1.5b-up", Name: ">$1.5B", Label: "Giant Cap", Min: 1.5 * billion, Max: 0},
	}
}
