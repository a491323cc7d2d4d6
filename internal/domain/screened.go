package domain

// ScreenedInstrument is the joined per-run record for one admitted contract.
// Assembled once per run and not mutated after the report is built. Nil
// pointer fields mean the value could not be determined this run.
type ScreenedInstrument struct {
	Symbol    string   `json:"symbol"` // display symbol, "1000" prefix kept
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Volume24h float64  `json:"volume_24h"` // USD
	MarketCap *float64 `json:"market_cap"`
	FDV       *float64 `json:"fdv"`
	Change24h float64  `json:"change_24h"` // effective value, see Change24hPolicy
	Change30d *float64 `json:"change_30d"`
	TierID    string   `json:"tier_id"` // empty when the instrument maps to no tier
	Low       *float64 `json:"low"`
	LowDate   string   `json:"low_date"` // "2006-01-02", empty when the low is unknown
	Bounce    *float64 `json:"bounce"`
	IsNew     bool     `json:"is_new"`
	Note      string   `json:"note"`
}
