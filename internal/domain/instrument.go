package domain

// Quote is one exchange-side USDT-M perpetual contract as reported by the
// 24hr ticker snapshot. Built once per run and never mutated afterwards.
type Quote struct {
	Symbol         string  `json:"symbol"` // base symbol, e.g. "1000PEPE"
	LastPrice      float64 `json:"last_price"`
	QuoteVolume24h float64 `json:"quote_volume_24h"` // USD
	PriceChange24h float64 `json:"price_change_24h"` // percent
}

type Candle struct {
	OpenTime int64   `json:"open_time"` // unix millis
	Low      float64 `json:"low"`
}
