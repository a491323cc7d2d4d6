package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vitos/crypto_screener/internal/domain"
)

const BinanceFuturesBaseURL = "https://fapi.binance.com"

// BinanceAdapter talks to the Binance USDT-M futures public endpoints. It is
// plain transport: no retries, no pacing. Failures come back classified as
// domain.UpstreamError so the core's retry policies can act on them.
type BinanceAdapter struct {
	baseURL string
	client  *http.Client
}

func NewBinanceAdapter(baseURL string) *BinanceAdapter {
	if baseURL == "" {
		baseURL = BinanceFuturesBaseURL
	}
	return &BinanceAdapter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchTickerSnapshot returns one Quote per USDT-quoted perpetual from the
// 24hr ticker endpoint. Quarterly delivery contracts (_PERP suffixed pairs
// and anything not quoted in USDT) are filtered out here so the core only
// ever sees perpetuals.
func (b *BinanceAdapter) FetchTickerSnapshot(ctx context.Context) ([]domain.Quote, error) {
	body, err := b.get(ctx, "ticker", "/fapi/v1/ticker/24hr", nil)
	if err != nil {
		return nil, err
	}

	var raw []struct {
		Symbol             string `json:"symbol"`
		LastPrice          string `json:"lastPrice"`
		QuoteVolume        string `json:"quoteVolume"`
		PriceChangePercent string `json:"priceChangePercent"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode ticker snapshot: %w", err)
	}

	var quotes []domain.Quote
	for _, t := range raw {
		if !strings.HasSuffix(t.Symbol, "USDT") || strings.HasSuffix(t.Symbol, "_PERP") {
			continue
		}
		base := strings.TrimSuffix(t.Symbol, "USDT")

		price, _ := strconv.ParseFloat(t.LastPrice, 64)
		volume, _ := strconv.ParseFloat(t.QuoteVolume, 64)
		change, _ := strconv.ParseFloat(t.PriceChangePercent, 64)

		quotes = append(quotes, domain.Quote{
			Symbol:         base,
			LastPrice:      price,
			QuoteVolume24h: volume,
			PriceChange24h: change,
		})
	}
	return quotes, nil
}

// FetchHistoricalWindow returns the daily candles for <symbol>USDT between
// start and end, oldest first, capped at 62 rows (enough for a two-month
// calendar window).
func (b *BinanceAdapter) FetchHistoricalWindow(ctx context.Context, symbol string, start, end time.Time) ([]domain.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol+"USDT")
	params.Set("interval", "1d")
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("limit", "62")

	body, err := b.get(ctx, "klines", "/fapi/v1/klines", params)
	if err != nil {
		return nil, err
	}

	// Binance klines are heterogeneous arrays: numbers for timestamps,
	// quoted strings for prices. [0]=openTime, [3]=low.
	var raw [][]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}

	var candles []domain.Candle
	for _, row := range raw {
		if len(row) < 4 {
			continue
		}
		openTime, ok := asInt64(row[0])
		if !ok {
			continue
		}
		low, ok := asFloat(row[3])
		if !ok {
			continue
		}
		candles = append(candles, domain.Candle{OpenTime: openTime, Low: low})
	}
	return candles, nil
}

func (b *BinanceAdapter) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	endpoint := b.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &domain.UpstreamError{Op: op, Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func asInt64(v any) (int64, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
