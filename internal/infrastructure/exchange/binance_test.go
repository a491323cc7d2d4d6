package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vitos/crypto_screener/internal/domain"
)

func TestFetchTickerSnapshot_FiltersAndMaps(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/ticker/24hr", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"symbol":"BTCUSDT","lastPrice":"63100.50","quoteVolume":"25000000","priceChangePercent":"1.25"},
			{"symbol":"1000PEPEUSDT","lastPrice":"0.0123","quoteVolume":"900000","priceChangePercent":"-3.4"},
			{"symbol":"ETHBUSD","lastPrice":"3000","quoteVolume":"1","priceChangePercent":"0"},
			{"symbol":"BTCUSDT_PERP","lastPrice":"63000","quoteVolume":"1","priceChangePercent":"0"}
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	quotes, err := NewBinanceAdapter(srv.URL).FetchTickerSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchTickerSnapshot failed: %v", err)
	}

	if len(quotes) != 2 {
		t.Fatalf("expected 2 USDT perpetuals, got %d", len(quotes))
	}
	if quotes[0].Symbol != "BTC" {
		t.Errorf("unexpected first quote: %+v", quotes[0])
	}
	if quotes[0].LastPrice != 63100.50 || quotes[0].QuoteVolume24h != 25000000 || quotes[0].PriceChange24h != 1.25 {
		t.Errorf("BTC fields mismatch: %+v", quotes[0])
	}
	if quotes[1].Symbol != "1000PEPE" {
		t.Errorf("prefixed contract symbol wrong: %+v", quotes[1])
	}
}

func TestFetchHistoricalWindow_ParsesKlineRows(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/klines", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		// Binance rows mix numbers and quoted strings.
		w.Write([]byte(`[
			[1761955200000,"5.0","6.0","4.5","5.5","100",1762041599999,"550","10","50","275","0"],
			[1762041600000,"5.5","5.8","3.0","3.2","100",1762127999999,"320","10","50","160","0"]
		]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	start := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	candles, err := NewBinanceAdapter(srv.URL).FetchHistoricalWindow(context.Background(), "FOO", start, end)
	if err != nil {
		t.Fatalf("FetchHistoricalWindow failed: %v", err)
	}

	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Low != 4.5 || candles[1].Low != 3.0 {
		t.Errorf("low parsing wrong: %+v", candles)
	}
	if candles[0].OpenTime != 1761955200000 {
		t.Errorf("open time wrong: %d", candles[0].OpenTime)
	}

	req, _ := http.NewRequest(http.MethodGet, "/?"+gotQuery, nil)
	q := req.URL.Query()
	if q.Get("symbol") != "FOOUSDT" || q.Get("interval") != "1d" || q.Get("limit") != "62" {
		t.Errorf("unexpected query: %s", gotQuery)
	}
}

func TestGet_StatusMapsToUpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fapi/v1/klines", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := NewBinanceAdapter(srv.URL).FetchHistoricalWindow(context.Background(), "FOO",
		time.Now().Add(-time.Hour), time.Now())
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsRateLimited(err) {
		t.Errorf("expected rate-limited classification, got %v", err)
	}
}
