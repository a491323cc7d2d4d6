package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCoinMarketCap_SkipsWithoutAPIKey(t *testing.T) {
	adapter := NewCoinMarketCapAdapter("http://unused.invalid", "", 500, zap.NewNop())

	records, err := adapter.FetchReferenceListing(context.Background())
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestCoinMarketCap_MapsQuoteFields(t *testing.T) {
	var gotKey string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/cryptocurrency/listings/latest", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-CMC_PRO_API_KEY")
		fmt.Fprint(w, `{
			"status": {"error_code": 0},
			"data": [{
				"symbol": "FOO",
				"name": "Foo Protocol",
				"quote": {"USD": {
					"fully_diluted_market_cap": 200000000,
					"market_cap": 150000000,
					"percent_change_24h": 3.2,
					"percent_change_30d": 10
				}}
			}]
		}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	adapter := NewCoinMarketCapAdapter(srv.URL, "test-key", 500, zap.NewNop())
	records, err := adapter.FetchReferenceListing(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "FOO", records[0].Symbol)
	assert.Equal(t, 200000000.0, *records[0].FDV)
	assert.Equal(t, 150000000.0, *records[0].MarketCap)
	assert.Equal(t, 3.2, *records[0].Change24h)
	assert.Equal(t, 10.0, *records[0].Change30d)
}

func TestCoinMarketCap_AuthAndRateLimitDegradeToEmpty(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusTooManyRequests} {
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/cryptocurrency/listings/latest", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		srv := httptest.NewServer(mux)

		adapter := NewCoinMarketCapAdapter(srv.URL, "test-key", 500, zap.NewNop())
		records, err := adapter.FetchReferenceListing(context.Background())
		srv.Close()

		require.NoError(t, err, "status %d", status)
		assert.Nil(t, records, "status %d", status)
	}
}

func TestCoinMarketCap_APIErrorCodeIsAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/cryptocurrency/listings/latest", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": {"error_code": 1002, "error_message": "API key disabled"}, "data": []}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	adapter := NewCoinMarketCapAdapter(srv.URL, "test-key", 500, zap.NewNop())
	_, err := adapter.FetchReferenceListing(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key disabled")
}
