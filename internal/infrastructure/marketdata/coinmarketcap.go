package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/crypto_screener/internal/domain"
)

const CoinMarketCapBaseURL = "https://pro-api.coinmarketcap.com"

// CoinMarketCapAdapter fetches a single size-limited listings page. The
// source is optional: no API key, an invalid key or a rate limit all degrade
// to an empty contribution so the run continues on the other provider alone.
type CoinMarketCapAdapter struct {
	baseURL string
	apiKey  string
	limit   int
	client  *http.Client
	log     *zap.Logger
}

func NewCoinMarketCapAdapter(baseURL, apiKey string, limit int, log *zap.Logger) *CoinMarketCapAdapter {
	if baseURL == "" {
		baseURL = CoinMarketCapBaseURL
	}
	if limit <= 0 {
		limit = 500
	}
	return &CoinMarketCapAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		limit:   limit,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

func (c *CoinMarketCapAdapter) Name() string { return "coinmarketcap" }

type cmcListing struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
	Data []struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
		Quote  struct {
			USD struct {
				FDV       *float64 `json:"fully_diluted_market_cap"`
				MarketCap *float64 `json:"market_cap"`
				Change24h *float64 `json:"percent_change_24h"`
				Change30d *float64 `json:"percent_change_30d"`
			} `json:"USD"`
		} `json:"quote"`
	} `json:"data"`
}

func (c *CoinMarketCapAdapter) FetchReferenceListing(ctx context.Context) ([]domain.ReferenceRecord, error) {
	if c.apiKey == "" {
		c.log.Info("coinmarketcap skipped, no API key configured")
		return nil, nil
	}

	params := url.Values{}
	params.Set("start", "1")
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("convert", "USD")
	params.Set("sort", "market_cap")
	params.Set("sort_dir", "desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/cryptocurrency/listings/latest?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-CMC_PRO_API_KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		io.Copy(io.Discard, resp.Body)
		c.log.Warn("coinmarketcap rejected the API key, continuing without it")
		return nil, nil
	case http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body)
		c.log.Warn("coinmarketcap rate limited, continuing without it")
		return nil, nil
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, &domain.UpstreamError{Op: "coinmarketcap listings", Status: resp.StatusCode}
	}

	var listing cmcListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode coinmarketcap listing: %w", err)
	}
	if listing.Status.ErrorCode != 0 {
		return nil, fmt.Errorf("coinmarketcap error %d: %s", listing.Status.ErrorCode, listing.Status.ErrorMessage)
	}

	records := make([]domain.ReferenceRecord, 0, len(listing.Data))
	for _, coin := range listing.Data {
		usd := coin.Quote.USD
		records = append(records, domain.ReferenceRecord{
			Symbol:    coin.Symbol,
			Name:      coin.Name,
			FDV:       usd.FDV,
			MarketCap: usd.MarketCap,
			Change24h: usd.Change24h,
			Change30d: usd.Change30d,
		})
	}
	return records, nil
}
