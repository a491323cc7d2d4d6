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

const CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoAdapter pages through /coins/markets in market-cap order. One page
// failing keeps the pages already collected: a partial listing still feeds
// the merge, the other provider fills the holes.
type CoinGeckoAdapter struct {
	baseURL   string
	client    *http.Client
	pages     int
	perPage   int
	pageDelay time.Duration
	rateWait  time.Duration // pause after a 429 before the single page retry
	log       *zap.Logger

	sleep func(ctx context.Context, d time.Duration) // for tests
}

func NewCoinGeckoAdapter(baseURL string, pages int, log *zap.Logger) *CoinGeckoAdapter {
	if baseURL == "" {
		baseURL = CoinGeckoBaseURL
	}
	if pages <= 0 {
		pages = 5
	}
	return &CoinGeckoAdapter{
		baseURL:   baseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
		pages:     pages,
		perPage:   100,
		pageDelay: 1500 * time.Millisecond,
		rateWait:  60 * time.Second,
		log:       log,
	}
}

func (c *CoinGeckoAdapter) Name() string { return "coingecko" }

type geckoMarket struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	FDV       *float64 `json:"fully_diluted_valuation"`
	MarketCap *float64 `json:"market_cap"`
	Change24h *float64 `json:"price_change_percentage_24h"`
	Change30d *float64 `json:"price_change_percentage_30d_in_currency"`
}

func (c *CoinGeckoAdapter) FetchReferenceListing(ctx context.Context) ([]domain.ReferenceRecord, error) {
	sleep := c.sleep
	if sleep == nil {
		sleep = wait
	}

	var records []domain.ReferenceRecord
	for page := 1; page <= c.pages; page++ {
		markets, err := c.fetchPage(ctx, page)
		if err != nil && domain.IsRateLimited(err) {
			c.log.Warn("coingecko rate limited, waiting before retry", zap.Int("page", page))
			sleep(ctx, c.rateWait)
			markets, err = c.fetchPage(ctx, page)
		}
		if err != nil {
			c.log.Warn("coingecko page failed, keeping pages collected so far",
				zap.Int("page", page), zap.Error(err))
			break
		}
		if len(markets) == 0 {
			break
		}
		for _, m := range markets {
			records = append(records, domain.ReferenceRecord{
				Symbol:    m.Symbol,
				Name:      m.Name,
				FDV:       m.FDV,
				MarketCap: m.MarketCap,
				Change24h: m.Change24h,
				Change30d: m.Change30d,
			})
		}
		if page < c.pages {
			sleep(ctx, c.pageDelay)
		}
	}
	return records, nil
}

func (c *CoinGeckoAdapter) fetchPage(ctx context.Context, page int) ([]geckoMarket, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("page", strconv.Itoa(page))
	params.Set("sparkline", "false")
	params.Set("price_change_percentage", "24h,30d")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/coins/markets?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &domain.UpstreamError{Op: "coingecko markets", Status: resp.StatusCode}
	}

	var markets []geckoMarket
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("decode coingecko page %d: %w", page, err)
	}
	return markets, nil
}

func wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
